// Package client implements the client node (spec.md §4.4): a local mirror
// of the last-synced authoritative state, an outbox of pending offline
// messages, the current dependent-group ID, and the online/offline state
// machine.
//
// What: comeOnline/goOffline, one method per update variant, and the three
// callbacks the coordinator drives (sync/accepted/rejected).
// How: A single mutex guards mirror/outbox/version/groupID/online, mirroring
// the coordinator's single-mutex model (spec.md §5: client state is mutated
// only by the client's own call or by a coordinator callback, and callbacks
// to a given client are serialized).
// Why: The client never mutates its mirror on send, only on acceptance —
// so issuing an edit while offline is just queuing, and coming online is
// just draining that queue in order (spec.md §4.4, §4.5).
package client

import (
	"log"
	"sync"

	"github.com/open-collab/tablesync/internal/coordinator"
	"github.com/open-collab/tablesync/internal/model"
	"github.com/open-collab/tablesync/internal/update"
)

// Client is a single collaborating node.
type Client struct {
	mu sync.Mutex

	server  *coordinator.Coordinator
	mirror  *model.Table
	outbox  []update.Message
	version model.Version
	groupID model.GroupID
	online  bool
	logger  *log.Logger
}

// New constructs a client against server, beginning offline with an empty
// mirror, version 0, and a fresh group ID. If online is true the client
// immediately comes online (spec.md §4.4).
func New(server *coordinator.Coordinator, online bool, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	c := &Client{
		server:  server,
		mirror:  model.NewTable(),
		groupID: update.NewGroupID(),
		logger:  logger,
	}
	if online {
		c.ComeOnline()
	}
	return c
}

// ComeOnline registers with the server (which syncs this client, possibly
// rotating its group ID), then flushes every outbox message to the server
// in enqueued order and marks the client online.
func (c *Client) ComeOnline() {
	c.server.Connect(c) // synchronously invokes Sync, below

	c.mu.Lock()
	pending := c.outbox
	c.outbox = nil
	c.online = true
	c.mu.Unlock()

	for _, msg := range pending {
		c.server.Receive(msg)
	}
}

// GoOffline disconnects from the server. Any outbox messages wait for the
// next ComeOnline.
func (c *Client) GoOffline() {
	c.server.Disconnect(c)
	c.mu.Lock()
	c.online = false
	c.mu.Unlock()
}

// Online reports whether the client currently considers itself connected.
func (c *Client) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// Version returns the client's last-synced version.
func (c *Client) Version() model.Version {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// issue wraps u in a Message against the client's current baseline and
// group, then either sends it immediately (online) or enqueues it in the
// outbox (offline). The mirror is never mutated here — only on acceptance.
func (c *Client) issue(u update.Update) update.Message {
	c.mu.Lock()
	msg := update.Message{
		Version:   c.version,
		GroupID:   c.groupID,
		Update:    u,
		MessageID: update.NewMessageID(),
	}
	online := c.online
	if !online {
		c.outbox = append(c.outbox, msg)
	}
	c.mu.Unlock()

	if online {
		c.server.Receive(msg)
	}
	return msg
}

// CreateRow issues a CreateRow update.
func (c *Client) CreateRow(rowID model.RowID) {
	c.issue(&update.CreateRow{RowID: rowID})
}

// DestroyRow issues a DestroyRow update.
func (c *Client) DestroyRow(rowID model.RowID) {
	c.issue(&update.DestroyRow{RowID: rowID})
}

// MoveRow issues a MoveRow update.
func (c *Client) MoveRow(rowID model.RowID, targetIndex model.Index) {
	c.issue(&update.MoveRow{RowID: rowID, TargetIndex: targetIndex})
}

// CreateColumn issues a CreateColumn update.
func (c *Client) CreateColumn(colID model.ColumnID, ct model.CellType) {
	c.issue(&update.CreateColumn{ColumnID: colID, Type: ct})
}

// DestroyColumn issues a DestroyColumn update.
func (c *Client) DestroyColumn(colID model.ColumnID) {
	c.issue(&update.DestroyColumn{ColumnID: colID})
}

// UpdateColumnType issues an UpdateColumnType update.
func (c *Client) UpdateColumnType(colID model.ColumnID, ct model.CellType) {
	c.issue(&update.UpdateColumnType{ColumnID: colID, Type: ct})
}

// UpdateTextCellValue issues an UpdateTextCellValue update.
func (c *Client) UpdateTextCellValue(rowID model.RowID, colID model.ColumnID, value string) {
	c.issue(&update.UpdateTextCellValue{RowID: rowID, ColumnID: colID, Value: value})
}

// UpdateNumberCellValue issues an UpdateNumberCellValue update.
func (c *Client) UpdateNumberCellValue(rowID model.RowID, colID model.ColumnID, value float64) {
	c.issue(&update.UpdateNumberCellValue{RowID: rowID, ColumnID: colID, Value: value})
}

// Sync replaces the mirror with table. If version is strictly greater than
// the client's current version, the group ID rotates (a new baseline means
// a new dependency group). Called by the coordinator on Connect.
func (c *Client) Sync(table *model.Table, version model.Version) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mirror = table
	if version > c.version {
		c.groupID = update.NewGroupID()
	}
	c.version = version
}

// Accepted applies an accepted message's (already-transformed) update to
// the mirror and advances the client's version and group ID. The precondition
// msg.Version == c.version+1 is a protocol invariant: the coordinator
// assigns versions in the exact sequence it accepts messages, and broadcasts
// preserve that order per client (spec.md §5). A violation is a programming
// error in the transport or coordinator, not a recoverable merge conflict.
func (c *Client) Accepted(msg update.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg.Version != c.version+1 {
		panic(&ProtocolViolationError{Reason: "accepted message delivered out of order"})
	}
	if _, ok := msg.Update.Apply(c.mirror); !ok {
		panic(&ProtocolViolationError{Reason: "accepted update failed to apply to the client mirror"})
	}
	c.version = msg.Version
	c.groupID = update.NewGroupID()
}

// Rejected informs the client that messageID (in groupID) was rejected. The
// client never applied an unacknowledged edit to its mirror, so there is
// nothing to roll back; this exists purely to keep a host application
// informed (spec.md §9 open question, resolved as a no-op).
func (c *Client) Rejected(messageID model.MessageID, groupID model.GroupID) {
	c.logger.Printf("client: message %s (group %s) was rejected", messageID, groupID)
}

// GetData returns the materialized view: the mirror serialized directly
// when online, or a clone of the mirror with every outbox message replayed
// (best-effort; a failing apply is ignored, since it will also fail at the
// server) when offline.
func (c *Client) GetData() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.online {
		return c.mirror.Serialize()
	}
	clone := c.mirror.Clone()
	for _, msg := range c.outbox {
		_, _ = msg.Update.Apply(clone)
	}
	return clone.Serialize()
}
