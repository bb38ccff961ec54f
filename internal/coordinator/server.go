// Package coordinator implements the authoritative server node (spec.md
// §4.3): it owns the table, totally orders incoming messages, rewrites
// stale row-index operations via shift contexts, rejects dependent updates
// by group ID, and broadcasts outcomes to every connected client.
//
// What: Connect/disconnect/receive/process, an append-only history, a
// monotone failed-group set.
// How: A single mutex serializes every receive→process step, matching
// spec.md §5's "each receive→process step is atomic" contract; broadcasts
// are delivered to each connected client in turn, synchronously, while that
// mutex is held.
// Why: The core's reference concurrency model is single-threaded
// cooperative (spec.md §5) — one mutex is the simplest way to honor that
// contract if an embedder nonetheless calls Receive from multiple
// goroutines.
package coordinator

import (
	"log"
	"sync"
	"time"

	"github.com/open-collab/tablesync/internal/model"
	"github.com/open-collab/tablesync/internal/update"
)

// ClientCallback is the set of outbound calls the coordinator makes on a
// connected client (spec.md §6): a full snapshot on connect, one call per
// accepted message, and one call per rejected message.
type ClientCallback interface {
	Sync(table *model.Table, version model.Version)
	Accepted(msg update.Message)
	Rejected(messageID model.MessageID, groupID model.GroupID)
}

type historyEntry struct {
	message update.Message
	outcome update.Outcome
}

// Coordinator is the authoritative server node.
type Coordinator struct {
	mu sync.Mutex

	table        *model.Table
	history      []historyEntry // index 0 unused, spec.md §3
	pending      []update.Message
	failedGroups map[model.GroupID]struct{}
	connected    map[ClientCallback]struct{}

	delay     time.Duration
	scheduler *scheduler
	logger    *log.Logger
}

// New returns a Coordinator with an empty table. delay of zero means
// immediate-processing mode: Receive drains the pending queue inline.
// A positive delay batches receives and drains them on that period instead
// (spec.md §5's scheduling knob); call Start to begin that background
// drain and Stop to halt it. The drain runs on a robfig/cron "@every"
// schedule, which rounds a period below one second up to one second and
// drops any fraction of a second from longer periods.
func New(delay time.Duration, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	c := &Coordinator{
		table:        model.NewTable(),
		history:      make([]historyEntry, 1),
		failedGroups: make(map[model.GroupID]struct{}),
		connected:    make(map[ClientCallback]struct{}),
		delay:        delay,
		logger:       logger,
	}
	c.scheduler = newScheduler(c, delay)
	return c
}

// Start begins the coordinator's background scheduling, if any was
// configured. Safe to call when delay is zero (no-op).
func (c *Coordinator) Start() error {
	return c.scheduler.start()
}

// Stop halts background scheduling. Safe to call at any time.
func (c *Coordinator) Stop() {
	c.scheduler.stop()
}

func (c *Coordinator) currentVersion() model.Version {
	return model.Version(len(c.history) - 1)
}

// Connect registers client as connected and delivers it a full snapshot of
// the authoritative table at the current version (spec.md §4.3). After this
// call the client is considered synced.
func (c *Coordinator) Connect(client ClientCallback) {
	c.mu.Lock()
	snapshot := c.table.Clone()
	version := c.currentVersion()
	c.connected[client] = struct{}{}
	c.mu.Unlock()

	client.Sync(snapshot, version)
}

// Disconnect removes client from the connected set. No other state changes.
func (c *Coordinator) Disconnect(client ClientCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.connected, client)
}

// Receive enqueues msg. In immediate-processing mode (delay == 0) it drains
// the queue before returning; otherwise the next scheduled tick drains it.
func (c *Coordinator) Receive(msg update.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, msg)
	if c.delay <= 0 {
		c.process()
	}
}

// process drains the pending queue to completion. Callers must hold c.mu.
func (c *Coordinator) process() {
	for len(c.pending) > 0 {
		msg := c.pending[0]
		c.pending = c.pending[1:]
		c.processOne(msg)
	}
}

func (c *Coordinator) processOne(msg update.Message) {
	if _, failed := c.failedGroups[msg.GroupID]; failed {
		// Dependent-group elision: a prior member of this group already
		// failed. No broadcast (spec.md §7 kind 2).
		c.logger.Printf("coordinator: dropping message %s of failed group %s", msg.MessageID, msg.GroupID)
		return
	}

	if msg.Update.NeedsTransform() {
		ctx := update.NewShiftContext()
		for v := msg.Version + 1; v <= c.currentVersion(); v++ {
			entry := c.history[v]
			entry.message.Update.Shift(ctx, entry.outcome)
		}
		msg.Update.Transform(ctx)
	}

	outcome, ok := msg.Update.Apply(c.table)
	if !ok {
		c.logger.Printf("coordinator: rejecting message %s (group %s)", msg.MessageID, msg.GroupID)
		c.failedGroups[msg.GroupID] = struct{}{}
		c.broadcastRejected(msg.MessageID, msg.GroupID)
		return
	}

	msg.Version = c.currentVersion() + 1
	c.history = append(c.history, historyEntry{message: msg, outcome: outcome})
	c.broadcastAccepted(msg)
}

func (c *Coordinator) broadcastAccepted(msg update.Message) {
	for client := range c.connected {
		client.Accepted(msg)
	}
}

func (c *Coordinator) broadcastRejected(messageID model.MessageID, groupID model.GroupID) {
	for client := range c.connected {
		client.Rejected(messageID, groupID)
	}
}
