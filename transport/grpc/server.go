package grpctransport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/open-collab/tablesync/internal/coordinator"
	"github.com/open-collab/tablesync/internal/model"
	"github.com/open-collab/tablesync/internal/update"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// Server adapts a *coordinator.Coordinator to TableSyncServer. One Server
// can back many concurrent Watch streams; each stream registers its own
// coordinator.ClientCallback for the duration of the call.
type Server struct {
	coord  *coordinator.Coordinator
	logger *log.Logger
}

// NewServer returns a Server serving coord.
func NewServer(coord *coordinator.Coordinator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{coord: coord, logger: logger}
}

// Connect returns the current snapshot without registering a live
// subscription; callers that need broadcasts use Watch instead. This
// mirrors a client that wants GetData-style state without coming online.
func (s *Server) Connect(ctx context.Context, req *ConnectRequest) (*SyncSnapshot, error) {
	snap := &snapshotCollector{}
	s.coord.Connect(snap)
	s.coord.Disconnect(snap)
	table, err := json.Marshal(snap.table)
	if err != nil {
		return nil, fmt.Errorf("grpctransport: marshaling snapshot: %w", err)
	}
	return &SyncSnapshot{Version: uint64(snap.version), Table: table}, nil
}

// Receive enqueues msg with the coordinator exactly as an in-process
// client.issue call would.
func (s *Server) Receive(ctx context.Context, wm *WireMessage) (*Ack, error) {
	msg, err := FromWireMessage(*wm)
	if err != nil {
		return nil, err
	}
	s.coord.Receive(msg)
	return &Ack{Queued: true}, nil
}

// Watch registers the calling client as a live coordinator.ClientCallback
// for the lifetime of the stream, forwarding each Sync/Accepted/Rejected
// call as a WireEvent in the order the coordinator produced it; an event
// that finds the relay's 64-event buffer full is dropped (see
// streamRelay). The stream
// ends when its context is canceled (client disconnect) or a send fails.
func (s *Server) Watch(req *ConnectRequest, stream grpc.ServerStream) error {
	events := make(chan WireEvent, 64)
	relay := &streamRelay{events: events, logger: s.logger, clientID: req.ClientID}
	s.coord.Connect(relay)
	defer s.coord.Disconnect(relay)

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if err := stream.SendMsg(ev); err != nil {
				s.logger.Printf("transport/grpc: watch send failed for %s: %v", req.ClientID, err)
				return err
			}
		}
	}
}

// streamRelay implements coordinator.ClientCallback by translating every
// callback into a WireEvent pushed onto a buffered channel a Watch stream
// drains. It never calls back into the coordinator, so it cannot deadlock
// against coordinator.Coordinator's mutex the way a full client would.
// Sends are non-blocking: the coordinator calls these methods while holding
// its own mutex (see coordinator.Coordinator.broadcastAccepted), so a slow
// or stalled stream must never block the send — a full buffer drops the
// event and logs instead.
type streamRelay struct {
	events   chan WireEvent
	logger   *log.Logger
	clientID string
}

func (r *streamRelay) send(ev WireEvent) {
	select {
	case r.events <- ev:
	default:
		r.logger.Printf("transport/grpc: watch buffer full for %s, dropping %s event", r.clientID, ev.Kind)
	}
}

func (r *streamRelay) Sync(table *model.Table, version model.Version) {
	raw, err := table.Serialize()
	if err != nil {
		return
	}
	r.send(WireEvent{Kind: "sync", Sync: &SyncSnapshot{Version: uint64(version), Table: json.RawMessage(raw)}})
}

func (r *streamRelay) Accepted(msg update.Message) {
	wm, err := ToWireMessage(msg)
	if err != nil {
		return
	}
	r.send(WireEvent{Kind: "accepted", Accepted: &wm})
}

func (r *streamRelay) Rejected(messageID model.MessageID, groupID model.GroupID) {
	r.send(WireEvent{Kind: "rejected", MessageID: string(messageID), GroupID: string(groupID)})
}

// snapshotCollector is a one-shot coordinator.ClientCallback used by
// Connect: it records the single Sync call the coordinator makes and
// ignores Accepted/Rejected, since Connect never stays registered long
// enough to receive them.
type snapshotCollector struct {
	table   *model.Table
	version model.Version
}

func (c *snapshotCollector) Sync(table *model.Table, version model.Version) {
	c.table = table
	c.version = version
}

func (c *snapshotCollector) Accepted(update.Message)               {}
func (c *snapshotCollector) Rejected(model.MessageID, model.GroupID) {}
