// Package grpctransport is an optional, additive gRPC binding of the
// coordinator/client API onto the wire. Neither internal/coordinator nor
// internal/client imports this package — spec.md §1 treats transport as an
// external collaborator, and §6 explicitly allows an implementation to add
// one on top as long as it preserves the total-order and
// at-most-once-broadcast-per-client contracts.
//
// What: Connect, Receive, and a server-streaming Watch carrying the three
// broadcast callbacks (Sync/Accepted/Rejected) as tagged JSON events.
// How: A hand-rolled grpc.ServiceDesc and a JSON wire codec — no protobuf —
// copied technique-for-technique from the teacher's cmd/server/main.go
// (jsonCodec, registerTinySQLServer, the _Handler functions).
// Why: Demonstrates one faithful way to distribute the in-process API
// without inventing a second protocol; every received message still goes
// through the same coordinator.Receive call the in-process client uses, and
// every broadcast is the coordinator's own Sync/Accepted/Rejected callback
// relayed as an event. This package provides the server side only.
package grpctransport

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"

	"github.com/open-collab/tablesync/internal/model"
	"github.com/open-collab/tablesync/internal/update"
)

// jsonCodec replaces gRPC's default protobuf codec with plain JSON, the
// same substitution the teacher registers in cmd/server/main.go.
type jsonCodec struct{}

func (jsonCodec) Name() string                      { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// ConnectRequest identifies the connecting client. Transport-level only;
// the coordinator itself identifies clients by ClientCallback identity.
type ConnectRequest struct {
	ClientID string `json:"client_id"`
}

// SyncSnapshot is the wire form of a coordinator.ClientCallback.Sync call.
type SyncSnapshot struct {
	Version uint64          `json:"version"`
	Table   json.RawMessage `json:"table"`
}

// Ack acknowledges a Receive call; it carries no application meaning
// (acceptance/rejection of the message itself arrives over Watch), whether
// the coordinator processed the message inside the Receive call
// (immediate-processing mode) or will on its next scheduled drain.
type Ack struct {
	Queued bool `json:"queued"`
}

// WireUpdate is the tagged-JSON envelope for the eight update.Update
// variants, since update.Update is a closed interface rather than a single
// concrete type gRPC's JSON codec can marshal directly.
type WireUpdate struct {
	Kind        string  `json:"kind"`
	RowID       string  `json:"row_id,omitempty"`
	ColumnID    string  `json:"column_id,omitempty"`
	TargetIndex int     `json:"target_index,omitempty"`
	CellType    string  `json:"cell_type,omitempty"`
	TextValue   string  `json:"text_value,omitempty"`
	NumberValue float64 `json:"number_value,omitempty"`
}

// WireMessage is the wire form of update.Message.
type WireMessage struct {
	Version   uint64     `json:"version"`
	GroupID   string     `json:"group_id"`
	MessageID string     `json:"message_id"`
	Update    WireUpdate `json:"update"`
}

// WireEvent is the tagged envelope for the three broadcast callbacks,
// delivered over the Watch server-stream in the exact order the
// coordinator produced them.
type WireEvent struct {
	Kind      string       `json:"kind"` // "sync" | "accepted" | "rejected"
	Sync      *SyncSnapshot `json:"sync,omitempty"`
	Accepted  *WireMessage  `json:"accepted,omitempty"`
	MessageID string        `json:"message_id,omitempty"`
	GroupID   string        `json:"group_id,omitempty"`
}

// EncodeUpdate converts u into its wire envelope.
func EncodeUpdate(u update.Update) (WireUpdate, error) {
	switch v := u.(type) {
	case *update.CreateRow:
		return WireUpdate{Kind: "create_row", RowID: string(v.RowID)}, nil
	case *update.DestroyRow:
		return WireUpdate{Kind: "destroy_row", RowID: string(v.RowID)}, nil
	case *update.MoveRow:
		return WireUpdate{Kind: "move_row", RowID: string(v.RowID), TargetIndex: int(v.TargetIndex)}, nil
	case *update.CreateColumn:
		return WireUpdate{Kind: "create_column", ColumnID: string(v.ColumnID), CellType: v.Type.String()}, nil
	case *update.DestroyColumn:
		return WireUpdate{Kind: "destroy_column", ColumnID: string(v.ColumnID)}, nil
	case *update.UpdateColumnType:
		return WireUpdate{Kind: "update_column_type", ColumnID: string(v.ColumnID), CellType: v.Type.String()}, nil
	case *update.UpdateTextCellValue:
		return WireUpdate{Kind: "update_text_cell_value", RowID: string(v.RowID), ColumnID: string(v.ColumnID), TextValue: v.Value}, nil
	case *update.UpdateNumberCellValue:
		return WireUpdate{Kind: "update_number_cell_value", RowID: string(v.RowID), ColumnID: string(v.ColumnID), NumberValue: v.Value}, nil
	default:
		return WireUpdate{}, fmt.Errorf("grpctransport: unknown update type %T", u)
	}
}

// DecodeUpdate reconstructs an update.Update from its wire envelope.
func DecodeUpdate(w WireUpdate) (update.Update, error) {
	switch w.Kind {
	case "create_row":
		return &update.CreateRow{RowID: model.RowID(w.RowID)}, nil
	case "destroy_row":
		return &update.DestroyRow{RowID: model.RowID(w.RowID)}, nil
	case "move_row":
		return &update.MoveRow{RowID: model.RowID(w.RowID), TargetIndex: model.Index(w.TargetIndex)}, nil
	case "create_column":
		ct, err := cellTypeFromString(w.CellType)
		if err != nil {
			return nil, err
		}
		return &update.CreateColumn{ColumnID: model.ColumnID(w.ColumnID), Type: ct}, nil
	case "destroy_column":
		return &update.DestroyColumn{ColumnID: model.ColumnID(w.ColumnID)}, nil
	case "update_column_type":
		ct, err := cellTypeFromString(w.CellType)
		if err != nil {
			return nil, err
		}
		return &update.UpdateColumnType{ColumnID: model.ColumnID(w.ColumnID), Type: ct}, nil
	case "update_text_cell_value":
		return &update.UpdateTextCellValue{RowID: model.RowID(w.RowID), ColumnID: model.ColumnID(w.ColumnID), Value: w.TextValue}, nil
	case "update_number_cell_value":
		return &update.UpdateNumberCellValue{RowID: model.RowID(w.RowID), ColumnID: model.ColumnID(w.ColumnID), Value: w.NumberValue}, nil
	default:
		return nil, fmt.Errorf("grpctransport: unknown wire update kind %q", w.Kind)
	}
}

func cellTypeFromString(s string) (model.CellType, error) {
	switch s {
	case "text":
		return model.Text, nil
	case "number":
		return model.Number, nil
	default:
		return 0, fmt.Errorf("grpctransport: unknown cell type %q", s)
	}
}

// ToWireMessage converts msg into its wire form.
func ToWireMessage(msg update.Message) (WireMessage, error) {
	wu, err := EncodeUpdate(msg.Update)
	if err != nil {
		return WireMessage{}, err
	}
	return WireMessage{
		Version:   uint64(msg.Version),
		GroupID:   string(msg.GroupID),
		MessageID: string(msg.MessageID),
		Update:    wu,
	}, nil
}

// FromWireMessage reconstructs an update.Message from its wire form.
func FromWireMessage(wm WireMessage) (update.Message, error) {
	u, err := DecodeUpdate(wm.Update)
	if err != nil {
		return update.Message{}, err
	}
	return update.Message{
		Version:   model.Version(wm.Version),
		GroupID:   model.GroupID(wm.GroupID),
		Update:    u,
		MessageID: model.MessageID(wm.MessageID),
	}, nil
}

// TableSyncServer is the RPC surface a coordinator-backed gRPC server
// implements.
type TableSyncServer interface {
	Connect(ctx context.Context, req *ConnectRequest) (*SyncSnapshot, error)
	Receive(ctx context.Context, msg *WireMessage) (*Ack, error)
	Watch(req *ConnectRequest, stream grpc.ServerStream) error
}

// RegisterTableSyncServer wires srv into s using a manual ServiceDesc, the
// same no-protobuf technique the teacher uses for TinySQLServer in
// cmd/server/main.go.
func RegisterTableSyncServer(s *grpc.Server, srv TableSyncServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "tablesync.TableSync",
		HandlerType: (*TableSyncServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Connect", Handler: connectHandler},
			{MethodName: "Receive", Handler: receiveHandler},
		},
		Streams: []grpc.StreamDesc{
			{StreamName: "Watch", Handler: watchHandler, ServerStreams: true},
		},
		Metadata: "tablesync",
	}, srv)
}

func connectHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ConnectRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TableSyncServer).Connect(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tablesync.TableSync/Connect"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TableSyncServer).Connect(ctx, req.(*ConnectRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func receiveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(WireMessage)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TableSyncServer).Receive(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tablesync.TableSync/Receive"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TableSyncServer).Receive(ctx, req.(*WireMessage))
	}
	return interceptor(ctx, in, info, handler)
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	req := new(ConnectRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(TableSyncServer).Watch(req, stream)
}
