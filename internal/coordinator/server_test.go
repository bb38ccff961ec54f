package coordinator

import (
	"sync"
	"testing"
	"time"

	"github.com/open-collab/tablesync/internal/model"
	"github.com/open-collab/tablesync/internal/update"
)

// fakeClient records every callback the coordinator makes on it, for
// assertions about ordering and content without pulling in the client
// package (which itself depends on coordinator). Guarded by a mutex since
// the scheduled-drain test delivers callbacks from a cron goroutine.
type fakeClient struct {
	mu       sync.Mutex
	synced   []model.Version
	accepted []update.Message
	rejected []model.MessageID
}

func (f *fakeClient) Sync(table *model.Table, version model.Version) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append(f.synced, version)
}
func (f *fakeClient) Accepted(msg update.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accepted = append(f.accepted, msg)
}
func (f *fakeClient) Rejected(messageID model.MessageID, groupID model.GroupID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, messageID)
}
func (f *fakeClient) acceptedLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accepted)
}

func send(c *Coordinator, version model.Version, group model.GroupID, u update.Update) update.Message {
	msg := update.Message{Version: version, GroupID: group, Update: u, MessageID: update.NewMessageID()}
	c.Receive(msg)
	return msg
}

func TestCoordinatorAcceptsAndBroadcasts(t *testing.T) {
	c := New(0, nil)
	client := &fakeClient{}
	c.Connect(client)

	group := update.NewGroupID()
	send(c, 0, group, &update.CreateRow{RowID: "ABC"})

	if len(client.accepted) != 1 {
		t.Fatalf("expected 1 accepted broadcast, got %d", len(client.accepted))
	}
	if client.accepted[0].Version != 1 {
		t.Fatalf("expected version 1, got %v", client.accepted[0].Version)
	}
	if c.currentVersion() != 1 {
		t.Fatalf("expected currentVersion 1, got %v", c.currentVersion())
	}
	if err := c.table.CheckInvariants(); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}
}

func TestCoordinatorRejectsAndPoisonsGroup(t *testing.T) {
	c := New(0, nil)
	client := &fakeClient{}
	c.Connect(client)

	group := update.NewGroupID()
	// DestroyRow of a nonexistent row fails.
	send(c, 0, group, &update.DestroyRow{RowID: "nope"})
	if len(client.rejected) != 1 {
		t.Fatalf("expected 1 rejection, got %d", len(client.rejected))
	}
	if len(client.accepted) != 0 {
		t.Fatalf("expected 0 accepted, got %d", len(client.accepted))
	}

	// A second message in the same (now failed) group is silently dropped:
	// no broadcast at all.
	send(c, 0, group, &update.CreateRow{RowID: "ABC"})
	if len(client.rejected) != 1 || len(client.accepted) != 0 {
		t.Fatalf("expected the dependent message to be silently dropped, got accepted=%d rejected=%d",
			len(client.accepted), len(client.rejected))
	}
}

func TestCoordinatorConnectDeliversSnapshot(t *testing.T) {
	c := New(0, nil)
	first := &fakeClient{}
	c.Connect(first)
	send(c, 0, update.NewGroupID(), &update.CreateRow{RowID: "ABC"})

	second := &fakeClient{}
	c.Connect(second)
	if len(second.synced) != 1 || second.synced[0] != 1 {
		t.Fatalf("expected the new client to sync at version 1, got %v", second.synced)
	}
	if len(second.accepted) != 0 {
		t.Fatal("a freshly connected client should not replay history as accepted broadcasts")
	}
}

func TestCoordinatorMoveRowAcrossInterveningDelete(t *testing.T) {
	c := New(0, nil)
	a := &fakeClient{}
	c.Connect(a)

	for _, id := range []model.RowID{"A", "B", "C", "D", "E", "F"} {
		send(c, 0, update.NewGroupID(), &update.CreateRow{RowID: id})
	}
	baseline := c.currentVersion()

	// Two concurrent offline edits authored against the same baseline:
	// destroy "A" is processed first, then a move of "F" to index 3 that
	// must be transformed across that delete.
	send(c, baseline, update.NewGroupID(), &update.DestroyRow{RowID: "A"})
	send(c, baseline, update.NewGroupID(), &update.MoveRow{RowID: "F", TargetIndex: 3})

	if err := c.table.CheckInvariants(); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}
	want := []model.RowID{"B", "C", "F", "D", "E"}
	if c.table.RowCount() != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), c.table.RowCount())
	}
	for i, id := range want {
		if c.table.RowAt(model.Index(i)) != id {
			t.Fatalf("expected row order %v, got position %d = %v", want, i, c.table.RowAt(model.Index(i)))
		}
	}
}

func TestCoordinatorDelayedModeBatchesUntilTick(t *testing.T) {
	c := New(50*time.Millisecond, nil)
	client := &fakeClient{}
	c.Connect(client)
	if err := c.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer c.Stop()

	send(c, 0, update.NewGroupID(), &update.CreateRow{RowID: "ABC"})
	if client.acceptedLen() != 0 {
		t.Fatal("expected delayed mode not to process inline")
	}

	deadline := time.After(2 * time.Second)
	for client.acceptedLen() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the scheduled drain")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
