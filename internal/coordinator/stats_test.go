package coordinator

import (
	"testing"

	"github.com/open-collab/tablesync/internal/model"
	"github.com/open-collab/tablesync/internal/update"
)

func TestCoordinatorStats(t *testing.T) {
	c := New(0, nil)
	a := &fakeClient{}
	b := &fakeClient{}
	c.Connect(a)
	c.Connect(b)

	send(c, 0, update.NewGroupID(), &update.CreateRow{RowID: "ABC"})
	group := update.NewGroupID()
	send(c, 0, group, &update.DestroyRow{RowID: "nope"})

	stats := c.Stats()
	if stats.ConnectedClients != 2 {
		t.Fatalf("expected 2 connected clients, got %d", stats.ConnectedClients)
	}
	if stats.CurrentVersion != model.Version(1) {
		t.Fatalf("expected current version 1, got %v", stats.CurrentVersion)
	}
	if stats.FailedGroups != 1 {
		t.Fatalf("expected 1 failed group, got %d", stats.FailedGroups)
	}
	if stats.PendingMessages != 0 {
		t.Fatalf("expected 0 pending messages in immediate mode, got %d", stats.PendingMessages)
	}

	c.Disconnect(a)
	if c.Stats().ConnectedClients != 1 {
		t.Fatal("expected disconnect to drop the connected count")
	}
}
