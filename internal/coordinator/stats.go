package coordinator

import "github.com/open-collab/tablesync/internal/model"

// Stats is a point-in-time snapshot of coordinator health, in the spirit of
// the teacher's /api/status handler in cmd/server/main.go. It is not part
// of the client/server wire protocol — it exists for host applications to
// report liveness.
type Stats struct {
	ConnectedClients int
	CurrentVersion   model.Version
	FailedGroups     int
	PendingMessages  int
}

// Stats returns a snapshot of the coordinator's current state.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		ConnectedClients: len(c.connected),
		CurrentVersion:   c.currentVersion(),
		FailedGroups:     len(c.failedGroups),
		PendingMessages:  len(c.pending),
	}
}
