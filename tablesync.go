// Package tablesync is the root facade over the coordinator/client
// collaboration engine, the same role the teacher's tinysql.go plays over
// internal/engine and internal/storage: a small, stable surface that wires
// the internal packages together for callers who don't need their
// internals.
package tablesync

import (
	"log"
	"time"

	"github.com/open-collab/tablesync/internal/client"
	"github.com/open-collab/tablesync/internal/coordinator"
	"github.com/open-collab/tablesync/internal/model"
)

// A Coordinator totally orders updates from its connected Clients and
// maintains the canonical Table. See internal/coordinator for the
// implementation; this type alias keeps the public API in one package.
type Coordinator = coordinator.Coordinator

// A Client issues updates against a Coordinator and maintains a mirror of
// its view of the table, online or offline. See internal/client.
type Client = client.Client

// CellType identifies a column's value domain.
type CellType = model.CellType

const (
	Text   = model.Text
	Number = model.Number
)

// NewCoordinator returns a Coordinator that either applies every received
// message immediately (delay <= 0) or batches messages and drains them
// every delay, per spec.md §4.3's two processing modes. A nil logger
// defaults to log.Default().
func NewCoordinator(delay time.Duration, logger *log.Logger) *Coordinator {
	return coordinator.New(delay, logger)
}

// NewClient returns a Client attached to server. If online is true the
// client connects immediately and receives a full Sync snapshot before
// NewClient returns.
func NewClient(server *Coordinator, online bool, logger *log.Logger) *Client {
	return client.New(server, online, logger)
}

// NewTable returns an empty table with no columns or rows, suitable for
// tests. A Coordinator always starts from its own empty table; none of
// the constructors accepts a table to seed it with.
func NewTable() *model.Table {
	return model.NewTable()
}
