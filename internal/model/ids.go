// Package model holds the value types and the shared Table model for the
// tablesync engine.
//
// What: Opaque identifiers, the closed CellType enumeration, and the Table
// container (columns, row order, per-row cell maps) plus the invariants that
// must hold on it.
// How: Identifiers are named string types so callers can't accidentally pass
// a ColumnID where a RowID is expected. Table storage favors plain Go maps
// and an ordered slice over a positional row array, since rows are addressed
// by identity rather than ordinal.
// Why: Keep the data model dependency-free and trivially cloneable; every
// other package (update, coordinator, client) builds on top of this one.
package model

// RowID uniquely identifies a row among a table's rows.
type RowID string

// ColumnID uniquely identifies a column among a table's columns.
type ColumnID string

// GroupID identifies a dependent group of messages authored against the
// same baseline.
type GroupID string

// MessageID uniquely identifies a message across the lifetime of a run.
type MessageID string

// Version is a non-negative, monotonically increasing counter assigned by
// the coordinator to every accepted update. Version 0 is the empty initial
// state.
type Version uint64

// Index is a non-negative row position within a table's row order.
type Index int
