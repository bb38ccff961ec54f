// Package update implements the Update taxonomy (spec.md §4.2), the
// ShiftContext index-rewriting accumulator (spec.md §4.1), and the Message
// envelope (spec.md §3).
//
// What: A closed tagged union over the eight mutation operations a client
// can issue against a Table, each knowing how to transform its own carried
// indices under a ShiftContext, apply itself, and contribute to a
// downstream ShiftContext after a successful apply.
// How: Rather than mutating bookkeeping fields on the update in place (the
// source's pattern of DestroyRow.index / MoveRow.start+end set during apply
// and read during shift), Apply returns an Outcome value that the caller
// (the coordinator) threads through to Shift explicitly.
// Why: Each variant keeps its apply/transform/shift logic in one place.
// Update is an ordinary Go interface, so the compiler does not check that a
// type switch over it handles every variant.
package update

import "github.com/open-collab/tablesync/internal/model"

// shiftKind distinguishes the two record kinds a ShiftContext accumulates.
type shiftKind int

const (
	shiftInsert shiftKind = iota
	shiftDelete
)

type shiftRecord struct {
	kind shiftKind
	idx  model.Index
}

// ShiftContext accumulates inserts and deletes to a positional sequence
// across a span of accepted updates, so a stale index authored against an
// older baseline can be rewritten into the present (spec.md §4.1).
type ShiftContext struct {
	records []shiftRecord
}

// NewShiftContext returns an empty shift context.
func NewShiftContext() *ShiftContext {
	return &ShiftContext{}
}

// InsertAt records that a row was inserted at idx.
func (c *ShiftContext) InsertAt(idx model.Index) {
	c.records = append(c.records, shiftRecord{kind: shiftInsert, idx: idx})
}

// DeleteAt records that the row at idx was removed.
func (c *ShiftContext) DeleteAt(idx model.Index) {
	c.records = append(c.records, shiftRecord{kind: shiftDelete, idx: idx})
}

// Move records a row moving from start to end: a delete at start followed
// by an insert at end, in that order.
func (c *ShiftContext) Move(start, end model.Index) {
	c.DeleteAt(start)
	c.InsertAt(end)
}

// tombstoned is the placeholder index Transform returns alongside ok=false:
// the referent index no longer exists.
const tombstoned = model.Index(-1)

// Transform folds the accumulated records over idx in recording order.
// The second return value is false when idx was tombstoned by an
// intervening delete — any update whose essential index transforms to a
// tombstone must fail to apply.
func (c *ShiftContext) Transform(idx model.Index) (model.Index, bool) {
	for _, r := range c.records {
		switch r.kind {
		case shiftInsert:
			if idx >= r.idx {
				idx++
			}
		case shiftDelete:
			switch {
			case idx == r.idx:
				return tombstoned, false
			case idx > r.idx:
				idx--
			}
		}
	}
	return idx, true
}
