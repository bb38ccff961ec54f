package update

import "github.com/open-collab/tablesync/internal/model"

// Outcome carries the bookkeeping an update's Apply resolves that a later
// Shift call needs. It is returned by Apply and threaded through by the
// caller (the coordinator stores it alongside the message in its history
// slot) rather than mutated onto the update itself, per spec.md §9's
// re-architecture note. Its fields are unexported, so only a successful
// Apply in this package can fill them in; Shift given any other Outcome
// (such as the zero value) contributes nothing and does not report an
// error.
type Outcome struct {
	rowIndex    model.Index
	hasRowIndex bool
	start, end  model.Index
	hasMove     bool
}

// Update is the closed set of mutation operations a client can issue
// against a Table (spec.md §4.2). Every accepted variant implements apply
// atomically: Apply either fully mutates the table and returns
// (outcome, true), or leaves the table byte-identical and returns
// (Outcome{}, false).
type Update interface {
	// NeedsTransform reports whether this update carries indices whose
	// meaning depends on the baseline table and must be rewritten by a
	// ShiftContext before Apply.
	NeedsTransform() bool
	// Transform rewrites this update's carried indices in place via ctx.
	// No-op for updates that don't need it.
	Transform(ctx *ShiftContext)
	// Apply mutates t and reports success. On failure t is unchanged.
	Apply(t *model.Table) (Outcome, bool)
	// Shift appends this update's contribution to a downstream shift
	// context, given the Outcome its own Apply call returned.
	Shift(ctx *ShiftContext, outcome Outcome)
}

// CreateRow appends a new, empty row to the table.
type CreateRow struct {
	RowID model.RowID
}

func (u *CreateRow) NeedsTransform() bool         { return false }
func (u *CreateRow) Transform(ctx *ShiftContext)  {}
func (u *CreateRow) Shift(ctx *ShiftContext, _ Outcome) {}

func (u *CreateRow) Apply(t *model.Table) (Outcome, bool) {
	if !t.CreateRow(u.RowID) {
		return Outcome{}, false
	}
	return Outcome{}, true
}

// DestroyRow removes a row and its cells from the table.
type DestroyRow struct {
	RowID model.RowID
}

func (u *DestroyRow) NeedsTransform() bool        { return false }
func (u *DestroyRow) Transform(ctx *ShiftContext) {}

func (u *DestroyRow) Apply(t *model.Table) (Outcome, bool) {
	idx, ok := t.DestroyRow(u.RowID)
	if !ok {
		return Outcome{}, false
	}
	return Outcome{rowIndex: idx, hasRowIndex: true}, true
}

func (u *DestroyRow) Shift(ctx *ShiftContext, outcome Outcome) {
	if !outcome.hasRowIndex {
		return
	}
	ctx.DeleteAt(outcome.rowIndex)
}

// MoveRow relocates an existing row to targetIndex, measured against the
// row order after the row is removed.
type MoveRow struct {
	RowID       model.RowID
	TargetIndex model.Index

	transformFailed bool
}

func (u *MoveRow) NeedsTransform() bool { return true }

// Transform rewrites TargetIndex via ctx. If the target index was
// tombstoned by an intervening delete, the update is marked to fail at
// Apply time (spec.md §4.2 notes).
func (u *MoveRow) Transform(ctx *ShiftContext) {
	idx, ok := ctx.Transform(u.TargetIndex)
	if !ok {
		u.transformFailed = true
		return
	}
	u.TargetIndex = idx
}

func (u *MoveRow) Apply(t *model.Table) (Outcome, bool) {
	if u.transformFailed {
		return Outcome{}, false
	}
	start, end, ok := t.MoveRow(u.RowID, u.TargetIndex)
	if !ok {
		return Outcome{}, false
	}
	return Outcome{start: start, end: end, hasMove: true}, true
}

func (u *MoveRow) Shift(ctx *ShiftContext, outcome Outcome) {
	if !outcome.hasMove {
		return
	}
	ctx.Move(outcome.start, outcome.end)
}

// CreateColumn adds a new column of the given type.
type CreateColumn struct {
	ColumnID model.ColumnID
	Type     model.CellType
}

func (u *CreateColumn) NeedsTransform() bool        { return false }
func (u *CreateColumn) Transform(ctx *ShiftContext) {}
func (u *CreateColumn) Shift(ctx *ShiftContext, _ Outcome) {}

func (u *CreateColumn) Apply(t *model.Table) (Outcome, bool) {
	if !t.CreateColumn(u.ColumnID, u.Type) {
		return Outcome{}, false
	}
	return Outcome{}, true
}

// DestroyColumn removes a column and every row's cell under it.
type DestroyColumn struct {
	ColumnID model.ColumnID
}

func (u *DestroyColumn) NeedsTransform() bool        { return false }
func (u *DestroyColumn) Transform(ctx *ShiftContext) {}
func (u *DestroyColumn) Shift(ctx *ShiftContext, _ Outcome) {}

func (u *DestroyColumn) Apply(t *model.Table) (Outcome, bool) {
	if !t.DestroyColumn(u.ColumnID) {
		return Outcome{}, false
	}
	return Outcome{}, true
}

// UpdateColumnType retypes an existing column, re-coercing every row that
// currently has a value under it. Fails (merge conflict) if any such value
// can't be coerced into the new type.
type UpdateColumnType struct {
	ColumnID model.ColumnID
	Type     model.CellType
}

func (u *UpdateColumnType) NeedsTransform() bool        { return false }
func (u *UpdateColumnType) Transform(ctx *ShiftContext) {}
func (u *UpdateColumnType) Shift(ctx *ShiftContext, _ Outcome) {}

func (u *UpdateColumnType) Apply(t *model.Table) (Outcome, bool) {
	if !t.HasColumn(u.ColumnID) {
		return Outcome{}, false
	}
	rows := t.RowsWithColumn(u.ColumnID)
	coerced := make(map[model.RowID]any, len(rows))
	for _, rowID := range rows {
		v, _ := t.CellValue(rowID, u.ColumnID)
		canon, ok := u.Type.Coerce(v)
		if !ok {
			return Outcome{}, false
		}
		coerced[rowID] = canon
	}
	t.SetColumnType(u.ColumnID, u.Type)
	for rowID, v := range coerced {
		t.SetCellValue(rowID, u.ColumnID, v)
	}
	return Outcome{}, true
}

// UpdateTextCellValue assigns a string value to a Text-typed cell.
type UpdateTextCellValue struct {
	RowID    model.RowID
	ColumnID model.ColumnID
	Value    string
}

func (u *UpdateTextCellValue) NeedsTransform() bool        { return false }
func (u *UpdateTextCellValue) Transform(ctx *ShiftContext) {}
func (u *UpdateTextCellValue) Shift(ctx *ShiftContext, _ Outcome) {}

func (u *UpdateTextCellValue) Apply(t *model.Table) (Outcome, bool) {
	ct, ok := t.ColumnType(u.ColumnID)
	if !ok || ct != model.Text {
		return Outcome{}, false
	}
	if !t.HasRow(u.RowID) {
		return Outcome{}, false
	}
	t.SetCellValue(u.RowID, u.ColumnID, u.Value)
	return Outcome{}, true
}

// UpdateNumberCellValue assigns a float64 value to a Number-typed cell.
type UpdateNumberCellValue struct {
	RowID    model.RowID
	ColumnID model.ColumnID
	Value    float64
}

func (u *UpdateNumberCellValue) NeedsTransform() bool        { return false }
func (u *UpdateNumberCellValue) Transform(ctx *ShiftContext) {}
func (u *UpdateNumberCellValue) Shift(ctx *ShiftContext, _ Outcome) {}

func (u *UpdateNumberCellValue) Apply(t *model.Table) (Outcome, bool) {
	ct, ok := t.ColumnType(u.ColumnID)
	if !ok || ct != model.Number {
		return Outcome{}, false
	}
	if _, finite := model.Number.Coerce(u.Value); !finite {
		return Outcome{}, false
	}
	if !t.HasRow(u.RowID) {
		return Outcome{}, false
	}
	t.SetCellValue(u.RowID, u.ColumnID, u.Value)
	return Outcome{}, true
}
