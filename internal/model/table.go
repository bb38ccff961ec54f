package model

import "encoding/json"

// Table is the shared data container: an ordered set of typed columns, an
// authoritative row order, and per-row cell values.
//
// Zero value is not usable; construct with NewTable.
type Table struct {
	columnOrder []ColumnID
	columns     map[ColumnID]CellType
	rowOrder    []RowID
	cells       map[RowID]map[ColumnID]any
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		columns: make(map[ColumnID]CellType),
		cells:   make(map[RowID]map[ColumnID]any),
	}
}

// HasRow reports whether rowID is present in the row order.
func (t *Table) HasRow(rowID RowID) bool {
	_, ok := t.cells[rowID]
	return ok
}

// HasColumn reports whether colID is a known column.
func (t *Table) HasColumn(colID ColumnID) bool {
	_, ok := t.columns[colID]
	return ok
}

// ColumnType returns the CellType of colID and whether it exists.
func (t *Table) ColumnType(colID ColumnID) (CellType, bool) {
	ct, ok := t.columns[colID]
	return ct, ok
}

// RowIndex returns the current position of rowID in the row order, or
// (-1, false) if the row is not present.
func (t *Table) RowIndex(rowID RowID) (Index, bool) {
	for i, id := range t.rowOrder {
		if id == rowID {
			return Index(i), true
		}
	}
	return -1, false
}

// RowCount returns the number of rows currently in the table.
func (t *Table) RowCount() int {
	return len(t.rowOrder)
}

// RowAt returns the RowID at position idx in the row order.
func (t *Table) RowAt(idx Index) RowID {
	return t.rowOrder[idx]
}

// CreateRow inserts a new empty row at the end of the row order. Returns
// false if rowID already exists.
func (t *Table) CreateRow(rowID RowID) bool {
	if t.HasRow(rowID) {
		return false
	}
	t.rowOrder = append(t.rowOrder, rowID)
	t.cells[rowID] = make(map[ColumnID]any)
	return true
}

// DestroyRow removes rowID from the row order and deletes its cells.
// Returns the index the row occupied and true on success.
func (t *Table) DestroyRow(rowID RowID) (Index, bool) {
	idx, ok := t.RowIndex(rowID)
	if !ok {
		return -1, false
	}
	t.rowOrder = append(t.rowOrder[:idx], t.rowOrder[idx+1:]...)
	delete(t.cells, rowID)
	return idx, true
}

// MoveRow removes rowID from its current position and reinserts it at
// targetIndex (measured against the row order after removal). Returns the
// (start, end) positions and true on success.
func (t *Table) MoveRow(rowID RowID, targetIndex Index) (Index, Index, bool) {
	start, ok := t.RowIndex(rowID)
	if !ok {
		return -1, -1, false
	}
	remaining := append(t.rowOrder[:start:start], t.rowOrder[start+1:]...)
	if targetIndex < 0 || int(targetIndex) > len(remaining) {
		return -1, -1, false
	}
	out := make([]RowID, 0, len(remaining)+1)
	out = append(out, remaining[:targetIndex]...)
	out = append(out, rowID)
	out = append(out, remaining[targetIndex:]...)
	t.rowOrder = out
	return start, targetIndex, true
}

// CreateColumn adds a new column with the given type. Returns false if the
// column already exists.
func (t *Table) CreateColumn(colID ColumnID, ct CellType) bool {
	if t.HasColumn(colID) {
		return false
	}
	t.columns[colID] = ct
	t.columnOrder = append(t.columnOrder, colID)
	return true
}

// DestroyColumn removes a column and every row's cell under it. Returns
// false if the column doesn't exist.
func (t *Table) DestroyColumn(colID ColumnID) bool {
	if !t.HasColumn(colID) {
		return false
	}
	delete(t.columns, colID)
	for i, id := range t.columnOrder {
		if id == colID {
			t.columnOrder = append(t.columnOrder[:i], t.columnOrder[i+1:]...)
			break
		}
	}
	for _, row := range t.cells {
		delete(row, colID)
	}
	return true
}

// SetColumnType overwrites a column's CellType in place, preserving its
// position in column order. Returns false if the column doesn't exist.
func (t *Table) SetColumnType(colID ColumnID, ct CellType) bool {
	if !t.HasColumn(colID) {
		return false
	}
	t.columns[colID] = ct
	return true
}

// CellValue returns the stored value of rowID/colID and whether one is set.
func (t *Table) CellValue(rowID RowID, colID ColumnID) (any, bool) {
	row, ok := t.cells[rowID]
	if !ok {
		return nil, false
	}
	v, ok := row[colID]
	return v, ok
}

// SetCellValue stores v under rowID/colID. Returns false if rowID doesn't
// exist (the caller is expected to have already validated the column).
func (t *Table) SetCellValue(rowID RowID, colID ColumnID, v any) bool {
	row, ok := t.cells[rowID]
	if !ok {
		return false
	}
	row[colID] = v
	return true
}

// RowsWithColumn returns the RowIDs (in row order) that currently have a
// stored value under colID.
func (t *Table) RowsWithColumn(colID ColumnID) []RowID {
	var out []RowID
	for _, rowID := range t.rowOrder {
		if _, ok := t.cells[rowID][colID]; ok {
			out = append(out, rowID)
		}
	}
	return out
}

// Clone returns a deep, independent copy of the table.
func (t *Table) Clone() *Table {
	clone := &Table{
		columnOrder: append([]ColumnID(nil), t.columnOrder...),
		columns:     make(map[ColumnID]CellType, len(t.columns)),
		rowOrder:    append([]RowID(nil), t.rowOrder...),
		cells:       make(map[RowID]map[ColumnID]any, len(t.cells)),
	}
	for id, ct := range t.columns {
		clone.columns[id] = ct
	}
	for rowID, row := range t.cells {
		cp := make(map[ColumnID]any, len(row))
		for colID, v := range row {
			cp[colID] = v
		}
		clone.cells[rowID] = cp
	}
	return clone
}

// wireColumn and wireRow mirror the exact JSON shape contracted by spec.md §6.
type wireColumn struct {
	ID   ColumnID `json:"id"`
	Type string   `json:"type"`
}

type wireRow struct {
	ID                   RowID          `json:"id"`
	CellValuesByColumnID map[string]any `json:"cellValuesByColumnId"`
}

type wireTable struct {
	Columns []wireColumn `json:"columns"`
	Rows    []wireRow    `json:"rows"`
}

// MarshalJSON serializes the table to the exact wire shape spec.md §6
// contracts: columns in insertion order, rows in row order, and only the
// cells that have been assigned.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := wireTable{
		Columns: make([]wireColumn, 0, len(t.columnOrder)),
		Rows:    make([]wireRow, 0, len(t.rowOrder)),
	}
	for _, colID := range t.columnOrder {
		out.Columns = append(out.Columns, wireColumn{ID: colID, Type: t.columns[colID].String()})
	}
	for _, rowID := range t.rowOrder {
		values := make(map[string]any, len(t.cells[rowID]))
		for colID, v := range t.cells[rowID] {
			values[string(colID)] = v
		}
		out.Rows = append(out.Rows, wireRow{ID: rowID, CellValuesByColumnID: values})
	}
	return json.Marshal(out)
}

// Serialize returns the getData wire representation as a JSON string.
func (t *Table) Serialize() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckInvariants validates the three table invariants from spec.md §3. It
// exists for tests and for defensive assertions; the coordinator does not
// call it on every apply (that would defeat the point of returning bool from
// apply), but test suites should run it after every accepted update.
func (t *Table) CheckInvariants() error {
	seen := make(map[RowID]struct{}, len(t.rowOrder))
	for _, rowID := range t.rowOrder {
		if _, dup := seen[rowID]; dup {
			return errDuplicateRow(rowID)
		}
		seen[rowID] = struct{}{}
		if _, ok := t.cells[rowID]; !ok {
			return errMissingCells(rowID)
		}
	}
	if len(seen) != len(t.cells) {
		return errOrphanCells()
	}
	for rowID, row := range t.cells {
		for colID, v := range row {
			ct, ok := t.columns[colID]
			if !ok {
				return errCellWithoutColumn(rowID, colID)
			}
			canon, ok := ct.Coerce(v)
			if !ok || canon != v {
				return errUncanonicalCell(rowID, colID)
			}
		}
	}
	return nil
}
