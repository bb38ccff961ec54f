package model

import "fmt"

func errDuplicateRow(rowID RowID) error {
	return fmt.Errorf("model: duplicate row %q in row order", rowID)
}

func errMissingCells(rowID RowID) error {
	return fmt.Errorf("model: row %q in row order has no cell map", rowID)
}

func errOrphanCells() error {
	return fmt.Errorf("model: cells map has entries absent from row order")
}

func errCellWithoutColumn(rowID RowID, colID ColumnID) error {
	return fmt.Errorf("model: row %q has a value under unknown column %q", rowID, colID)
}

func errUncanonicalCell(rowID RowID, colID ColumnID) error {
	return fmt.Errorf("model: row %q column %q holds a non-canonical value", rowID, colID)
}
