package update

import (
	"testing"

	"github.com/open-collab/tablesync/internal/model"
)

func TestShiftContextTransform(t *testing.T) {
	ctx := NewShiftContext()
	ctx.DeleteAt(0)  // row originally at 0 is gone
	ctx.InsertAt(0)  // a new row was inserted at the front

	// An index that referred to position 2 pre-shift: delete(0) decrements
	// it to 1, then insert(0) increments it back to 2.
	got, ok := ctx.Transform(2)
	if !ok || got != 2 {
		t.Fatalf("expected transform(2) = 2, got %v ok=%v", got, ok)
	}

	// An index that referred to the deleted row is tombstoned.
	if _, ok := ctx.Transform(0); ok {
		t.Fatal("expected the deleted index to be tombstoned")
	}
}

func TestShiftContextMove(t *testing.T) {
	ctx := NewShiftContext()
	ctx.Move(1, 3)

	// Delete(1): idx 4 > 1 -> 3; Insert(3): idx 3 >= 3 -> 4.
	got, ok := ctx.Transform(4)
	if !ok || got != 4 {
		t.Fatalf("expected transform(4) = 4, got %v ok=%v", got, ok)
	}
}

func TestCreateRowApply(t *testing.T) {
	tbl := model.NewTable()
	u := &CreateRow{RowID: "ABC"}
	if _, ok := u.Apply(tbl); !ok {
		t.Fatal("expected apply to succeed")
	}
	if _, ok := u.Apply(tbl); ok {
		t.Fatal("expected duplicate create to fail")
	}
}

func TestDestroyRowShiftContribution(t *testing.T) {
	tbl := model.NewTable()
	tbl.CreateRow("A")
	tbl.CreateRow("B")

	u := &DestroyRow{RowID: "A"}
	outcome, ok := u.Apply(tbl)
	if !ok {
		t.Fatal("expected apply to succeed")
	}
	ctx := NewShiftContext()
	u.Shift(ctx, outcome)
	got, ok := ctx.Transform(1)
	if !ok || got != 0 {
		t.Fatalf("expected index 1 to shift down to 0, got %v ok=%v", got, ok)
	}
}

func TestMoveRowTombstonedTargetFails(t *testing.T) {
	ctx := NewShiftContext()
	ctx.DeleteAt(3)

	u := &MoveRow{RowID: "A", TargetIndex: 3}
	u.Transform(ctx)

	tbl := model.NewTable()
	tbl.CreateRow("A")
	if _, ok := u.Apply(tbl); ok {
		t.Fatal("expected apply to fail when the target index was tombstoned")
	}
}

func TestUpdateColumnTypeCoercionFailure(t *testing.T) {
	tbl := model.NewTable()
	tbl.CreateColumn("123", model.Text)
	tbl.CreateRow("ABC")
	tbl.SetCellValue("ABC", "123", "foo")

	u := &UpdateColumnType{ColumnID: "123", Type: model.Number}
	if _, ok := u.Apply(tbl); ok {
		t.Fatal("expected coercion of \"foo\" to Number to fail")
	}
	ct, _ := tbl.ColumnType("123")
	if ct != model.Text {
		t.Fatal("expected the table to be unchanged after a failed apply")
	}
}

func TestUpdateColumnTypeCoercionSuccess(t *testing.T) {
	tbl := model.NewTable()
	tbl.CreateColumn("456", model.Number)
	tbl.CreateRow("DEF")
	tbl.SetCellValue("DEF", "456", 2.0)

	u := &UpdateColumnType{ColumnID: "456", Type: model.Text}
	if _, ok := u.Apply(tbl); !ok {
		t.Fatal("expected apply to succeed")
	}
	v, _ := tbl.CellValue("DEF", "456")
	if v != "2" {
		t.Fatalf("expected coerced value \"2\", got %v", v)
	}
}

func TestUpdateTextCellValueWrongType(t *testing.T) {
	tbl := model.NewTable()
	tbl.CreateColumn("123", model.Number)
	tbl.CreateRow("ABC")

	u := &UpdateTextCellValue{RowID: "ABC", ColumnID: "123", Value: "foo"}
	if _, ok := u.Apply(tbl); ok {
		t.Fatal("expected apply to fail against a Number column")
	}
}
