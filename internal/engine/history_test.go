package engine

import (
	"reflect"
	"testing"

	"github.com/boardkit/boardkit/internal/board"
)

func rectObject(id string, x, y float64) board.CanvasObject {
	return board.CanvasObject{
		ID:        id,
		Type:      board.ObjectTypeRectangle,
		Transform: board.Transform{X: x, Y: y, Width: 100, Height: 100},
		Style:     board.Style{FillColor: "#ff0000", Opacity: 1},
		Visible:   true,
	}
}

func testBoard(objs ...board.CanvasObject) *board.Board {
	b := board.NewEmptyBoard("")
	b.Objects = append(b.Objects, objs...)
	return b
}

// boardShape strips the volatile updatedAt stamp so snapshots compare on
// content alone.
func boardShape(b *board.Board) *board.Board {
	c := b.Clone()
	c.UpdatedAt = ""
	return c
}

func TestUndoRedoRoundTrip(t *testing.T) {
	h := NewHistory(0)
	b := testBoard()
	initial := boardShape(b)

	cmds := []Command{
		CreateCommand{Object: rectObject("obj_a", 0, 0), Index: 0},
		CreateCommand{Object: rectObject("obj_b", 50, 50), Index: 1},
		TransformCommand{
			ID:     "obj_a",
			Before: board.Transform{X: 0, Y: 0, Width: 100, Height: 100},
			After:  board.Transform{X: 30, Y: 40, Width: 100, Height: 100},
		},
		StyleCommand{
			ID:     "obj_b",
			Before: board.Style{FillColor: "#ff0000", Opacity: 1},
			After:  board.Style{FillColor: "#00ff00", Opacity: 0.5},
		},
	}
	for _, c := range cmds {
		b = h.Push(b, c)
	}
	final := boardShape(b)

	for range cmds {
		b = h.Undo(b)
	}
	if !reflect.DeepEqual(boardShape(b), initial) {
		t.Errorf("undoing everything should restore the initial board:\n got %+v\nwant %+v", boardShape(b), initial)
	}
	if h.CanUndo() {
		t.Error("undo stack should be empty")
	}

	for range cmds {
		b = h.Redo(b)
	}
	if !reflect.DeepEqual(boardShape(b), final) {
		t.Errorf("redoing everything should restore the final board:\n got %+v\nwant %+v", boardShape(b), final)
	}
	if h.CanRedo() {
		t.Error("redo stack should be empty")
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := NewHistory(0)
	b := testBoard()

	b = h.Push(b, CreateCommand{Object: rectObject("obj_a", 0, 0), Index: 0})
	b = h.Push(b, CreateCommand{Object: rectObject("obj_b", 10, 10), Index: 1})
	b = h.Undo(b)
	if !h.CanRedo() {
		t.Fatal("expected a redo entry after undo")
	}

	b = h.Push(b, CreateCommand{Object: rectObject("obj_c", 20, 20), Index: 1})
	if h.CanRedo() {
		t.Error("push must discard the redo branch")
	}
	if got := b.IndexOf("obj_b"); got != -1 {
		t.Errorf("obj_b should stay undone, found at index %d", got)
	}
	if b.IndexOf("obj_c") < 0 {
		t.Error("obj_c missing after push")
	}
}

func TestUndoRedoEmptyStacksAreNoops(t *testing.T) {
	h := NewHistory(0)
	b := testBoard(rectObject("obj_a", 0, 0))

	if got := h.Undo(b); got != b {
		t.Error("undo on empty stack should return the same board")
	}
	if got := h.Redo(b); got != b {
		t.Error("redo on empty stack should return the same board")
	}
}

func TestDepthCapEvictsOldest(t *testing.T) {
	h := NewHistory(2)
	b := testBoard()

	b = h.Push(b, CreateCommand{Object: rectObject("obj_a", 0, 0), Index: 0})
	b = h.Push(b, CreateCommand{Object: rectObject("obj_b", 10, 10), Index: 1})
	b = h.Push(b, CreateCommand{Object: rectObject("obj_c", 20, 20), Index: 2})

	if h.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", h.Depth())
	}

	b = h.Undo(b)
	b = h.Undo(b)
	if h.CanUndo() {
		t.Error("only two entries should have been undoable")
	}
	// The evicted oldest entry stays applied.
	if b.IndexOf("obj_a") < 0 {
		t.Error("evicted entry should remain applied")
	}
	if b.IndexOf("obj_b") != -1 || b.IndexOf("obj_c") != -1 {
		t.Error("capped entries should have been reverted")
	}
}

func TestBulkCommandRevertsInReverse(t *testing.T) {
	h := NewHistory(0)
	b := testBoard(rectObject("obj_a", 0, 0), rectObject("obj_b", 10, 10), rectObject("obj_c", 20, 20))

	// Delete top-down, as DeleteSelection builds it.
	b = h.Push(b, BulkCommand{Commands: []Command{
		DeleteCommand{Object: b.Objects[2].Clone(), Index: 2},
		DeleteCommand{Object: b.Objects[0].Clone(), Index: 0},
	}})
	if len(b.Objects) != 1 || b.Objects[0].ID != "obj_b" {
		t.Fatalf("unexpected objects after bulk delete: %+v", b.Objects)
	}

	b = h.Undo(b)
	want := []string{"obj_a", "obj_b", "obj_c"}
	got := make([]string, len(b.Objects))
	for i, o := range b.Objects {
		got[i] = o.ID
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("bulk revert z-order = %v, want %v", got, want)
	}
}

func TestClearDropsBothStacks(t *testing.T) {
	h := NewHistory(0)
	b := testBoard()
	b = h.Push(b, CreateCommand{Object: rectObject("obj_a", 0, 0), Index: 0})
	h.Undo(b)

	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("clear should drop both stacks")
	}
}
