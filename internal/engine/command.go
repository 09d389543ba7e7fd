package engine

import (
	"log/slog"

	"github.com/boardkit/boardkit/internal/board"
)

type CommandKind string

const (
	KindCreate      CommandKind = "create"
	KindDelete      CommandKind = "delete"
	KindTransform   CommandKind = "transform"
	KindStyleChange CommandKind = "style"
	KindReorder     CommandKind = "reorder"
	KindTextEdit    CommandKind = "textEdit"
	KindBulkOp      CommandKind = "bulk"
)

// Command is an undoable unit of mutation. Apply and Revert both take a
// board snapshot and return a new one; a command is immutable once pushed
// to history. Applying Revert after Apply must restore the input board.
type Command interface {
	Kind() CommandKind
	Apply(b *board.Board) *board.Board
	Revert(b *board.Board) *board.Board
}

// applyOrKeep logs a stale-id failure and keeps the board unchanged.
func applyOrKeep(nb *board.Board, err error, kind CommandKind) *board.Board {
	if err != nil {
		slog.Debug("command hit stale object, skipping", "kind", kind, "error", err)
	}
	return nb
}

// CreateCommand inserts an object at a z-order index.
type CreateCommand struct {
	Object board.CanvasObject
	Index  int
}

func (c CreateCommand) Kind() CommandKind { return KindCreate }

func (c CreateCommand) Apply(b *board.Board) *board.Board {
	return InsertObject(b, c.Object.Clone(), c.Index)
}

func (c CreateCommand) Revert(b *board.Board) *board.Board {
	nb, err := RemoveObject(b, c.Object.ID)
	return applyOrKeep(nb, err, c.Kind())
}

// DeleteCommand removes one object, remembering it and its index so redo can
// keep working with the original id.
type DeleteCommand struct {
	Object board.CanvasObject
	Index  int
}

func (c DeleteCommand) Kind() CommandKind { return KindDelete }

func (c DeleteCommand) Apply(b *board.Board) *board.Board {
	nb, err := RemoveObject(b, c.Object.ID)
	return applyOrKeep(nb, err, c.Kind())
}

func (c DeleteCommand) Revert(b *board.Board) *board.Board {
	return InsertObject(b, c.Object.Clone(), c.Index)
}

// TransformCommand replaces an object's transform.
type TransformCommand struct {
	ID     string
	Before board.Transform
	After  board.Transform

	// Freehand paths carry their geometry in points, which a translate
	// gesture moves along with the transform.
	PointsBefore []board.Point
	PointsAfter  []board.Point
}

func (c TransformCommand) Kind() CommandKind { return KindTransform }

func (c TransformCommand) Apply(b *board.Board) *board.Board {
	t := c.After
	nb, err := UpdateObject(b, c.ID, ObjectPatch{Transform: &t, Points: c.PointsAfter})
	return applyOrKeep(nb, err, c.Kind())
}

func (c TransformCommand) Revert(b *board.Board) *board.Board {
	t := c.Before
	nb, err := UpdateObject(b, c.ID, ObjectPatch{Transform: &t, Points: c.PointsBefore})
	return applyOrKeep(nb, err, c.Kind())
}

// StyleCommand replaces an object's style.
type StyleCommand struct {
	ID     string
	Before board.Style
	After  board.Style
}

func (c StyleCommand) Kind() CommandKind { return KindStyleChange }

func (c StyleCommand) Apply(b *board.Board) *board.Board {
	s := c.After
	nb, err := UpdateObject(b, c.ID, ObjectPatch{Style: &s})
	return applyOrKeep(nb, err, c.Kind())
}

func (c StyleCommand) Revert(b *board.Board) *board.Board {
	s := c.Before
	nb, err := UpdateObject(b, c.ID, ObjectPatch{Style: &s})
	return applyOrKeep(nb, err, c.Kind())
}

// ReorderCommand moves an object within the z-order.
type ReorderCommand struct {
	ID       string
	OldIndex int
	NewIndex int
}

func (c ReorderCommand) Kind() CommandKind { return KindReorder }

func (c ReorderCommand) Apply(b *board.Board) *board.Board {
	nb, err := Reorder(b, c.ID, c.NewIndex)
	return applyOrKeep(nb, err, c.Kind())
}

func (c ReorderCommand) Revert(b *board.Board) *board.Board {
	nb, err := Reorder(b, c.ID, c.OldIndex)
	return applyOrKeep(nb, err, c.Kind())
}

// TextEditCommand replaces a text block's attributes.
type TextEditCommand struct {
	ID     string
	Before board.TextAttrs
	After  board.TextAttrs
}

func (c TextEditCommand) Kind() CommandKind { return KindTextEdit }

func (c TextEditCommand) Apply(b *board.Board) *board.Board {
	t := c.After
	nb, err := UpdateObject(b, c.ID, ObjectPatch{Text: &t})
	return applyOrKeep(nb, err, c.Kind())
}

func (c TextEditCommand) Revert(b *board.Board) *board.Board {
	t := c.Before
	nb, err := UpdateObject(b, c.ID, ObjectPatch{Text: &t})
	return applyOrKeep(nb, err, c.Kind())
}

// BulkCommand groups several commands into one history entry, e.g. deleting
// a multi-object selection or dragging it as a unit.
type BulkCommand struct {
	Commands []Command
}

func (c BulkCommand) Kind() CommandKind { return KindBulkOp }

func (c BulkCommand) Apply(b *board.Board) *board.Board {
	for _, sub := range c.Commands {
		b = sub.Apply(b)
	}
	return b
}

func (c BulkCommand) Revert(b *board.Board) *board.Board {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		b = c.Commands[i].Revert(b)
	}
	return b
}
