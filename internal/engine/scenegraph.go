package engine

import (
	"errors"
	"fmt"
	"iter"

	"github.com/boardkit/boardkit/internal/board"
)

// ErrObjectNotFound is returned when a mutation references a stale object id.
// Callers treat it as a logged no-op, never as a fatal condition.
var ErrObjectNotFound = errors.New("object not found")

// ObjectPatch describes a partial update to an object. Nil fields are left
// untouched.
type ObjectPatch struct {
	Transform *board.Transform
	Style     *board.Style
	Visible   *bool
	Locked    *bool
	Text      *board.TextAttrs
	Points    []board.Point
}

// AddObject returns a new board snapshot with the object appended at the top
// of the z-order.
func AddObject(b *board.Board, obj board.CanvasObject) *board.Board {
	return InsertObject(b, obj, len(b.Objects))
}

// InsertObject returns a new board snapshot with the object inserted at the
// given z-order index, clamped to the valid range.
func InsertObject(b *board.Board, obj board.CanvasObject, index int) *board.Board {
	if index < 0 {
		index = 0
	}
	if index > len(b.Objects) {
		index = len(b.Objects)
	}

	nb := b.Clone()
	nb.Objects = append(nb.Objects[:index], append([]board.CanvasObject{obj}, nb.Objects[index:]...)...)
	nb.Touch()
	return nb
}

// RemoveObject returns a new board snapshot without the given object.
func RemoveObject(b *board.Board, id string) (*board.Board, error) {
	i := b.IndexOf(id)
	if i < 0 {
		return b, fmt.Errorf("remove %s: %w", id, ErrObjectNotFound)
	}

	nb := b.Clone()
	nb.Objects = append(nb.Objects[:i], nb.Objects[i+1:]...)
	nb.Touch()
	return nb, nil
}

// UpdateObject returns a new board snapshot with the patch applied to the
// given object.
func UpdateObject(b *board.Board, id string, patch ObjectPatch) (*board.Board, error) {
	i := b.IndexOf(id)
	if i < 0 {
		return b, fmt.Errorf("update %s: %w", id, ErrObjectNotFound)
	}

	nb := b.Clone()
	obj := &nb.Objects[i]
	if patch.Transform != nil {
		obj.Transform = *patch.Transform
	}
	if patch.Style != nil {
		obj.Style = *patch.Style
	}
	if patch.Visible != nil {
		obj.Visible = *patch.Visible
	}
	if patch.Locked != nil {
		obj.Locked = *patch.Locked
	}
	if patch.Text != nil {
		t := *patch.Text
		obj.Text = &t
	}
	if patch.Points != nil {
		obj.Points = make([]board.Point, len(patch.Points))
		copy(obj.Points, patch.Points)
	}
	nb.Touch()
	return nb, nil
}

// Reorder returns a new board snapshot with the object moved to newIndex in
// the z-order. The index is clamped to [0, len-1].
func Reorder(b *board.Board, id string, newIndex int) (*board.Board, error) {
	i := b.IndexOf(id)
	if i < 0 {
		return b, fmt.Errorf("reorder %s: %w", id, ErrObjectNotFound)
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(b.Objects)-1 {
		newIndex = len(b.Objects) - 1
	}
	if newIndex == i {
		return b, nil
	}

	nb := b.Clone()
	obj := nb.Objects[i]
	nb.Objects = append(nb.Objects[:i], nb.Objects[i+1:]...)
	nb.Objects = append(nb.Objects[:newIndex], append([]board.CanvasObject{obj}, nb.Objects[newIndex:]...)...)
	nb.Touch()
	return nb, nil
}

// GetObject returns the object with the given id.
func GetObject(b *board.Board, id string) (*board.CanvasObject, error) {
	if obj := b.Object(id); obj != nil {
		return obj, nil
	}
	return nil, fmt.Errorf("get %s: %w", id, ErrObjectNotFound)
}

// AllObjects yields the board's objects lazily in z-order (bottom first).
func AllObjects(b *board.Board) iter.Seq[board.CanvasObject] {
	return func(yield func(board.CanvasObject) bool) {
		for _, o := range b.Objects {
			if !yield(o) {
				return
			}
		}
	}
}
