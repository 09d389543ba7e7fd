package engine

import (
	"sort"

	"github.com/boardkit/boardkit/internal/board"
)

// Selection is the set of selected object ids, always a subset of the
// board's current ids.
type Selection struct {
	ids map[string]bool
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[string]bool)}
}

func (s *Selection) Contains(id string) bool { return s.ids[id] }

func (s *Selection) Len() int { return len(s.ids) }

func (s *Selection) Add(id string) { s.ids[id] = true }

func (s *Selection) Remove(id string) { delete(s.ids, id) }

// Toggle flips membership (shift-click behavior).
func (s *Selection) Toggle(id string) {
	if s.ids[id] {
		delete(s.ids, id)
	} else {
		s.ids[id] = true
	}
}

func (s *Selection) Clear() {
	s.ids = make(map[string]bool)
}

func (s *Selection) Set(ids []string) {
	s.ids = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.ids[id] = true
	}
}

// IDs returns the selected ids in a stable order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Prune drops ids that no longer exist on the board. Deleting a selected
// object must leave the selection without it.
func (s *Selection) Prune(b *board.Board) {
	for id := range s.ids {
		if b.IndexOf(id) < 0 {
			delete(s.ids, id)
		}
	}
}

// selectable reports whether an object participates in hit testing,
// marquee selection and select-all.
func selectable(o *board.CanvasObject) bool {
	return o.Visible && !o.Locked
}

// HitTest returns the id of the topmost selectable object whose bounds
// contain the point, or "" when nothing is hit. Objects later in the slice
// paint on top, so the walk runs back to front.
func HitTest(b *board.Board, x, y float64) string {
	for i := len(b.Objects) - 1; i >= 0; i-- {
		o := &b.Objects[i]
		if !selectable(o) {
			continue
		}
		if ObjectBounds(o).Contains(x, y) {
			return o.ID
		}
	}
	return ""
}

// MarqueeHits returns the ids of all selectable objects whose bounds
// intersect the marquee rect, in z-order.
func MarqueeHits(b *board.Board, marquee Rect) []string {
	marquee = marquee.Normalize()
	var hits []string
	for i := range b.Objects {
		o := &b.Objects[i]
		if !selectable(o) {
			continue
		}
		if ObjectBounds(o).Intersects(marquee) {
			hits = append(hits, o.ID)
		}
	}
	return hits
}

// SelectableIDs returns every selectable object id in z-order, the
// select-all set.
func SelectableIDs(b *board.Board) []string {
	var ids []string
	for i := range b.Objects {
		if selectable(&b.Objects[i]) {
			ids = append(ids, b.Objects[i].ID)
		}
	}
	return ids
}

// SelectionBounds returns the combined bounding box of the given ids.
func SelectionBounds(b *board.Board, ids []string) Rect {
	var result Rect
	first := true
	for _, id := range ids {
		o := b.Object(id)
		if o == nil {
			continue
		}
		bounds := ObjectBounds(o)
		if first {
			result = bounds
			first = false
		} else {
			result = result.Union(bounds)
		}
	}
	return result
}
