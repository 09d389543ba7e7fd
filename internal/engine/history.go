package engine

import (
	"log/slog"

	"github.com/boardkit/boardkit/internal/board"
)

// History is the command-based undo/redo engine. It never owns the board;
// every operation takes the current snapshot and returns the next one.
type History struct {
	undo     []Command
	redo     []Command
	maxDepth int // 0 = unbounded
}

// NewHistory creates a history with the given depth cap (0 for unbounded).
// When the cap is hit the oldest undo entry is evicted, which never affects
// the entries still on the stack.
func NewHistory(maxDepth int) *History {
	return &History{maxDepth: maxDepth}
}

// Push applies the command forward and records it. Any redo entries are
// discarded: the command starts a new branch of edits.
func (h *History) Push(b *board.Board, c Command) *board.Board {
	nb := c.Apply(b)
	h.undo = append(h.undo, c)
	h.redo = nil
	if h.maxDepth > 0 && len(h.undo) > h.maxDepth {
		h.undo = h.undo[len(h.undo)-h.maxDepth:]
	}
	return nb
}

// Undo reverts the most recent command. With an empty stack it is a silent
// no-op; CanUndo exists so callers can disable controls.
func (h *History) Undo(b *board.Board) *board.Board {
	if len(h.undo) == 0 {
		slog.Debug("undo on empty stack")
		return b
	}
	c := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	nb := c.Revert(b)
	h.redo = append(h.redo, c)
	return nb
}

// Redo re-applies the most recently undone command.
func (h *History) Redo(b *board.Board) *board.Board {
	if len(h.redo) == 0 {
		slog.Debug("redo on empty stack")
		return b
	}
	c := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	nb := c.Apply(b)
	h.undo = append(h.undo, c)
	return nb
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the number of entries on the undo stack.
func (h *History) Depth() int { return len(h.undo) }

// Clear drops both stacks, e.g. after loading a different board.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
