package engine

import (
	"github.com/boardkit/boardkit/internal/board"
	"github.com/boardkit/boardkit/internal/typeid"
)

type Tool string

const (
	ToolSelect        Tool = "select"
	ToolDrawRectangle Tool = "drawRectangle"
	ToolDrawEllipse   Tool = "drawEllipse"
	ToolDrawLine      Tool = "drawLine"
	ToolDrawArrow     Tool = "drawArrow"
	ToolDrawFreehand  Tool = "drawFreehand"
	ToolDrawText      Tool = "drawText"
)

// IsDrawTool reports whether the tool starts a draw gesture on pointer-down.
func IsDrawTool(t Tool) bool {
	switch t {
	case ToolDrawRectangle, ToolDrawEllipse, ToolDrawLine,
		ToolDrawArrow, ToolDrawFreehand, ToolDrawText:
		return true
	}
	return false
}

// drawnType maps a draw tool to the object variant it produces.
func drawnType(t Tool) board.ObjectType {
	switch t {
	case ToolDrawRectangle:
		return board.ObjectTypeRectangle
	case ToolDrawEllipse:
		return board.ObjectTypeEllipse
	case ToolDrawLine:
		return board.ObjectTypeLine
	case ToolDrawArrow:
		return board.ObjectTypeArrow
	case ToolDrawFreehand:
		return board.ObjectTypeFreehand
	case ToolDrawText:
		return board.ObjectTypeText
	}
	return board.ObjectTypeRectangle
}

type SizePreset string

const (
	PresetSmall  SizePreset = "small"
	PresetMedium SizePreset = "medium"
	PresetLarge  SizePreset = "large"
)

// Dimensions returns the seed width/height used when a draw gesture is a
// single click rather than a drag.
func (p SizePreset) Dimensions() (float64, float64) {
	switch p {
	case PresetSmall:
		return 50, 50
	case PresetLarge:
		return 200, 200
	default:
		return 100, 100
	}
}

// ToolState holds the active tool and the session-scoped drawing defaults.
// It is passed into gesture handling explicitly and is never persisted with
// the board.
type ToolState struct {
	ActiveTool         Tool
	ToolLock           bool
	DefaultFillColor   string
	DefaultStrokeColor string
	DefaultStrokeWidth float64
	ShapeSizePreset    SizePreset
	TextDefaults       board.TextAttrs
}

func DefaultToolState() ToolState {
	return ToolState{
		ActiveTool:         ToolSelect,
		DefaultFillColor:   "#4f86f7",
		DefaultStrokeColor: "#1a1a2e",
		DefaultStrokeWidth: 2,
		ShapeSizePreset:    PresetMedium,
		TextDefaults: board.TextAttrs{
			FontFamily:     "sans-serif",
			FontSizePt:     16,
			FontWeight:     "normal",
			FontStyle:      "normal",
			TextDecoration: "none",
			TextAlign:      "left",
			TextColor:      "#1a1a2e",
		},
	}
}

// DragThreshold is the pointer travel (in canvas units) past which a gesture
// counts as a drag instead of a click.
const DragThreshold = 4.0

// PasteOffset is the fixed delta applied to pasted and duplicated objects so
// clones never land exactly on their source.
const PasteOffset = 16.0

// newDraftObject seeds a zero-sized object of the tool's variant at the
// pointer-down position using the current defaults.
func newDraftObject(ts ToolState, x, y float64) board.CanvasObject {
	obj := board.CanvasObject{
		ID:   typeid.NewObjectID(),
		Type: drawnType(ts.ActiveTool),
		Transform: board.Transform{
			X: x,
			Y: y,
		},
		Style: board.Style{
			FillColor:   ts.DefaultFillColor,
			StrokeColor: ts.DefaultStrokeColor,
			StrokeWidth: ts.DefaultStrokeWidth,
			Opacity:     1,
		},
		Visible: true,
	}

	switch obj.Type {
	case board.ObjectTypeFreehand:
		obj.Points = []board.Point{{X: x, Y: y}}
	case board.ObjectTypeText:
		t := ts.TextDefaults
		obj.Text = &t
		w, h := ts.ShapeSizePreset.Dimensions()
		obj.Transform.Width = w
		obj.Transform.Height = h
	}
	return obj
}

// sizeDraftByDrag updates the draft geometry live from the drag vector.
// Shapes get a normalized rect; lines and arrows keep the raw vector so the
// direction survives.
func sizeDraftByDrag(obj *board.CanvasObject, startX, startY, x, y float64) {
	switch obj.Type {
	case board.ObjectTypeLine, board.ObjectTypeArrow:
		obj.Transform.X = startX
		obj.Transform.Y = startY
		obj.Transform.Width = x - startX
		obj.Transform.Height = y - startY
	case board.ObjectTypeFreehand:
		obj.Points = append(obj.Points, board.Point{X: x, Y: y})
	default:
		r := RectFromPoints(startX, startY, x, y)
		obj.Transform.X = r.X
		obj.Transform.Y = r.Y
		obj.Transform.Width = r.Width
		obj.Transform.Height = r.Height
	}
}

// applyPresetSize seeds the draft with the shape-size preset after a
// click-without-drag, anchored at the click point.
func applyPresetSize(obj *board.CanvasObject, preset SizePreset) {
	switch obj.Type {
	case board.ObjectTypeFreehand:
		// A freehand click leaves a dot; the single point stands.
	case board.ObjectTypeText:
		// Text already carries its seed box.
	default:
		w, h := preset.Dimensions()
		obj.Transform.Width = w
		obj.Transform.Height = h
	}
}

// Handle identifies a transform handle on the selection frame.
type Handle string

const (
	HandleNone Handle = ""
	HandleN    Handle = "n"
	HandleS    Handle = "s"
	HandleE    Handle = "e"
	HandleW    Handle = "w"
	HandleNE   Handle = "ne"
	HandleNW   Handle = "nw"
	HandleSE   Handle = "se"
	HandleSW   Handle = "sw"
)

const minObjectSize = 1.0

// resizeTransform returns the transform produced by dragging a resize
// handle by (dx, dy) from the gesture origin. The opposite edge stays fixed.
func resizeTransform(orig board.Transform, handle Handle, dx, dy float64) board.Transform {
	t := orig

	switch handle {
	case HandleE, HandleNE, HandleSE:
		t.Width = orig.Width + dx
	case HandleW, HandleNW, HandleSW:
		t.X = orig.X + dx
		t.Width = orig.Width - dx
	}
	switch handle {
	case HandleS, HandleSE, HandleSW:
		t.Height = orig.Height + dy
	case HandleN, HandleNE, HandleNW:
		t.Y = orig.Y + dy
		t.Height = orig.Height - dy
	}

	if t.Width < minObjectSize {
		if handle == HandleW || handle == HandleNW || handle == HandleSW {
			t.X = orig.X + orig.Width - minObjectSize
		}
		t.Width = minObjectSize
	}
	if t.Height < minObjectSize {
		if handle == HandleN || handle == HandleNE || handle == HandleNW {
			t.Y = orig.Y + orig.Height - minObjectSize
		}
		t.Height = minObjectSize
	}
	return t
}
