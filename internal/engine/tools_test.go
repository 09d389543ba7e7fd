package engine

import (
	"testing"

	"github.com/boardkit/boardkit/internal/board"
)

func TestSizePresetDimensions(t *testing.T) {
	tests := []struct {
		preset SizePreset
		w, h   float64
	}{
		{PresetSmall, 50, 50},
		{PresetMedium, 100, 100},
		{PresetLarge, 200, 200},
		{SizePreset("bogus"), 100, 100}, // falls back to medium
	}
	for _, tt := range tests {
		w, h := tt.preset.Dimensions()
		if w != tt.w || h != tt.h {
			t.Errorf("%s = %vx%v, want %vx%v", tt.preset, w, h, tt.w, tt.h)
		}
	}
}

func TestNewDraftObjectSeedsVariantPayload(t *testing.T) {
	ts := DefaultToolState()

	ts.ActiveTool = ToolDrawFreehand
	path := newDraftObject(ts, 5, 7)
	if len(path.Points) != 1 || path.Points[0] != (board.Point{X: 5, Y: 7}) {
		t.Errorf("freehand draft points = %+v", path.Points)
	}

	ts.ActiveTool = ToolDrawText
	text := newDraftObject(ts, 5, 7)
	if text.Text == nil {
		t.Fatal("text draft should carry text attrs")
	}
	if text.Text.FontFamily != ts.TextDefaults.FontFamily {
		t.Errorf("font family = %q, want session default", text.Text.FontFamily)
	}
	if text.Transform.Width != 100 || text.Transform.Height != 100 {
		t.Errorf("text seed box = %vx%v, want the preset size", text.Transform.Width, text.Transform.Height)
	}

	ts.ActiveTool = ToolDrawRectangle
	rect := newDraftObject(ts, 5, 7)
	if rect.Points != nil || rect.Text != nil {
		t.Error("shape draft should carry no variant payload")
	}
	if !rect.Visible {
		t.Error("drafts start visible")
	}
}

func TestResizeTransform(t *testing.T) {
	orig := board.Transform{X: 10, Y: 20, Width: 100, Height: 80}

	tests := []struct {
		name   string
		handle Handle
		dx, dy float64
		want   board.Transform
	}{
		{"east grows width", HandleE, 30, 99, board.Transform{X: 10, Y: 20, Width: 130, Height: 80}},
		{"west moves x", HandleW, 30, 0, board.Transform{X: 40, Y: 20, Width: 70, Height: 80}},
		{"north moves y", HandleN, 0, 10, board.Transform{X: 10, Y: 30, Width: 100, Height: 70}},
		{"south grows height", HandleS, 0, 25, board.Transform{X: 10, Y: 20, Width: 100, Height: 105}},
		{"corner both axes", HandleSE, -20, -30, board.Transform{X: 10, Y: 20, Width: 80, Height: 50}},
		{"northwest both axes", HandleNW, 5, 5, board.Transform{X: 15, Y: 25, Width: 95, Height: 75}},
		{
			"collapse clamps to minimum",
			HandleSE, -200, -200,
			board.Transform{X: 10, Y: 20, Width: minObjectSize, Height: minObjectSize},
		},
		{
			"west collapse pins the east edge",
			HandleW, 500, 0,
			board.Transform{X: 10 + 100 - minObjectSize, Y: 20, Width: minObjectSize, Height: 80},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resizeTransform(orig, tt.handle, tt.dx, tt.dy); got != tt.want {
				t.Errorf("resizeTransform = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSizeDraftByDrag(t *testing.T) {
	ts := DefaultToolState()

	ts.ActiveTool = ToolDrawRectangle
	rect := newDraftObject(ts, 100, 100)
	sizeDraftByDrag(&rect, 100, 100, 40, 160)
	want := board.Transform{X: 40, Y: 100, Width: 60, Height: 60}
	if rect.Transform != want {
		t.Errorf("rect transform = %+v, want normalized %+v", rect.Transform, want)
	}

	ts.ActiveTool = ToolDrawLine
	line := newDraftObject(ts, 100, 100)
	sizeDraftByDrag(&line, 100, 100, 40, 160)
	want = board.Transform{X: 100, Y: 100, Width: -60, Height: 60}
	if line.Transform != want {
		t.Errorf("line transform = %+v, want raw vector %+v", line.Transform, want)
	}

	ts.ActiveTool = ToolDrawFreehand
	path := newDraftObject(ts, 0, 0)
	sizeDraftByDrag(&path, 0, 0, 5, 5)
	sizeDraftByDrag(&path, 0, 0, 10, 2)
	if len(path.Points) != 3 {
		t.Errorf("freehand points = %d, want 3", len(path.Points))
	}
}

func TestCompileDrawCommands(t *testing.T) {
	hidden := rectObject("obj_hidden", 0, 0)
	hidden.Visible = false
	rotated := rectObject("obj_rot", 10, 10)
	rotated.Transform.Rotation = 45
	b := testBoard(rectObject("obj_a", 0, 0), hidden, rotated)

	cmds := CompileDrawCommands(b)
	if len(cmds) != 2 {
		t.Fatalf("commands = %d, want 2 (hidden skipped)", len(cmds))
	}
	if cmds[0].ObjectID != "obj_a" || cmds[1].ObjectID != "obj_rot" {
		t.Errorf("painter order wrong: %s, %s", cmds[0].ObjectID, cmds[1].ObjectID)
	}
	if cmds[0].Op != "rect" {
		t.Errorf("op = %q, want rect", cmds[0].Op)
	}
	if cmds[0].Transform != nil {
		t.Error("unrotated object should carry no matrix")
	}
	if len(cmds[1].Transform) != 6 {
		t.Errorf("rotated object matrix = %v, want 6 elements", cmds[1].Transform)
	}

	out, err := DrawCommandsToJSON(nil)
	if err != nil || out != "[]" {
		t.Errorf("DrawCommandsToJSON(nil) = %q, %v", out, err)
	}
}
