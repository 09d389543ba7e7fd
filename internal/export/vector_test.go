package export

import (
	"strings"
	"testing"

	"github.com/boardkit/boardkit/internal/board"
)

func TestVectorEmitsOnePrimitivePerObject(t *testing.T) {
	b := exportBoard(
		filledRect("obj_rect", "#ff0000", 10, 20, 30, 40),
		board.CanvasObject{
			ID:        "obj_ellipse",
			Type:      board.ObjectTypeEllipse,
			Transform: board.Transform{X: 0, Y: 0, Width: 40, Height: 20},
			Style:     board.Style{FillColor: "#00ff00", Opacity: 1},
			Visible:   true,
		},
		board.CanvasObject{
			ID:        "obj_arrow",
			Type:      board.ObjectTypeArrow,
			Transform: board.Transform{X: 0, Y: 0, Width: 50, Height: 0},
			Style:     board.Style{StrokeColor: "#0000ff", StrokeWidth: 2, Opacity: 1},
			Visible:   true,
		},
		board.CanvasObject{
			ID:      "obj_path",
			Type:    board.ObjectTypeFreehand,
			Style:   board.Style{StrokeColor: "#111111", StrokeWidth: 1, Opacity: 1},
			Visible: true,
			Points:  []board.Point{{X: 1, Y: 2}, {X: 3, Y: 4}},
		},
	)

	data, err := Vector(b)
	if err != nil {
		t.Fatalf("Vector: %v", err)
	}
	svg := string(data)

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100"`,
		`<rect x="10" y="20" width="30" height="40" fill="#ff0000"`,
		`<ellipse cx="20" cy="10" rx="20" ry="10" fill="#00ff00"`,
		`<line x1="0" y1="0" x2="50" y2="0" stroke="#0000ff" stroke-width="2"`,
		`<polygon points=`, // arrow head
		`<polyline points="1,2 3,4" fill="none" stroke="#111111"`,
		`</svg>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q:\n%s", want, svg)
		}
	}
}

func TestVectorSkipsInvisibleObjects(t *testing.T) {
	hidden := filledRect("obj_hidden", "#123456", 0, 0, 10, 10)
	hidden.Visible = false
	data, err := Vector(exportBoard(hidden))
	if err != nil {
		t.Fatalf("Vector: %v", err)
	}
	if strings.Contains(string(data), "#123456") {
		t.Error("invisible object emitted")
	}
}

func TestVectorEscapesTextContent(t *testing.T) {
	b := exportBoard(board.CanvasObject{
		ID:        "obj_text",
		Type:      board.ObjectTypeText,
		Transform: board.Transform{X: 10, Y: 10, Width: 80, Height: 20},
		Style:     board.Style{Opacity: 1},
		Visible:   true,
		Text: &board.TextAttrs{
			Content:    `a < b & "c"`,
			FontSizePt: 14,
			TextAlign:  "center",
			TextColor:  "#333333",
		},
	})

	data, err := Vector(b)
	if err != nil {
		t.Fatalf("Vector: %v", err)
	}
	svg := string(data)

	if strings.Contains(svg, "a < b") {
		t.Error("text content not escaped")
	}
	if !strings.Contains(svg, "a &lt; b &amp;") {
		t.Errorf("expected escaped entities in:\n%s", svg)
	}
	if !strings.Contains(svg, `text-anchor="middle"`) {
		t.Error("center alignment should anchor at middle")
	}
	if !strings.Contains(svg, `x="50"`) {
		t.Errorf("centered text x should be the box midpoint:\n%s", svg)
	}
}

func TestVectorRotationAttribute(t *testing.T) {
	r := filledRect("obj_rot", "#ff0000", 0, 0, 20, 10)
	r.Transform.Rotation = 45
	data, err := Vector(exportBoard(r))
	if err != nil {
		t.Fatalf("Vector: %v", err)
	}
	if !strings.Contains(string(data), `transform="rotate(45 10 5)"`) {
		t.Errorf("rotation attribute missing:\n%s", data)
	}
}

func TestVectorFreehandRotationPivotsOnPointExtents(t *testing.T) {
	p := board.CanvasObject{
		ID:        "obj_path",
		Type:      board.ObjectTypeFreehand,
		Transform: board.Transform{Rotation: 90},
		Style:     board.Style{StrokeColor: "#000000", StrokeWidth: 2, Opacity: 1},
		Visible:   true,
		Points:    []board.Point{{X: 20, Y: 50}, {X: 80, Y: 50}},
	}
	data, err := Vector(exportBoard(p))
	if err != nil {
		t.Fatalf("Vector: %v", err)
	}
	if !strings.Contains(string(data), `transform="rotate(90 50 50)"`) {
		t.Errorf("freehand rotation should pivot on the point-extent center:\n%s", data)
	}
}

func TestVectorPartialOpacity(t *testing.T) {
	r := filledRect("obj_a", "#ff0000", 0, 0, 10, 10)
	r.Style.Opacity = 0.5
	data, err := Vector(exportBoard(r))
	if err != nil {
		t.Fatalf("Vector: %v", err)
	}
	svg := string(data)
	if !strings.Contains(svg, `opacity="0.5"`) {
		t.Errorf("expected opacity attribute:\n%s", svg)
	}

	// Full opacity stays implicit.
	r.Style.Opacity = 1
	data, _ = Vector(exportBoard(r))
	if strings.Contains(string(data), `opacity=`) {
		t.Error("full opacity should not be emitted")
	}
}
