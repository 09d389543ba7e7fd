package board

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func sampleBoard() *Board {
	return &Board{
		ID:              "board_01h2xcejqtf2nbrexx3vqjhp41",
		OwnerRef:        "user-7",
		CanvasWidth:     1280,
		CanvasHeight:    720,
		BackgroundColor: "#ffffff",
		UpdatedAt:       "2026-03-01T10:00:00Z",
		Objects: []CanvasObject{
			{
				ID:        "obj_rect",
				Type:      ObjectTypeRectangle,
				Transform: Transform{X: 10, Y: 20, Width: 100, Height: 50, Rotation: 15},
				Style:     Style{FillColor: "#ff0000", StrokeColor: "#000000", StrokeWidth: 2, Opacity: 1},
				Visible:   true,
			},
			{
				ID:        "obj_ellipse",
				Type:      ObjectTypeEllipse,
				Transform: Transform{X: 200, Y: 30, Width: 80, Height: 80},
				Style:     Style{FillColor: "#00ff00", Opacity: 0.5},
				Visible:   true,
				Locked:    true,
			},
			{
				ID:        "obj_line",
				Type:      ObjectTypeLine,
				Transform: Transform{X: 0, Y: 0, Width: -40, Height: 60},
				Style:     Style{StrokeColor: "#333333", StrokeWidth: 1, Opacity: 1},
				Visible:   true,
			},
			{
				ID:        "obj_arrow",
				Type:      ObjectTypeArrow,
				Transform: Transform{X: 5, Y: 5, Width: 50, Height: 0},
				Style:     Style{StrokeColor: "#0000ff", StrokeWidth: 3, Opacity: 1},
				Visible:   true,
			},
			{
				ID:      "obj_path",
				Type:    ObjectTypeFreehand,
				Style:   Style{StrokeColor: "#111111", StrokeWidth: 2, Opacity: 1},
				Visible: true,
				Points:  []Point{{X: 1, Y: 1}, {X: 4, Y: 9}, {X: 12, Y: 3}},
			},
			{
				ID:        "obj_text",
				Type:      ObjectTypeText,
				Transform: Transform{X: 300, Y: 400, Width: 120, Height: 40},
				Style:     Style{Opacity: 1},
				Visible:   true,
				Text: &TextAttrs{
					Content:    "hello",
					FontFamily: "sans-serif",
					FontSizePt: 16,
					FontWeight: "bold",
					TextAlign:  "center",
					TextColor:  "#1a1a2e",
				},
			},
		},
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	original := sampleBoard()

	data, err := Serialize(original)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	decoded, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestDeserializeSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "missing canvasWidth",
			doc:  `{"id":"board_x","canvasHeight":720,"objects":[]}`,
			want: "canvasWidth",
		},
		{
			name: "missing id",
			doc:  `{"canvasWidth":1280,"canvasHeight":720,"objects":[]}`,
			want: "id",
		},
		{
			name: "object missing type",
			doc:  `{"id":"board_x","canvasWidth":1280,"canvasHeight":720,"objects":[{"id":"obj_1"}]}`,
			want: "type",
		},
		{
			name: "unknown object type",
			doc:  `{"id":"board_x","canvasWidth":1280,"canvasHeight":720,"objects":[{"id":"obj_1","type":"hexagon"}]}`,
			want: "hexagon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize([]byte(tt.doc))
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if !strings.Contains(schemaErr.Reason, tt.want) {
				t.Errorf("reason %q does not mention %q", schemaErr.Reason, tt.want)
			}
		})
	}
}

func TestVisibleDefaultsTrue(t *testing.T) {
	doc := `{"id":"board_x","canvasWidth":100,"canvasHeight":100,"objects":[
		{"id":"obj_a","type":"rectangle"},
		{"id":"obj_b","type":"rectangle","visible":false}
	]}`

	b, err := Deserialize([]byte(doc))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !b.Objects[0].Visible {
		t.Error("absent visible should default to true")
	}
	if b.Objects[1].Visible {
		t.Error("explicit visible:false should survive")
	}
}

func TestUnknownFieldsPreserved(t *testing.T) {
	doc := `{"id":"board_x","canvasWidth":100,"canvasHeight":100,
		"theme":"dark",
		"objects":[{"id":"obj_a","type":"rectangle","zLayerHint":7}]}`

	b, err := Deserialize([]byte(doc))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if _, ok := b.Extra["theme"]; !ok {
		t.Fatal("unknown board field dropped on load")
	}
	if _, ok := b.Objects[0].Extra["zLayerHint"]; !ok {
		t.Fatal("unknown object field dropped on load")
	}

	out, err := Serialize(b)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("unmarshal serialized doc: %v", err)
	}
	if string(m["theme"]) != `"dark"` {
		t.Errorf("theme not re-emitted, got %s", m["theme"])
	}
	if !strings.Contains(string(out), `"zLayerHint":7`) {
		t.Errorf("object extra not re-emitted: %s", out)
	}
}

func TestEmptyObjectsNormalized(t *testing.T) {
	b, err := Deserialize([]byte(`{"id":"board_x","canvasWidth":100,"canvasHeight":100}`))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if b.Objects == nil {
		t.Fatal("objects should decode to an empty slice")
	}

	out, err := Serialize(&Board{ID: "board_y", CanvasWidth: 10, CanvasHeight: 10})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(string(out), `"objects":[]`) {
		t.Errorf("nil objects should serialize as []: %s", out)
	}
}

func TestFragmentRoundTrip(t *testing.T) {
	objs := sampleBoard().Objects[:2]

	data, err := EncodeFragment(objs)
	if err != nil {
		t.Fatalf("EncodeFragment: %v", err)
	}
	decoded, err := DecodeFragment(data)
	if err != nil {
		t.Fatalf("DecodeFragment: %v", err)
	}
	if !reflect.DeepEqual(objs, decoded) {
		t.Errorf("fragment round trip mismatch:\n got %+v\nwant %+v", decoded, objs)
	}
}

func TestDecodeFragmentRejectsGarbage(t *testing.T) {
	if _, err := DecodeFragment([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid fragment")
	}
	if _, err := DecodeFragment([]byte(`{"objects":[{"id":"obj_1","type":"wormhole"}]}`)); err == nil {
		t.Fatal("expected error for unknown variant in fragment")
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := sampleBoard()
	c := b.Clone()

	c.Objects[4].Points[0].X = 999
	c.Objects[5].Text.Content = "changed"

	if b.Objects[4].Points[0].X == 999 {
		t.Error("clone shares points slice")
	}
	if b.Objects[5].Text.Content == "changed" {
		t.Error("clone shares text attrs")
	}
}
