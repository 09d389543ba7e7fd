package engine

import (
	"encoding/json"

	"github.com/boardkit/boardkit/internal/board"
)

// DrawCommand represents a single drawing operation for a thin client to
// execute. The frontend receives a list of these and replays them on a
// Canvas2D context.
type DrawCommand struct {
	Op          string           `json:"op"` // "rect", "ellipse", "line", "arrow", "path", "text"
	ObjectID    string           `json:"objectId,omitempty"`
	Transform   []float64        `json:"transform,omitempty"` // [a, b, c, d, e, f] affine matrix
	X           float64          `json:"x"`
	Y           float64          `json:"y"`
	Width       float64          `json:"width,omitempty"`
	Height      float64          `json:"height,omitempty"`
	Points      []board.Point    `json:"points,omitempty"`
	Fill        string           `json:"fill,omitempty"`
	Stroke      string           `json:"stroke,omitempty"`
	StrokeWidth float64          `json:"strokeWidth,omitempty"`
	Opacity     float64          `json:"opacity,omitempty"`
	Text        *board.TextAttrs `json:"text,omitempty"`
}

var drawOps = map[board.ObjectType]string{
	board.ObjectTypeRectangle: "rect",
	board.ObjectTypeEllipse:   "ellipse",
	board.ObjectTypeLine:      "line",
	board.ObjectTypeArrow:     "arrow",
	board.ObjectTypeFreehand:  "path",
	board.ObjectTypeText:      "text",
}

// CompileDrawCommands generates a draw command buffer from a board snapshot.
// Commands are in painter's order (back to front); invisible objects are
// skipped.
func CompileDrawCommands(b *board.Board) []DrawCommand {
	if b == nil {
		return nil
	}

	var commands []DrawCommand
	for i := range b.Objects {
		o := &b.Objects[i]
		if !o.Visible {
			continue
		}
		cmd := DrawCommand{
			Op:          drawOps[o.Type],
			ObjectID:    o.ID,
			X:           o.Transform.X,
			Y:           o.Transform.Y,
			Width:       o.Transform.Width,
			Height:      o.Transform.Height,
			Points:      o.Points,
			Fill:        o.Style.FillColor,
			Stroke:      o.Style.StrokeColor,
			StrokeWidth: o.Style.StrokeWidth,
			Opacity:     o.Style.Opacity,
			Text:        o.Text,
		}
		if o.Transform.Rotation != 0 {
			bounds := ObjectBounds(o)
			cx, cy := bounds.Center()
			cmd.Transform = RotateAbout(o.Transform.Rotation, cx, cy).ToSlice()
		}
		commands = append(commands, cmd)
	}
	return commands
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
