package board

import (
	"encoding/json"
	"fmt"
)

// SchemaError reports a malformed or unrecognized board document. Loading
// aborts on it; callers fall back to an empty board.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "board schema: " + e.Reason
}

func schemaErrorf(format string, args ...any) *SchemaError {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}

// Serialize encodes the board as a JSON document with stable key names.
func Serialize(b *Board) ([]byte, error) {
	return json.Marshal(b)
}

// Deserialize decodes a board document. Missing required fields and unknown
// variant tags fail with a SchemaError; unknown optional fields are kept on
// the decoded board and re-emitted by Serialize.
func Deserialize(data []byte) (*Board, error) {
	var b Board
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// boardJSON mirrors Board's known fields for encoding.
type boardJSON struct {
	ID              string         `json:"id"`
	OwnerRef        string         `json:"ownerRef,omitempty"`
	CanvasWidth     int            `json:"canvasWidth"`
	CanvasHeight    int            `json:"canvasHeight"`
	BackgroundColor string         `json:"backgroundColor"`
	Objects         []CanvasObject `json:"objects"`
	UpdatedAt       string         `json:"updatedAt,omitempty"`
}

var boardKnownKeys = map[string]bool{
	"id": true, "ownerRef": true, "canvasWidth": true, "canvasHeight": true,
	"backgroundColor": true, "objects": true, "updatedAt": true,
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return schemaErrorf("invalid document: %v", err)
	}

	for _, key := range []string{"id", "canvasWidth", "canvasHeight"} {
		if _, ok := raw[key]; !ok {
			return schemaErrorf("missing required field %q", key)
		}
	}

	var known boardJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return schemaErrorf("invalid document: %v", err)
	}

	b.ID = known.ID
	b.OwnerRef = known.OwnerRef
	b.CanvasWidth = known.CanvasWidth
	b.CanvasHeight = known.CanvasHeight
	b.BackgroundColor = known.BackgroundColor
	b.Objects = known.Objects
	b.UpdatedAt = known.UpdatedAt
	if b.Objects == nil {
		b.Objects = []CanvasObject{}
	}

	b.Extra = nil
	for k, v := range raw {
		if boardKnownKeys[k] {
			continue
		}
		if b.Extra == nil {
			b.Extra = make(map[string]json.RawMessage)
		}
		b.Extra[k] = v
	}
	return nil
}

func (b Board) MarshalJSON() ([]byte, error) {
	objects := b.Objects
	if objects == nil {
		objects = []CanvasObject{}
	}
	base, err := json.Marshal(boardJSON{
		ID:              b.ID,
		OwnerRef:        b.OwnerRef,
		CanvasWidth:     b.CanvasWidth,
		CanvasHeight:    b.CanvasHeight,
		BackgroundColor: b.BackgroundColor,
		Objects:         objects,
		UpdatedAt:       b.UpdatedAt,
	})
	if err != nil || len(b.Extra) == 0 {
		return base, err
	}
	return mergeExtra(base, b.Extra)
}

// objectJSON mirrors CanvasObject's known fields for encoding.
type objectJSON struct {
	ID        string     `json:"id"`
	Type      ObjectType `json:"type"`
	Transform Transform  `json:"transform"`
	Style     Style      `json:"style"`
	Visible   bool       `json:"visible"`
	Locked    bool       `json:"locked"`
	Points    []Point    `json:"points,omitempty"`
	Text      *TextAttrs `json:"text,omitempty"`
}

var objectKnownKeys = map[string]bool{
	"id": true, "type": true, "transform": true, "style": true,
	"visible": true, "locked": true, "points": true, "text": true,
}

func (o *CanvasObject) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return schemaErrorf("invalid object: %v", err)
	}

	for _, key := range []string{"id", "type"} {
		if _, ok := raw[key]; !ok {
			return schemaErrorf("object missing required field %q", key)
		}
	}

	var known objectJSON
	known.Visible = true // absent means visible
	if err := json.Unmarshal(data, &known); err != nil {
		return schemaErrorf("invalid object: %v", err)
	}
	if !KnownObjectType(known.Type) {
		return schemaErrorf("unknown object type %q", known.Type)
	}

	o.ID = known.ID
	o.Type = known.Type
	o.Transform = known.Transform
	o.Style = known.Style
	o.Visible = known.Visible
	o.Locked = known.Locked
	o.Points = known.Points
	o.Text = known.Text

	o.Extra = nil
	for k, v := range raw {
		if objectKnownKeys[k] {
			continue
		}
		if o.Extra == nil {
			o.Extra = make(map[string]json.RawMessage)
		}
		o.Extra[k] = v
	}
	return nil
}

func (o CanvasObject) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(objectJSON{
		ID:        o.ID,
		Type:      o.Type,
		Transform: o.Transform,
		Style:     o.Style,
		Visible:   o.Visible,
		Locked:    o.Locked,
		Points:    o.Points,
		Text:      o.Text,
	})
	if err != nil || len(o.Extra) == 0 {
		return base, err
	}
	return mergeExtra(base, o.Extra)
}

// mergeExtra re-attaches preserved unknown fields to an encoded object.
// Known fields win on key collisions.
func mergeExtra(base []byte, extra map[string]json.RawMessage) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// fragment is the clipboard document schema: the board object schema scoped
// to a subset of objects.
type fragment struct {
	Objects []CanvasObject `json:"objects"`
}

// EncodeFragment serializes a subset of objects for the clipboard.
func EncodeFragment(objects []CanvasObject) ([]byte, error) {
	if objects == nil {
		objects = []CanvasObject{}
	}
	return json.Marshal(fragment{Objects: objects})
}

// DecodeFragment parses a clipboard document produced by EncodeFragment.
func DecodeFragment(data []byte) ([]CanvasObject, error) {
	var f fragment
	if err := json.Unmarshal(data, &f); err != nil {
		if _, ok := err.(*SchemaError); ok {
			return nil, err
		}
		return nil, schemaErrorf("invalid clipboard document: %v", err)
	}
	return f.Objects, nil
}
