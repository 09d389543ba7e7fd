package board

import (
	"encoding/json"
	"time"

	"github.com/boardkit/boardkit/internal/typeid"
)

type ObjectType string

const (
	ObjectTypeRectangle ObjectType = "rectangle"
	ObjectTypeEllipse   ObjectType = "ellipse"
	ObjectTypeLine      ObjectType = "line"
	ObjectTypeArrow     ObjectType = "arrow"
	ObjectTypeFreehand  ObjectType = "freehand"
	ObjectTypeText      ObjectType = "text"
)

// KnownObjectType reports whether the variant tag is one we can render.
func KnownObjectType(t ObjectType) bool {
	switch t {
	case ObjectTypeRectangle, ObjectTypeEllipse, ObjectTypeLine,
		ObjectTypeArrow, ObjectTypeFreehand, ObjectTypeText:
		return true
	}
	return false
}

// Transform places an object on the canvas. Rotation is in degrees around
// the object's center. For lines and arrows (x, y) is the start point and
// (x+width, y+height) the end point, so width/height may be negative.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

type Style struct {
	FillColor   string  `json:"fillColor"`
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TextAttrs is the variant payload carried by text objects.
type TextAttrs struct {
	Content        string  `json:"content"`
	FontFamily     string  `json:"fontFamily"`
	FontSizePt     float64 `json:"fontSizePt"`
	FontWeight     string  `json:"fontWeight"`
	FontStyle      string  `json:"fontStyle"`
	TextDecoration string  `json:"textDecoration"`
	TextAlign      string  `json:"textAlign"`
	TextColor      string  `json:"textColor"`
}

// CanvasObject is a tagged union over the drawable variants. The shared base
// fields are always present; Points is set only for freehand paths and Text
// only for text blocks. Extra holds unknown optional JSON fields so they
// survive a load/save round trip.
type CanvasObject struct {
	ID        string     `json:"id"`
	Type      ObjectType `json:"type"`
	Transform Transform  `json:"transform"`
	Style     Style      `json:"style"`
	Visible   bool       `json:"visible"`
	Locked    bool       `json:"locked"`

	Points []Point    `json:"points,omitempty"`
	Text   *TextAttrs `json:"text,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Board is the persisted unit of editable content. The objects slice defines
// paint order: index 0 is the bottom of the stack.
type Board struct {
	ID              string         `json:"id"`
	OwnerRef        string         `json:"ownerRef,omitempty"`
	CanvasWidth     int            `json:"canvasWidth"`
	CanvasHeight    int            `json:"canvasHeight"`
	BackgroundColor string         `json:"backgroundColor"`
	Objects         []CanvasObject `json:"objects"`
	UpdatedAt       string         `json:"updatedAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// NewEmptyBoard creates a blank board with default canvas dimensions.
func NewEmptyBoard(ownerRef string) *Board {
	return &Board{
		ID:              typeid.NewBoardID(),
		OwnerRef:        ownerRef,
		CanvasWidth:     1280,
		CanvasHeight:    720,
		BackgroundColor: "#ffffff",
		Objects:         []CanvasObject{},
		UpdatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
}

// Clone returns a deep copy of the object.
func (o CanvasObject) Clone() CanvasObject {
	c := o
	if o.Points != nil {
		c.Points = make([]Point, len(o.Points))
		copy(c.Points, o.Points)
	}
	if o.Text != nil {
		t := *o.Text
		c.Text = &t
	}
	if o.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(o.Extra))
		for k, v := range o.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// Clone returns a deep copy of the board. History and export both rely on
// snapshots never sharing mutable state with the live board.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	c := *b
	c.Objects = make([]CanvasObject, len(b.Objects))
	for i, o := range b.Objects {
		c.Objects[i] = o.Clone()
	}
	if b.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(b.Extra))
		for k, v := range b.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// IndexOf returns the z-order index of the object with the given id, or -1.
func (b *Board) IndexOf(id string) int {
	for i := range b.Objects {
		if b.Objects[i].ID == id {
			return i
		}
	}
	return -1
}

// Object returns the object with the given id, or nil.
func (b *Board) Object(id string) *CanvasObject {
	if i := b.IndexOf(id); i >= 0 {
		return &b.Objects[i]
	}
	return nil
}

// Touch stamps the board's updatedAt with the current time.
func (b *Board) Touch() {
	b.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}
