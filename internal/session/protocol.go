package session

import (
	"encoding/json"

	"github.com/boardkit/boardkit/internal/board"
)

// Message is the wire frame between the frontend and an editor session.
type Message struct {
	Type     string          `json:"type"`
	BoardID  string          `json:"boardId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Input channels (frontend → session). These are dispatched through
	// the render surface so the listener registry owns their wiring.
	TypePointerDown   = "pointer.down"
	TypePointerMove   = "pointer.move"
	TypePointerUp     = "pointer.up"
	TypeKeyPress      = "key.press"
	TypeSurfaceResize = "surface.resize"
	TypeSelectionSet  = "selection.set"

	// Editor commands (frontend → session)
	TypeToolSelect    = "tool.select"
	TypeToolDefaults  = "tool.defaults"
	TypeTextUpdate    = "text.update"
	TypeTextCommit    = "text.commit"
	TypeStyleApply    = "style.apply"
	TypeObjectReorder = "object.reorder"
	TypeBoardSave     = "board.save"
	TypeExportRequest = "export.request"

	// Session → frontend
	TypeWelcome      = "welcome"
	TypeBoardSync    = "board.sync"
	TypeExportResult = "export.result"
	TypeError        = "error"
)

type PointerPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Shift  bool    `json:"shift,omitempty"`
	Handle string  `json:"handle,omitempty"`
}

type KeyPayload struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Shift bool   `json:"shift,omitempty"`
}

type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type SelectionPayload struct {
	IDs []string `json:"ids"`
}

type ToolPayload struct {
	Tool string `json:"tool"`
	Lock *bool  `json:"lock,omitempty"`
}

type ToolDefaultsPayload struct {
	FillColor   *string          `json:"fillColor,omitempty"`
	StrokeColor *string          `json:"strokeColor,omitempty"`
	StrokeWidth *float64         `json:"strokeWidth,omitempty"`
	SizePreset  *string          `json:"sizePreset,omitempty"`
	Text        *board.TextAttrs `json:"text,omitempty"`
}

type TextPayload struct {
	Content string `json:"content"`
}

type StylePayload struct {
	Style board.Style `json:"style"`
}

type ReorderPayload struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
}

type ExportRequestPayload struct {
	Format string `json:"format"`
}

// BoardSyncPayload carries the full editor state after a mutation: the
// serialized document, the compiled draw buffer and the derived flags the
// frontend needs to enable controls.
type BoardSyncPayload struct {
	Document     json.RawMessage `json:"document"`
	DrawCommands json.RawMessage `json:"drawCommands"`
	Selection    []string        `json:"selection"`
	CanUndo      bool            `json:"canUndo"`
	CanRedo      bool            `json:"canRedo"`
	ActiveTool   string          `json:"activeTool"`
	TextEditing  string          `json:"textEditing,omitempty"`
}

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	BoardID  string `json:"boardId"`
}

type ExportResultPayload struct {
	Format      string `json:"format"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"` // base64 via encoding/json
}

type ErrorPayload struct {
	Message string `json:"message"`
}
