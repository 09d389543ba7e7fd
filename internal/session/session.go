package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/boardkit/boardkit/internal/board"
	"github.com/boardkit/boardkit/internal/engine"
	"github.com/boardkit/boardkit/internal/export"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 1 << 20
)

// SaveFunc is the external persistence collaborator. The session hands it a
// serialized board document; what happens to it is not the editor's
// business.
type SaveFunc func(boardID string, document []byte) error

// connSurface adapts a websocket connection to the engine's render surface.
// Its identity is the client id, so a reconnect (new surface) is the only
// thing that rebinds listeners.
type connSurface struct {
	id string

	mu       sync.Mutex
	handlers map[engine.Channel]engine.Handler
}

func newConnSurface(clientID string) *connSurface {
	return &connSurface{
		id:       clientID,
		handlers: make(map[engine.Channel]engine.Handler),
	}
}

func (s *connSurface) SurfaceID() string { return s.id }

func (s *connSurface) Attach(ch engine.Channel, h engine.Handler) {
	s.mu.Lock()
	s.handlers[ch] = h
	s.mu.Unlock()
}

func (s *connSurface) Detach(ch engine.Channel) {
	s.mu.Lock()
	delete(s.handlers, ch)
	s.mu.Unlock()
}

func (s *connSurface) dispatch(ev engine.Event) {
	s.mu.Lock()
	h := s.handlers[ev.Channel]
	s.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

// Session is one open board being edited over one connection. All editor
// calls happen on the read pump goroutine; the autosave and export
// goroutines only ever see immutable snapshots published from that loop.
type Session struct {
	BoardID  string
	ClientID string

	editor  *engine.Editor
	surface *connSurface
	conn    *websocket.Conn
	send    chan []byte

	save     SaveFunc
	interval time.Duration
	dirty    atomic.Bool
	snapshot atomic.Pointer[board.Board]
	timerMu  sync.Mutex
	timer    *time.Timer

	manager *Manager
}

func newSession(m *Manager, conn *websocket.Conn, boardID, clientID string, ed *engine.Editor) *Session {
	s := &Session{
		BoardID:  boardID,
		ClientID: clientID,
		editor:   ed,
		surface:  newConnSurface(clientID),
		conn:     conn,
		send:     make(chan []byte, 256),
		save:     m.save,
		interval: m.autosaveInterval,
		manager:  m,
	}

	s.snapshot.Store(ed.Snapshot())
	ed.OnRender(func(b *board.Board) {
		s.snapshot.Store(b)
		s.sendSync(b)
	})
	ed.OnCommit(s.markDirty)
	ed.Mount(s.surface)
	return s
}

// LatestSnapshot returns the most recently published immutable snapshot,
// safe to read from any goroutine.
func (s *Session) LatestSnapshot() *board.Board {
	return s.snapshot.Load()
}

// markDirty arms the autosave debounce. Every commit pushes the deadline
// out; the timer goroutine reads the published snapshot, never the editor.
func (s *Session) markDirty() {
	s.dirty.Store(true)
	if s.interval <= 0 {
		return
	}
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.interval, s.autosave)
}

func (s *Session) autosave() {
	if !s.dirty.Swap(false) {
		return
	}
	s.persist(s.LatestSnapshot())
}

func (s *Session) persist(b *board.Board) {
	data, err := board.Serialize(b)
	if err != nil {
		slog.Error("serialize board for save", "board", s.BoardID, "error", err)
		return
	}
	if err := s.save(s.BoardID, data); err != nil {
		slog.Error("save board", "board", s.BoardID, "error", err)
		return
	}
	slog.Debug("board saved", "board", s.BoardID, "bytes", len(data))
}

// Flush saves immediately when there are unsaved commits, e.g. on shutdown
// or disconnect.
func (s *Session) Flush() {
	s.timerMu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timerMu.Unlock()
	if s.dirty.Swap(false) {
		s.persist(s.LatestSnapshot())
	}
}

func (s *Session) sendSync(b *board.Board) {
	doc, err := board.Serialize(b)
	if err != nil {
		slog.Error("serialize board for sync", "board", s.BoardID, "error", err)
		return
	}
	draw, err := engine.DrawCommandsToJSON(engine.CompileDrawCommands(b))
	if err != nil {
		slog.Error("compile draw commands", "board", s.BoardID, "error", err)
		return
	}
	s.sendMessage(TypeBoardSync, BoardSyncPayload{
		Document:     doc,
		DrawCommands: json.RawMessage(draw),
		Selection:    s.editor.Selection(),
		CanUndo:      s.editor.CanUndo(),
		CanRedo:      s.editor.CanRedo(),
		ActiveTool:   string(s.editor.ToolState().ActiveTool),
		TextEditing:  s.editor.TextEditing(),
	})
}

func (s *Session) sendMessage(msgType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "type", msgType, "error", err)
		return
	}
	data, err := json.Marshal(Message{Type: msgType, BoardID: s.BoardID, Payload: raw})
	if err != nil {
		slog.Error("marshal message", "type", msgType, "error", err)
		return
	}
	select {
	case s.send <- data:
	default:
		slog.Warn("session send buffer full, dropping message", "board", s.BoardID, "type", msgType)
	}
}

func (s *Session) sendError(msg string) {
	s.sendMessage(TypeError, ErrorPayload{Message: msg})
}

// ReadPump consumes messages until the connection drops. It is the event
// loop: every editor mutation happens here, in input order, so commands hit
// the scene graph strictly in the order their events arrived.
func (s *Session) ReadPump(ctx context.Context) {
	defer func() {
		s.editor.Unmount()
		s.Flush()
		s.manager.remove(s)
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	s.conn.SetReadLimit(maxMsgSize)

	s.sendMessage(TypeWelcome, WelcomePayload{ClientID: s.ClientID, BoardID: s.BoardID})
	s.sendSync(s.editor.Board())

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "board", s.BoardID, "error", err)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "board", s.BoardID, "error", err)
			continue
		}
		s.handleMessage(&msg)
	}
}

// WritePump streams outbound frames and keeps the connection alive.
func (s *Session) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-s.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "board", s.BoardID, "error", err)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) handleMessage(msg *Message) {
	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		var p PointerPayload
		if !decodePayload(msg, &p, s) {
			return
		}
		phase := map[string]string{
			TypePointerDown: "down",
			TypePointerMove: "move",
			TypePointerUp:   "up",
		}[msg.Type]
		s.surface.dispatch(engine.Event{
			Channel: engine.ChannelPointer,
			Phase:   phase,
			X:       p.X,
			Y:       p.Y,
			Shift:   p.Shift,
			Handle:  engine.Handle(p.Handle),
		})

	case TypeKeyPress:
		var p KeyPayload
		if !decodePayload(msg, &p, s) {
			return
		}
		s.surface.dispatch(engine.Event{
			Channel: engine.ChannelKeyboard,
			Key:     p.Key,
			Ctrl:    p.Ctrl,
			Shift:   p.Shift,
		})

	case TypeSurfaceResize:
		var p ResizePayload
		if !decodePayload(msg, &p, s) {
			return
		}
		s.surface.dispatch(engine.Event{
			Channel: engine.ChannelResize,
			Width:   p.Width,
			Height:  p.Height,
		})

	case TypeSelectionSet:
		var p SelectionPayload
		if !decodePayload(msg, &p, s) {
			return
		}
		s.surface.dispatch(engine.Event{
			Channel: engine.ChannelSelection,
			IDs:     p.IDs,
		})

	case TypeToolSelect:
		var p ToolPayload
		if !decodePayload(msg, &p, s) {
			return
		}
		s.editor.SetTool(engine.Tool(p.Tool))
		if p.Lock != nil {
			s.editor.SetToolLock(*p.Lock)
		}

	case TypeToolDefaults:
		var p ToolDefaultsPayload
		if !decodePayload(msg, &p, s) {
			return
		}
		if p.FillColor != nil {
			s.editor.SetDefaultFill(*p.FillColor)
		}
		if p.StrokeColor != nil {
			s.editor.SetDefaultStroke(*p.StrokeColor)
		}
		if p.StrokeWidth != nil {
			s.editor.SetDefaultStrokeWidth(*p.StrokeWidth)
		}
		if p.SizePreset != nil {
			s.editor.SetSizePreset(engine.SizePreset(*p.SizePreset))
		}
		if p.Text != nil {
			s.editor.SetTextDefaults(*p.Text)
		}

	case TypeTextUpdate:
		var p TextPayload
		if !decodePayload(msg, &p, s) {
			return
		}
		s.editor.SetTextContent(p.Content)

	case TypeTextCommit:
		s.editor.CommitTextEdit()

	case TypeStyleApply:
		var p StylePayload
		if !decodePayload(msg, &p, s) {
			return
		}
		s.editor.ApplyStyle(p.Style)

	case TypeObjectReorder:
		var p ReorderPayload
		if !decodePayload(msg, &p, s) {
			return
		}
		s.editor.ReorderObject(p.ID, p.Index)

	case TypeBoardSave:
		s.dirty.Store(true)
		snapshot := s.editor.Snapshot()
		go s.persistIfDirty(snapshot)

	case TypeExportRequest:
		var p ExportRequestPayload
		if !decodePayload(msg, &p, s) {
			return
		}
		// Snapshot taken synchronously on the event loop; the render
		// runs off it, so concurrent edits never touch the artifact.
		snapshot := s.editor.Snapshot()
		go s.runExport(snapshot, p.Format)

	default:
		slog.Warn("unknown message type", "board", s.BoardID, "type", msg.Type)
	}
}

func (s *Session) persistIfDirty(b *board.Board) {
	if s.dirty.Swap(false) {
		s.persist(b)
	}
}

func (s *Session) runExport(b *board.Board, format string) {
	data, contentType, err := export.Export(b, format)
	if err != nil {
		slog.Error("export failed", "board", s.BoardID, "format", format, "error", err)
		s.sendError("export failed: " + format)
		return
	}
	s.sendMessage(TypeExportResult, ExportResultPayload{
		Format:      format,
		ContentType: contentType,
		Data:        data,
	})
	slog.Info("export complete", "board", s.BoardID, "format", format, "size", len(data))
}

func decodePayload(msg *Message, dst any, s *Session) bool {
	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		slog.Warn("invalid payload", "type", msg.Type, "error", err)
		s.sendError("invalid payload for " + msg.Type)
		return false
	}
	return true
}
