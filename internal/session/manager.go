package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/boardkit/boardkit/internal/board"
	"github.com/boardkit/boardkit/internal/engine"
)

// LoadFunc is the external collaborator supplying a serialized board
// document by id. A nil document with nil error means "new board".
type LoadFunc func(ctx context.Context, boardID string) ([]byte, error)

// ErrBoardBusy is returned when a board already has an open session. The
// board, its history and its selection are owned by exactly one session;
// cross-session consistency lives with the persistence collaborator.
var ErrBoardBusy = errors.New("board already has an active session")

// ClipboardFactory builds the clipboard handed to each session's editor.
// When nil the editor keeps its in-process buffer.
type ClipboardFactory func() engine.Clipboard

// Manager owns the open editor sessions, one per board.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	load             LoadFunc
	save             SaveFunc
	autosaveInterval time.Duration
	newClipboard     ClipboardFactory
}

func NewManager(load LoadFunc, save SaveFunc, autosaveInterval time.Duration) *Manager {
	return &Manager{
		sessions:         make(map[string]*Session),
		load:             load,
		save:             save,
		autosaveInterval: autosaveInterval,
	}
}

// SetClipboardFactory makes new sessions share content through the given
// clipboard instead of the editor's default in-process buffer.
func (m *Manager) SetClipboardFactory(f ClipboardFactory) {
	m.newClipboard = f
}

// Open loads the board and starts a session over the connection. The editor
// opens empty (with the load error reported to the client) when the stored
// document fails schema validation.
func (m *Manager) Open(ctx context.Context, conn *websocket.Conn, boardID string) (*Session, error) {
	doc, err := m.load(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("load board %s: %w", boardID, err)
	}

	ed := engine.NewEditor(nil)
	if m.newClipboard != nil {
		ed.SetClipboard(m.newClipboard())
	}
	var loadErr error
	if doc != nil {
		loadErr = ed.Load(doc)
	}

	clientID := uuid.New().String()
	s := newSession(m, conn, boardID, clientID, ed)

	m.mu.Lock()
	if _, exists := m.sessions[boardID]; exists {
		m.mu.Unlock()
		ed.Unmount()
		return nil, fmt.Errorf("open board %s: %w", boardID, ErrBoardBusy)
	}
	m.sessions[boardID] = s
	m.mu.Unlock()

	if loadErr != nil {
		var schemaErr *board.SchemaError
		if errors.As(loadErr, &schemaErr) {
			s.sendError("board document is invalid, opened an empty board")
		}
		slog.Warn("board opened empty", "board", boardID, "error", loadErr)
	}

	slog.Info("session opened", "board", boardID, "client", clientID)
	return s, nil
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	if m.sessions[s.BoardID] == s {
		delete(m.sessions, s.BoardID)
	}
	m.mu.Unlock()
	slog.Info("session closed", "board", s.BoardID, "client", s.ClientID)
}

// Snapshot resolves a board for export: the live session's latest snapshot
// when one is open, the stored document otherwise.
func (m *Manager) Snapshot(ctx context.Context, boardID string) (*board.Board, error) {
	m.mu.Lock()
	s, ok := m.sessions[boardID]
	m.mu.Unlock()
	if ok {
		return s.LatestSnapshot(), nil
	}

	doc, err := m.load(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("board %s not found", boardID)
	}
	return board.Deserialize(doc)
}

// Stop flushes every dirty session, e.g. on graceful shutdown.
func (m *Manager) Stop() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Flush()
	}
}
