// Package clipboard provides the buffers copy/paste goes through. The
// in-memory buffer is the default; the system variant additionally mirrors
// the fragment to the OS clipboard so objects can move between editors.
package clipboard

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

// Buffer is a process-local clipboard.
type Buffer struct {
	mu   sync.Mutex
	data []byte
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Write(data []byte) error {
	b.mu.Lock()
	b.data = data
	b.mu.Unlock()
	return nil
}

func (b *Buffer) Read() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data, nil
}

// System wraps Buffer and mirrors fragments to the OS clipboard. OS
// failures are logged and never fail the copy: the local buffer is the
// source of truth.
type System struct {
	Buffer
}

func NewSystem() *System {
	return &System{}
}

func (s *System) Write(data []byte) error {
	if err := s.Buffer.Write(data); err != nil {
		return err
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		slog.Warn("system clipboard write failed", "error", err)
	}
	return nil
}

// Read prefers OS clipboard content when it looks like a board fragment,
// so pasting from another editor instance works.
func (s *System) Read() ([]byte, error) {
	if text, err := clipboard.ReadAll(); err == nil {
		trimmed := strings.TrimSpace(text)
		if strings.HasPrefix(trimmed, "{") && strings.Contains(trimmed, `"objects"`) {
			return []byte(trimmed), nil
		}
	}
	return s.Buffer.Read()
}
