package engine

import (
	"log/slog"
	"sync"
)

// Channel is a logical input channel delivered by a render surface.
type Channel string

const (
	ChannelPointer   Channel = "pointer"
	ChannelKeyboard  Channel = "keyboard"
	ChannelResize    Channel = "resize"
	ChannelSelection Channel = "selection"
)

// Channels returns every input channel an editor instance subscribes to.
func Channels() []Channel {
	return []Channel{ChannelPointer, ChannelKeyboard, ChannelResize, ChannelSelection}
}

// Event is the payload delivered on an input channel. It is a tagged union:
// only the fields relevant to the channel are set.
type Event struct {
	Channel Channel

	// Pointer
	Phase  string // "down", "move", "up"
	X      float64
	Y      float64
	Shift  bool
	Handle Handle

	// Keyboard
	Key  string
	Ctrl bool

	// Resize
	Width  int
	Height int

	// Selection-change
	IDs []string
}

// Handler consumes events on one channel.
type Handler func(Event)

// Surface is the render surface input handlers attach to. Its identity is
// the only thing that can force a re-subscription.
type Surface interface {
	SurfaceID() string
	Attach(ch Channel, h Handler)
	Detach(ch Channel)
}

// EditorState is the volatile, derived editor state handlers need to read.
// It is recomputed after every mutation and changes identity each time,
// which is exactly why handlers must never key their subscription on it.
type EditorState struct {
	CanUndo     bool
	CanRedo     bool
	Selection   []string
	ActiveTool  Tool
	ObjectCount int
}

// StateHolder is the indirection cell between subscriptions and state.
// Handlers are attached once and read the current state through Load; the
// editor publishes new state with Store. Swapping the state never touches
// the subscriptions.
type StateHolder struct {
	mu    sync.RWMutex
	state EditorState
}

func (h *StateHolder) Load() EditorState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

func (h *StateHolder) Store(s EditorState) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// ListenerRegistry owns the subscription state for one mounted editor
// instance. It guarantees at most one attached handler per channel for the
// lifetime of the mount, no matter how often history/selection/tool state
// changes underneath. Re-subscription happens only when the surface identity
// changes; teardown detaches everything exactly once.
//
// This discipline exists because wiring subscriptions to every state change
// grows an unbounded set of duplicate handlers, each firing on every input
// event, until the process dies.
type ListenerRegistry struct {
	mu       sync.Mutex
	surface  Surface
	handlers map[Channel]Handler
	attached bool
	tornDown bool

	holder *StateHolder
}

// NewListenerRegistry creates a registry for a freshly mounted editor
// instance.
func NewListenerRegistry() *ListenerRegistry {
	return &ListenerRegistry{
		handlers: make(map[Channel]Handler),
		holder:   &StateHolder{},
	}
}

// Holder returns the indirection cell handlers read current state through.
func (r *ListenerRegistry) Holder() *StateHolder {
	return r.holder
}

// SetHandler registers the handler for a channel. It must be called before
// Bind; changing handlers on a live surface is not part of the lifecycle.
func (r *ListenerRegistry) SetHandler(ch Channel, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attached {
		slog.Warn("handler registered after bind, ignored", "channel", ch)
		return
	}
	r.handlers[ch] = h
}

// Bind attaches the registered handlers to the surface, one per channel.
// Binding the same surface again is a no-op: callers may invoke Bind on
// every state update without growing the handler set. A surface with a new
// identity detaches the old subscriptions first.
func (r *ListenerRegistry) Bind(surface Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tornDown {
		slog.Warn("bind after teardown ignored")
		return
	}
	if r.attached && r.surface != nil && r.surface.SurfaceID() == surface.SurfaceID() {
		return
	}
	if r.attached {
		r.detachLocked()
		slog.Info("surface replaced, listeners rebound",
			"old", r.surface.SurfaceID(), "new", surface.SurfaceID())
	}

	r.surface = surface
	for ch, h := range r.handlers {
		surface.Attach(ch, h)
	}
	r.attached = true
}

// Teardown detaches all handlers. It runs exactly once; later calls are
// no-ops. The registry cannot be rebound afterwards.
func (r *ListenerRegistry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tornDown {
		return
	}
	if r.attached {
		r.detachLocked()
	}
	r.tornDown = true
}

func (r *ListenerRegistry) detachLocked() {
	for ch := range r.handlers {
		r.surface.Detach(ch)
	}
	r.attached = false
}

// Attached reports whether the registry currently holds live subscriptions.
func (r *ListenerRegistry) Attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attached
}
