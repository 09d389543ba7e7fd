package engine

import (
	"testing"
)

// fakeSurface counts attach/detach calls per channel so tests can observe
// subscription churn directly.
type fakeSurface struct {
	id       string
	attached map[Channel]int
	detached map[Channel]int
	handlers map[Channel]Handler
}

func newFakeSurface(id string) *fakeSurface {
	return &fakeSurface{
		id:       id,
		attached: make(map[Channel]int),
		detached: make(map[Channel]int),
		handlers: make(map[Channel]Handler),
	}
}

func (f *fakeSurface) SurfaceID() string { return f.id }

func (f *fakeSurface) Attach(ch Channel, h Handler) {
	f.attached[ch]++
	f.handlers[ch] = h
}

func (f *fakeSurface) Detach(ch Channel) {
	f.detached[ch]++
	delete(f.handlers, ch)
}

func (f *fakeSurface) liveHandlers() int { return len(f.handlers) }

func newBoundRegistry(surface Surface) *ListenerRegistry {
	r := NewListenerRegistry()
	for _, ch := range Channels() {
		r.SetHandler(ch, func(Event) {})
	}
	r.Bind(surface)
	return r
}

func TestRepeatedBindDoesNotGrowHandlers(t *testing.T) {
	surface := newFakeSurface("surface-1")
	r := newBoundRegistry(surface)

	// Simulate many state updates, each followed by a bind of the same
	// surface, the pattern that used to leak a handler per update.
	for i := 0; i < 50; i++ {
		r.Holder().Store(EditorState{ObjectCount: i})
		r.Bind(surface)
	}

	for _, ch := range Channels() {
		if surface.attached[ch] != 1 {
			t.Errorf("channel %s attached %d times, want 1", ch, surface.attached[ch])
		}
	}
	if surface.liveHandlers() != len(Channels()) {
		t.Errorf("live handlers = %d, want %d", surface.liveHandlers(), len(Channels()))
	}
}

func TestHandlersObserveCurrentStateThroughHolder(t *testing.T) {
	surface := newFakeSurface("surface-1")
	r := NewListenerRegistry()

	var observed []int
	r.SetHandler(ChannelPointer, func(Event) {
		observed = append(observed, r.Holder().Load().ObjectCount)
	})
	r.Bind(surface)

	for i := 1; i <= 3; i++ {
		r.Holder().Store(EditorState{ObjectCount: i})
		surface.handlers[ChannelPointer](Event{Channel: ChannelPointer})
	}

	// One handler, firing once per event, always reading fresh state.
	want := []int{1, 2, 3}
	if len(observed) != len(want) {
		t.Fatalf("handler fired %d times, want %d", len(observed), len(want))
	}
	for i := range want {
		if observed[i] != want[i] {
			t.Errorf("observation %d = %d, want %d", i, observed[i], want[i])
		}
	}
}

func TestBindNewIdentityRebinds(t *testing.T) {
	first := newFakeSurface("surface-1")
	r := newBoundRegistry(first)

	second := newFakeSurface("surface-2")
	r.Bind(second)

	for _, ch := range Channels() {
		if first.detached[ch] != 1 {
			t.Errorf("old surface channel %s detached %d times, want 1", ch, first.detached[ch])
		}
		if second.attached[ch] != 1 {
			t.Errorf("new surface channel %s attached %d times, want 1", ch, second.attached[ch])
		}
	}
	if first.liveHandlers() != 0 {
		t.Errorf("old surface still holds %d handlers", first.liveHandlers())
	}
}

func TestTeardownRunsExactlyOnce(t *testing.T) {
	surface := newFakeSurface("surface-1")
	r := newBoundRegistry(surface)

	r.Teardown()
	r.Teardown()
	r.Teardown()

	for _, ch := range Channels() {
		if surface.detached[ch] != 1 {
			t.Errorf("channel %s detached %d times, want 1", ch, surface.detached[ch])
		}
	}
	if r.Attached() {
		t.Error("registry still attached after teardown")
	}

	// A torn-down registry refuses to rebind.
	r.Bind(newFakeSurface("surface-2"))
	if r.Attached() {
		t.Error("bind after teardown should be ignored")
	}
}

func TestSetHandlerAfterBindIgnored(t *testing.T) {
	surface := newFakeSurface("surface-1")
	r := newBoundRegistry(surface)

	fired := false
	r.SetHandler(ChannelPointer, func(Event) { fired = true })

	surface.handlers[ChannelPointer](Event{Channel: ChannelPointer})
	if fired {
		t.Error("handler registered after bind must not replace the live one")
	}
}
