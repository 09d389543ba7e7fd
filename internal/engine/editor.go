package engine

import (
	"log/slog"
	"math"

	"github.com/boardkit/boardkit/internal/board"
	"github.com/boardkit/boardkit/internal/typeid"
)

// Clipboard is the buffer copy/paste goes through. Implementations live in
// the clipboard package; the default is a plain in-memory buffer.
type Clipboard interface {
	Write(data []byte) error
	Read() ([]byte, error)
}

// memoryClipboard is the fallback buffer when no clipboard is injected.
type memoryClipboard struct{ data []byte }

func (m *memoryClipboard) Write(data []byte) error { m.data = data; return nil }

func (m *memoryClipboard) Read() ([]byte, error) { return m.data, nil }

// Mods carries the modifier state of a pointer event. Handle is set when the
// pointer went down on a transform handle of the selection frame.
type Mods struct {
	Shift  bool
	Handle Handle
}

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDraw
	gestureMove
	gestureResize
	gestureMarquee
)

// gesture is the transient state of an in-progress pointer interaction. It
// is the draft command: intermediate pointer-move frames mutate it in place,
// and exactly one history entry is pushed when the gesture commits.
type gesture struct {
	kind     gestureKind
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	dragging bool

	draft *board.CanvasObject // draw

	hit          string                     // move: object under pointer-down
	before       map[string]board.Transform // move/resize originals
	pointsBefore map[string][]board.Point   // freehand originals
	targets      []string
	handle       Handle
	shift        bool
}

// Editor is one mounted design-board editing session. It owns the board,
// history, selection and tool state exclusively. All methods must be called
// from a single goroutine: mutation is event-driven and cooperative, there
// is no background mutation of board state.
type Editor struct {
	board     *board.Board
	history   *History
	selection *Selection
	tools     ToolState
	registry  *ListenerRegistry
	clip      Clipboard

	gesture       *gesture
	textEditingID string
	textBefore    board.TextAttrs

	viewportW int
	viewportH int

	onRender func(*board.Board)
	onCommit func()
}

// NewEditor creates an editor session over the given board. A nil board
// opens an empty one.
func NewEditor(b *board.Board) *Editor {
	if b == nil {
		b = board.NewEmptyBoard("")
	}
	e := &Editor{
		board:     b,
		history:   NewHistory(0),
		selection: NewSelection(),
		tools:     DefaultToolState(),
		registry:  NewListenerRegistry(),
		clip:      &memoryClipboard{},
	}
	e.registerHandlers()
	e.publishState()
	return e
}

// SetClipboard swaps the clipboard buffer (e.g. for the OS clipboard sink).
func (e *Editor) SetClipboard(c Clipboard) {
	if c != nil {
		e.clip = c
	}
}

// SetHistoryDepth caps the undo stack (0 = unbounded).
func (e *Editor) SetHistoryDepth(depth int) {
	e.history = NewHistory(depth)
	e.publishState()
}

// OnRender registers the single re-render hook fired after each mutation.
func (e *Editor) OnRender(f func(*board.Board)) { e.onRender = f }

// OnCommit registers the hook fired after each committed history entry,
// used by the session to arm the autosave debounce.
func (e *Editor) OnCommit(f func()) { e.onCommit = f }

// Load replaces the board from a serialized document. On a SchemaError the
// editor falls back to an empty board and returns the error so the caller
// can surface a notice.
func (e *Editor) Load(data []byte) error {
	b, err := board.Deserialize(data)
	if err != nil {
		slog.Warn("board load failed, opening empty board", "error", err)
		e.board = board.NewEmptyBoard("")
	} else {
		e.board = b
	}
	e.history.Clear()
	e.selection.Clear()
	e.gesture = nil
	e.textEditingID = ""
	e.afterMutation()
	return err
}

// Board returns the current board snapshot. Mutators never modify a
// returned snapshot in place.
func (e *Editor) Board() *board.Board { return e.board }

// Snapshot returns an independent deep copy, safe to hand to concurrent
// export or save tasks.
func (e *Editor) Snapshot() *board.Board { return e.board.Clone() }

// Serialize encodes the current board.
func (e *Editor) Serialize() ([]byte, error) { return board.Serialize(e.board) }

// Registry exposes the listener lifecycle manager for this instance.
func (e *Editor) Registry() *ListenerRegistry { return e.registry }

// Mount binds the editor's input handlers to a render surface. Calling it
// again with the same surface is a no-op; the registry enforces the
// one-handler-per-channel invariant.
func (e *Editor) Mount(surface Surface) { e.registry.Bind(surface) }

// Unmount tears the subscriptions down exactly once.
func (e *Editor) Unmount() { e.registry.Teardown() }

// registerHandlers wires the four input channels to the editor. Handlers
// close over the editor itself (a stable identity) and read all volatile
// state through the registry's holder, so they are registered once and
// never again.
func (e *Editor) registerHandlers() {
	e.registry.SetHandler(ChannelPointer, func(ev Event) {
		switch ev.Phase {
		case "down":
			e.PointerDown(ev.X, ev.Y, Mods{Shift: ev.Shift, Handle: ev.Handle})
		case "move":
			e.PointerMove(ev.X, ev.Y)
		case "up":
			e.PointerUp(ev.X, ev.Y)
		}
	})
	e.registry.SetHandler(ChannelKeyboard, func(ev Event) {
		e.HandleKey(ev.Key, ev.Ctrl, ev.Shift)
	})
	e.registry.SetHandler(ChannelResize, func(ev Event) {
		e.Resize(ev.Width, ev.Height)
	})
	e.registry.SetHandler(ChannelSelection, func(ev Event) {
		e.SetSelection(ev.IDs)
	})
}

// publishState stores the derived state in the holder so handlers observe
// current values without resubscribing.
func (e *Editor) publishState() {
	e.registry.Holder().Store(EditorState{
		CanUndo:     e.history.CanUndo(),
		CanRedo:     e.history.CanRedo(),
		Selection:   e.selection.IDs(),
		ActiveTool:  e.tools.ActiveTool,
		ObjectCount: len(e.board.Objects),
	})
}

func (e *Editor) afterMutation() {
	e.selection.Prune(e.board)
	e.publishState()
	if e.onRender != nil {
		e.onRender(e.board)
	}
	if e.onCommit != nil {
		e.onCommit()
	}
}

// rerender fires the render hook without marking the document dirty, for
// transient feedback during an uncommitted gesture.
func (e *Editor) rerender() {
	e.publishState()
	if e.onRender != nil {
		e.onRender(e.board)
	}
}

// apply pushes a command through history and runs the post-mutation pass.
func (e *Editor) apply(c Command) {
	e.board = e.history.Push(e.board, c)
	e.afterMutation()
}

// --- History ---

func (e *Editor) Undo() {
	if e.gesture != nil {
		return
	}
	if e.textEditingID != "" {
		e.CommitTextEdit()
	}
	e.board = e.history.Undo(e.board)
	e.afterMutation()
}

func (e *Editor) Redo() {
	if e.gesture != nil {
		return
	}
	if e.textEditingID != "" {
		e.CommitTextEdit()
	}
	e.board = e.history.Redo(e.board)
	e.afterMutation()
}

func (e *Editor) CanUndo() bool { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// --- Tool state ---

func (e *Editor) ToolState() ToolState { return e.tools }

func (e *Editor) SetTool(t Tool) {
	e.tools.ActiveTool = t
	e.publishState()
}

func (e *Editor) SetToolLock(lock bool) { e.tools.ToolLock = lock }

func (e *Editor) SetSizePreset(p SizePreset) { e.tools.ShapeSizePreset = p }

func (e *Editor) SetDefaultFill(color string) { e.tools.DefaultFillColor = color }

func (e *Editor) SetDefaultStroke(color string) { e.tools.DefaultStrokeColor = color }

func (e *Editor) SetDefaultStrokeWidth(w float64) { e.tools.DefaultStrokeWidth = w }

func (e *Editor) SetTextDefaults(t board.TextAttrs) { e.tools.TextDefaults = t }

// --- Selection ---

func (e *Editor) Selection() []string { return e.selection.IDs() }

// SetSelection replaces the selection, dropping ids not on the board.
func (e *Editor) SetSelection(ids []string) {
	e.selection.Set(ids)
	e.selection.Prune(e.board)
	e.rerender()
}

func (e *Editor) SelectAll() {
	e.selection.Set(SelectableIDs(e.board))
	e.rerender()
}

// --- Pointer gestures ---

func (e *Editor) PointerDown(x, y float64, mods Mods) {
	if e.gesture != nil {
		return
	}
	if e.textEditingID != "" {
		e.CommitTextEdit()
	}

	g := &gesture{startX: x, startY: y, lastX: x, lastY: y, shift: mods.Shift}

	if IsDrawTool(e.tools.ActiveTool) {
		draft := newDraftObject(e.tools, x, y)
		g.kind = gestureDraw
		g.draft = &draft
		e.gesture = g
		return
	}

	// Resize wins over everything when a handle was grabbed on a
	// single-object selection.
	if mods.Handle != HandleNone && e.selection.Len() == 1 {
		id := e.selection.IDs()[0]
		if obj := e.board.Object(id); obj != nil && !obj.Locked {
			g.kind = gestureResize
			g.handle = mods.Handle
			g.targets = []string{id}
			g.before = map[string]board.Transform{id: obj.Transform}
			e.gesture = g
			return
		}
	}

	hit := HitTest(e.board, x, y)
	if hit == "" {
		g.kind = gestureMarquee
		e.gesture = g
		return
	}

	if mods.Shift {
		// Shift-click toggles membership; no drag follows.
		e.selection.Toggle(hit)
		e.rerender()
		return
	}

	if !e.selection.Contains(hit) {
		e.selection.Set([]string{hit})
		e.rerender()
	}

	g.kind = gestureMove
	g.hit = hit
	g.targets = e.selection.IDs()
	g.before = make(map[string]board.Transform, len(g.targets))
	g.pointsBefore = make(map[string][]board.Point)
	for _, id := range g.targets {
		if obj := e.board.Object(id); obj != nil {
			g.before[id] = obj.Transform
			if obj.Points != nil {
				pts := make([]board.Point, len(obj.Points))
				copy(pts, obj.Points)
				g.pointsBefore[id] = pts
			}
		}
	}
	e.gesture = g
}

func (e *Editor) PointerMove(x, y float64) {
	g := e.gesture
	if g == nil {
		return
	}
	g.lastX, g.lastY = x, y
	if !g.dragging && math.Hypot(x-g.startX, y-g.startY) >= DragThreshold {
		g.dragging = true
	}
	if !g.dragging {
		return
	}

	switch g.kind {
	case gestureDraw:
		sizeDraftByDrag(g.draft, g.startX, g.startY, x, y)
		e.rerender()
	case gestureMove:
		dx, dy := x-g.startX, y-g.startY
		for _, id := range g.targets {
			t := g.before[id]
			t.X += dx
			t.Y += dy
			patch := ObjectPatch{Transform: &t}
			if pts, ok := g.pointsBefore[id]; ok {
				patch.Points = translatePoints(pts, dx, dy)
			}
			e.updateLive(id, patch)
		}
		e.rerender()
	case gestureResize:
		id := g.targets[0]
		t := resizeTransform(g.before[id], g.handle, x-g.startX, y-g.startY)
		e.updateLive(id, ObjectPatch{Transform: &t})
		e.rerender()
	case gestureMarquee:
		e.rerender()
	}
}

func (e *Editor) PointerUp(x, y float64) {
	g := e.gesture
	if g == nil {
		return
	}
	e.gesture = nil
	g.lastX, g.lastY = x, y

	switch g.kind {
	case gestureDraw:
		if !g.dragging {
			applyPresetSize(g.draft, e.tools.ShapeSizePreset)
		}
		draft := *g.draft
		e.apply(CreateCommand{Object: draft, Index: len(e.board.Objects)})
		e.selection.Set([]string{draft.ID})
		e.rerender()
		if draft.Type == board.ObjectTypeText {
			e.beginTextEdit(draft.ID)
		}
		// Click-once-draw-once: hand the tool back unless locked.
		if !e.tools.ToolLock {
			e.tools.ActiveTool = ToolSelect
			e.publishState()
		}

	case gestureMove:
		if !g.dragging {
			if !g.shift && g.hit != "" {
				e.selection.Set([]string{g.hit})
				e.rerender()
			}
			return
		}
		e.commitTransformGesture(g)

	case gestureResize:
		if !g.dragging {
			return
		}
		e.commitTransformGesture(g)

	case gestureMarquee:
		if !g.dragging {
			if !g.shift {
				e.selection.Clear()
				e.rerender()
			}
			return
		}
		hits := MarqueeHits(e.board, RectFromPoints(g.startX, g.startY, x, y))
		if g.shift {
			for _, id := range hits {
				e.selection.Add(id)
			}
		} else {
			e.selection.Set(hits)
		}
		e.rerender()
	}
}

// commitTransformGesture coalesces a whole move/resize drag into exactly one
// history entry. The board already reflects the final geometry, so pushing
// the command re-applies absolute values and is a visual no-op.
func (e *Editor) commitTransformGesture(g *gesture) {
	cmds := make([]Command, 0, len(g.targets))
	for _, id := range g.targets {
		obj := e.board.Object(id)
		if obj == nil {
			continue
		}
		c := TransformCommand{ID: id, Before: g.before[id], After: obj.Transform}
		if pts, ok := g.pointsBefore[id]; ok {
			c.PointsBefore = pts
			c.PointsAfter = obj.Points
		}
		cmds = append(cmds, c)
	}
	if len(cmds) == 0 {
		return
	}
	if len(cmds) == 1 {
		e.apply(cmds[0])
		return
	}
	e.apply(BulkCommand{Commands: cmds})
}

// Cancel aborts the in-progress draft gesture (Escape) without pushing
// history, restoring any live-updated geometry.
func (e *Editor) Cancel() {
	if e.textEditingID != "" {
		t := e.textBefore
		e.updateLive(e.textEditingID, ObjectPatch{Text: &t})
		e.textEditingID = ""
		e.rerender()
	}
	g := e.gesture
	if g == nil {
		return
	}
	e.gesture = nil

	switch g.kind {
	case gestureMove, gestureResize:
		for _, id := range g.targets {
			t := g.before[id]
			patch := ObjectPatch{Transform: &t}
			if pts, ok := g.pointsBefore[id]; ok {
				patch.Points = pts
			}
			e.updateLive(id, patch)
		}
	}
	e.rerender()
}

// Draft exposes the in-progress draw object for preview rendering, or nil.
func (e *Editor) Draft() *board.CanvasObject {
	if e.gesture == nil || e.gesture.kind != gestureDraw {
		return nil
	}
	return e.gesture.draft
}

// MarqueeRect exposes the in-progress marquee for preview rendering.
func (e *Editor) MarqueeRect() (Rect, bool) {
	g := e.gesture
	if g == nil || g.kind != gestureMarquee || !g.dragging {
		return Rect{}, false
	}
	return RectFromPoints(g.startX, g.startY, g.lastX, g.lastY), true
}

// updateLive mutates the board without touching history, for intermediate
// gesture frames. Stale ids are logged and skipped.
func (e *Editor) updateLive(id string, patch ObjectPatch) {
	nb, err := UpdateObject(e.board, id, patch)
	if err != nil {
		slog.Warn("live update skipped", "id", id, "error", err)
		return
	}
	e.board = nb
}

func translatePoints(pts []board.Point, dx, dy float64) []board.Point {
	out := make([]board.Point, len(pts))
	for i, p := range pts {
		out[i] = board.Point{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

// --- Viewport ---

// Resize records the render surface dimensions. It never touches history.
func (e *Editor) Resize(w, h int) {
	e.viewportW, e.viewportH = w, h
}

// Viewport returns the last reported surface dimensions.
func (e *Editor) Viewport() (int, int) { return e.viewportW, e.viewportH }

// --- Keyboard dispatch ---

// HandleKey maps keyboard shortcuts to commands. While a text block is being
// edited only Escape is interpreted; content changes arrive via
// SetTextContent. Undo/redo consult the state holder, the same current-state
// indirection the attached handlers use.
func (e *Editor) HandleKey(key string, ctrl, shift bool) {
	if key == "Escape" {
		e.Cancel()
		return
	}
	if e.textEditingID != "" {
		return
	}

	if ctrl {
		st := e.registry.Holder().Load()
		switch key {
		case "z", "Z":
			if shift {
				if st.CanRedo {
					e.Redo()
				}
			} else if st.CanUndo {
				e.Undo()
			}
		case "y", "Y":
			if st.CanRedo {
				e.Redo()
			}
		case "c", "C":
			e.Copy()
		case "v", "V":
			e.Paste()
		case "d", "D":
			e.Duplicate()
		case "a", "A":
			e.SelectAll()
		}
		return
	}

	switch key {
	case "Delete", "Backspace":
		e.DeleteSelection()
	}
}

// --- Clipboard operations ---

// Copy serializes the selection to the clipboard buffer using the board
// document schema scoped to the selected objects.
func (e *Editor) Copy() {
	ids := e.selection.IDs()
	if len(ids) == 0 {
		return
	}
	objs := e.selectedInZOrder()
	data, err := board.EncodeFragment(objs)
	if err != nil {
		slog.Error("encode clipboard fragment", "error", err)
		return
	}
	if err := e.clip.Write(data); err != nil {
		slog.Warn("clipboard write failed", "error", err)
	}
}

// Paste clones the clipboard objects with fresh ids and a fixed offset so
// they never land exactly on their source.
func (e *Editor) Paste() {
	data, err := e.clip.Read()
	if err != nil || len(data) == 0 {
		return
	}
	objs, err := board.DecodeFragment(data)
	if err != nil {
		slog.Warn("clipboard paste skipped", "error", err)
		return
	}
	e.pasteObjects(objs)
}

// Duplicate is copy+paste in one step, without touching the clipboard
// buffer.
func (e *Editor) Duplicate() {
	objs := e.selectedInZOrder()
	if len(objs) == 0 {
		return
	}
	e.pasteObjects(objs)
}

func (e *Editor) pasteObjects(objs []board.CanvasObject) {
	if len(objs) == 0 {
		return
	}
	cmds := make([]Command, 0, len(objs))
	newIDs := make([]string, 0, len(objs))
	index := len(e.board.Objects)
	for _, src := range objs {
		clone := src.Clone()
		clone.ID = typeid.NewObjectID()
		clone.Transform.X += PasteOffset
		clone.Transform.Y += PasteOffset
		if clone.Points != nil {
			clone.Points = translatePoints(clone.Points, PasteOffset, PasteOffset)
		}
		cmds = append(cmds, CreateCommand{Object: clone, Index: index})
		newIDs = append(newIDs, clone.ID)
		index++
	}
	if len(cmds) == 1 {
		e.apply(cmds[0])
	} else {
		e.apply(BulkCommand{Commands: cmds})
	}
	e.selection.Set(newIDs)
	e.rerender()
}

// DeleteSelection removes every selected object as one history entry and
// prunes the selection.
func (e *Editor) DeleteSelection() {
	ids := e.selection.IDs()
	if len(ids) == 0 {
		return
	}

	type indexed struct {
		obj   board.CanvasObject
		index int
	}
	var entries []indexed
	for _, id := range ids {
		if i := e.board.IndexOf(id); i >= 0 {
			entries = append(entries, indexed{obj: e.board.Objects[i].Clone(), index: i})
		}
	}
	if len(entries) == 0 {
		return
	}
	// Delete top-down so revert re-inserts bottom-up at the right indices.
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].index > entries[i].index {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}

	cmds := make([]Command, len(entries))
	for i, en := range entries {
		cmds[i] = DeleteCommand{Object: en.obj, Index: en.index}
	}
	if len(cmds) == 1 {
		e.apply(cmds[0])
	} else {
		e.apply(BulkCommand{Commands: cmds})
	}
}

// selectedInZOrder returns deep copies of the selected objects, bottom
// first.
func (e *Editor) selectedInZOrder() []board.CanvasObject {
	var out []board.CanvasObject
	for i := range e.board.Objects {
		if e.selection.Contains(e.board.Objects[i].ID) {
			out = append(out, e.board.Objects[i].Clone())
		}
	}
	return out
}

// --- Style and z-order operations ---

// ApplyStyle sets the style on every selected object as one history entry.
func (e *Editor) ApplyStyle(style board.Style) {
	ids := e.selection.IDs()
	if len(ids) == 0 {
		return
	}
	cmds := make([]Command, 0, len(ids))
	for _, id := range ids {
		obj := e.board.Object(id)
		if obj == nil {
			continue
		}
		cmds = append(cmds, StyleCommand{ID: id, Before: obj.Style, After: style})
	}
	if len(cmds) == 0 {
		return
	}
	if len(cmds) == 1 {
		e.apply(cmds[0])
	} else {
		e.apply(BulkCommand{Commands: cmds})
	}
}

// ReorderObject moves one object to a new z-order index through history.
func (e *Editor) ReorderObject(id string, newIndex int) {
	oldIndex := e.board.IndexOf(id)
	if oldIndex < 0 {
		slog.Warn("reorder skipped", "id", id, "error", ErrObjectNotFound)
		return
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(e.board.Objects)-1 {
		newIndex = len(e.board.Objects) - 1
	}
	if newIndex == oldIndex {
		return
	}
	e.apply(ReorderCommand{ID: id, OldIndex: oldIndex, NewIndex: newIndex})
}

// --- Text editing sub-state ---

func (e *Editor) beginTextEdit(id string) {
	obj := e.board.Object(id)
	if obj == nil || obj.Text == nil {
		return
	}
	e.textEditingID = id
	e.textBefore = *obj.Text
}

// BeginTextEdit enters the editable sub-state for an existing text block
// (e.g. double-click).
func (e *Editor) BeginTextEdit(id string) {
	if e.textEditingID != "" {
		e.CommitTextEdit()
	}
	e.beginTextEdit(id)
}

// TextEditing returns the id of the text block under edit, or "".
func (e *Editor) TextEditing() string { return e.textEditingID }

// SetTextContent updates the draft content of the text block under edit.
// No history entry is pushed until the edit commits on blur.
func (e *Editor) SetTextContent(content string) {
	if e.textEditingID == "" {
		return
	}
	obj := e.board.Object(e.textEditingID)
	if obj == nil || obj.Text == nil {
		e.textEditingID = ""
		return
	}
	t := *obj.Text
	t.Content = content
	e.updateLive(e.textEditingID, ObjectPatch{Text: &t})
	e.rerender()
}

// CommitTextEdit leaves the editable sub-state, pushing one TextEdit entry
// for the whole editing session. A no-change edit pushes nothing.
func (e *Editor) CommitTextEdit() {
	id := e.textEditingID
	if id == "" {
		return
	}
	e.textEditingID = ""
	obj := e.board.Object(id)
	if obj == nil || obj.Text == nil {
		return
	}
	if *obj.Text == e.textBefore {
		return
	}
	e.apply(TextEditCommand{ID: id, Before: e.textBefore, After: *obj.Text})
}
