//go:build js && wasm

package main

import (
	"encoding/base64"
	"encoding/json"
	"syscall/js"

	"github.com/boardkit/boardkit/internal/board"
	"github.com/boardkit/boardkit/internal/engine"
	"github.com/boardkit/boardkit/internal/export"
)

var ed *engine.Editor

func main() {
	ed = engine.NewEditor(nil)

	api := js.Global().Get("Object").New()

	// --- Document ---
	api.Set("loadBoard", js.FuncOf(loadBoard))
	api.Set("newBoard", js.FuncOf(newBoard))
	api.Set("getBoard", js.FuncOf(getBoard))
	api.Set("exportBoard", js.FuncOf(exportBoard))

	// --- Input events ---
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("keyPress", js.FuncOf(keyPress))
	api.Set("resizeSurface", js.FuncOf(resizeSurface))

	// --- Commands ---
	api.Set("setTool", js.FuncOf(setTool))
	api.Set("setToolLock", js.FuncOf(setToolLock))
	api.Set("setSizePreset", js.FuncOf(setSizePreset))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("selectAll", js.FuncOf(selectAll))
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))
	api.Set("copySelection", js.FuncOf(copySelection))
	api.Set("paste", js.FuncOf(paste))
	api.Set("duplicate", js.FuncOf(duplicate))
	api.Set("deleteSelection", js.FuncOf(deleteSelection))
	api.Set("applyStyle", js.FuncOf(applyStyle))
	api.Set("reorderObject", js.FuncOf(reorderObject))
	api.Set("beginTextEdit", js.FuncOf(beginTextEdit))
	api.Set("setTextContent", js.FuncOf(setTextContent))
	api.Set("commitTextEdit", js.FuncOf(commitTextEdit))
	api.Set("cancel", js.FuncOf(cancel))

	// --- Queries ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("canUndo", js.FuncOf(canUndo))
	api.Set("canRedo", js.FuncOf(canRedo))
	api.Set("getActiveTool", js.FuncOf(getActiveTool))
	api.Set("getTextEditing", js.FuncOf(getTextEditing))

	js.Global().Set("boardkitEditor", api)
	js.Global().Set("boardkitWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Document Handlers ---

func loadBoard(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing board JSON"})
	}
	if err := ed.Load([]byte(args[0].String())); err != nil {
		return errResult(err)
	}
	return okResult()
}

func newBoard(this js.Value, args []js.Value) interface{} {
	ownerRef := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		ownerRef = args[0].String()
	}
	ed = engine.NewEditor(board.NewEmptyBoard(ownerRef))
	return okResult()
}

func getBoard(this js.Value, args []js.Value) interface{} {
	data, err := ed.Serialize()
	if err != nil {
		return errResult(err)
	}
	return js.ValueOf(string(data))
}

func exportBoard(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing format"})
	}
	format := args[0].String()
	data, contentType, err := export.Export(ed.Snapshot(), format)
	if err != nil {
		return errResult(err)
	}
	return js.ValueOf(map[string]interface{}{
		"contentType": contentType,
		"data":        base64.StdEncoding.EncodeToString(data),
	})
}

// --- Input Handlers ---

func pointerMods(args []js.Value) engine.Mods {
	var mods engine.Mods
	if len(args) > 2 && args[2].Type() == js.TypeBoolean {
		mods.Shift = args[2].Bool()
	}
	if len(args) > 3 && args[3].Type() == js.TypeString {
		mods.Handle = engine.Handle(args[3].String())
	}
	return mods
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.PointerDown(args[0].Float(), args[1].Float(), pointerMods(args))
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.PointerMove(args[0].Float(), args[1].Float())
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.PointerUp(args[0].Float(), args[1].Float())
	return nil
}

func keyPress(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	key := args[0].String()
	ctrl := len(args) > 1 && args[1].Truthy()
	shift := len(args) > 2 && args[2].Truthy()
	ed.HandleKey(key, ctrl, shift)
	return nil
}

func resizeSurface(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.Resize(args[0].Int(), args[1].Int())
	return nil
}

// --- Command Handlers ---

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	ed.SetTool(engine.Tool(args[0].String()))
	return nil
}

func setToolLock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	ed.SetToolLock(args[0].Truthy())
	return nil
}

func setSizePreset(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	ed.SetSizePreset(engine.SizePreset(args[0].String()))
	return nil
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		ed.SetSelection(nil)
		return nil
	}
	arr := args[0]
	ids := make([]string, arr.Length())
	for i := 0; i < arr.Length(); i++ {
		ids[i] = arr.Index(i).String()
	}
	ed.SetSelection(ids)
	return nil
}

func selectAll(this js.Value, args []js.Value) interface{} {
	ed.SelectAll()
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	ed.Undo()
	return nil
}

func redo(this js.Value, args []js.Value) interface{} {
	ed.Redo()
	return nil
}

func copySelection(this js.Value, args []js.Value) interface{} {
	ed.Copy()
	return nil
}

func paste(this js.Value, args []js.Value) interface{} {
	ed.Paste()
	return nil
}

func duplicate(this js.Value, args []js.Value) interface{} {
	ed.Duplicate()
	return nil
}

func deleteSelection(this js.Value, args []js.Value) interface{} {
	ed.DeleteSelection()
	return nil
}

func applyStyle(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	var style board.Style
	if err := json.Unmarshal([]byte(args[0].String()), &style); err != nil {
		return errResult(err)
	}
	ed.ApplyStyle(style)
	return okResult()
}

func reorderObject(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.ReorderObject(args[0].String(), args[1].Int())
	return nil
}

func beginTextEdit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	ed.BeginTextEdit(args[0].String())
	return nil
}

func setTextContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	ed.SetTextContent(args[0].String())
	return nil
}

func commitTextEdit(this js.Value, args []js.Value) interface{} {
	ed.CommitTextEdit()
	return nil
}

func cancel(this js.Value, args []js.Value) interface{} {
	ed.Cancel()
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	data, err := engine.DrawCommandsToJSON(engine.CompileDrawCommands(ed.Board()))
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(data)
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(engine.HitTest(ed.Board(), args[0].Float(), args[1].Float()))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	ids := ed.Selection()
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return js.ValueOf(out)
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	r := engine.SelectionBounds(ed.Board(), ed.Selection())
	return js.ValueOf(map[string]interface{}{
		"x":      r.X,
		"y":      r.Y,
		"width":  r.Width,
		"height": r.Height,
	})
}

func canUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.CanUndo())
}

func canRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.CanRedo())
}

func getActiveTool(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(string(ed.ToolState().ActiveTool))
}

func getTextEditing(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.TextEditing())
}
