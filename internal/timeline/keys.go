package timeline

import "strings"

// EditorAction is what a key press inside the item edit popup should do.
type EditorAction string

const (
	EditorActionNone   EditorAction = "none"
	EditorActionClose  EditorAction = "close"
	EditorActionDelete EditorAction = "delete"
)

// EditorKey maps a key press while an item's edit popup is focused to an
// action. Delete and Backspace only delete the item when no text input inside
// the popup has focus.
func EditorKey(key string, inputFocused bool) EditorAction {
	switch key {
	case "Enter":
		return EditorActionClose
	case "Delete", "Backspace":
		if inputFocused {
			return EditorActionNone
		}
		return EditorActionDelete
	}
	return EditorActionNone
}

// IsUndoChord reports whether a key press is the global undo shortcut:
// platform modifier + Z without shift. The caller consumes the event so it
// does not reach the browser's native undo.
func IsUndoChord(key string, modifier, shift bool) bool {
	return strings.EqualFold(key, "z") && modifier && !shift
}
