package selection

import "errors"

// ErrManualEditConflict is returned when the assistant is asked to take over a
// query text that holds manual edits and the user has not agreed to drop them.
var ErrManualEditConflict = errors.New("query text has manual edits; confirm to discard them")

// Editor is the query text area. Once the user types something other than the
// last generated query it locks, and generated text no longer replaces the
// user's text until Reengage is confirmed.
type Editor struct {
	text      string
	generated string
	locked    bool
}

// Text returns the current query text
func (e *Editor) Text() string {
	return e.text
}

// Locked reports whether manual edits are outstanding
func (e *Editor) Locked() bool {
	return e.locked
}

// Refresh replaces the text with a generated query unless the editor is locked.
// A selection that produces no query clears the text. Reports whether the text
// was written.
func (e *Editor) Refresh(query string, ok bool) bool {
	if e.locked {
		return false
	}
	if !ok {
		query = ""
	}
	e.text = query
	e.generated = query
	return true
}

// Edit records text typed by the user
func (e *Editor) Edit(text string) {
	e.text = text
	if text != e.generated {
		e.locked = true
	}
}

// Reengage hands the text area back to the assistant. While manual edits are
// outstanding this needs confirmed set, otherwise ErrManualEditConflict is
// returned and nothing changes.
func (e *Editor) Reengage(confirmed bool) error {
	if !e.locked {
		return nil
	}
	if !confirmed {
		return ErrManualEditConflict
	}
	e.locked = false
	return nil
}
