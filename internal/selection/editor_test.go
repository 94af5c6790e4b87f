package selection

import (
	"errors"
	"testing"
)

func TestEditorFollowsGeneratedQuery(t *testing.T) {
	var e Editor

	if !e.Refresh("SELECT t1.x \nFROM a as t1 \n", true) {
		t.Fatal("Expected refresh to write into an untouched editor")
	}
	if e.Text() != "SELECT t1.x \nFROM a as t1 \n" {
		t.Errorf("Unexpected text %q", e.Text())
	}

	if !e.Refresh("", false) {
		t.Fatal("Expected refresh to write when nothing can be generated")
	}
	if e.Text() != "" {
		t.Errorf("Expected empty text when no query is produced, got %q", e.Text())
	}
}

func TestEditorLocksOnManualEdit(t *testing.T) {
	var e Editor
	e.Refresh("SELECT t1.x \nFROM a as t1 \n", true)

	// retyping the generated text is not a manual edit
	e.Edit("SELECT t1.x \nFROM a as t1 \n")
	if e.Locked() {
		t.Fatal("Expected editor to stay unlocked when the text is unchanged")
	}

	e.Edit("SELECT t1.x FROM a as t1 WHERE t1.x > 1")
	if !e.Locked() {
		t.Fatal("Expected editor to lock after a manual edit")
	}

	if e.Refresh("SELECT t1.y \nFROM a as t1 \n", true) {
		t.Error("Expected refresh to be refused while locked")
	}
	if e.Text() != "SELECT t1.x FROM a as t1 WHERE t1.x > 1" {
		t.Errorf("Manual text was overwritten: %q", e.Text())
	}

	// going back to the generated text does not unlock either
	e.Edit("SELECT t1.x \nFROM a as t1 \n")
	if !e.Locked() {
		t.Error("Expected editor to stay locked until the user confirms")
	}
}

func TestEditorReengage(t *testing.T) {
	var e Editor
	if err := e.Reengage(false); err != nil {
		t.Fatalf("Expected no conflict without manual edits, got %v", err)
	}

	e.Refresh("SELECT t1.x \nFROM a as t1 \n", true)
	e.Edit("SELECT 1")

	if err := e.Reengage(false); !errors.Is(err, ErrManualEditConflict) {
		t.Fatalf("Expected ErrManualEditConflict, got %v", err)
	}
	if !e.Locked() || e.Text() != "SELECT 1" {
		t.Fatal("Declining must leave the manual text in place")
	}

	if err := e.Reengage(true); err != nil {
		t.Fatalf("Expected confirmation to succeed, got %v", err)
	}
	if e.Locked() {
		t.Fatal("Expected editor to unlock after confirmation")
	}
	if !e.Refresh("SELECT t1.y \nFROM a as t1 \n", true) || e.Text() != "SELECT t1.y \nFROM a as t1 \n" {
		t.Errorf("Expected generated query to replace manual text, got %q", e.Text())
	}
}
