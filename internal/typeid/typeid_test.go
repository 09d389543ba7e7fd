package typeid

import (
	"strings"
	"testing"
)

func TestNewIDsCarryPrefix(t *testing.T) {
	if id := NewBoardID(); !strings.HasPrefix(id, PrefixBoard+"_") {
		t.Errorf("board id %q missing prefix", id)
	}
	if id := NewObjectID(); !strings.HasPrefix(id, PrefixObject+"_") {
		t.Errorf("object id %q missing prefix", id)
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewObjectID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestValidate(t *testing.T) {
	boardID := NewBoardID()

	if err := Validate(boardID, PrefixBoard); err != nil {
		t.Errorf("valid id rejected: %v", err)
	}
	if err := Validate(boardID, PrefixObject); err == nil {
		t.Error("wrong prefix accepted")
	}
	if err := Validate("not a typeid", PrefixBoard); err == nil {
		t.Error("garbage accepted")
	}
}
