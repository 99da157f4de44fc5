package core

import (
	"testing"
)

func TestComputeSelectionHashIgnoresMapOrder(t *testing.T) {
	a := ComputeSelectionHash("file:x", map[string]interface{}{"Age": "18:30", "Gender": "Female"})
	b := ComputeSelectionHash("file:x", map[string]interface{}{"Gender": "Female", "Age": "18:30"})
	if !a.Equals(b) {
		t.Errorf("expected equal hashes, got %s and %s", a, b)
	}

	c := ComputeSelectionHash("file:y", map[string]interface{}{"Age": "18:30", "Gender": "Female"})
	if a.Equals(c) {
		t.Error("different sources must hash differently")
	}
	if len(a.Short()) != 12 {
		t.Errorf("expected 12 character short hash, got %q", a.Short())
	}
}
