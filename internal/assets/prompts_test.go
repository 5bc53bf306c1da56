package assets

import (
	"strings"
	"testing"
)

func TestRenameInstruction(t *testing.T) {
	got := RenameInstruction()
	if got == "" {
		t.Fatal("embedded instruction is empty")
	}
	if got != strings.TrimSpace(got) {
		t.Error("instruction should be trimmed")
	}
	for _, want := range []string{"filename", "underscores", "under 50 characters"} {
		if !strings.Contains(got, want) {
			t.Errorf("instruction missing %q", want)
		}
	}
}
