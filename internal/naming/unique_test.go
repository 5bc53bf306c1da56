package naming

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}

func TestUniquePath(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"absent", nil, "cat.jpg"},
		{"one collision", []string{"cat.jpg"}, "cat_1.jpg"},
		{"two collisions", []string{"cat.jpg", "cat_1.jpg"}, "cat_2.jpg"},
		{"gap is reused", []string{"cat.jpg", "cat_2.jpg"}, "cat_1.jpg"},
		{"other extension ignored", []string{"cat.png"}, "cat.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.existing {
				touch(t, filepath.Join(dir, name))
			}

			got := UniquePath(dir, "cat", ".jpg")
			if want := filepath.Join(dir, tt.want); got != want {
				t.Errorf("UniquePath() = %q, want %q", got, want)
			}
		})
	}
}

func TestUniquePathObservesEarlierRenames(t *testing.T) {
	dir := t.TempDir()
	src := []string{"a.jpg", "b.jpg", "c.jpg"}
	for _, name := range src {
		touch(t, filepath.Join(dir, name))
	}

	var got []string
	for _, name := range src {
		dst := UniquePath(dir, "dog", ".jpg")
		if err := os.Rename(filepath.Join(dir, name), dst); err != nil {
			t.Fatalf("rename failed: %v", err)
		}
		got = append(got, filepath.Base(dst))
	}

	want := []string{"dog.jpg", "dog_1.jpg", "dog_2.jpg"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rename %d landed at %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUniquePathForSelf(t *testing.T) {
	dir := t.TempDir()
	self := filepath.Join(dir, "cat.jpg")
	touch(t, self)

	if got := UniquePathFor(dir, "cat", ".jpg", self, nil); got != self {
		t.Errorf("UniquePathFor(self) = %q, want %q", got, self)
	}

	other := filepath.Join(dir, "other.jpg")
	touch(t, other)
	want := filepath.Join(dir, "cat_1.jpg")
	if got := UniquePathFor(dir, "cat", ".jpg", other, nil); got != want {
		t.Errorf("UniquePathFor(other) = %q, want %q", got, want)
	}
}

func TestUniquePathForClaims(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.jpg")
	touch(t, a)
	touch(t, b)

	claims := Claims{}
	first := UniquePathFor(dir, "cat", ".jpg", a, claims)
	if want := filepath.Join(dir, "cat.jpg"); first != want {
		t.Fatalf("first = %q, want %q", first, want)
	}
	claims.Claim(a, first)

	if got, want := UniquePathFor(dir, "cat", ".jpg", b, claims), filepath.Join(dir, "cat_1.jpg"); got != want {
		t.Errorf("claimed path reused: got %q, want %q", got, want)
	}
	// a.jpg is still on disk but has been vacated by the planned rename.
	if got := UniquePathFor(dir, "a", ".jpg", b, claims); got != a {
		t.Errorf("vacated path = %q, want %q", got, a)
	}
}
