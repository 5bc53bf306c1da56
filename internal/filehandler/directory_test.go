package filehandler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.jpg", "a.PNG", "notes.txt", "sub/c.gif", "sub/deeper/d.bmp")

	tests := []struct {
		name string
		opts ScanOptions
		want []string
	}{
		{"top level only", ScanOptions{}, []string{"a.PNG", "b.jpg"}},
		{"recursive", ScanOptions{Recursive: true}, []string{"a.PNG", "b.jpg", "sub/c.gif", "sub/deeper/d.bmp"}},
		{"limit", ScanOptions{Recursive: true, Limit: 1}, []string{"a.PNG"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScanDirectory(root, tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var want []string
			for _, name := range tt.want {
				want = append(want, filepath.Join(root, name))
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ScanDirectory() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanDirectoryErrors(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "file.jpg")

	if _, err := ScanDirectory(filepath.Join(root, "missing"), ScanOptions{}); err == nil {
		t.Error("expected error for missing directory")
	}
	if _, err := ScanDirectory(filepath.Join(root, "file.jpg"), ScanOptions{}); err == nil {
		t.Error("expected error for a file path")
	}
}

func TestExpandPaths(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "dir/x.jpg", "dir/y.png", "loose.webp", "readme.md")

	args := []string{
		filepath.Join(root, "loose.webp"),
		filepath.Join(root, "dir"),
		filepath.Join(root, "readme.md"),
		"  ",
	}
	got, err := ExpandPaths(args, ScanOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		filepath.Join(root, "loose.webp"),
		filepath.Join(root, "dir", "x.jpg"),
		filepath.Join(root, "dir", "y.png"),
		filepath.Join(root, "readme.md"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExpandPaths() mismatch (-want +got):\n%s", diff)
	}
}
