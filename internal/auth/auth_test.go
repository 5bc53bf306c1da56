package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGetAPIKeyPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name       string
		configured string
		env        string
		want       string
	}{
		{name: "configured wins", configured: "from-config", env: "from-env", want: "from-config"},
		{name: "env fallback", env: "from-env", want: "from-env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", tt.env)
			key, err := GetAPIKey(tt.configured)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if key != tt.want {
				t.Errorf("expected key %q, got %q", tt.want, key)
			}
		})
	}
}

func TestGetAPIKeyNoSource(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	_, err := GetAPIKey("")
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestGetCredentialPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := getCredentialPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := filepath.Join(home, ".vision-rename", "credentials.gpg")
	if path != expected {
		t.Errorf("expected path %q, got %q", expected, path)
	}
}

func TestPassphraseFilePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gpg-passphrase")

	if _, ok := passphraseFile(dir); ok {
		t.Error("missing passphrase file should not be used")
	}

	if err := os.WriteFile(path, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := passphraseFile(dir); ok {
		t.Error("world-readable passphrase file should be skipped")
	}

	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatal(err)
	}
	if got, ok := passphraseFile(dir); !ok || got != path {
		t.Errorf("passphraseFile = %q, %v", got, ok)
	}
}
