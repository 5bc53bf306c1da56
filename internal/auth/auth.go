// Package auth resolves the API key for the hosted Gemini provider.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".vision-rename"
	credentialFile = "credentials.gpg"
)

// ErrNoAPIKey is returned when no source provides a key.
var ErrNoAPIKey = errors.New("Gemini API key not found. Set gemini_api_key in the config, GEMINI_API_KEY, or store it in ~/" + credentialDir + "/" + credentialFile)

// GetAPIKey returns the first key found, in order:
//  1. configured (from flag, VISION_RENAME_GEMINI_API_KEY or the config file)
//  2. GEMINI_API_KEY environment variable
//  3. GPG-encrypted file at ~/.vision-rename/credentials.gpg
func GetAPIKey(configured string) (string, error) {
	if configured != "" {
		log.Debug().Msg("Using API key from configuration")
		return configured, nil
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}

	key, err := getFromGPG()
	if err == nil && key != "" {
		log.Debug().Msg("Using API key from GPG encrypted file")
		return key, nil
	}

	log.Debug().Err(err).Msg("No GPG credentials")
	return "", ErrNoAPIKey
}

// getFromGPG decrypts the API key from the credentials file.
func getFromGPG() (string, error) {
	credPath, err := getCredentialPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(credPath); os.IsNotExist(err) {
		return "", fmt.Errorf("GPG credentials file not found at %s", credPath)
	}

	log.Debug().Str("file", credPath).Msg("Decrypting GPG credentials")

	args := []string{"--decrypt", "--quiet"}
	if passphrasePath, ok := passphraseFile(filepath.Dir(credPath)); ok {
		args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", passphrasePath)
	}
	args = append(args, credPath)

	output, err := exec.Command("gpg", args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("GPG decryption failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// getCredentialPath returns the full path to the credentials file.
func getCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, credentialDir, credentialFile), nil
}

// passphraseFile returns dir/.gpg-passphrase when it exists and is
// readable by the owner only.
func passphraseFile(dir string) (string, bool) {
	path := filepath.Join(dir, ".gpg-passphrase")
	fi, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if mode := fi.Mode().Perm(); mode&0o077 != 0 {
		log.Warn().
			Str("passphrase_file", path).
			Str("permissions", fmt.Sprintf("%04o", mode)).
			Msg("Passphrase file has insecure permissions (should be 0600); skipping")
		return "", false
	}
	return path, true
}
