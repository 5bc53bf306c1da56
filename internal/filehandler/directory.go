package filehandler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ScanOptions configures directory scanning behavior.
type ScanOptions struct {
	// Recursive descends into subdirectories. Off by default: only the
	// directory's own entries are considered.
	Recursive bool

	// Limit caps the number of images returned. 0 = unlimited.
	Limit int
}

// ScanDirectory returns the absolute paths of the supported images in
// dirPath, sorted by path. Symlinks to files are followed; symlinks to
// directories are skipped to prevent loops.
func ScanDirectory(dirPath string, opts ScanOptions) ([]string, error) {
	log.Debug().
		Str("path", dirPath).
		Bool("recursive", opts.Recursive).
		Int("limit", opts.Limit).
		Msg("Scanning directory for images")

	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", dirPath)
		}
		return nil, fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	var images []string
	limitReached := false

	err = filepath.WalkDir(absPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error accessing path, skipping")
			return nil
		}

		if d.IsDir() {
			if path != absPath && !opts.Recursive {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			targetInfo, err := os.Stat(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Failed to resolve symlink, skipping")
				return nil
			}
			if targetInfo.IsDir() {
				log.Debug().Str("path", path).Msg("Skipping symlink to directory")
				return nil
			}
		}

		if !IsImage(filepath.Ext(d.Name())) {
			return nil
		}

		if opts.Limit > 0 && len(images) >= opts.Limit {
			limitReached = true
			return fs.SkipAll
		}

		images = append(images, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(images)

	logEvent := log.Debug().
		Int("total_images", len(images)).
		Str("directory", absPath)
	if limitReached {
		logEvent.Bool("limit_reached", true)
	}
	logEvent.Msg("Directory scan complete")

	return images, nil
}

// ExpandPaths turns command-line arguments into absolute file paths, in
// argument order. Directories are replaced by their scanned images; other
// arguments are passed through unfiltered.
func ExpandPaths(args []string, opts ScanOptions) ([]string, error) {
	var paths []string
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}

		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			images, err := ScanDirectory(arg, opts)
			if err != nil {
				return nil, err
			}
			paths = append(paths, images...)
			continue
		}

		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for %s: %w", arg, err)
		}
		paths = append(paths, abs)
	}
	return paths, nil
}
