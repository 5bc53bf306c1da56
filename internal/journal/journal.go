// Package journal records applied renames as JSON lines so a batch can be
// rolled back later. A journal path ending in .zst is zstd-compressed.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/fpang/vision-rename/internal/rename"
)

// Entry is one applied rename.
type Entry struct {
	Time    time.Time `json:"time"`
	Dir     string    `json:"dir"`
	OldName string    `json:"oldName"`
	NewName string    `json:"newName"`
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// Writer appends entries to a journal file. It implements rename.Observer
// and records every successful rename that changed a name.
type Writer struct {
	mu   sync.Mutex
	path string
	f    *os.File
	zw   *zstd.Encoder
	w    *bufio.Writer
	enc  *json.Encoder
	n    int
	err  error
	now  func() time.Time
}

// Create opens path for appending, creating it if needed. Each Writer
// session on a .zst journal adds one zstd frame.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	jw := &Writer{path: path, f: f, now: time.Now}
	var dst io.Writer = f
	if compressed(path) {
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		jw.zw = zw
		dst = zw
	}
	jw.w = bufio.NewWriter(dst)
	jw.enc = json.NewEncoder(jw.w)
	return jw, nil
}

// Append writes one entry and flushes it to the file, so a crash mid-batch
// still leaves every applied rename on disk.
func (jw *Writer) Append(e Entry) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	if err := jw.enc.Encode(e); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	jw.n++
	if err := jw.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush journal: %w", err)
	}
	if jw.zw != nil {
		if err := jw.zw.Flush(); err != nil {
			return fmt.Errorf("failed to flush journal: %w", err)
		}
	}
	return nil
}

// OnStatus records successful renames. Write failures are logged and
// returned later from Close so they never interrupt a batch.
func (jw *Writer) OnStatus(u rename.StatusUpdate) {
	if u.Status != rename.StatusSuccess || u.NewName == "" || u.NewName == u.OldName {
		return
	}
	err := jw.Append(Entry{
		Time:    jw.now().UTC(),
		Dir:     filepath.Dir(u.Path),
		OldName: u.OldName,
		NewName: u.NewName,
	})
	if err != nil {
		log.Error().Err(err).Str("journal", jw.path).Msg("Journal write failed")
		jw.mu.Lock()
		if jw.err == nil {
			jw.err = err
		}
		jw.mu.Unlock()
	}
}

// Len returns the number of entries written in this session.
func (jw *Writer) Len() int {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	return jw.n
}

// Close flushes and closes the journal. It reports the first write error
// seen by OnStatus, if any.
func (jw *Writer) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	errs := []error{jw.err, jw.w.Flush()}
	if jw.zw != nil {
		errs = append(errs, jw.zw.Close())
	}
	errs = append(errs, jw.f.Close())
	if err := errors.Join(errs...); err != nil {
		return err
	}
	log.Debug().Str("journal", jw.path).Int("entries", jw.n).Msg("Journal closed")
	return nil
}

// Read loads every entry from the journal at path, oldest first.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	if compressed(path) {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	var entries []Entry
	dec := json.NewDecoder(src)
	for {
		var e Entry
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return entries, fmt.Errorf("failed to parse journal entry %d: %w", len(entries)+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
