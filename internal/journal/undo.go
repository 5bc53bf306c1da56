package journal

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// UndoResult reports what happened to one journal entry.
type UndoResult struct {
	Entry    Entry  `json:"entry"`
	Restored bool   `json:"restored"`
	Reason   string `json:"reason,omitempty"`
}

// Reasons an entry is skipped.
const (
	ReasonMissing = "renamed file no longer exists"
	ReasonTaken   = "original name is taken"
)

// Undo reverses entries newest first, so chains of renames within one
// directory unwind correctly. An entry is skipped when its renamed file is
// gone or something already occupies the original name. Undo stops early if
// ctx is canceled.
func Undo(ctx context.Context, entries []Entry) ([]UndoResult, error) {
	results := make([]UndoResult, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, undoOne(entries[i]))
	}
	return results, nil
}

func undoOne(e Entry) UndoResult {
	current := filepath.Join(e.Dir, e.NewName)
	original := filepath.Join(e.Dir, e.OldName)

	curInfo, err := os.Lstat(current)
	if err != nil {
		return UndoResult{Entry: e, Reason: ReasonMissing}
	}
	// A case-only rename on a case-insensitive filesystem sees the original
	// name as present; it is the same file, so it does not block the undo.
	origInfo, err := os.Lstat(original)
	switch {
	case err == nil:
		if !os.SameFile(origInfo, curInfo) {
			return UndoResult{Entry: e, Reason: ReasonTaken}
		}
	case !errors.Is(err, fs.ErrNotExist):
		return UndoResult{Entry: e, Reason: ReasonTaken}
	}
	if err := os.Rename(current, original); err != nil {
		return UndoResult{Entry: e, Reason: err.Error()}
	}

	log.Info().Str("from", e.NewName).Str("to", e.OldName).Str("dir", e.Dir).Msg("Restored")
	return UndoResult{Entry: e, Restored: true}
}
