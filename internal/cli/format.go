package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fpang/vision-rename/internal/journal"
	"github.com/fpang/vision-rename/internal/rename"
	"github.com/fpang/vision-rename/internal/vision"
)

// FormatDurationShort formats a duration in a short format (M:SS or H:MM:SS).
func FormatDurationShort(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatStatus renders one terminal status update as a report line.
// Non-terminal updates render as "".
func FormatStatus(u rename.StatusUpdate, total int) string {
	prefix := fmt.Sprintf("[%d/%d]", u.Index+1, total)
	switch u.Status {
	case rename.StatusSuccess:
		return fmt.Sprintf("%s %s -> %s", prefix, u.OldName, u.NewName)
	case rename.StatusSkipped:
		return fmt.Sprintf("%s %s (unchanged)", prefix, u.OldName)
	case rename.StatusError:
		return fmt.Sprintf("%s %s FAILED: %s", prefix, u.OldName, u.Error)
	default:
		return ""
	}
}

// FormatSummary renders the final tally.
func FormatSummary(s rename.Summary, elapsed time.Duration) string {
	return fmt.Sprintf("Renamed %d of %d in %s", s.SuccessCount, s.Total, FormatDurationShort(elapsed))
}

// FormatModels renders one "id  owned_by" line per model.
func FormatModels(models []vision.ModelDescriptor) string {
	width := 0
	for _, m := range models {
		width = max(width, len(m.ID))
	}
	var out string
	for _, m := range models {
		out += fmt.Sprintf("%-*s  %s\n", width, m.ID, m.OwnedBy)
	}
	return out
}

// FormatUndo renders one undo result.
func FormatUndo(r journal.UndoResult) string {
	if r.Restored {
		return fmt.Sprintf("%s -> %s", r.Entry.NewName, r.Entry.OldName)
	}
	return fmt.Sprintf("%s skipped: %s", r.Entry.NewName, r.Reason)
}

// Reporter prints terminal task updates as they happen.
type Reporter struct {
	w     io.Writer
	total int
}

// NewReporter creates a Reporter for a batch of total tasks.
func NewReporter(w io.Writer, total int) *Reporter {
	return &Reporter{w: w, total: total}
}

// OnStatus implements rename.Observer.
func (r *Reporter) OnStatus(u rename.StatusUpdate) {
	if line := FormatStatus(u, r.total); line != "" {
		fmt.Fprintln(r.w, line)
	}
}
