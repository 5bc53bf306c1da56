// Package rename drives the per-image rename pipeline: prepare the image, ask
// the model for a name, sanitize it, pick a collision-free path and apply the
// rename. Batches run strictly one image at a time, in input order, and one
// image's failure never stops the others.
package rename

import (
	"github.com/fpang/vision-rename/internal/filehandler"
)

// Status is the presentation-facing state of one task.
//
// Transitions: pending -> processing -> success | skipped | error.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusSkipped    Status = "skipped"
	StatusError      Status = "error"
)

// UnchangedNote is the Outcome.Error of a successful no-op rename.
const UnchangedNote = "unchanged"

// ImageTask is one unit of work: the absolute path of an existing image.
type ImageTask struct {
	Path string `json:"path"`
}

// NewTasks builds tasks from a selection, keeping only supported image
// extensions and preserving order.
func NewTasks(paths []string) []ImageTask {
	images := filehandler.FilterImages(paths)
	tasks := make([]ImageTask, 0, len(images))
	for _, p := range images {
		tasks = append(tasks, ImageTask{Path: p})
	}
	return tasks
}

// Outcome is the result of processing one ImageTask.
//
// Success with Error == UnchangedNote means the suggested name already
// matched the file and nothing was touched.
type Outcome struct {
	Success bool   `json:"success"`
	OldName string `json:"oldName"`
	NewName string `json:"newName,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Unchanged reports whether the outcome is a successful no-op.
func (o Outcome) Unchanged() bool {
	return o.Success && o.Error == UnchangedNote
}

// Status maps the outcome onto its terminal Status.
func (o Outcome) Status() Status {
	switch {
	case o.Unchanged():
		return StatusSkipped
	case o.Success:
		return StatusSuccess
	default:
		return StatusError
	}
}

// Summary is the final tally of a batch. Unchanged outcomes count as
// successes.
type Summary struct {
	SuccessCount int `json:"successCount"`
	Total        int `json:"total"`
}
