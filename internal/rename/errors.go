package rename

import (
	"errors"
	"fmt"
)

// ErrEmptyName is reported when the model suggestion sanitizes to nothing.
var ErrEmptyName = errors.New("Empty name returned")

// ErrCanceled is reported for tasks that never ran because the batch was canceled.
var ErrCanceled = errors.New("canceled")

// FilesystemError reports a failed rename.
type FilesystemError struct {
	From string
	To   string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("Rename failed: %v", e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// PreconditionKind names a batch-level blocking condition.
type PreconditionKind int

const (
	// PreconditionNoImages means the selection held no supported images.
	PreconditionNoImages PreconditionKind = iota
	// PreconditionUnreachable means the model server did not answer.
	PreconditionUnreachable
	// PreconditionNoModels means the server answered but offers no models.
	PreconditionNoModels
)

// PreconditionError is surfaced once, before any task starts.
type PreconditionError struct {
	Kind    PreconditionKind
	Message string
	Err     error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}
