package rename

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fpang/vision-rename/internal/filehandler"
	"github.com/fpang/vision-rename/internal/metrics"
	"github.com/fpang/vision-rename/internal/naming"
	"github.com/fpang/vision-rename/internal/vision"
	"github.com/rs/zerolog/log"
)

// Preparer turns an image on disk into a model payload.
type Preparer interface {
	Prepare(ctx context.Context, path string) ([]byte, string, error)
}

// Options tune a Renamer.
type Options struct {
	// DryRun resolves the new name but does not touch the filesystem.
	DryRun bool

	// DatePrefix prepends the EXIF capture date (YYYY-MM-DD_) when present.
	DatePrefix bool
}

// Renamer runs the pipeline for one image at a time.
type Renamer struct {
	preparer  Preparer
	describer vision.Describer
	model     string
	opts      Options

	rename      func(oldpath, newpath string) error
	captureDate func(path string) (time.Time, error)

	// claims tracks dry-run renames so later tasks in the batch resolve
	// names as if earlier ones had been applied.
	mu     sync.Mutex
	claims naming.Claims
}

// NewRenamer creates a Renamer that asks model for names. The model
// identifier is passed through to the describer unvalidated.
func NewRenamer(preparer Preparer, describer vision.Describer, model string, opts Options) *Renamer {
	rn := &Renamer{
		preparer:    preparer,
		describer:   describer,
		model:       model,
		opts:        opts,
		rename:      os.Rename,
		captureDate: filehandler.CaptureDate,
	}
	if opts.DryRun {
		rn.claims = naming.Claims{}
	}
	return rn
}

// stage is a step of the per-task state machine.
type stage int

const (
	stageNotStarted stage = iota
	stagePreprocessing
	stageAwaitingModel
	stageSanitizing
	stageResolving
	stageRenaming
	stageDoneSuccess
	stageDoneUnchanged
	stageDoneError
)

var stageNames = [...]string{
	"not started",
	"preprocessing",
	"awaiting model",
	"sanitizing",
	"resolving",
	"renaming",
	"done-success",
	"done-unchanged",
	"done-error",
}

func (s stage) String() string {
	return stageNames[s]
}

func (s stage) done() bool {
	return s >= stageDoneSuccess
}

// run tracks one task through the stages. Stages only move forward.
type run struct {
	path    string
	oldName string
	stage   stage
	rec     *metrics.Recorder
	mark    time.Time
}

func (r *run) enter(next stage) {
	if next <= r.stage || r.stage.done() {
		panic(fmt.Sprintf("rename: illegal transition %s -> %s", r.stage, next))
	}
	log.Trace().Str("file", r.oldName).Str("from", r.stage.String()).Str("to", next.String()).Msg("Task stage")
	r.stage = next
	r.mark = time.Now()
}

// elapsed records the time spent in the current stage under name.
func (r *run) elapsed(name string) {
	r.rec.Duration(name, time.Since(r.mark))
}

func (r *run) fail(err error) Outcome {
	r.enter(stageDoneError)
	r.rec.Dimension("Result", string(StatusError))
	log.Warn().Err(err).Str("path", r.path).Msg("Rename failed")
	return Outcome{Success: false, OldName: r.oldName, Error: err.Error()}
}

// Process runs the full pipeline for task and never returns an error: every
// failure becomes an error Outcome and leaves the file where it was.
func (rn *Renamer) Process(ctx context.Context, task ImageTask) Outcome {
	r := &run{
		path:    task.Path,
		oldName: filepath.Base(task.Path),
		rec:     metrics.New("VisionRename").Property("file", filepath.Base(task.Path)),
	}
	defer r.rec.Flush()

	// 1. Preprocess.
	r.enter(stagePreprocessing)
	payload, mimeType, err := rn.preparer.Prepare(ctx, task.Path)
	if err != nil {
		return r.fail(err)
	}
	r.elapsed("PreprocessMs")
	r.rec.Metric("PayloadBytes", float64(len(payload)), metrics.UnitBytes)

	// 2. Ask the model.
	r.enter(stageAwaitingModel)
	suggestion, err := rn.describer.DescribeImage(ctx, payload, mimeType, rn.model)
	if err != nil {
		return r.fail(err)
	}
	r.elapsed("ModelMs")
	r.rec.Metric("SuggestionChars", float64(len(suggestion)), metrics.UnitCount)

	// 3. Sanitize.
	r.enter(stageSanitizing)
	baseName := naming.Sanitize(suggestion)
	if baseName == "" {
		return r.fail(ErrEmptyName)
	}
	if rn.opts.DatePrefix {
		baseName = rn.withDatePrefix(task.Path, baseName)
	}

	// 4. Resolve a free path next to the original, lowercase extension.
	r.enter(stageResolving)
	dir := filepath.Dir(task.Path)
	ext := strings.ToLower(filepath.Ext(task.Path))
	rn.mu.Lock()
	defer rn.mu.Unlock()
	newPath := naming.UniquePathFor(dir, baseName, ext, task.Path, rn.claims)
	newName := filepath.Base(newPath)

	// 5. Same name: nothing to do.
	if newName == r.oldName {
		r.enter(stageDoneUnchanged)
		r.rec.Dimension("Result", string(StatusSkipped))
		log.Info().Str("file", r.oldName).Msg("Name already matches, unchanged")
		return Outcome{Success: true, OldName: r.oldName, NewName: newName, Error: UnchangedNote}
	}

	// 6. Apply.
	r.enter(stageRenaming)
	if rn.opts.DryRun {
		rn.claims.Claim(task.Path, newPath)
	} else if err := rn.rename(task.Path, newPath); err != nil {
		return r.fail(&FilesystemError{From: task.Path, To: newPath, Err: err})
	}
	r.elapsed("RenameMs")

	// 7. Done.
	r.enter(stageDoneSuccess)
	r.rec.Dimension("Result", string(StatusSuccess))
	log.Info().
		Str("from", r.oldName).
		Str("to", newName).
		Bool("dry_run", rn.opts.DryRun).
		Msg("Renamed")
	return Outcome{Success: true, OldName: r.oldName, NewName: newName}
}

// withDatePrefix prefixes baseName with the capture date when the image has one.
func (rn *Renamer) withDatePrefix(path, baseName string) string {
	date, err := rn.captureDate(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("No capture date, naming without prefix")
		return baseName
	}
	prefix := date.Format("2006-01-02") + "_"
	if strings.HasPrefix(baseName, prefix) {
		return baseName
	}
	return prefix + baseName
}
