package rename

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// StatusUpdate reports a task's state change to observers.
type StatusUpdate struct {
	Index   int    `json:"index"`
	Path    string `json:"path"`
	OldName string `json:"oldName"`
	NewName string `json:"newName,omitempty"`
	Status  Status `json:"status"`
	Error   string `json:"error,omitempty"`
}

// Observer receives status updates in the order they happen.
type Observer interface {
	OnStatus(StatusUpdate)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(StatusUpdate)

// OnStatus calls f(u).
func (f ObserverFunc) OnStatus(u StatusUpdate) {
	f(u)
}

// Processor handles one task. *Renamer is the production implementation.
type Processor interface {
	Process(ctx context.Context, task ImageTask) Outcome
}

// Runner processes a batch sequentially and reports progress.
type Runner struct {
	proc      Processor
	observers []Observer
}

// NewRunner creates a Runner. Nil observers are ignored.
func NewRunner(proc Processor, observers ...Observer) *Runner {
	r := &Runner{proc: proc}
	for _, o := range observers {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
	return r
}

func (r *Runner) notify(u StatusUpdate) {
	for _, o := range r.observers {
		o.OnStatus(u)
	}
}

// Run processes tasks one at a time in input order. The returned outcomes
// line up index for index with tasks. Once ctx is canceled the current task
// finishes with whatever error its stage reports and every remaining task
// is marked canceled without touching its file.
func (r *Runner) Run(ctx context.Context, tasks []ImageTask) ([]Outcome, Summary) {
	start := time.Now()
	outcomes := make([]Outcome, len(tasks))
	summary := Summary{Total: len(tasks)}

	for i, t := range tasks {
		r.notify(StatusUpdate{Index: i, Path: t.Path, OldName: filepath.Base(t.Path), Status: StatusPending})
	}

	for i, t := range tasks {
		r.notify(StatusUpdate{Index: i, Path: t.Path, OldName: filepath.Base(t.Path), Status: StatusProcessing})

		var out Outcome
		if ctx.Err() != nil {
			out = Outcome{OldName: filepath.Base(t.Path), Error: ErrCanceled.Error()}
		} else {
			out = r.proc.Process(ctx, t)
		}
		outcomes[i] = out
		if out.Success {
			summary.SuccessCount++
		}

		r.notify(StatusUpdate{
			Index:   i,
			Path:    t.Path,
			OldName: out.OldName,
			NewName: out.NewName,
			Status:  out.Status(),
			Error:   out.Error,
		})
	}

	log.Info().
		Int("renamed", summary.SuccessCount).
		Int("total", summary.Total).
		Dur("elapsed", time.Since(start)).
		Msg("Batch complete")
	return outcomes, summary
}
