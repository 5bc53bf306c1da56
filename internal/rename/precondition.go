package rename

import (
	"context"
	"errors"

	"github.com/fpang/vision-rename/internal/vision"
	"github.com/rs/zerolog/log"
)

// CheckPreconditions verifies a batch can start: there is at least one task,
// the model server answers and it offers at least one model. It returns the
// available models so the caller can pick one. Checks run in that order and
// stop at the first failure.
func CheckPreconditions(ctx context.Context, svc vision.Service, tasks []ImageTask) ([]vision.ModelDescriptor, error) {
	if len(tasks) == 0 {
		return nil, &PreconditionError{Kind: PreconditionNoImages, Message: "No images selected"}
	}

	if !svc.CheckConnection(ctx) {
		return nil, &PreconditionError{Kind: PreconditionUnreachable, Message: "Model server is not reachable"}
	}

	models, err := svc.ListModels(ctx)
	if err != nil {
		return nil, &PreconditionError{Kind: PreconditionUnreachable, Message: "Could not list models", Err: err}
	}
	if len(models) == 0 {
		return nil, &PreconditionError{Kind: PreconditionNoModels, Message: "No models available"}
	}

	log.Debug().Int("images", len(tasks)).Int("models", len(models)).Msg("Preconditions satisfied")
	return models, nil
}

// IsPrecondition reports whether err is a PreconditionError of kind k.
func IsPrecondition(err error, k PreconditionKind) bool {
	var pe *PreconditionError
	return errors.As(err, &pe) && pe.Kind == k
}
