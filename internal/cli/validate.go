package cli

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/fpang/vision-rename/internal/rename"
)

// PreconditionMessage turns a batch precondition failure into the single
// explanatory message shown before any task starts.
func PreconditionMessage(err error, baseURL string) string {
	var pe *rename.PreconditionError
	if !errors.As(err, &pe) {
		return "Unexpected error before starting the batch"
	}
	switch pe.Kind {
	case rename.PreconditionNoImages:
		return "No supported images selected. Supported: jpg, jpeg, png, gif, webp, bmp, tiff"
	case rename.PreconditionUnreachable:
		return "Cannot reach the model server at " + baseURL + ". Start LM Studio's local server and try again"
	case rename.PreconditionNoModels:
		return "The model server has no models loaded. Load a vision model and try again"
	default:
		return pe.Message
	}
}

// HandlePreconditionError logs the explanatory message and exits.
func HandlePreconditionError(err error, baseURL string) {
	var pe *rename.PreconditionError
	evt := log.Fatal()
	if errors.As(err, &pe) && pe.Err != nil {
		evt = evt.Err(pe.Err)
	}
	evt.Msg(PreconditionMessage(err, baseURL))
}
