package cli

import (
	"errors"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"

	"github.com/fpang/vision-rename/internal/filehandler"
)

// PickImages opens the native multi-file dialog filtered to supported
// images. A canceled dialog returns no paths and no error.
func PickImages() ([]string, error) {
	selected, err := zenity.SelectFileMultiple(
		zenity.Title("Select images to rename"),
		zenity.FileFilters{
			{
				Name:     "Images",
				Patterns: filehandler.ImagePatterns(),
			},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			log.Info().Msg("File picker canceled")
			return nil, nil
		}
		return nil, err
	}
	log.Info().Int("count", len(selected)).Msg("Files picked via native dialog")
	return selected, nil
}
