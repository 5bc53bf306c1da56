package filehandler

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// ErrNoCaptureDate is returned when an image carries no EXIF date.
var ErrNoCaptureDate = errors.New("no capture date in image metadata")

// CaptureDate reads the EXIF capture date of an image.
//
// Priority: DateTimeOriginal > CreateDate > ModifyDate. Only the metadata
// bytes are read, not the whole image.
func CaptureDate(filePath string) (time.Time, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	exifData, err := imagemeta.Decode(file)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	var date time.Time
	switch {
	case !exifData.DateTimeOriginal().IsZero():
		date = exifData.DateTimeOriginal()
	case !exifData.CreateDate().IsZero():
		date = exifData.CreateDate()
	case !exifData.ModifyDate().IsZero():
		date = exifData.ModifyDate()
	default:
		return time.Time{}, ErrNoCaptureDate
	}

	log.Debug().Str("path", filePath).Time("date", date).Msg("Read capture date")
	return date, nil
}
