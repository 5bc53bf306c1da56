package filehandler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // registers the WebP decoder with image.Decode
)

const (
	// DefaultMaxDimension caps the longer edge of the payload image.
	DefaultMaxDimension = 512

	// DefaultJPEGQuality is the re-encode quality (1-100).
	DefaultJPEGQuality = 80

	// PayloadMIMEType is the MIME type of every prepared payload.
	PayloadMIMEType = "image/jpeg"

	scratchPrefix = "vision-rename-"
)

// ConversionError reports that an image could not be re-encoded.
type ConversionError struct {
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("Image conversion failed for %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Preprocessor downsamples images and re-encodes them as JPEG.
//
// The JPEG is written to a uniquely named scratch file which is removed on
// every exit path before Prepare returns.
type Preprocessor struct {
	// MaxDimension caps the longer edge; smaller images are never upscaled.
	MaxDimension int

	// Quality is the JPEG quality, 1-100.
	Quality int

	// ScratchDir holds the transient JPEG. Empty means os.TempDir().
	ScratchDir string

	// FFmpegPath overrides the ffmpeg lookup for the fallback converter.
	// Empty means look it up on PATH.
	FFmpegPath string
}

// NewPreprocessor returns a Preprocessor with the default size and quality.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		MaxDimension: DefaultMaxDimension,
		Quality:      DefaultJPEGQuality,
	}
}

// Prepare returns the re-encoded JPEG bytes of the image at path and their
// MIME type. Images Go cannot decode are handed to ffmpeg when available.
// Every failure is a *ConversionError.
func (p *Preprocessor) Prepare(ctx context.Context, path string) ([]byte, string, error) {
	start := time.Now()

	if _, err := os.Stat(path); err != nil {
		return nil, "", &ConversionError{Path: path, Err: err}
	}

	scratch, err := p.scratchPath()
	if err != nil {
		return nil, "", &ConversionError{Path: path, Err: err}
	}
	defer removeScratch(scratch)

	method := "native"
	if err := p.convertNative(path, scratch); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Native decode failed, trying ffmpeg")
		if ffErr := p.convertFFmpeg(ctx, path, scratch); ffErr != nil {
			return nil, "", &ConversionError{Path: path, Err: errors.Join(err, ffErr)}
		}
		method = "ffmpeg"
	}

	data, err := os.ReadFile(scratch)
	if err != nil {
		return nil, "", &ConversionError{Path: path, Err: fmt.Errorf("failed to read re-encoded image: %w", err)}
	}
	if len(data) == 0 {
		return nil, "", &ConversionError{Path: path, Err: errors.New("re-encoding produced an empty file")}
	}

	log.Debug().
		Str("path", path).
		Str("method", method).
		Int("output_size", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Image prepared")

	return data, PayloadMIMEType, nil
}

// convertNative decodes with EXIF auto-orientation, downsamples, flattens
// transparency onto white and saves a JPEG at dst.
func (p *Preprocessor) convertNative(src, dst string) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	newWidth, newHeight := calculateDimensions(bounds.Dx(), bounds.Dy(), p.maxDimension())
	if newWidth == 0 || newHeight == 0 {
		return fmt.Errorf("image has no pixels (%dx%d)", bounds.Dx(), bounds.Dy())
	}

	out := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(out, out.Bounds(), img, bounds, draw.Over, nil)

	if err := imaging.Save(out, dst, imaging.JPEGQuality(p.quality())); err != nil {
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}

	log.Debug().
		Str("path", src).
		Int("orig_width", bounds.Dx()).
		Int("orig_height", bounds.Dy()).
		Int("new_width", newWidth).
		Int("new_height", newHeight).
		Msg("Image re-encoded (pure Go)")
	return nil
}

// convertFFmpeg converts formats the Go decoders do not understand.
func (p *Preprocessor) convertFFmpeg(ctx context.Context, src, dst string) error {
	ffmpegPath := p.FFmpegPath
	if ffmpegPath == "" {
		var err error
		ffmpegPath, err = exec.LookPath("ffmpeg")
		if err != nil {
			return errors.New("ffmpeg not found: cannot convert this image format")
		}
	}

	// Downscale only, preserving aspect ratio; single frame for animated input.
	maxDim := p.maxDimension()
	vf := fmt.Sprintf("scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease", maxDim, maxDim)
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-loglevel", "error",
		"-i", src,
		"-vf", vf,
		"-frames:v", "1",
		"-q:v", fmt.Sprintf("%d", ffmpegQScale(p.quality())),
		"-y", dst,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w: %s", err, truncateOutput(string(output), 300))
	}
	return nil
}

// scratchPath builds a scratch file name unique to this invocation.
func (p *Preprocessor) scratchPath() (string, error) {
	dir := p.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	name := fmt.Sprintf("%s%d-%s.jpg", scratchPrefix, time.Now().UnixNano(), uuid.NewString())
	return filepath.Join(dir, name), nil
}

func (p *Preprocessor) maxDimension() int {
	if p.MaxDimension <= 0 {
		return DefaultMaxDimension
	}
	return p.MaxDimension
}

func (p *Preprocessor) quality() int {
	if p.Quality < 1 || p.Quality > 100 {
		return DefaultJPEGQuality
	}
	return p.Quality
}

// removeScratch deletes a scratch file; a file that was never written is fine.
func removeScratch(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", path).Msg("Failed to remove scratch file")
	}
}

// calculateDimensions scales width x height so the longer edge is at most
// maxDimension, preserving aspect ratio. It never upscales.
func calculateDimensions(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}

	if width >= height {
		newHeight := int(float64(height) * float64(maxDimension) / float64(width))
		return maxDimension, max(newHeight, 1)
	}

	newWidth := int(float64(width) * float64(maxDimension) / float64(height))
	return max(newWidth, 1), maxDimension
}

// ffmpegQScale maps a 1-100 JPEG quality onto ffmpeg's 2 (best) to 31 scale.
func ffmpegQScale(quality int) int {
	return 2 + (100-quality)*29/100
}

func truncateOutput(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
