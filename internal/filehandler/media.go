// Package filehandler selects the image files a batch works on and prepares
// each one for the model: it filters by extension, expands directories,
// reads capture dates, and re-encodes images into a small JPEG payload.
package filehandler

import (
	"path/filepath"
	"sort"
	"strings"
)

// SupportedImageExtensions maps the extensions a batch accepts to their MIME types.
var SupportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
}

// IsImage returns true if the file extension corresponds to a supported image.
func IsImage(ext string) bool {
	_, ok := SupportedImageExtensions[strings.ToLower(ext)]
	return ok
}

// GetMIMEType returns the MIME type for a supported image extension, or ""
// when the extension is not supported.
func GetMIMEType(ext string) string {
	return SupportedImageExtensions[strings.ToLower(ext)]
}

// FilterImages keeps the paths whose extension is a supported image
// extension (case-insensitive), preserving order.
func FilterImages(paths []string) []string {
	images := make([]string, 0, len(paths))
	for _, p := range paths {
		if IsImage(filepath.Ext(p)) {
			images = append(images, p)
		}
	}
	return images
}

// ImagePatterns returns glob patterns for the supported extensions, sorted,
// for use in file pickers.
func ImagePatterns() []string {
	patterns := make([]string, 0, len(SupportedImageExtensions))
	for ext := range SupportedImageExtensions {
		patterns = append(patterns, "*"+ext)
	}
	sort.Strings(patterns)
	return patterns
}
