package naming

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// UniquePath returns dir/baseName+ext if nothing exists there, otherwise the
// first free dir/baseName_N+ext for N = 1, 2, ...
//
// ext includes the leading dot. Every lookup re-queries the filesystem, so
// renames committed earlier in the same batch are always observed.
func UniquePath(dir, baseName, ext string) string {
	return UniquePathFor(dir, baseName, ext, "", nil)
}

// Claims overlays renames that were planned but not applied on top of the
// filesystem: Claims[p] == true means p is taken, false means p has been
// vacated. Paths without an entry are looked up on disk.
type Claims map[string]bool

// Claim records that from was planned to move to to.
func (c Claims) Claim(from, to string) {
	c[from] = false
	c[to] = true
}

// UniquePathFor is UniquePath for renaming the file at self: a candidate that
// refers to self (same path, or the same file on a case-insensitive
// filesystem) is not a collision. claims may be nil.
func UniquePathFor(dir, baseName, ext, self string, claims Claims) string {
	var selfInfo os.FileInfo
	if self != "" {
		if info, err := os.Lstat(self); err == nil {
			selfInfo = info
		}
	}

	candidate := filepath.Join(dir, baseName+ext)
	for counter := 1; ; counter++ {
		if claims.free(candidate, selfInfo) {
			if counter > 1 {
				log.Debug().
					Str("base_name", baseName).
					Str("path", candidate).
					Int("attempts", counter).
					Msg("Resolved name collision")
			}
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", baseName, counter, ext))
	}
}

func (c Claims) free(path string, self os.FileInfo) bool {
	if taken, ok := c[path]; ok {
		return !taken
	}
	return isFree(path, self)
}

// isFree reports whether path can be used as a rename destination.
func isFree(path string, self os.FileInfo) bool {
	info, err := os.Lstat(path)
	if err != nil {
		// Anything other than "not exist" (e.g. an unsearchable directory)
		// makes the rename itself fail, which is where it gets reported.
		return true
	}
	return self != nil && os.SameFile(info, self)
}
