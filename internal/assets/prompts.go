// Package assets provides embedded static assets for the application.
//
// Prompt texts are stored as files under prompts/ and embedded at compile time.
package assets

import (
	_ "embed"
	"strings"
)

//go:embed prompts/rename-instruction.txt
var renameInstruction string

// RenameInstruction returns the instruction sent with every image, without
// surrounding whitespace.
func RenameInstruction() string {
	return strings.TrimSpace(renameInstruction)
}
