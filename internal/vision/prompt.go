package vision

import "github.com/fpang/vision-rename/internal/assets"

// RenameInstruction is sent as the text part of every describe request.
var RenameInstruction = assets.RenameInstruction()

// Generation parameters for describe requests. Low temperature and a small
// token budget keep answers terse and repeatable.
const (
	describeMaxTokens   = 100
	describeTemperature = 0.3
)
