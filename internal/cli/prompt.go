package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fpang/vision-rename/internal/vision"
)

// ErrNoSelection is returned when the user gives no usable answer.
var ErrNoSelection = errors.New("no model selected")

// PromptForModel lists models as a numbered menu on w and reads the choice
// from r. An empty answer picks the first model. The answer may be the
// number or the model id.
func PromptForModel(r io.Reader, w io.Writer, models []vision.ModelDescriptor) (string, error) {
	if len(models) == 0 {
		return "", ErrNoSelection
	}

	fmt.Fprintln(w, "Available models:")
	for i, m := range models {
		fmt.Fprintf(w, "  %d) %s\n", i+1, m.ID)
	}
	fmt.Fprintf(w, "Model [%s]: ", models[0].ID)

	input, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read model choice: %w", err)
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return models[0].ID, nil
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(models) {
			return "", fmt.Errorf("%w: %d is not in 1-%d", ErrNoSelection, n, len(models))
		}
		return models[n-1].ID, nil
	}
	for _, m := range models {
		if m.ID == input {
			return m.ID, nil
		}
	}
	return "", fmt.Errorf("%w: unknown model %q", ErrNoSelection, input)
}
