package scaffold

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrEditorNotFound is returned by Edit when the editor binary cannot be
// found. The file has been written regardless.
var ErrEditorNotFound = errors.New("scaffold: cannot open file in editor")

// DefaultEditor picks the editor from $VISUAL, then $EDITOR, then vi.
func DefaultEditor() string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "vi"
}

// Edit opens file in the configured editor and waits for it to exit.
func (a *Author) Edit(ctx context.Context, file string) error {
	a.setDefaults()
	args := strings.Fields(a.Editor)
	if len(args) == 0 {
		args = strings.Fields(DefaultEditor())
	}
	bin, err := exec.LookPath(args[0])
	if err != nil {
		return fmt.Errorf("%w %s", ErrEditorNotFound, args[0])
	}

	cmd := exec.CommandContext(ctx, bin, append(args[1:], file)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	a.Logger.Debug("launching editor", "editor", bin, "file", file)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("scaffold: editor %s: %w", args[0], err)
	}
	return nil
}
