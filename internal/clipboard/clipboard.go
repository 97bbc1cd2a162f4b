// Package clipboard hands transcripts to the platform clipboard tool.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// ErrUnavailable means no known clipboard command is installed.
var ErrUnavailable = errors.New("no clipboard command available")

const copyTimeout = 4 * time.Second

type tool struct {
	name string
	args []string
}

func candidateTools() []tool {
	if runtime.GOOS == "darwin" {
		return []tool{{name: "pbcopy"}}
	}
	return []tool{
		{name: "wl-copy"},
		{name: "xclip", args: []string{"-selection", "clipboard", "-in"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
	}
}

// Copy writes value to the system clipboard via the first available tool.
func Copy(ctx context.Context, value string) error {
	var selected tool
	found := false
	for _, candidate := range candidateTools() {
		if _, err := exec.LookPath(candidate.name); err == nil {
			selected = candidate
			found = true
			break
		}
	}
	if !found {
		return ErrUnavailable
	}

	copyCtx, cancel := context.WithTimeout(ctx, copyTimeout)
	defer cancel()

	cmd := exec.CommandContext(copyCtx, selected.name, selected.args...)
	cmd.Stdin = strings.NewReader(value)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Run(); err != nil {
		if errors.Is(copyCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("copy to clipboard timed out: %w", copyCtx.Err())
		}
		return fmt.Errorf("copy to clipboard with %s: %w", selected.name, err)
	}

	return nil
}
