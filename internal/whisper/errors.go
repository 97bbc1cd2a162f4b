package whisper

import (
	"fmt"
	"strings"
)

// NotFoundError reports a missing audio file, engine binary, or model file.
// It always carries the full list of locations that were checked so the
// failure can be diagnosed without re-running.
type NotFoundError struct {
	Subject  string // "audio file", "engine binary", "model file"
	Name     string
	Searched []string
	// DownloadURL is set when the missing artifact can be fetched, e.g. a
	// multilingual model file.
	DownloadURL string
}

func (e *NotFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s not found", e.Subject)
	if e.Name != "" {
		fmt.Fprintf(&sb, ": %s", e.Name)
	}
	if len(e.Searched) > 0 {
		fmt.Fprintf(&sb, " (searched: %s)", strings.Join(e.Searched, ", "))
	}
	if e.DownloadURL != "" {
		fmt.Fprintf(&sb, "; download it from %s", e.DownloadURL)
	}
	return sb.String()
}

// ProcessError reports a subprocess that could not be spawned or exited
// non-zero. Both output streams are kept verbatim.
type ProcessError struct {
	Command  string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ProcessError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s exited with code %d", e.Command, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		fmt.Fprintf(&sb, "; stderr: %s", stderr)
	}
	if stdout := strings.TrimSpace(e.Stdout); stdout != "" {
		fmt.Fprintf(&sb, "; stdout: %s", stdout)
	}
	return sb.String()
}

// EmptyResultError means the engine ran successfully but produced no text on
// stdout and no usable side file. The likely cause is the audio content
// (silence, too short), not the tooling.
type EmptyResultError struct {
	AudioPath string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("engine produced no transcript for %s; the audio may be silent or too short", e.AudioPath)
}
