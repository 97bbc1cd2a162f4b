package whisper

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avollmer/whisperctl/internal/platform"
)

// Help/version conventions differ between whisper.cpp builds: some exit
// non-zero on --help but still print usage mentioning the tool family.
const markerToken = "whisper"

// DefaultProbeTimeout bounds a single candidate probe so a hung or
// non-executable candidate cannot block discovery.
const DefaultProbeTimeout = 5 * time.Second

// Probe decides whether a candidate path or command is a working instance of
// the engine.
type Probe struct {
	Runner  Runner
	Timeout time.Duration
	Logger  *zap.Logger
}

func NewProbe(runner Runner, logger *zap.Logger) *Probe {
	if runner == nil {
		runner = NewRunner()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Probe{Runner: runner, Timeout: DefaultProbeTimeout, Logger: logger}
}

// Available runs the candidate with --help. The candidate qualifies if it
// exits zero, or if its combined output contains the marker token.
func (p *Probe) Available(ctx context.Context, candidate string) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := p.Runner.Run(probeCtx, candidate, "--help")
	if err != nil {
		p.Logger.Debug("probe failed to run candidate", zap.String("candidate", candidate), zap.Error(err))
		return false
	}

	if result.ExitCode == 0 {
		return true
	}

	combined := strings.ToLower(result.Stdout + result.Stderr)
	return strings.Contains(combined, markerToken)
}

// FindEngine probes the discovery candidates in order and returns the first
// that verifies.
func FindEngine(ctx context.Context, env platform.Env, override string, probe *Probe) (string, error) {
	candidates := EngineCandidates(env, override)

	for _, candidate := range candidates {
		if probe.Available(ctx, candidate) {
			probe.Logger.Debug("engine candidate verified", zap.String("engine", candidate))
			return candidate, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}

	return "", &NotFoundError{Subject: "engine binary", Searched: candidates}
}
