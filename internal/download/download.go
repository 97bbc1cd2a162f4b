// Package download acquires model artifacts: streaming GET into a uniquely
// named temp file, throttled progress events, then an atomic rename into the
// final path. Installed-ness is always recomputed from the filesystem; there
// is no ledger.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status tags a progress event.
type Status string

const (
	StatusStarting    Status = "starting"
	StatusDownloading Status = "downloading"
	StatusCompleted   Status = "completed"
)

// Progress is one transient event for a single acquisition. Downloaded is
// non-decreasing across the events of one transfer and the final event always
// reports 100%.
type Progress struct {
	ModelID    string
	Downloaded int64
	Total      int64
	Percentage float64
	Status     Status
}

// ObserverFunc receives progress events. The producer calls it inline, so it
// must return quickly and never block.
type ObserverFunc func(Progress)

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// Events are emitted at most once per interval while chunks arrive.
const progressInterval = 100 * time.Millisecond

type Options struct {
	URL         string
	Destination string
	ModelID     string
	// ExpectedSize is the progress denominator when the server sends no
	// Content-Length. When the two disagree, percentages may exceed 100;
	// that is accepted.
	ExpectedSize int64
	Observer     ObserverFunc
	HTTPClient   *http.Client
	Logger       *zap.Logger
	// Now is the clock used for event throttling; tests inject a fake.
	Now func() time.Time
}

// Fetch installs the artifact at opts.Destination and returns that path.
//
// If the destination already exists the call is an idempotent no-op with no
// network I/O. On a mid-stream failure the temp file is left in place for
// inspection; it never blocks a retry because retries key on the final name
// and every attempt uses a fresh temp suffix. Cancellation removes the temp
// file and returns an error wrapping the context error.
//
// TODO: verify a checksum once the registry pins upstream digests; today a
// completed download is trusted as-is.
func Fetch(ctx context.Context, opts Options) (string, error) {
	if opts.URL == "" {
		return "", errors.New("download URL is required")
	}
	if opts.Destination == "" {
		return "", errors.New("destination path is required")
	}
	if opts.Observer == nil {
		opts.Observer = func(Progress) {}
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Minute}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if _, err := os.Stat(opts.Destination); err == nil {
		opts.Logger.Debug("model already installed", zap.String("path", opts.Destination))
		return opts.Destination, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Destination), 0o755); err != nil {
		return "", fmt.Errorf("create install directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "whisperctl/1")

	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, URL: opts.URL}
	}

	total := resp.ContentLength
	if total <= 0 {
		total = opts.ExpectedSize
	}

	// Unique suffix so two racing acquisitions of the same model never
	// share a temp file; the last rename wins with complete content.
	tempPath := fmt.Sprintf("%s.%s.part", opts.Destination, uuid.NewString())
	outFile, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	opts.Observer(Progress{ModelID: opts.ModelID, Total: total, Status: StatusStarting})

	tracker := &progressTracker{
		modelID:  opts.ModelID,
		total:    total,
		observe:  opts.Observer,
		now:      opts.Now,
		lastEmit: opts.Now(),
	}

	_, copyErr := io.Copy(outFile, io.TeeReader(resp.Body, tracker))
	if copyErr == nil {
		copyErr = outFile.Sync()
	}
	if closeErr := outFile.Close(); copyErr == nil {
		copyErr = closeErr
	}

	if copyErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			_ = os.Remove(tempPath)
			return "", fmt.Errorf("download of %s cancelled: %w", opts.URL, ctxErr)
		}
		// The partial file stays behind for inspection.
		return "", fmt.Errorf("download %s failed after %d bytes (partial file at %s): %w",
			opts.URL, tracker.downloaded, tempPath, copyErr)
	}

	if err := os.Rename(tempPath, opts.Destination); err != nil {
		return "", fmt.Errorf("install downloaded file: %w", err)
	}

	opts.Observer(Progress{
		ModelID:    opts.ModelID,
		Downloaded: tracker.downloaded,
		Total:      total,
		Percentage: 100.0,
		Status:     StatusCompleted,
	})

	opts.Logger.Info("model installed",
		zap.String("model", opts.ModelID),
		zap.String("path", opts.Destination),
		zap.Int64("bytes", tracker.downloaded))

	return opts.Destination, nil
}

// progressTracker accumulates bytes as chunks pass through and emits
// throttled downloading events.
type progressTracker struct {
	modelID    string
	total      int64
	downloaded int64
	observe    ObserverFunc
	now        func() time.Time
	lastEmit   time.Time
}

func (p *progressTracker) Write(chunk []byte) (int, error) {
	p.downloaded += int64(len(chunk))

	now := p.now()
	if now.Sub(p.lastEmit) < progressInterval {
		return len(chunk), nil
	}
	p.lastEmit = now

	var percentage float64
	if p.total > 0 {
		percentage = float64(p.downloaded) / float64(p.total) * 100
	}

	p.observe(Progress{
		ModelID:    p.modelID,
		Downloaded: p.downloaded,
		Total:      p.total,
		Percentage: percentage,
		Status:     StatusDownloading,
	})

	return len(chunk), nil
}
