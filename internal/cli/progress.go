package cli

import (
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/avollmer/whisperctl/internal/download"
)

type stopFunc func()

// startSpinner shows an indeterminate spinner while the engine runs.
func startSpinner(enabled bool, description string) stopFunc {
	if !enabled {
		return func() {}
	}

	bar := progressbar.NewOptions(
		-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				_ = bar.Finish()
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stopCh)
			<-doneCh
		})
	}
}

// newDownloadObserver adapts acquisition progress events to a terminal
// progress bar. Events arrive on the downloader's goroutine, so the returned
// observer does nothing but update the bar.
func newDownloadObserver(enabled bool) (download.ObserverFunc, stopFunc) {
	if !enabled {
		return func(download.Progress) {}, func() {}
	}

	var bar *progressbar.ProgressBar

	observer := func(p download.Progress) {
		switch p.Status {
		case download.StatusStarting:
			bar = progressbar.NewOptions64(
				p.Total,
				progressbar.OptionSetDescription("downloading "+p.ModelID),
				progressbar.OptionSetWidth(20),
				progressbar.OptionShowBytes(true),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionSetRenderBlankState(true),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)
		case download.StatusDownloading:
			if bar != nil {
				_ = bar.Set64(p.Downloaded)
			}
		case download.StatusCompleted:
			if bar != nil {
				_ = bar.Set64(p.Downloaded)
				_ = bar.Finish()
			}
		}
	}

	stop := func() {
		if bar != nil {
			_ = bar.Finish()
		}
	}

	return observer, stop
}
