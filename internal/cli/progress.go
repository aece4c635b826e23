package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/territory/internal/scanner"
)

// CLIProgressReporter renders scan progress as a progress bar. The total
// grows while the crawl runs because href resolution can queue more files,
// so the bar's max is adjusted on every update.
type CLIProgressReporter struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	if quiet {
		return &CLIProgressReporter{quiet: true}
	}
	bar := progressbar.NewOptions(1,
		progressbar.OptionSetDescription("Scanning files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	return &CLIProgressReporter{bar: bar}
}

// OnProgress is the scanner.Options callback.
func (c *CLIProgressReporter) OnProgress(p scanner.Progress) {
	if c.quiet || c.bar == nil {
		return
	}
	c.bar.ChangeMax(p.Processed + p.Pending)
	c.bar.Set(p.Processed)
}

// Finish closes out the bar once the run is over.
func (c *CLIProgressReporter) Finish() {
	if c.quiet || c.bar == nil {
		return
	}
	c.bar.Finish()
}
