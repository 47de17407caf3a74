package progress

import (
	"io"
	"math"

	"github.com/schollz/progressbar/v3"
)

// steps is the bar resolution; merge progress arrives as a 0..1 fraction
const steps = 100

// Bar renders merge progress on a terminal for non-interactive runs
type Bar struct {
	bar *progressbar.ProgressBar
}

// New creates a bar writing to output with the given description
func New(output io.Writer, description string) *Bar {
	bar := progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(output),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)

	return &Bar{bar: bar}
}

// Track consumes fractions from ch until it is closed
func (b *Bar) Track(ch <-chan float64) {
	for fraction := range ch {
		b.Set(fraction)
	}
}

// Set moves the bar to fraction, clamped to 0..1
func (b *Bar) Set(fraction float64) {
	fraction = math.Max(0, math.Min(1, fraction))
	_ = b.bar.Set(int(math.Round(fraction * steps)))
}

func (b *Bar) Finish() error {
	return b.bar.Finish()
}

// Position returns how many of the 100 steps are filled
func (b *Bar) Position() int {
	return int(b.bar.State().CurrentNum)
}
