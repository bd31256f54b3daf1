package utils

import (
	"os"
	"time"

	"github.com/aquilax/truncate"
	"github.com/schollz/progressbar/v3"
)

const maxDescriptionLength = 30

// NewProgressBar creates a bar on stderr. Use a total of -1 when the number of
// steps is unknown.
func NewProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(truncate.Truncate(description, maxDescriptionLength, "...", truncate.PositionMiddle)),
		progressbar.OptionThrottle(time.Second),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{Saucer: "#", SaucerPadding: " ", BarStart: "|", BarEnd: "|"}),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
