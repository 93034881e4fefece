package optimizer

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// humanizeImpact renders a projected percentage impact as prose, for
// detail bags surfaced to the CLI and logs.
func humanizeImpact(pct float64) string {
	return fmt.Sprintf("~%s%% improvement", humanize.Ftoa(pct))
}

// humanizeCount renders a task or group count with thousands separators.
func humanizeCount(n int) string {
	return humanize.Comma(int64(n))
}
