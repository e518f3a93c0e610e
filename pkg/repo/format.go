package repo

import (
	"fmt"
	"strconv"
	"time"
)

// NoDescription is shown in place of a missing description.
const NoDescription = "No description provided"

const day = 24 * time.Hour

// FormatUpdated renders t relative to now in whole days:
// "Today", "Yesterday", "N days ago", "N months ago" or "N years ago".
// Months are 30 days and years 365 days. A zero t renders as "".
func FormatUpdated(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}
	days := int(diff / day)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	case days < 365:
		return fmt.Sprintf("%d months ago", days/30)
	default:
		return fmt.Sprintf("%d years ago", days/365)
	}
}

// FormatCount abbreviates counts of 1000 and above with a "k" suffix and
// one decimal, e.g. 1500 -> "1.5k".
func FormatCount(n int) string {
	if n >= 1000 {
		return strconv.FormatFloat(float64(n)/1000, 'f', 1, 64) + "k"
	}
	return strconv.Itoa(n)
}
