package dates

import (
	"strconv"
	"time"
)

const (
	DateFormat    = "2006-01-02"
	DisplayFormat = "Jan 2, 2006"
)

// Relative labels a publication date the way update lists show it: Today,
// Yesterday, N days ago within a week, then the calendar date.
func Relative(t time.Time, now time.Time) string {
	days := int(now.Sub(t) / (24 * time.Hour))
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return strconv.Itoa(days) + " days ago"
	default:
		return t.Format(DisplayFormat)
	}
}

func DateToString(from time.Time, dateFormat string) string {
	return from.Format(dateFormat)
}
