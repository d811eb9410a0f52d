package components

import (
	"time"

	"github.com/ccoveille/go-safecast"
	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
)

// FormatRelativeTime formats a time.Time as a relative time string like "in 3 days"
func FormatRelativeTime(t time.Time) string {
	return timediff.TimeDiff(t)
}

// FormatFileSize formats a file size in bytes to a human-readable string
func FormatFileSize(bytes int64) string {
	size, err := safecast.Convert[uint64](bytes)
	if err != nil {
		return humanize.Bytes(0)
	}
	return humanize.Bytes(size)
}

// FormatDate formats a date like "14 February 2026".
func FormatDate(t time.Time) string {
	return t.Format("2 January 2006")
}

// FormatOrdinal formats a number like "27th".
func FormatOrdinal(n int) string {
	return humanize.Ordinal(n)
}

// FormatCount formats a count with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
