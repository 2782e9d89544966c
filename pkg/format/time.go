package format

import "time"

// Timestamp renders a unix publication date, in UTC
func Timestamp(published int64) string {
	if published <= 0 {
		return "-"
	}
	return time.Unix(published, 0).UTC().Format(time.RFC3339)
}
