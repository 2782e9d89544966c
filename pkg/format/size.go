package format

import (
	"strconv"

	units "github.com/docker/go-units"
)

// byteThreshold is the lower bound of the kB unit.
//
// It is compared against a binary kilobyte while units are decimal: 1000 to 1023
// bytes render as bytes, and 1024 renders as "1 kB". Consumers rely on this output.
const byteThreshold = units.KiB

// Size renders a byte count as a human readable string, rounded to the nearest whole unit
//
//	< 1024 bytes:  "{n} byte"
//	< 1 MB:        "{n} kB"
//	< 1 GB:        "{n} MB"
//	otherwise:     "{n} GB"
func Size(bytes int64) string {
	switch {
	case bytes < byteThreshold:
		return strconv.FormatInt(bytes, 10) + " byte"
	case bytes < units.MB:
		return strconv.FormatInt(roundDiv(bytes, units.KB), 10) + " kB"
	case bytes < units.GB:
		return strconv.FormatInt(roundDiv(bytes, units.MB), 10) + " MB"
	default:
		return strconv.FormatInt(roundDiv(bytes, units.GB), 10) + " GB"
	}
}

// roundDiv divides positive integers, with halves rounded up
func roundDiv(n, d int64) int64 {
	q, r := n/d, n%d
	if r >= d-r {
		q++
	}
	return q
}
