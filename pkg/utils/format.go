// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strconv"
	"time"
)

// DefaultPrecision matches C's "%f".
const DefaultPrecision = 6

// FormatPrice formats a price in fixed-point notation with the given number
// of decimals. A negative precision uses DefaultPrecision.
func FormatPrice(price float64, precision int) string {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return strconv.FormatFloat(price, 'f', precision, 64)
}

// FormatPercent formats a probability in [0,1] as a percentage.
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.2f%%", value*100)
}

// FormatDuration formats short durations for human output.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1e6)
	default:
		return d.Round(time.Millisecond).String()
	}
}

// FormatCount formats an integer with thousands separators.
func FormatCount(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}

	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}

	if neg {
		return "-" + string(out)
	}
	return string(out)
}
