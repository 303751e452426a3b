// Package timecode converts between HH:MM:SS style time codes and second offsets.
package timecode

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Parse reads a colon-delimited time code of one to three numeric segments
// (SS, MM:SS or HH:MM:SS) and returns the offset in seconds.
// Segment magnitudes are not bounded, so "90" is 90 seconds.
func Parse(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	parts := strings.Split(text, ":")
	if len(parts) > 3 {
		return 0, false
	}

	var total float64
	multiplier := 1.0
	for i := len(parts) - 1; i >= 0; i-- {
		segment := strings.TrimSpace(parts[i])
		if segment == "" {
			return 0, false
		}

		value, err := strconv.ParseFloat(segment, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, false
		}

		total += value * multiplier
		multiplier *= 60
	}

	return total, true
}

// Format renders seconds as a zero-padded HH:MM:SS string.
// Fractions are floored and negative values clamp to 00:00:00. Hours are
// unbounded, including offsets beyond the int64 range.
func Format(seconds float64) (string, bool) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "", false
	}

	floored := math.Floor(seconds)
	if floored < 0 {
		floored = 0
	}
	if floored >= math.MaxInt64 {
		return formatBig(floored), true
	}

	whole := int64(floored)
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs), true
}

// formatBig splits an integral float too large for int64 exactly.
func formatBig(floored float64) string {
	whole, _ := new(big.Float).SetFloat64(floored).Int(nil)
	hours, rem := new(big.Int).QuoRem(whole, big.NewInt(3600), new(big.Int))
	r := rem.Int64()
	return fmt.Sprintf("%s:%02d:%02d", hours.String(), r/60, r%60)
}

// ParsePtr is Parse for optional input; nil or unparsable text yields nil.
func ParsePtr(text *string) *float64 {
	if text == nil {
		return nil
	}
	seconds, ok := Parse(*text)
	if !ok {
		return nil
	}
	return &seconds
}

// FormatPtr is Format for optional input; nil or NaN yields nil.
func FormatPtr(seconds *float64) *string {
	if seconds == nil {
		return nil
	}
	hms, ok := Format(*seconds)
	if !ok {
		return nil
	}
	return &hms
}
