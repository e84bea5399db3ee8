// Package components holds the terminal drawing primitives behind the
// dashboard: the braille reading chart, the AQI category bar, and
// ANSI-aware text helpers.
package components

import (
	"fmt"
	"strconv"
	"strings"
)

// Color produces an ANSI true-color foreground escape from a hex
// color like "#ff5500". Malformed input yields an empty string.
func Color(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return ""
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
}

// Dim wraps s in ANSI faint escapes.
func Dim(s string) string {
	return "\x1b[2m" + s + "\x1b[22m"
}

// Reset returns the ANSI reset sequence that clears all styling.
func Reset() string {
	return "\x1b[0m"
}

// parseHex parses "#RRGGBB" or "RRGGBB" into components.
func parseHex(hex string) (r, g, b uint8, ok bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	rv, err := strconv.ParseUint(hex[0:2], 16, 8)
	if err != nil {
		return 0, 0, 0, false
	}
	gv, err := strconv.ParseUint(hex[2:4], 16, 8)
	if err != nil {
		return 0, 0, 0, false
	}
	bv, err := strconv.ParseUint(hex[4:6], 16, 8)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(rv), uint8(gv), uint8(bv), true
}
