// Package safetext makes service-provided strings safe to print on a terminal.
package safetext

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Clean removes terminal escape sequences and control characters from s,
// keeping newlines and tabs. Carriage returns are normalized to newlines.
func Clean(s string) string {
	if s == "" {
		return s
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = ansi.Strip(s)

	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == unicode.ReplacementChar:
			return r
		case unicode.IsControl(r):
			return -1
		case r >= 0x200e && r <= 0x200f, r >= 0x202a && r <= 0x202e, r >= 0x2066 && r <= 0x2069:
			// bidi overrides can visually reorder the text around them
			return -1
		default:
			return r
		}
	}, s)
}

// Line cleans s and collapses it onto a single line.
func Line(s string) string {
	return strings.Join(strings.Fields(Clean(s)), " ")
}
