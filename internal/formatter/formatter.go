package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/BugFinder/internal/bugapi"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	FormatReport(report *bugapi.Report) ([]byte, error)
	FormatSamples(cases []bugapi.Report) ([]byte, error)
}

// Formats lists the supported output format names
var Formats = []string{"text", "json", "markdown", "html"}

// New returns the formatter for format. color only affects text output.
func New(format string, color bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewTerminal(color), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "html":
		return NewHTML(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
}
