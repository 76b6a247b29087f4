package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/BugFinder/internal/bugapi"
	"github.com/yildizm/BugFinder/internal/safetext"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) FormatReport(report *bugapi.Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Bug Analysis Report\n\n")
	writeMarkdownReport(&b, "##", safetext.Line(report.BugType), report)

	return []byte(b.String()), nil
}

func (f *markdownFormatter) FormatSamples(cases []bugapi.Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Sample Cases\n\n")
	if len(cases) == 0 {
		b.WriteString("_No sample cases available._\n")
		return []byte(b.String()), nil
	}

	for i := range cases {
		title := fmt.Sprintf("%d. %s", i+1, safetext.Line(cases[i].BugType))
		writeMarkdownReport(&b, "##", title, &cases[i])
	}

	return []byte(b.String()), nil
}

// writeMarkdownReport writes one report under a heading of the given level.
// Description and suggestion are passed through as markdown.
func writeMarkdownReport(b *strings.Builder, level, title string, report *bugapi.Report) {
	fmt.Fprintf(b, "%s %s\n\n", level, title)

	fmt.Fprintf(b, "**Bug Type:** %s\n\n", safetext.Line(report.BugType))

	b.WriteString("**Description**\n\n")
	b.WriteString(strings.TrimSpace(safetext.Clean(report.Description)) + "\n\n")

	if report.HasSuggestion() {
		b.WriteString("**Suggestion**\n\n")
		b.WriteString(strings.TrimSpace(safetext.Clean(report.Suggestion)) + "\n\n")
	}
}
