package formatter

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/BugFinder/internal/bugapi"
	"github.com/yildizm/BugFinder/internal/emoji"
	"github.com/yildizm/BugFinder/internal/safetext"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) FormatReport(report *bugapi.Report) ([]byte, error) {
	var b strings.Builder

	writeHeader(&b, "Bug Analysis")

	b.WriteString(emoji.Prefix("bug") + "Result\n")
	tree := termfmt.TreeViewWithOptions(reportTreeItems(report), f.opts)
	b.WriteString(tree + "\n")

	return []byte(b.String()), nil
}

func (f *terminalFormatter) FormatSamples(cases []bugapi.Report) ([]byte, error) {
	var b strings.Builder

	writeHeader(&b, "Sample Cases")

	if len(cases) == 0 {
		b.WriteString(emoji.Prefix("hint") + "No sample cases available\n")
		return []byte(b.String()), nil
	}

	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"#", "Bug Type", "Description", "Suggestion"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColWidth(48)
	table.SetRowLine(true)

	for i, c := range cases {
		suggestion := "-"
		if c.HasSuggestion() {
			suggestion = safetext.Clean(c.Suggestion)
		}
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			safetext.Line(c.BugType),
			safetext.Clean(c.Description),
			suggestion,
		})
	}

	table.Render()
	fmt.Fprintf(&b, "\n%s%d sample case(s)\n", emoji.Prefix("samples"), len(cases))

	return []byte(b.String()), nil
}

// reportTreeItems lays a report out as a tree; multi-line text becomes children
func reportTreeItems(report *bugapi.Report) []termfmt.TreeItem {
	items := []termfmt.TreeItem{
		{Label: "Bug Type", Value: safetext.Line(report.BugType)},
		textItem("Description", report.Description),
	}
	if report.HasSuggestion() {
		items = append(items, textItem("Suggestion", report.Suggestion))
	}
	items[len(items)-1].Last = true
	return items
}

func textItem(label, text string) termfmt.TreeItem {
	lines := nonEmptyLines(safetext.Clean(text))
	if len(lines) == 1 {
		return termfmt.TreeItem{Label: label, Value: lines[0]}
	}

	item := termfmt.TreeItem{Label: label}
	for i, line := range lines {
		item.Children = append(item.Children, termfmt.TreeItem{Label: line, Last: i == len(lines)-1})
	}
	return item
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, " \t"))
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// writeHeader writes a boxed title
func writeHeader(b *strings.Builder, header string) {
	width := len([]rune(header))

	b.WriteString("╔" + strings.Repeat("═", width+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", width+2) + "╝\n\n")
}
