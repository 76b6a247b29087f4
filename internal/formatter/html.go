package formatter

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/yildizm/BugFinder/internal/bugapi"
)

// htmlFormatter renders the Markdown output to sanitized HTML
type htmlFormatter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	source *markdownFormatter
}

// NewHTML creates a new HTML formatter
func NewHTML() Formatter {
	return &htmlFormatter{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
		source: &markdownFormatter{},
	}
}

func (f *htmlFormatter) FormatReport(report *bugapi.Report) ([]byte, error) {
	md, err := f.source.FormatReport(report)
	if err != nil {
		return nil, err
	}
	return f.render(md)
}

func (f *htmlFormatter) FormatSamples(cases []bugapi.Report) ([]byte, error) {
	md, err := f.source.FormatSamples(cases)
	if err != nil {
		return nil, err
	}
	return f.render(md)
}

// render converts markdown to HTML and strips anything outside the UGC policy
func (f *htmlFormatter) render(md []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.md.Convert(md, &buf); err != nil {
		return nil, err
	}
	return f.policy.SanitizeBytes(buf.Bytes()), nil
}
