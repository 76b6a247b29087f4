package view

import (
	"github.com/yildizm/BugFinder/internal/bugapi"
	"github.com/yildizm/BugFinder/internal/safetext"
)

// Snapshot is everything a front end needs to draw the view
type Snapshot struct {
	Title       string
	Language    bugapi.Language
	Languages   []LanguageOption
	Code        string
	Placeholder string

	SubmitLabel    string
	SubmitDisabled bool
	Loading        bool

	// Error is empty when no error is shown
	Error string
	// Result is nil when no analysis is shown
	Result *Block

	SamplesLabel   string
	SamplesLoading bool
	Samples        []Block
}

// LanguageOption is one entry of the language selector
type LanguageOption struct {
	Value    bugapi.Language
	Label    string
	Selected bool
}

// Block is a cleaned, display-ready report
type Block struct {
	BugType       string
	Description   string
	Suggestion    string
	HasSuggestion bool
}

// NewBlock cleans a report for display
func NewBlock(r bugapi.Report) Block {
	b := Block{
		BugType:     safetext.Line(r.BugType),
		Description: safetext.Clean(r.Description),
	}
	if r.HasSuggestion() {
		b.Suggestion = safetext.Clean(r.Suggestion)
		b.HasSuggestion = true
	}
	return b
}

// Render maps a state to its snapshot. It has no side effects.
func Render(s State) Snapshot {
	snap := Snapshot{
		Title:          Title,
		Language:       s.language,
		Code:           s.code,
		Placeholder:    CodePlaceholder,
		SubmitLabel:    LabelSubmit,
		SubmitDisabled: s.loading,
		Loading:        s.loading,
		SamplesLabel:   LabelSamples,
		SamplesLoading: s.samplesLoading,
	}

	for _, lang := range bugapi.Languages() {
		snap.Languages = append(snap.Languages, LanguageOption{
			Value:    lang,
			Label:    lang.Label(),
			Selected: lang == s.language,
		})
	}

	if s.loading {
		snap.SubmitLabel = LabelSubmitting
	}
	if s.samplesLoading {
		snap.SamplesLabel = LabelSamplesLoading
	}

	switch o := s.outcome.(type) {
	case Found:
		block := NewBlock(o.Report)
		snap.Result = &block
	case Failed:
		snap.Error = safetext.Line(o.Message)
	}

	if len(s.samples) > 0 {
		snap.Samples = make([]Block, 0, len(s.samples))
		for _, r := range s.samples {
			snap.Samples = append(snap.Samples, NewBlock(r))
		}
	}

	return snap
}
