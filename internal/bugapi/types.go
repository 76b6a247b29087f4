package bugapi

import (
	"path/filepath"
	"strings"
)

// Language identifies the programming language of a submitted snippet
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageC          Language = "c"
)

// DefaultLanguage is selected when nothing else is chosen
const DefaultLanguage = LanguagePython

// Languages lists the selectable languages in display order
func Languages() []Language {
	return []Language{LanguagePython, LanguageJavaScript, LanguageC}
}

// Label returns the human-facing name of the language
func (l Language) Label() string {
	switch l {
	case LanguagePython:
		return "Python"
	case LanguageJavaScript:
		return "JavaScript"
	case LanguageC:
		return "C"
	default:
		return string(l)
	}
}

// Valid reports whether l is one of the supported languages
func (l Language) Valid() bool {
	for _, lang := range Languages() {
		if l == lang {
			return true
		}
	}
	return false
}

// Next returns the language following l in display order, wrapping around
func (l Language) Next() Language {
	langs := Languages()
	for i, lang := range langs {
		if lang == l {
			return langs[(i+1)%len(langs)]
		}
	}
	return DefaultLanguage
}

// ParseLanguage parses a language name case-insensitively
func ParseLanguage(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	if !lang.Valid() {
		return "", NewValidationError("language", s, "must be one of python, javascript, c")
	}
	return lang, nil
}

// LanguageForFile guesses the language from a file extension
func LanguageForFile(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return LanguagePython, true
	case ".js", ".mjs", ".cjs", ".jsx":
		return LanguageJavaScript, true
	case ".c", ".h":
		return LanguageC, true
	default:
		return "", false
	}
}

// FindBugRequest is the body of POST /find-bug
type FindBugRequest struct {
	Language Language `json:"language"`
	Code     string   `json:"code"`
}

// Report is one bug analysis, returned by /find-bug and listed by /sample-cases
type Report struct {
	BugType     string `json:"bug_type"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// HasSuggestion reports whether the service supplied a suggestion
func (r Report) HasSuggestion() bool {
	return strings.TrimSpace(r.Suggestion) != ""
}

// ErrorResponse is the body the service sends with non-2xx statuses
type ErrorResponse struct {
	Detail *string `json:"detail"`
}

// wireReport mirrors Report with nullable fields so absent and null can be told
// apart from empty strings, which are valid values.
type wireReport struct {
	BugType     *string `json:"bug_type"`
	Description *string `json:"description"`
	Suggestion  *string `json:"suggestion"`
}

func (w wireReport) toReport() (Report, bool) {
	if w.BugType == nil || w.Description == nil {
		return Report{}, false
	}

	r := Report{BugType: *w.BugType, Description: *w.Description}
	if w.Suggestion != nil {
		r.Suggestion = *w.Suggestion
	}
	return r, true
}
