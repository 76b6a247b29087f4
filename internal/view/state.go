// Package view holds the BugFinderView state and the pure transitions over it.
//
// State is an immutable value. Every user action and every service response is
// an Event; Apply returns the next State plus, at most, one Command telling the
// caller which request to issue or abandon. Nothing in this package performs
// I/O.
package view

import (
	"strings"

	"github.com/yildizm/BugFinder/internal/bugapi"
)

// User-visible messages
const (
	MsgEmptyCode        = "Please enter a code snippet!"
	MsgAnalysisFailed   = "Failed to fetch bug analysis."
	MsgSamplesFailed    = "Failed to fetch sample cases"
	LabelSubmit         = "Find Bug"
	LabelSubmitting     = "Analyzing..."
	LabelSamples        = "Load Sample Cases"
	LabelSamplesLoading = "Loading samples..."
	Title               = "AI-Powered Bug Identifier"
	CodePlaceholder     = "Paste your code here..."
)

// Outcome is the result slot of the view. It is nil, Found or Failed, so a
// result and an error can never be shown together.
type Outcome interface {
	isOutcome()
}

// Found holds a successful analysis
type Found struct {
	Report bugapi.Report
}

// Failed holds the single user-visible error message
type Failed struct {
	Message string
}

func (Found) isOutcome()  {}
func (Failed) isOutcome() {}

// State is the complete BugFinderView state
type State struct {
	language       bugapi.Language
	code           string
	loading        bool
	outcome        Outcome
	samples        []bugapi.Report
	samplesLoading bool

	// generation identifies the find-bug request whose response is accepted
	generation uint64
	// sampleGeneration does the same for sample fetches
	sampleGeneration uint64
}

// New returns the initial state: python selected, empty code, nothing shown.
func New() State {
	return State{language: bugapi.DefaultLanguage}
}

// Language returns the selected language
func (s State) Language() bugapi.Language { return s.language }

// Code returns the current code input
func (s State) Code() string { return s.code }

// Loading reports whether a find-bug request is in flight
func (s State) Loading() bool { return s.loading }

// Outcome returns the current result or error, or nil
func (s State) Outcome() Outcome { return s.outcome }

// Samples returns a copy of the loaded sample cases
func (s State) Samples() []bugapi.Report {
	if s.samples == nil {
		return nil
	}
	out := make([]bugapi.Report, len(s.samples))
	copy(out, s.samples)
	return out
}

// SamplesLoading reports whether a sample fetch is in flight
func (s State) SamplesLoading() bool { return s.samplesLoading }

// Generation returns the id of the latest find-bug request
func (s State) Generation() uint64 { return s.generation }

// Result returns the found report, if any
func (s State) Result() (bugapi.Report, bool) {
	f, ok := s.outcome.(Found)
	return f.Report, ok
}

// Error returns the current error message, if any
func (s State) Error() (string, bool) {
	f, ok := s.outcome.(Failed)
	return f.Message, ok
}

// Event is an input to Apply
type Event interface {
	isEvent()
}

// LanguageSelected changes the language selection
type LanguageSelected struct {
	Language bugapi.Language
}

// CodeEdited replaces the code input
type CodeEdited struct {
	Code string
}

// Submit is the "Find Bug" trigger
type Submit struct{}

// SubmitSettled delivers the response of the find-bug request Generation.
// Exactly one of Report and Err is meaningful; Err wins when both are set.
type SubmitSettled struct {
	Generation uint64
	Report     *bugapi.Report
	Err        error
}

// FetchSamples is the "Load Sample Cases" trigger
type FetchSamples struct{}

// SamplesSettled delivers the response of the sample fetch Generation
type SamplesSettled struct {
	Generation uint64
	Cases      []bugapi.Report
	Err        error
}

func (LanguageSelected) isEvent() {}
func (CodeEdited) isEvent()       {}
func (Submit) isEvent()           {}
func (SubmitSettled) isEvent()    {}
func (FetchSamples) isEvent()     {}
func (SamplesSettled) isEvent()   {}

// Command is what Apply asks the caller to do next
type Command interface {
	isCommand()
}

// Ticket asks the caller to issue exactly one find-bug request and report
// back with a SubmitSettled carrying the same Generation. When Supersedes is
// non-zero the caller should cancel that earlier request.
type Ticket struct {
	Generation uint64
	Supersedes uint64
	Language   bugapi.Language
	Code       string
}

// SampleTicket asks the caller to issue one sample fetch
type SampleTicket struct {
	Generation uint64
	Supersedes uint64
}

// Cancel asks the caller to abandon the find-bug request Generation
type Cancel struct {
	Generation uint64
}

func (Ticket) isCommand()       {}
func (SampleTicket) isCommand() {}
func (Cancel) isCommand()       {}

// Apply returns the state after e, and the command the caller must run (or nil).
func Apply(s State, e Event) (State, Command) {
	switch e := e.(type) {
	case LanguageSelected:
		if e.Language.Valid() {
			s.language = e.Language
		}
		return s, nil

	case CodeEdited:
		s.code = e.Code
		return s, nil

	case Submit:
		return submit(s)

	case SubmitSettled:
		return settle(s, e), nil

	case FetchSamples:
		return fetchSamples(s)

	case SamplesSettled:
		return settleSamples(s, e), nil

	default:
		return s, nil
	}
}

func submit(s State) (State, Command) {
	var superseded uint64
	if s.loading {
		superseded = s.generation
	}

	if strings.TrimSpace(s.code) == "" {
		s.outcome = Failed{Message: MsgEmptyCode}
		if superseded == 0 {
			return s, nil
		}
		// retire the in-flight request so its response is ignored
		s.generation++
		s.loading = false
		return s, Cancel{Generation: superseded}
	}

	s.generation++
	s.loading = true
	s.outcome = nil

	return s, Ticket{
		Generation: s.generation,
		Supersedes: superseded,
		Language:   s.language,
		Code:       s.code,
	}
}

func settle(s State, e SubmitSettled) State {
	if !s.loading || e.Generation != s.generation {
		return s
	}

	s.loading = false

	if e.Err != nil || e.Report == nil {
		s.outcome = Failed{Message: bugapi.UserMessage(e.Err, MsgAnalysisFailed)}
		return s
	}

	s.outcome = Found{Report: *e.Report}
	return s
}

func fetchSamples(s State) (State, Command) {
	var superseded uint64
	if s.samplesLoading {
		superseded = s.sampleGeneration
	}

	if _, failed := s.outcome.(Failed); failed {
		s.outcome = nil
	}

	s.sampleGeneration++
	s.samplesLoading = true

	return s, SampleTicket{Generation: s.sampleGeneration, Supersedes: superseded}
}

func settleSamples(s State, e SamplesSettled) State {
	if !s.samplesLoading || e.Generation != s.sampleGeneration {
		return s
	}

	s.samplesLoading = false

	if e.Err != nil {
		s.outcome = Failed{Message: MsgSamplesFailed}
		return s
	}

	cases := make([]bugapi.Report, len(e.Cases))
	copy(cases, e.Cases)
	s.samples = cases
	return s
}
