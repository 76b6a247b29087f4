package view

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yildizm/BugFinder/internal/bugapi"
)

func apply(t *testing.T, s State, events ...Event) State {
	t.Helper()
	for _, e := range events {
		s, _ = Apply(s, e)
	}
	return s
}

func serverError(detail string) error {
	se := bugapi.NewServiceError(bugapi.ErrTypeServer, "request failed with status 500")
	se.StatusCode = 500
	se.Detail = detail
	return se
}

func TestNew(t *testing.T) {
	s := New()

	if s.Language() != bugapi.LanguagePython {
		t.Errorf("Expected python by default, got %s", s.Language())
	}
	if s.Code() != "" || s.Loading() || s.Outcome() != nil || s.Samples() != nil || s.SamplesLoading() {
		t.Errorf("Expected empty initial state, got %+v", s)
	}
}

func TestApply_InputsOnlyTouchInputs(t *testing.T) {
	s := New()
	s, _ = Apply(s, CodeEdited{Code: "x=1"})
	s, ticket := Apply(s, Submit{})
	if ticket == nil {
		t.Fatal("Expected a ticket")
	}

	before := s
	s, cmd := Apply(s, LanguageSelected{Language: bugapi.LanguageC})
	if cmd != nil {
		t.Errorf("Expected no command, got %#v", cmd)
	}
	s, _ = Apply(s, CodeEdited{Code: "int x;"})

	if s.Language() != bugapi.LanguageC || s.Code() != "int x;" {
		t.Errorf("Inputs not applied: %s %q", s.Language(), s.Code())
	}
	if s.Loading() != before.Loading() || s.Generation() != before.Generation() {
		t.Error("Expected input events not to touch request state")
	}

	s, _ = Apply(s, LanguageSelected{Language: "rust"})
	if s.Language() != bugapi.LanguageC {
		t.Errorf("Expected unsupported language to be ignored, got %s", s.Language())
	}
}

func TestApply_EmptySubmit(t *testing.T) {
	for _, code := range []string{"", "   ", "\n\t\n"} {
		s := apply(t, New(), CodeEdited{Code: code})

		s, cmd := Apply(s, Submit{})
		if cmd != nil {
			t.Errorf("Expected no request for %q, got %#v", code, cmd)
		}
		if s.Loading() {
			t.Error("Expected loading to stay false")
		}
		if msg, ok := s.Error(); !ok || msg != MsgEmptyCode {
			t.Errorf("Expected %q, got %q", MsgEmptyCode, msg)
		}
		if _, ok := s.Result(); ok {
			t.Error("Expected no result")
		}
	}
}

func TestApply_SubmitSuccess(t *testing.T) {
	s := apply(t, New(), CodeEdited{Code: "x=1"})

	s, cmd := Apply(s, Submit{})
	ticket, ok := cmd.(Ticket)
	if !ok {
		t.Fatalf("Expected Ticket, got %#v", cmd)
	}

	want := Ticket{Generation: 1, Language: bugapi.LanguagePython, Code: "x=1"}
	if diff := cmp.Diff(want, ticket); diff != "" {
		t.Errorf("Ticket mismatch (-want +got):\n%s", diff)
	}
	if !s.Loading() {
		t.Error("Expected loading after submit")
	}
	if s.Outcome() != nil {
		t.Errorf("Expected outcome cleared, got %#v", s.Outcome())
	}

	report := &bugapi.Report{BugType: "Logic", Description: "unused var", Suggestion: "remove it"}
	s, cmd = Apply(s, SubmitSettled{Generation: ticket.Generation, Report: report})
	if cmd != nil {
		t.Errorf("Expected no command, got %#v", cmd)
	}
	if s.Loading() {
		t.Error("Expected loading false after settlement")
	}
	if _, ok := s.Error(); ok {
		t.Error("Expected error cleared")
	}

	got, ok := s.Result()
	if !ok {
		t.Fatal("Expected a result")
	}
	if diff := cmp.Diff(*report, got); diff != "" {
		t.Errorf("Result mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_SubmitClearsPreviousError(t *testing.T) {
	s := apply(t, New(), Submit{})
	if _, ok := s.Error(); !ok {
		t.Fatal("Expected validation error")
	}

	s = apply(t, s, CodeEdited{Code: "print(1)"}, Submit{})
	if s.Outcome() != nil {
		t.Errorf("Expected error cleared on valid submit, got %#v", s.Outcome())
	}
}

func TestApply_SubmitFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "server detail", err: serverError("model unavailable"), want: "model unavailable"},
		{name: "server without detail", err: serverError(""), want: MsgAnalysisFailed},
		{name: "network", err: bugapi.NewServiceError(bugapi.ErrTypeNetwork, "refused"), want: MsgAnalysisFailed},
		{name: "decode", err: bugapi.NewServiceError(bugapi.ErrTypeDecode, "bad json"), want: MsgAnalysisFailed},
		{name: "unknown", err: errors.New("boom"), want: MsgAnalysisFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := apply(t, New(), CodeEdited{Code: "x=1"})
			s, _ = Apply(s, Submit{})
			s, _ = Apply(s, SubmitSettled{Generation: s.Generation(), Err: tt.err})

			if s.Loading() {
				t.Error("Expected loading false on failure")
			}
			if _, ok := s.Result(); ok {
				t.Error("Expected no result on failure")
			}
			if msg, ok := s.Error(); !ok || msg != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, msg)
			}
		})
	}
}

func TestApply_SettledWithoutReport(t *testing.T) {
	s := apply(t, New(), CodeEdited{Code: "x=1"}, Submit{})
	s, _ = Apply(s, SubmitSettled{Generation: s.Generation()})

	if msg, _ := s.Error(); msg != MsgAnalysisFailed {
		t.Errorf("Expected %q, got %q", MsgAnalysisFailed, msg)
	}
}

func TestApply_ResubmitSupersedes(t *testing.T) {
	s := apply(t, New(), CodeEdited{Code: "x=1"})
	s, first := Apply(s, Submit{})

	s, cmd := Apply(s, Submit{})
	second, ok := cmd.(Ticket)
	if !ok {
		t.Fatalf("Expected Ticket, got %#v", cmd)
	}
	if second.Supersedes != first.(Ticket).Generation {
		t.Errorf("Expected ticket to supersede %d, got %d", first.(Ticket).Generation, second.Supersedes)
	}

	stale := &bugapi.Report{BugType: "Stale", Description: "old"}
	s, _ = Apply(s, SubmitSettled{Generation: first.(Ticket).Generation, Report: stale})
	if !s.Loading() {
		t.Error("Expected stale response to leave loading untouched")
	}
	if s.Outcome() != nil {
		t.Errorf("Expected stale response ignored, got %#v", s.Outcome())
	}

	fresh := &bugapi.Report{BugType: "Fresh", Description: "new"}
	s, _ = Apply(s, SubmitSettled{Generation: second.Generation, Report: fresh})
	if got, _ := s.Result(); got.BugType != "Fresh" {
		t.Errorf("Expected fresh result, got %+v", got)
	}
}

func TestApply_EmptySubmitWhileLoadingCancels(t *testing.T) {
	s := apply(t, New(), CodeEdited{Code: "x=1"})
	s, first := Apply(s, Submit{})

	s, _ = Apply(s, CodeEdited{Code: " "})
	s, cmd := Apply(s, Submit{})

	if diff := cmp.Diff(Cancel{Generation: first.(Ticket).Generation}, cmd); diff != "" {
		t.Errorf("Command mismatch (-want +got):\n%s", diff)
	}
	if s.Loading() {
		t.Error("Expected loading false after abandoning the request")
	}

	s, _ = Apply(s, SubmitSettled{Generation: first.(Ticket).Generation, Report: &bugapi.Report{BugType: "a", Description: "b"}})
	if msg, _ := s.Error(); msg != MsgEmptyCode {
		t.Errorf("Expected abandoned response ignored, got outcome %#v", s.Outcome())
	}
}

func TestApply_LoadingInvariant(t *testing.T) {
	s := apply(t, New(), CodeEdited{Code: "x=1"})
	if s.Loading() {
		t.Fatal("Expected not loading before trigger")
	}

	s, _ = Apply(s, Submit{})
	gen := s.Generation()

	// unrelated events never end loading
	s = apply(t, s,
		LanguageSelected{Language: bugapi.LanguageJavaScript},
		CodeEdited{Code: "let y"},
		FetchSamples{},
		SamplesSettled{Generation: 1, Err: errors.New("down")},
		SubmitSettled{Generation: gen + 1, Err: errors.New("future")},
	)
	if !s.Loading() {
		t.Fatal("Expected loading until the matching settlement")
	}

	s, _ = Apply(s, SubmitSettled{Generation: gen, Err: errors.New("boom")})
	if s.Loading() {
		t.Error("Expected loading false after settlement")
	}

	// duplicate settlement is a no-op
	after, _ := Apply(s, SubmitSettled{Generation: gen, Report: &bugapi.Report{BugType: "a", Description: "b"}})
	if _, ok := after.Result(); ok {
		t.Error("Expected duplicate settlement ignored")
	}
}

func TestApply_Samples(t *testing.T) {
	s, cmd := Apply(New(), FetchSamples{})
	ticket, ok := cmd.(SampleTicket)
	if !ok {
		t.Fatalf("Expected SampleTicket, got %#v", cmd)
	}
	if !s.SamplesLoading() {
		t.Error("Expected samples loading")
	}
	if s.Loading() {
		t.Error("Expected sample fetch not to set loading")
	}

	cases := []bugapi.Report{
		{BugType: "A", Description: "first"},
		{BugType: "B", Description: "second", Suggestion: "fix"},
		{BugType: "C", Description: "third"},
	}
	s, _ = Apply(s, SamplesSettled{Generation: ticket.Generation, Cases: cases})

	if diff := cmp.Diff(cases, s.Samples()); diff != "" {
		t.Errorf("Samples mismatch (-want +got):\n%s", diff)
	}
	if s.SamplesLoading() {
		t.Error("Expected samples loading false")
	}

	// the state does not alias the caller's slice
	cases[0].BugType = "mutated"
	if s.Samples()[0].BugType != "A" {
		t.Error("Expected samples to be copied")
	}

	// a later success replaces wholesale
	s, cmd = Apply(s, FetchSamples{})
	s, _ = Apply(s, SamplesSettled{Generation: cmd.(SampleTicket).Generation, Cases: []bugapi.Report{{BugType: "Z", Description: "only"}}})
	if len(s.Samples()) != 1 || s.Samples()[0].BugType != "Z" {
		t.Errorf("Expected samples replaced, got %+v", s.Samples())
	}
}

func TestApply_SamplesFailure(t *testing.T) {
	prior := []bugapi.Report{{BugType: "A", Description: "kept"}}

	s, cmd := Apply(New(), FetchSamples{})
	s, _ = Apply(s, SamplesSettled{Generation: cmd.(SampleTicket).Generation, Cases: prior})

	s, cmd = Apply(s, FetchSamples{})
	s, _ = Apply(s, SamplesSettled{Generation: cmd.(SampleTicket).Generation, Err: errors.New("down")})

	if diff := cmp.Diff(prior, s.Samples()); diff != "" {
		t.Errorf("Expected prior samples kept (-want +got):\n%s", diff)
	}
	if msg, _ := s.Error(); msg != MsgSamplesFailed {
		t.Errorf("Expected %q, got %q", MsgSamplesFailed, msg)
	}
	if s.Loading() {
		t.Error("Expected sample failure not to touch loading")
	}
}

func TestApply_SamplesFailureReplacesResult(t *testing.T) {
	s := apply(t, New(), CodeEdited{Code: "x"}, Submit{})
	s, _ = Apply(s, SubmitSettled{Generation: s.Generation(), Report: &bugapi.Report{BugType: "a", Description: "b"}})

	s, cmd := Apply(s, FetchSamples{})
	s, _ = Apply(s, SamplesSettled{Generation: cmd.(SampleTicket).Generation, Err: errors.New("down")})

	if _, ok := s.Result(); ok {
		t.Error("Expected the sample error to replace the shown result")
	}
	if msg, ok := s.Error(); !ok || msg != MsgSamplesFailed {
		t.Errorf("Expected %q, got %q", MsgSamplesFailed, msg)
	}
	snap := Render(s)
	if snap.Result != nil || snap.Error != MsgSamplesFailed {
		t.Errorf("Expected only the sample error drawn, got result=%v error=%q", snap.Result, snap.Error)
	}
}

func TestApply_SamplesFailureKeepsLoading(t *testing.T) {
	s := apply(t, New(), CodeEdited{Code: "x=1"}, Submit{})
	s, cmd := Apply(s, FetchSamples{})
	s, _ = Apply(s, SamplesSettled{Generation: cmd.(SampleTicket).Generation, Err: errors.New("down")})

	if !s.Loading() {
		t.Error("Expected find-bug request still loading")
	}
}

func TestApply_FetchSamplesOutcome(t *testing.T) {
	failed := apply(t, New(), Submit{})
	failed, _ = Apply(failed, FetchSamples{})
	if failed.Outcome() != nil {
		t.Errorf("Expected error cleared by sample fetch, got %#v", failed.Outcome())
	}

	found := apply(t, New(), CodeEdited{Code: "x"}, Submit{})
	found, _ = Apply(found, SubmitSettled{Generation: found.Generation(), Report: &bugapi.Report{BugType: "a", Description: "b"}})
	found, _ = Apply(found, FetchSamples{})
	if _, ok := found.Result(); !ok {
		t.Error("Expected result kept by sample fetch")
	}
}

func TestApply_StaleSamples(t *testing.T) {
	s, first := Apply(New(), FetchSamples{})
	s, second := Apply(s, FetchSamples{})

	if second.(SampleTicket).Supersedes != first.(SampleTicket).Generation {
		t.Errorf("Expected second fetch to supersede the first")
	}

	s, _ = Apply(s, SamplesSettled{Generation: first.(SampleTicket).Generation, Cases: []bugapi.Report{{BugType: "old", Description: "x"}}})
	if s.Samples() != nil || !s.SamplesLoading() {
		t.Error("Expected stale sample response ignored")
	}
}
