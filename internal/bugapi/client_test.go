package bugapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.Endpoint = server.URL

	client, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestClient_New(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{name: "default", endpoint: DefaultEndpoint},
		{name: "https with path", endpoint: "https://bugs.example.com/api"},
		{name: "empty", endpoint: "", wantErr: true},
		{name: "no scheme", endpoint: "localhost:8000", wantErr: true},
		{name: "ftp", endpoint: "ftp://example.com", wantErr: true},
		{name: "no host", endpoint: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Endpoint = tt.endpoint

			client, err := New(config)
			if tt.wantErr {
				var se *ServiceError
				if !errors.As(err, &se) || se.Type != ErrTypeConfiguration {
					t.Errorf("Expected configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if client.Endpoint() != tt.endpoint {
				t.Errorf("Expected endpoint %q, got %q", tt.endpoint, client.Endpoint())
			}
		})
	}
}

func TestClient_FindBug(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/find-bug" {
			t.Errorf("Expected path '/find-bug', got '%s'", r.URL.Path)
		}

		if r.Method != http.MethodPost {
			t.Errorf("Expected POST method, got '%s'", r.Method)
		}

		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got '%s'", ct)
		}

		if r.Header.Get("X-Request-ID") == "" {
			t.Error("Expected X-Request-ID header to be set")
		}

		var req FindBugRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		want := FindBugRequest{Language: LanguagePython, Code: "x=1"}
		if diff := cmp.Diff(want, req); diff != "" {
			t.Errorf("Request body mismatch (-want +got):\n%s", diff)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bug_type":"Logic","description":"unused var","suggestion":"remove it"}`))
	})

	report, err := client.FindBug(context.Background(), LanguagePython, "x=1")
	if err != nil {
		t.Fatalf("Failed to find bug: %v", err)
	}

	want := &Report{BugType: "Logic", Description: "unused var", Suggestion: "remove it"}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}

	if !report.HasSuggestion() {
		t.Error("Expected report to have a suggestion")
	}
}

func TestClient_FindBugOptionalSuggestion(t *testing.T) {
	bodies := map[string]string{
		"absent": `{"bug_type":"Syntax","description":"missing colon"}`,
		"null":   `{"bug_type":"Syntax","description":"missing colon","suggestion":null}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			report, err := client.FindBug(context.Background(), LanguageC, "int main(){}")
			if err != nil {
				t.Fatalf("Failed to find bug: %v", err)
			}

			if report.HasSuggestion() {
				t.Errorf("Expected no suggestion, got %q", report.Suggestion)
			}
		})
	}
}

func TestClient_FindBugServerError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantUser   string
	}{
		{
			name:       "detail",
			status:     http.StatusInternalServerError,
			body:       `{"detail":"model unavailable"}`,
			wantDetail: "model unavailable",
			wantUser:   "model unavailable",
		},
		{
			name:     "html body",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantUser: "Failed to fetch bug analysis.",
		},
		{
			name:     "empty body",
			status:   http.StatusServiceUnavailable,
			wantUser: "Failed to fetch bug analysis.",
		},
		{
			name:     "detail is not a string",
			status:   http.StatusUnprocessableEntity,
			body:     `{"detail":[{"loc":["body","code"]}]}`,
			wantUser: "Failed to fetch bug analysis.",
		},
		{
			name:     "blank detail",
			status:   http.StatusBadRequest,
			body:     `{"detail":"   "}`,
			wantUser: "Failed to fetch bug analysis.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.FindBug(context.Background(), LanguagePython, "print(x)")

			var se *ServiceError
			if !errors.As(err, &se) {
				t.Fatalf("Expected ServiceError, got %v", err)
			}
			if se.Type != ErrTypeServer {
				t.Errorf("Expected server error, got %s", se.Type)
			}
			if se.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, se.StatusCode)
			}
			if se.Detail != tt.wantDetail {
				t.Errorf("Expected detail %q, got %q", tt.wantDetail, se.Detail)
			}
			if se.RequestID == "" {
				t.Error("Expected request id on error")
			}

			if got := UserMessage(err, "Failed to fetch bug analysis."); got != tt.wantUser {
				t.Errorf("Expected user message %q, got %q", tt.wantUser, got)
			}
		})
	}
}

func TestClient_FindBugMalformedSuccess(t *testing.T) {
	bodies := map[string]string{
		"not json":            `not json`,
		"array":               `[]`,
		"null":                `null`,
		"missing bug_type":    `{"description":"d"}`,
		"wrong type":          `{"bug_type":1,"description":"d"}`,
		"trailing data":       `{"bug_type":"a","description":"b"} {}`,
		"description is null": `{"bug_type":"Logic","description":null}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			report, err := client.FindBug(context.Background(), LanguageJavaScript, "let a")
			if report != nil {
				t.Errorf("Expected no report, got %+v", report)
			}

			if !errors.Is(err, NewServiceError(ErrTypeDecode, "")) {
				t.Errorf("Expected decode error, got %v", err)
			}

			if got := UserMessage(err, "fallback"); got != "fallback" {
				t.Errorf("Expected fallback message, got %q", got)
			}
		})
	}
}

func TestClient_FindBugEmptyFieldsAreValid(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bug_type":"None","description":"","suggestion":null}`))
	})

	report, err := client.FindBug(context.Background(), LanguagePython, "x = 1")
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	want := &Report{BugType: "None"}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_FindBugInvalidLanguage(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := client.FindBug(context.Background(), Language("rust"), "fn main() {}")
	if !IsValidationError(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("Expected no request for an invalid language")
	}
}

func TestClient_FindBugCanceled(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FindBug(ctx, LanguagePython, "x=1")
	if !IsCanceled(err) {
		t.Errorf("Expected canceled error, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected error to wrap context.Canceled, got %v", err)
	}
}

func TestClient_FindBugNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	config := DefaultConfig()
	config.Endpoint = server.URL
	server.Close()

	client, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.FindBug(context.Background(), LanguagePython, "x=1")

	var se *ServiceError
	if !errors.As(err, &se) || se.Type != ErrTypeNetwork {
		t.Fatalf("Expected network error, got %v", err)
	}
	if got := UserMessage(err, "Failed to fetch bug analysis."); got != "Failed to fetch bug analysis." {
		t.Errorf("Expected fallback message, got %q", got)
	}
}

func TestClient_SampleCases(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sample-cases" {
			t.Errorf("Expected path '/sample-cases', got '%s'", r.URL.Path)
		}

		if r.Method != http.MethodGet {
			t.Errorf("Expected GET method, got '%s'", r.Method)
		}

		_, _ = w.Write([]byte(`[
			{"bug_type":"Logic","description":"off by one","suggestion":"use <"},
			{"bug_type":"Syntax","description":"missing colon","suggestion":null},
			{"bug_type":"Runtime","description":"null deref"}
		]`))
	})

	cases, err := client.SampleCases(context.Background())
	if err != nil {
		t.Fatalf("Failed to fetch sample cases: %v", err)
	}

	want := []Report{
		{BugType: "Logic", Description: "off by one", Suggestion: "use <"},
		{BugType: "Syntax", Description: "missing colon"},
		{BugType: "Runtime", Description: "null deref"},
	}
	if diff := cmp.Diff(want, cases); diff != "" {
		t.Errorf("Sample cases mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_SampleCasesCustomPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/samples" {
			t.Errorf("Expected path '/api/v1/samples', got '%s'", r.URL.Path)
		}
		_, _ = w.Write([]byte(`null`))
	}))
	defer server.Close()

	config := DefaultConfig()
	config.Endpoint = server.URL + "/api"
	config.SampleCasesPath = "/v1/samples"

	client, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	cases, err := client.SampleCases(context.Background())
	if err != nil {
		t.Fatalf("Failed to fetch sample cases: %v", err)
	}
	if len(cases) != 0 {
		t.Errorf("Expected no cases for null body, got %d", len(cases))
	}
}

func TestClient_SampleCasesFailure(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType ErrorType
	}{
		{name: "server error ignores detail", status: http.StatusInternalServerError, body: `{"detail":"boom"}`, wantType: ErrTypeServer},
		{name: "object instead of array", status: http.StatusOK, body: `{"bug_type":"a","description":"b"}`, wantType: ErrTypeDecode},
		{name: "invalid element", status: http.StatusOK, body: `[{"bug_type":"a","description":"b"},{"bug_type":""}]`, wantType: ErrTypeDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			cases, err := client.SampleCases(context.Background())
			if cases != nil {
				t.Errorf("Expected no cases, got %v", cases)
			}

			var se *ServiceError
			if !errors.As(err, &se) {
				t.Fatalf("Expected ServiceError, got %v", err)
			}
			if se.Type != tt.wantType {
				t.Errorf("Expected %s error, got %s", tt.wantType, se.Type)
			}
			if se.Detail != "" {
				t.Errorf("Expected sample errors to carry no detail, got %q", se.Detail)
			}
		})
	}
}
