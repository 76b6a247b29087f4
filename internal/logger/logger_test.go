package logger

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

type staticChecker bool

func (s staticChecker) IsVerbose() bool { return bool(s) }

func TestLogger_VerboseGating(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("client", staticChecker(false), &buf)

	log.Debug("debug %d", 1)
	log.Info("info %d", 2)
	if buf.Len() != 0 {
		t.Fatalf("Expected no output when not verbose, got %q", buf.String())
	}

	log.Warn("warn %d", 3)
	log.Error("error %d", 4)

	out := buf.String()
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "warn 3") {
		t.Errorf("Expected warn line, got %q", out)
	}
	if !strings.Contains(out, "ERROR") || !strings.Contains(out, "error 4") {
		t.Errorf("Expected error line, got %q", out)
	}
	if !strings.Contains(out, "[client]") {
		t.Errorf("Expected component name in output, got %q", out)
	}
}

func TestLogger_VerboseFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("watch", staticChecker(true), &buf)

	log.InfoWithFields("request finished", []Field{
		F("status", 200),
		Count(3),
		Error(errors.New("boom")),
	})

	out := buf.String()
	for _, want := range []string{"INFO", "request finished", `"status": 200`, `"count": 3`, "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got %q", want, out)
		}
	}
}

func TestLogger_WarnWithFieldsIgnoresVerbose(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("ui", staticChecker(false), &buf)

	log.WarnWithFields("sample fetch failed", []Field{F("generation", 2), Error(errors.New("down"))})
	log.Sync()

	out := buf.String()
	for _, want := range []string{"WARN", "sample fetch failed", `"generation": 2`, "down"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got %q", want, out)
		}
	}
}

func TestLogger_CallbackChecker(t *testing.T) {
	verbose := false
	log := NewWithCallback("cli", func() bool { return verbose })

	if log.verbose() {
		t.Error("Expected callback to report non-verbose")
	}
	verbose = true
	if !log.verbose() {
		t.Error("Expected callback to report verbose")
	}

	var nilCallback callbackChecker
	if nilCallback.IsVerbose() {
		t.Error("Expected nil callback to be non-verbose")
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("root", staticChecker(false), &buf).WithComponent("ui")

	log.Warn("hello")
	out := buf.String()
	if !strings.Contains(out, "[ui]") {
		t.Errorf("Expected [ui] component, got %q", out)
	}
	if strings.Contains(out, "root") {
		t.Errorf("Expected component to be replaced, got %q", out)
	}
}

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	New("", nil).Warn("redirected")
	if !strings.Contains(buf.String(), "redirected") {
		t.Errorf("Expected redirected output, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[main]") {
		t.Errorf("Expected default component name, got %q", buf.String())
	}
}
