package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func resetLogging() {
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	isInitialized = false
	globalConfig = Config{}
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetLogging()

	var buf bytes.Buffer
	Initialize(Config{
		Level:  "info",
		Format: "text",
		Output: &buf,
		Modules: map[string]string{
			"light":  "debug",
			"script": "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"light", true, true, true},
		{"script", false, false, true},
		{"other", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()

			if got := handler.Enabled(context.Background(), slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("module %q: Debug enabled = %v, want %v", tt.module, got, tt.wantDebug)
			}
			if got := handler.Enabled(context.Background(), slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("module %q: Info enabled = %v, want %v", tt.module, got, tt.wantInfo)
			}
			if got := handler.Enabled(context.Background(), slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("module %q: Warn enabled = %v, want %v", tt.module, got, tt.wantWarn)
			}
		})
	}
}

func TestOutputWriterReceivesModuleAttribute(t *testing.T) {
	resetLogging()

	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "text", Output: &buf})

	GetLogger("light").Debug("entered state", "state", "flashing_green")

	output := buf.String()
	if !strings.Contains(output, "entered state") {
		t.Fatalf("message not written. Output: %s", output)
	}
	if !strings.Contains(output, "module=light") {
		t.Errorf("module attribute missing. Output: %s", output)
	}
	if !strings.Contains(output, "state=flashing_green") {
		t.Errorf("record attribute missing. Output: %s", output)
	}
}

func TestJSONFormat(t *testing.T) {
	resetLogging()

	var buf bytes.Buffer
	Initialize(Config{Level: "info", Format: "json", Output: &buf})

	GetLogger("main").Info("started")

	if !strings.Contains(buf.String(), `"module":"main"`) {
		t.Errorf("expected JSON output with module field, got %s", buf.String())
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetLogging()

	loggerBefore := GetLogger("light")
	if loggerBefore.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger created before Initialize should not have debug enabled")
	}

	var buf bytes.Buffer
	Initialize(Config{
		Level:   "info",
		Format:  "text",
		Output:  &buf,
		Modules: map[string]string{"light": "debug"},
	})

	loggerAfter := GetLogger("light")
	if !loggerAfter.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger fetched after Initialize should have debug enabled")
	}
}

func TestSetModuleLevel(t *testing.T) {
	resetLogging()

	var buf bytes.Buffer
	Initialize(Config{Level: "info", Format: "text", Output: &buf})

	logger := GetLogger("script")
	if logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should start disabled")
	}

	if !SetModuleLevel("script", "debug") {
		t.Fatal("SetModuleLevel rejected a valid level")
	}
	if !logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be enabled after SetModuleLevel")
	}

	if SetModuleLevel("script", "verbose") {
		t.Error("SetModuleLevel accepted an unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want *slog.Level
	}{
		{"debug", ptr(slog.LevelDebug)},
		{"INFO", ptr(slog.LevelInfo)},
		{" warning ", ptr(slog.LevelWarn)},
		{"error", ptr(slog.LevelError)},
		{"trace", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := parseLevel(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseLevel(%q) = %v, want nil", tt.in, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, *tt.want)
		}
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandlerDeliversPastFailures(t *testing.T) {
	var buf bytes.Buffer
	good := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	bad := failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)}

	multi := NewMultiHandler(bad, good)
	record := slog.NewRecord(time.Now(), slog.LevelInfo, "toggle", 0)

	if err := multi.Handle(context.Background(), record); err == nil {
		t.Error("expected joined error from failing handler")
	}
	if !strings.Contains(buf.String(), "toggle") {
		t.Errorf("healthy handler did not receive record. Output: %s", buf.String())
	}
}

func TestMultiHandlerDebugOutput(t *testing.T) {
	var buf bytes.Buffer

	debugHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	infoHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(NewMultiHandler(debugHandler, infoHandler)).With("module", "test")
	logger.Debug("debug only message")

	if count := strings.Count(buf.String(), "debug only message"); count != 1 {
		t.Errorf("Expected 1 debug message, got %d. Output: %s", count, buf.String())
	}
}

func TestAddAttrToFields(t *testing.T) {
	fields := make(map[string]string)
	addAttrToFields(fields, slog.Int("rate_ms", 100), nil)
	addAttrToFields(fields, slog.Bool("timed", true), []string{"state"})
	addAttrToFields(fields, slog.Group("cmd", slog.String("kind", "flash_green")), nil)

	want := map[string]string{
		"RATE_MS":     "100",
		"STATE_TIMED": "true",
		"CMD_KIND":    "flash_green",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
		}
	}
}

func ptr(l slog.Level) *slog.Level { return &l }
