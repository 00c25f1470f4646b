package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// captureLogOutput captures log output for testing by temporarily
// redirecting the logger to write to a buffer
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	oldLogger := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	f()

	defaultLogger = oldLogger
	return buf.String()
}

func TestInitLogger(t *testing.T) {
	defer InitLogger(LevelWarn, FormatText)

	InitLogger(LevelError, FormatJSON)
	logger := GetLogger()
	if logger == nil {
		t.Fatal("GetLogger returned nil")
	}
	ctx := context.Background()
	if !logger.Enabled(ctx, slog.LevelError) {
		t.Error("error level disabled after InitLogger(LevelError)")
	}
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Error("info level enabled after InitLogger(LevelError)")
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "info", want: LevelInfo},
		{in: "warn", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "verbose", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := LevelFromString(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("LevelFromString(%q) succeeded, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("LevelFromString(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("LevelFromString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "text", want: FormatText},
		{in: "json", want: FormatJSON},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		got, err := FormatFromString(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("FormatFromString(%q) succeeded, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("FormatFromString(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatFromString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHelpers(t *testing.T) {
	out := captureLogOutput(func() {
		Debug("debug message", "key", "value")
		Info("info message")
		Warn("warn message")
		Error("error message")
	})
	for _, want := range []string{"debug message", "info message", "warn message", "error message", `"key":"value"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParseReport(t *testing.T) {
	out := captureLogOutput(func() {
		ParseReport("sample.TextGrid", "long", 3, 2*time.Millisecond)
	})
	for _, want := range []string{`"msg":"parse"`, `"path":"sample.TextGrid"`, `"variant":"long"`, `"tiers":3`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConvertReport(t *testing.T) {
	out := captureLogOutput(func() {
		ConvertReport("in.TextGrid", "out.eaf", "eaf")
	})
	for _, want := range []string{`"msg":"convert"`, `"input":"in.TextGrid"`, `"output":"out.eaf"`, `"format":"eaf"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStoreEvent(t *testing.T) {
	out := captureLogOutput(func() {
		StoreEvent("save", "corpus.db", "grid", "session1")
	})
	for _, want := range []string{`"msg":"store"`, `"op":"save"`, `"path":"corpus.db"`, `"grid":"session1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBundleEvent(t *testing.T) {
	out := captureLogOutput(func() {
		BundleEvent("pack", "corpus.tgt.tar.xz", 4)
	})
	for _, want := range []string{`"msg":"bundle"`, `"op":"pack"`, `"files":4`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
