package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"tonearm/internal/services"
)

func TestPrettyHandlerFormatsLine(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	logger = logger.With(String(FieldComponent, "analyzer"))
	logger.Info("key detected", String("key", "Am"), Int("tracks", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO analyzer: key detected") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "key=Am") || !strings.Contains(line, "tracks=3") {
		t.Fatalf("missing attrs: %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("line not newline terminated: %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	logger.Info("downloaded", String("title", "late night mix"))

	if !strings.Contains(buf.String(), `title="late night mix"`) {
		t.Fatalf("value not quoted: %q", buf.String())
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	logger.Info("suppressed")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Fatalf("info line not suppressed: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	ctx := services.WithItemID(context.Background(), 7)
	ctx = services.WithStage(ctx, "probing")
	ctx = services.WithRequestID(ctx, "abc-123")

	WithContext(ctx, logger).Info("stage start")

	line := buf.String()
	for _, fragment := range []string{"item_id=7", "stage=probing", "correlation_id=abc-123"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("missing %q in %q", fragment, line)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestFormatValueKinds(t *testing.T) {
	if got := formatValue(slog.DurationValue(90 * time.Second)); got != "1m30s" {
		t.Fatalf("duration = %q", got)
	}
	if got := formatValue(slog.BoolValue(true)); got != "true" {
		t.Fatalf("bool = %q", got)
	}
	if got := formatValue(slog.StringValue("")); got != `""` {
		t.Fatalf("empty string = %q", got)
	}
}
