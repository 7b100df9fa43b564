package prober_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"tonearm/internal/logging"
	"tonearm/internal/media/ffprobe"
	"tonearm/internal/prober"
	"tonearm/internal/services"
	"tonearm/internal/testsupport"
)

func stubResult(t *testing.T, payload string) ffprobe.Result {
	t.Helper()
	var result ffprobe.Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		t.Fatalf("parse stub result: %v", err)
	}
	return result
}

func TestExecuteRecordsAudioFacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewTrack(t, store, "[id=1] a.mp3")

	result := stubResult(t, `{
		"streams": [{"index":0,"codec_type":"audio","codec_name":"mp3","sample_rate":"44100","channels":2}],
		"format": {"duration":"182.5"}
	}`)
	handler := prober.NewWithInspector(cfg, store, logging.NewNop(), func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return result, nil
	})

	if err := handler.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.SampleRate != 44100 || item.Channels != 2 {
		t.Fatalf("item = %+v", item)
	}
	if item.DurationSeconds != 182.5 {
		t.Fatalf("duration = %v", item.DurationSeconds)
	}
	if item.ProgressPercent != 100 {
		t.Fatalf("progress = %v", item.ProgressPercent)
	}
}

func TestExecuteRejectsVideoOnlyFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewTrack(t, store, "[id=1] clip.mp3")

	result := stubResult(t, `{
		"streams": [{"index":0,"codec_type":"video","codec_name":"h264"}],
		"format": {"duration":"10"}
	}`)
	handler := prober.NewWithInspector(cfg, store, logging.NewNop(), func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return result, nil
	})

	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestExecuteRejectsZeroDuration(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewTrack(t, store, "[id=1] a.mp3")

	result := stubResult(t, `{
		"streams": [{"index":0,"codec_type":"audio","codec_name":"mp3","sample_rate":"44100","channels":2}],
		"format": {}
	}`)
	handler := prober.NewWithInspector(cfg, store, logging.NewNop(), func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return result, nil
	})

	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestExecuteWrapsInspectFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewTrack(t, store, "[id=1] a.mp3")

	handler := prober.NewWithInspector(cfg, store, logging.NewNop(), func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{}, errors.New("boom")
	})

	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want external tool error", err)
	}
}

func TestHealthCheckReportsMissingBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	handler := prober.New(cfg, store, logging.NewNop())

	health := handler.HealthCheck(context.Background())
	if health.Name != "prober" {
		t.Fatalf("health = %+v", health)
	}
}
