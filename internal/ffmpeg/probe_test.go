package ffmpeg

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func TestProbe_Available(t *testing.T) {
	calls := 0
	p := NewProbeWithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		calls++
		if name != FFmpegCommand || len(args) != 1 || args[0] != VersionFlag {
			t.Errorf("unexpected command: %s %v", name, args)
		}
		return []byte("ffmpeg version 6.1 Copyright\nbuilt with gcc\n"), nil
	})

	if !p.Available() {
		t.Fatal("Expected ffmpeg to be available")
	}
	if p.Version() != "ffmpeg version 6.1 Copyright" {
		t.Errorf("Expected first version line, got %q", p.Version())
	}
	p.Available()
	if calls != 1 {
		t.Errorf("Expected detection to run once, ran %d times", calls)
	}
}

func TestProbe_Unavailable(t *testing.T) {
	p := NewProbeWithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, exec.ErrNotFound
	})

	if p.Available() {
		t.Error("Expected ffmpeg to be unavailable")
	}
	if p.Version() != "" {
		t.Errorf("Expected empty version, got %q", p.Version())
	}
}

func TestProbe_Duration(t *testing.T) {
	p := NewProbeWithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if name != FFprobeCommand {
			t.Errorf("Expected ffprobe, got %s", name)
		}
		if args[len(args)-1] != "/tmp/clip.mp4" {
			t.Errorf("Expected path as last argument, got %v", args)
		}
		return []byte("12.480000\n"), nil
	})

	d, err := p.Duration(context.Background(), "/tmp/clip.mp4")
	if err != nil {
		t.Fatalf("Duration failed: %v", err)
	}
	if d != 12.48 {
		t.Errorf("Expected 12.48, got %v", d)
	}
}

func TestProbe_DurationErrors(t *testing.T) {
	p := NewProbeWithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, exec.ErrNotFound
	})
	if _, err := p.Duration(context.Background(), "x"); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Expected ErrNotInstalled, got %v", err)
	}

	p = NewProbeWithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("N/A"), nil
	})
	if _, err := p.Duration(context.Background(), "x"); err == nil {
		t.Error("Expected parse error")
	}
}
