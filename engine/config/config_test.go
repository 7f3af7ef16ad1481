package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Window.Width == 0 || cfg.Window.Height == 0 {
		t.Fatalf("default window size must be non-zero, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Transfer.NumThreads == 0 {
		t.Fatalf("default transfer thread count must be non-zero")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dvz.toml")
	contents := `
[window]
title = "custom"
width = 1920
height = 1080

[transfer]
num_threads = 8
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %s", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	if cfg.Window.Title != "custom" {
		t.Errorf("Window.Title = %q, want %q", cfg.Window.Title, "custom")
	}
	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("Window size = %dx%d, want 1920x1080", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Transfer.NumThreads != 8 {
		t.Errorf("Transfer.NumThreads = %d, want 8", cfg.Transfer.NumThreads)
	}
}

func TestLoadEmptyPathIsNotError(t *testing.T) {
	if _, err := Load(""); err != nil {
		t.Fatalf("Load(\"\") should fall back to defaults, got error: %s", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cases := []struct {
		name   string
		env    map[string]string
		check  func(t *testing.T, cfg Config)
	}{
		{
			name: "nframes",
			env:  map[string]string{"DVZ_RUN_NFRAMES": "42"},
			check: func(t *testing.T, cfg Config) {
				if cfg.Run.NFrames != 42 {
					t.Errorf("Run.NFrames = %d, want 42", cfg.Run.NFrames)
				}
			},
		},
		{
			name: "screenshot",
			env:  map[string]string{"DVZ_RUN_SCREENSHOT": "/tmp/out.png"},
			check: func(t *testing.T, cfg Config) {
				if cfg.Run.ScreenshotPath != "/tmp/out.png" {
					t.Errorf("Run.ScreenshotPath = %q, want /tmp/out.png", cfg.Run.ScreenshotPath)
				}
			},
		},
		{
			name: "num_threads",
			env:  map[string]string{"DVZ_NUM_THREADS": "16"},
			check: func(t *testing.T, cfg Config) {
				if cfg.Transfer.NumThreads != 16 {
					t.Errorf("Transfer.NumThreads = %d, want 16", cfg.Transfer.NumThreads)
				}
			},
		},
		{
			name: "invalid nframes is ignored",
			env:  map[string]string{"DVZ_RUN_NFRAMES": "not-a-number"},
			check: func(t *testing.T, cfg Config) {
				if cfg.Run.NFrames != Default().Run.NFrames {
					t.Errorf("Run.NFrames = %d, want default %d", cfg.Run.NFrames, Default().Run.NFrames)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			cfg := Default()
			applyEnvOverrides(&cfg)
			tc.check(t, cfg)
		})
	}
}
