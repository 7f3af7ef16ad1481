// Package config loads the engine's on-disk TOML defaults and applies
// environment variable overrides on top, producing a single immutable
// Config the rest of the engine is built against. This replaces the
// global mutable constants table the original implementation used.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/vizcore/dvz/engine/core"
)

// Config is built once at startup and never mutated afterward; every
// collaborator that needs a tunable takes it (or a field of it) as a
// constructor argument rather than reading a package global.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Run      RunConfig      `toml:"run"`
	Transfer TransferConfig `toml:"transfer"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	PosX   uint32 `toml:"pos_x"`
	PosY   uint32 `toml:"pos_y"`

	// SwapchainImageCount is the requested number of swapchain images;
	// the device may clamp it to its supported min/max.
	SwapchainImageCount uint32 `toml:"swapchain_image_count"`
}

type RunConfig struct {
	// NFrames is the number of frames to render before the runner exits
	// on its own, or 0 to run until the window is closed. Overridden by
	// DVZ_RUN_NFRAMES.
	NFrames uint64 `toml:"nframes"`

	// ScreenshotPath is the configured screenshot destination. Overridden
	// by DVZ_RUN_SCREENSHOT. It is only loaded: nothing in the engine
	// writes a screenshot to it.
	ScreenshotPath string `toml:"screenshot"`
}

type TransferConfig struct {
	// NumThreads is the number of worker goroutines the transfer engine
	// runs for background upload/download/copy jobs. Overridden by
	// DVZ_NUM_THREADS.
	NumThreads uint32 `toml:"num_threads"`

	// StagingBufferSize is the size in bytes of the staging ring buffer
	// backing host-visible uploads.
	StagingBufferSize uint64 `toml:"staging_buffer_size"`
}

// Default returns the built-in baseline, applied before any TOML file
// or environment override.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:               "Vizcore",
			Width:               1024,
			Height:              768,
			PosX:                100,
			PosY:                100,
			SwapchainImageCount: 3,
		},
		Run: RunConfig{
			NFrames:        0,
			ScreenshotPath: "",
		},
		Transfer: TransferConfig{
			NumThreads:        4,
			StagingBufferSize: 16 * 1024 * 1024,
		},
	}
}

// Load builds a Config: defaults, overlaid by path (if non-empty and the
// file exists), overlaid by environment variables. path is typically
// sourced from the DVZ_CONFIG environment variable by the caller.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err == nil {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// LoadFromEnv is the entry point used by main: it reads DVZ_CONFIG for
// an optional TOML path, then layers the standard env var overrides.
func LoadFromEnv() (Config, error) {
	return Load(os.Getenv("DVZ_CONFIG"))
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("DVZ_RUN_NFRAMES"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			core.LogWarn("config: ignoring invalid DVZ_RUN_NFRAMES=%q: %s", v, err)
		} else {
			cfg.Run.NFrames = n
		}
	}

	if v, ok := os.LookupEnv("DVZ_RUN_SCREENSHOT"); ok {
		cfg.Run.ScreenshotPath = v
	}

	if v, ok := os.LookupEnv("DVZ_NUM_THREADS"); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			core.LogWarn("config: ignoring invalid DVZ_NUM_THREADS=%q: %s", v, err)
		} else {
			cfg.Transfer.NumThreads = uint32(n)
		}
	}
}
