// Package config handles engine configuration loading and management.
package config

import "time"

// Config holds all engine settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Assets   AssetsConfig   `yaml:"assets"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AssetsConfig holds asset search paths.
type AssetsConfig struct {
	// Dirs are searched in reverse order (last = highest priority).
	Dirs []string `yaml:"dirs"`
}

// GraphicsConfig holds display and backend settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`

	// Backend selects the renderer backend: "gl41", "gl33" or "null".
	Backend string `yaml:"backend"`

	// Buffering is the number of in-flight frames (ring-buffer ranges).
	Buffering int `yaml:"buffering"`

	// FenceTimeout bounds the wait for the GPU to release a buffer range.
	FenceTimeout time.Duration `yaml:"fence_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:        1280,
			Height:       720,
			Fullscreen:   false,
			VSync:        true,
			Backend:      "gl41",
			Buffering:    3,
			FenceTimeout: time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
