// Package config loads the toolkit's file configuration and converts it into
// the per-component config structs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/goliatone/go-function-cache/cache"
	"github.com/goliatone/go-function-cache/taskqueue"
)

// Duration parses human-readable durations ("5m", "1h30m") from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*d = 0
		return nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// CacheSection holds the cache store settings.
type CacheSection struct {
	ResetStatsOnClear bool     `yaml:"reset_stats_on_clear"`
	SweepInterval     Duration `yaml:"sweep_interval"`
}

// TasksSection holds the task queue settings.
type TasksSection struct {
	Workers int `yaml:"workers"`
}

// File is the root of the YAML configuration file.
type File struct {
	Cache CacheSection `yaml:"cache"`
	Tasks TasksSection `yaml:"tasks"`
}

// Default returns the configuration used when no file is present.
func Default() File {
	return File{
		Cache: CacheSection{
			ResetStatsOnClear: false,
			SweepInterval:     0,
		},
		Tasks: TasksSection{
			Workers: taskqueue.DefaultConfig().Workers,
		},
	}
}

// Load reads and validates the configuration at path. A missing file yields
// the defaults; a malformed or invalid file is an error.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return File{}, fmt.Errorf("read config %s: %w", path, err)
	}

	file := Default()
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := file.Validate(); err != nil {
		return File{}, fmt.Errorf("validate config %s: %w", path, err)
	}
	return file, nil
}

// Validate checks the file by validating the converted component configs.
func (f File) Validate() error {
	if err := f.CacheConfig().Validate(); err != nil {
		return err
	}
	return f.TaskConfig().Validate()
}

// CacheConfig converts the cache section into a cache.Config.
func (f File) CacheConfig() cache.Config {
	return cache.Config{
		ResetStatsOnClear: f.Cache.ResetStatsOnClear,
		SweepInterval:     time.Duration(f.Cache.SweepInterval),
	}
}

// TaskConfig converts the tasks section into a taskqueue.Config.
func (f File) TaskConfig() taskqueue.Config {
	return taskqueue.Config{
		Workers: f.Tasks.Workers,
	}
}
