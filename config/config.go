package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/disintegration/imaging"
)

// Package config provides configuration management for nitrohydra.

// Config holds all configuration data. Zero values fall back to the defaults in const.go.
type Config struct {
	CacheDir          string   `toml:"cache_dir"`
	ThumbnailSize     int      `toml:"thumbnail_size"`
	PreviewSize       int      `toml:"preview_size"`
	JPEGQuality       int      `toml:"jpeg_quality"`
	ResampleFilter    string   `toml:"resample_filter"`
	CropMode          string   `toml:"crop_mode"`
	Workers           int      `toml:"workers"`
	AutoOrient        bool     `toml:"auto_orient"`
	MonitorCommand    []string `toml:"monitor_command"`
	BackgroundSchemas []string `toml:"background_schemas"`
	Extensions        []string `toml:"extensions"`
}

// Default returns a Config populated with the default values.
func Default() *Config {
	c := &Config{}
	c.setDefaultValues()
	return c
}

// GetFilename returns the path to the user's config file.
func GetFilename() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting user config directory: %w", err)
	}
	return filepath.Join(dir, CacheSubDir, ConfigFileName), nil
}

// Load reads the configuration from filename. A missing file is not an error and yields the defaults.
func Load(filename string) (*Config, error) {
	c := &Config{}
	if _, err := toml.DecodeFile(filename, c); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("loading config %s: %w", filename, err)
	}
	c.setDefaultValues()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", filename, err)
	}
	return c, nil
}

// Save writes the configuration to filename, creating its directory if needed.
func (c *Config) Save(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// setDefaultValues fills every unset field.
func (c *Config) setDefaultValues() {
	if c.ThumbnailSize <= 0 {
		c.ThumbnailSize = DefaultThumbnailSize
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = DefaultPreviewSize
	}
	if c.JPEGQuality <= 0 {
		c.JPEGQuality = DefaultJPEGQuality
	}
	if c.ResampleFilter == "" {
		c.ResampleFilter = DefaultResampleFilter
	}
	if c.CropMode == "" {
		c.CropMode = DefaultCropMode
	}
	if len(c.MonitorCommand) == 0 {
		c.MonitorCommand = slices.Clone(DefaultMonitorCommand)
	}
	if len(c.BackgroundSchemas) == 0 {
		c.BackgroundSchemas = slices.Clone(DefaultBackgroundSchemas)
	}
	if len(c.Extensions) == 0 {
		c.Extensions = slices.Clone(DefaultExtensions)
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if _, err := c.Filter(); err != nil {
		return err
	}
	switch c.CropMode {
	case "center", "smart":
	default:
		return fmt.Errorf("unknown crop_mode %q", c.CropMode)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// Filter maps the resample_filter setting to an imaging filter.
func (c *Config) Filter() (imaging.ResampleFilter, error) {
	switch strings.ToLower(c.ResampleFilter) {
	case "", "catmullrom":
		return imaging.CatmullRom, nil
	case "lanczos":
		return imaging.Lanczos, nil
	case "linear":
		return imaging.Linear, nil
	case "box":
		return imaging.Box, nil
	case "nearest":
		return imaging.NearestNeighbor, nil
	default:
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resample_filter %q", c.ResampleFilter)
	}
}

// WorkerCount returns the configured parallelism, defaulting to the number of CPUs.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// CacheRoot returns the user-scoped cache root: $XDG_CACHE_HOME, else the OS cache directory.
func CacheRoot() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("getting user cache directory: %w", err)
	}
	return dir, nil
}

// GetCacheDir returns the directory holding thumbnails and the composed wallpaper.
func (c *Config) GetCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	root, err := CacheRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, CacheSubDir), nil
}
