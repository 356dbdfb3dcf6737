package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// CANNY_CAM_CAMERA_WIDTH=320 sets camera.width.
const EnvPrefix = "CANNY_CAM"

// FileName is the config file looked up in the working directory and
// in $HOME/.canny-cam when no explicit path is given.
const FileName = "canny-cam.toml"

// Display modes
const (
	DisplayWindow   = "window"
	DisplayTerminal = "terminal"
	DisplayNone     = "none"
)

// Direction map file formats
const (
	DirectionPGM = "pgm"
	DirectionPNG = "png"
)

// Config is the full canny-cam configuration
type Config struct {
	Camera   CameraConfig   `mapstructure:"camera" toml:"camera"`
	Display  DisplayConfig  `mapstructure:"display" toml:"display"`
	Output   OutputConfig   `mapstructure:"output" toml:"output"`
	Detector DetectorConfig `mapstructure:"detector" toml:"detector"`
	Loop     LoopConfig     `mapstructure:"loop" toml:"loop"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
}

// CameraConfig selects and sizes the frame source
type CameraConfig struct {
	Width     int    `mapstructure:"width" toml:"width"`
	Height    int    `mapstructure:"height" toml:"height"`
	Device    int    `mapstructure:"device" toml:"device"`     // >= 0 opens a device index instead of the pipeline
	Pipeline  string `mapstructure:"pipeline" toml:"pipeline"` // empty = libcamerasrc pipeline built from width/height
	Files     string `mapstructure:"files" toml:"files"`       // glob; non-empty replays image files instead of a camera
	LoopFiles bool   `mapstructure:"loop_files" toml:"loop_files"`
}

// DisplayConfig configures the preview and key polling
type DisplayConfig struct {
	Mode         string `mapstructure:"mode" toml:"mode"`
	KeyTimeoutMS int    `mapstructure:"key_timeout_ms" toml:"key_timeout_ms"`
}

// KeyTimeout returns the key poll timeout as a duration.
func (d DisplayConfig) KeyTimeout() time.Duration {
	return time.Duration(d.KeyTimeoutMS) * time.Millisecond
}

// OutputConfig configures where processed frames are written
type OutputConfig struct {
	Dir             string `mapstructure:"dir" toml:"dir"`
	DirectionFormat string `mapstructure:"direction_format" toml:"direction_format"`
}

// DetectorConfig tunes the edge detector
type DetectorConfig struct {
	Workers int `mapstructure:"workers" toml:"workers"` // 0 = GOMAXPROCS
}

// LoopConfig tunes the capture loop
type LoopConfig struct {
	Async          bool `mapstructure:"async" toml:"async"`
	MaxEmptyFrames int  `mapstructure:"max_empty_frames" toml:"max_empty_frames"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level string `mapstructure:"level" toml:"level"`
	JSON  bool   `mapstructure:"json" toml:"json"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("camera.width", 640)
	v.SetDefault("camera.height", 480)
	v.SetDefault("camera.device", -1)
	v.SetDefault("camera.pipeline", "")
	v.SetDefault("camera.files", "")
	v.SetDefault("camera.loop_files", false)

	v.SetDefault("display.mode", DisplayWindow)
	v.SetDefault("display.key_timeout_ms", 10)

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.direction_format", DirectionPGM)

	v.SetDefault("detector.workers", 0)

	v.SetDefault("loop.async", false)
	v.SetDefault("loop.max_empty_frames", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// New returns a viper instance with defaults and environment binding set up.
//
// If path is non-empty that file is read and must exist. Otherwise
// canny-cam.toml is searched in the working directory and then in
// $HOME/.canny-cam; a missing file is not an error.
func New(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(err, "failed to read config file %s", path),
				"check the --config path and TOML syntax")
		}
		return v, nil
	}

	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".canny-cam"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}
	return v, nil
}

// Load builds the effective configuration from defaults, the config file
// and CANNY_CAM_* environment variables, and validates it.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates configuration from v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration built from defaults alone.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return errors.Newf("camera.width and camera.height must be > 0, got %dx%d", c.Camera.Width, c.Camera.Height)
	}

	switch c.Display.Mode {
	case DisplayWindow, DisplayTerminal, DisplayNone:
	default:
		return errors.WithHint(
			errors.Newf("unknown display.mode %q", c.Display.Mode),
			fmt.Sprintf("use one of: %s, %s, %s", DisplayWindow, DisplayTerminal, DisplayNone))
	}
	if c.Display.KeyTimeoutMS <= 0 {
		return errors.Newf("display.key_timeout_ms must be > 0, got %d", c.Display.KeyTimeoutMS)
	}

	if c.Output.Dir == "" {
		return errors.New("output.dir cannot be empty")
	}
	switch c.Output.DirectionFormat {
	case DirectionPGM, DirectionPNG:
	default:
		return errors.WithHint(
			errors.Newf("unknown output.direction_format %q", c.Output.DirectionFormat),
			"use pgm or png")
	}

	if c.Detector.Workers < 0 {
		return errors.Newf("detector.workers must be >= 0, got %d", c.Detector.Workers)
	}
	if c.Loop.MaxEmptyFrames <= 0 {
		return errors.Newf("loop.max_empty_frames must be > 0, got %d", c.Loop.MaxEmptyFrames)
	}
	return nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to marshal config to TOML")
	}
	return nil
}
