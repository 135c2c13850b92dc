// Package config loads the sai configuration file.
//
// The file is optional: without one, Default is used. When a path is given
// explicitly on the command line it must exist.
//
//	log:
//	  verbosity: 1
//	  file: sai.log
//	build_output:
//	  history_size: 50
//	  close_timeout: 60s
//	  parsers:
//	    compile: [javac, plain]
//	    test: [junit, javac, plain]
//	    run: [stacktrace]
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/saibuild/buildoutput"
	"github.com/dhamidi/saibuild/buildoutput/parsers"
)

// DefaultPath is the file looked up in the working directory.
const DefaultPath = "sai.yaml"

// Phase names a kind of build step with its own parser chain.
type Phase string

const (
	PhaseCompile Phase = "compile"
	PhaseTest    Phase = "test"
	PhaseRun     Phase = "run"
)

type Config struct {
	Log         LogConfig         `yaml:"log"`
	BuildOutput BuildOutputConfig `yaml:"build_output"`
}

type LogConfig struct {
	// Verbosity is passed to commonlog.Configure: 0 logs errors and
	// warnings only, each step adds a level.
	Verbosity int `yaml:"verbosity"`

	// File receives log output. Empty means stderr.
	File string `yaml:"file"`
}

type BuildOutputConfig struct {
	// HistorySize is how many lines parsers may push back.
	HistorySize int `yaml:"history_size"`

	// CloseTimeout bounds how long a finished process waits for its
	// output to be parsed.
	CloseTimeout time.Duration `yaml:"close_timeout"`

	// Parsers lists parser names per phase, tried in order.
	Parsers map[Phase][]string `yaml:"parsers"`
}

func Default() *Config {
	return &Config{
		BuildOutput: BuildOutputConfig{
			HistorySize:  buildoutput.DefaultHistorySize,
			CloseTimeout: buildoutput.DefaultCloseTimeout,
			Parsers: map[Phase][]string{
				PhaseCompile: {"javac", "plain"},
				PhaseTest:    {"junit", "javac", "plain"},
				PhaseRun:     {"stacktrace"},
			},
		},
	}
}

// Load reads the configuration at path on top of Default. A missing file
// is only an error if explicit is set.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	defaults := Default()
	for phase, names := range defaults.BuildOutput.Parsers {
		if _, ok := cfg.BuildOutput.Parsers[phase]; !ok {
			if cfg.BuildOutput.Parsers == nil {
				cfg.BuildOutput.Parsers = make(map[Phase][]string)
			}
			cfg.BuildOutput.Parsers[phase] = names
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and parser names.
func (c *Config) Validate() error {
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("log.verbosity must not be negative")
	}
	if c.BuildOutput.HistorySize < 1 {
		return fmt.Errorf("build_output.history_size must be at least 1, got %d", c.BuildOutput.HistorySize)
	}
	if c.BuildOutput.CloseTimeout <= 0 {
		return fmt.Errorf("build_output.close_timeout must be positive, got %s", c.BuildOutput.CloseTimeout)
	}
	for phase, names := range c.BuildOutput.Parsers {
		switch phase {
		case PhaseCompile, PhaseTest, PhaseRun:
		default:
			return fmt.Errorf("build_output.parsers: unknown phase %q", phase)
		}
		if _, err := parsers.Resolve(names); err != nil {
			return fmt.Errorf("build_output.parsers.%s: %w", phase, err)
		}
	}
	return nil
}

// LogPath returns the log file for commonlog.Configure, nil for stderr.
func (c *Config) LogPath() *string {
	if c.Log.File == "" {
		return nil
	}
	path := c.Log.File
	return &path
}

// Options returns the buildoutput.Reader options for this configuration.
func (b BuildOutputConfig) Options() []buildoutput.Option {
	return []buildoutput.Option{
		buildoutput.WithHistorySize(b.HistorySize),
		buildoutput.WithCloseTimeout(b.CloseTimeout),
	}
}

// ParsersFor returns the parser chain configured for phase.
func (b BuildOutputConfig) ParsersFor(phase Phase) ([]buildoutput.Parser, error) {
	return parsers.Resolve(b.Parsers[phase])
}
