// Package cli parses beatkeeperd's configuration: environment-variable
// defaults layered under command-line flag overrides.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds the environment-variable-sourced defaults, read with
// github.com/caarlos0/env/v11 before flags are parsed on top of them.
type EnvConfig struct {
	Bpm              int           `env:"BEATKEEPER_BPM" envDefault:"120"`
	TickPeriod       time.Duration `env:"BEATKEEPER_TICK_PERIOD" envDefault:"2ms"`
	StartMode        string        `env:"BEATKEEPER_START_MODE" envDefault:"immediate"`
	ResetMode        string        `env:"BEATKEEPER_RESET_MODE" envDefault:"individual"`
	SyncPulseEnabled bool          `env:"BEATKEEPER_SYNC_PULSE" envDefault:"false"`
	LogLevel         string        `env:"BEATKEEPER_LOG_LEVEL" envDefault:"info"`
	InboxCapacity    int           `env:"BEATKEEPER_INBOX_CAPACITY" envDefault:"100"`
}

// Config is the fully resolved configuration: environment defaults with
// any command-line flags applied on top.
type Config struct {
	Bpm              int
	TickPeriod       time.Duration
	StartMode        string
	ResetMode        string
	SyncPulseEnabled bool
	LogLevel         string
	InboxCapacity    int
	ShowHelp         bool
}

var validStartModes = map[string]bool{"immediate": true, "with-nearest": true, "with-longest": true}
var validResetModes = map[string]bool{"individual": true, "longest": true}
var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// ParseArgs resolves a Config from the process environment and then args,
// flags taking precedence over environment variables taking precedence
// over the struct defaults in EnvConfig.
func ParseArgs(args []string) (*Config, error) {
	envCfg := EnvConfig{}
	if err := env.Parse(&envCfg); err != nil {
		return nil, fmt.Errorf("parsing environment configuration: %w", err)
	}

	cfg := &Config{
		Bpm:              envCfg.Bpm,
		TickPeriod:       envCfg.TickPeriod,
		StartMode:        envCfg.StartMode,
		ResetMode:        envCfg.ResetMode,
		SyncPulseEnabled: envCfg.SyncPulseEnabled,
		LogLevel:         envCfg.LogLevel,
		InboxCapacity:    envCfg.InboxCapacity,
	}

	fs := flag.NewFlagSet("beatkeeperd", flag.ContinueOnError)
	fs.IntVar(&cfg.Bpm, "bpm", cfg.Bpm, "initial tempo in beats per minute")
	fs.DurationVar(&cfg.TickPeriod, "tick-period", cfg.TickPeriod, "driver loop tick period")
	fs.StringVar(&cfg.StartMode, "start-mode", cfg.StartMode, "immediate, with-nearest, or with-longest")
	fs.StringVar(&cfg.ResetMode, "reset-mode", cfg.ResetMode, "individual or longest")
	fs.BoolVar(&cfg.SyncPulseEnabled, "sync-pulse", cfg.SyncPulseEnabled, "emit a 1/24-beat sync pulse")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn, or error")
	fs.IntVar(&cfg.InboxCapacity, "inbox-capacity", cfg.InboxCapacity, "bounded inbox capacity")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "show this help")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "show this help (short)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Bpm <= 0 {
		return fmt.Errorf("bpm must be positive, got %d", c.Bpm)
	}
	if c.TickPeriod <= 0 {
		return fmt.Errorf("tick-period must be positive, got %s", c.TickPeriod)
	}
	c.StartMode = strings.ToLower(c.StartMode)
	if !validStartModes[c.StartMode] {
		return fmt.Errorf("invalid start-mode %q: must be immediate, with-nearest, or with-longest", c.StartMode)
	}
	c.ResetMode = strings.ToLower(c.ResetMode)
	if !validResetModes[c.ResetMode] {
		return fmt.Errorf("invalid reset-mode %q: must be individual or longest", c.ResetMode)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log-level %q: must be debug, info, warn, or error", c.LogLevel)
	}
	if c.InboxCapacity <= 0 {
		return fmt.Errorf("inbox-capacity must be positive, got %d", c.InboxCapacity)
	}
	return nil
}

// PrintHelp writes usage information to w.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `beatkeeperd - musical sequencing daemon

Usage:
  beatkeeperd [options]

Options:
  -bpm <n>                initial tempo in beats per minute (default 120)
  -tick-period <duration>  driver loop tick period (default 2ms)
  -start-mode <mode>       immediate, with-nearest, or with-longest (default immediate)
  -reset-mode <mode>       individual or longest (default individual)
  -sync-pulse              emit a 1/24-beat sync pulse (default false)
  -log-level <level>       debug, info, warn, or error (default info)
  -inbox-capacity <n>      bounded inbox capacity (default 100)
  -h, -help                show this help

Environment Variables:
  BEATKEEPER_BPM, BEATKEEPER_TICK_PERIOD, BEATKEEPER_START_MODE,
  BEATKEEPER_RESET_MODE, BEATKEEPER_SYNC_PULSE, BEATKEEPER_LOG_LEVEL,
  BEATKEEPER_INBOX_CAPACITY
`)
}
