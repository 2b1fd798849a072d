// Package bcplog configures the zerolog logger shared by the agent, the
// session engine, and their tests.
package bcplog

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "BCP_LOG_LEVEL"
	EnvLogTimestamp = "BCP_LOG_TIMESTAMP"
	EnvLogNoColor   = "BCP_LOG_NOCOLOR"
	EnvLogBypass    = "BCP_LOG_BYPASS"
)

// Profile selects the logging defaults for a run.
type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

var configureOnce sync.Once

// ConfigureRuntime sets up the package-level logger for process use.
func ConfigureRuntime() zerolog.Logger {
	return Configure(ProfileRuntime)
}

// ConfigureTests sets up the package-level logger for `go test` runs:
// debug level, no timestamps (test output is already ordered).
func ConfigureTests() zerolog.Logger {
	return Configure(ProfileTest)
}

// Configure builds the logger for profile, applies environment overrides,
// and installs it as zerolog's package-level default. Only the first call
// across the process takes effect; later calls return that same logger.
func Configure(profile Profile) zerolog.Logger {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		applyEnvOverrides(&cfg)
		log.Logger = build(cfg)
	})
	return log.Logger
}

type config struct {
	level     zerolog.Level
	timestamp bool
	noColor   bool
	bypass    bool
}

func defaultConfig(profile Profile) config {
	switch profile {
	case ProfileTest:
		return config{level: zerolog.DebugLevel, timestamp: false}
	default:
		return config{level: zerolog.InfoLevel, timestamp: true}
	}
}

func build(cfg config) zerolog.Logger {
	if cfg.bypass {
		return zerolog.Nop()
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    cfg.noColor,
	}
	ctx := zerolog.New(output).Level(cfg.level).With()
	if cfg.timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Str("app", "bcp-agent").Logger()
}

func applyEnvOverrides(cfg *config) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.noColor = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogBypass)); ok {
		cfg.bypass = v
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
