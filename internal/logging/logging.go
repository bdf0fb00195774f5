package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

var configureOnce sync.Once

// ConfigureRuntime sets up the global zerolog logger for the CLI: human
// readable output on stderr at the requested level.
func ConfigureRuntime(level string) {
	Configure(ProfileRuntime, level, os.Stderr)
}

// ConfigureTests keeps test output quiet unless a level is requested.
func ConfigureTests() {
	Configure(ProfileTest, os.Getenv("TRAVELS_LOG_LEVEL"), os.Stderr)
}

func Configure(profile Profile, level string, w io.Writer) {
	configureOnce.Do(func() {
		lvl, ok := ParseLevel(level)
		if !ok {
			lvl = defaultLevel(profile)
		}
		zerolog.SetGlobalLevel(lvl)
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.Kitchen,
			NoColor:    profile == ProfileTest,
		}).With().Timestamp().Logger()
	})
}

func defaultLevel(profile Profile) zerolog.Level {
	if profile == ProfileTest {
		return zerolog.Disabled
	}
	return zerolog.InfoLevel
}

func ParseLevel(raw string) (zerolog.Level, bool) {
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
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
