// Package logger holds the process logger of rentclient.
//
// cmd calls Init once; packages tag their output with For(component).
// Stores never call Get themselves, they receive a zerolog.Logger.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "rentclient"

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is trace, debug, info, warn or error. Unknown values mean info.
	Level string
	// Pretty switches to the coloured console writer for local runs.
	Pretty bool
	// Output defaults to os.Stderr; stdout is left to CLI output.
	Output io.Writer
}

var (
	mu       sync.RWMutex
	instance *zerolog.Logger
)

// Init builds the logger. Only the first call after start (or Reset) has an
// effect; later calls return the existing logger.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if instance != nil {
		return *instance
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)
	l := zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
	instance = &l
	return l
}

// Get returns the process logger. Panics if Init has not been called.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("logger: Get() called before Init()")
	}
	return *instance
}

// For returns the process logger tagged with a component name, or a
// disabled logger before Init.
func For(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return zerolog.Nop()
	}
	return instance.With().Str("component", component).Logger()
}

// Reset drops the logger so the next Init rebuilds it. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl > zerolog.ErrorLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
