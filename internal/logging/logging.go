package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog default. The level uses the solver's
// verbosity vocabulary (critical, error, warning, info, debug) so one
// flag value drives both the driver and the solver processes it spawns.
// Format must be "text" or "json"; if w is nil, os.Stderr is used.
func Init(level, format string, w ...io.Writer) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	var writer io.Writer = os.Stderr
	if len(w) > 0 && w[0] != nil {
		writer = w[0]
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(writer, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(writer, opts)))
	}
	return nil
}

// New returns a logger tagged with the component it speaks for.
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}

// ParseLevel maps a solver-style verbosity name onto a slog level.
// "critical" has no slog equivalent and maps to Error.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "critical", "error":
		return slog.LevelError, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}
