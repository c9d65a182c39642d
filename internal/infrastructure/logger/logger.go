package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// levelColors maps the slog.TextHandler level markers to ANSI colors.
var levelColors = map[string]string{
	"level=DEBUG": colorCyan,
	"level=INFO":  colorGreen,
	"level=WARN":  colorYellow,
	"level=ERROR": colorRed,
}

// colorWriter wraps an io.Writer and colorizes the level marker of each
// emitted line when writing to a terminal.
type colorWriter struct {
	writer  io.Writer
	enabled bool
}

func (cw *colorWriter) Write(p []byte) (int, error) {
	if !cw.enabled {
		return cw.writer.Write(p)
	}

	text := string(p)
	for marker, color := range levelColors {
		text = strings.ReplaceAll(text, marker, color+marker+colorReset)
	}

	if _, err := cw.writer.Write([]byte(text)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// New builds a structured slog logger honoring the configured level and
// environment: colored text output for development environments, JSON for
// everything else.
func New(appName, level, environment string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "local", "dev", "development":
		handler = slog.NewTextHandler(&colorWriter{writer: os.Stdout, enabled: isTerminal(os.Stdout)}, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("app", appName)
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
