// Package logging hands out component loggers that share one configured logrus
// logger. Diagnostics go to stderr so generated documents can go to stdout.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/mcncl/pollinate/internal/config"
	"github.com/sirupsen/logrus"
)

// EnvLogLevel overrides the configured level when set.
const EnvLogLevel = "POLLINATE_LOG_LEVEL"

var (
	base      = newBase()
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

func newBase() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(textFormatter(os.Stderr))
	return logger
}

// NewLogger returns the logger for a component. Loggers are cached per
// component and all share the configuration applied by Configure.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	entry := base.WithField("component", component)
	loggers[component] = entry
	return entry
}

// Configure applies level and format settings to every component logger.
func Configure(cfg config.LogConfig) {
	levelStr := "info"
	if env := os.Getenv(EnvLogLevel); env != "" {
		levelStr = env
	} else if cfg.Level != "" {
		levelStr = cfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		base.Warnf("Unknown log level %q, using info", levelStr)
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	switch cfg.Format {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		base.SetFormatter(textFormatter(base.Out))
	}
}

// SetOutput redirects all component loggers, mainly for tests.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// Level returns the current level shared by all component loggers.
func Level() logrus.Level {
	return base.GetLevel()
}

func textFormatter(w io.Writer) *logrus.TextFormatter {
	return &logrus.TextFormatter{
		DisableColors:    !IsTerminal(w),
		DisableTimestamp: true,
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
