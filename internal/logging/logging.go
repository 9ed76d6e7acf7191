package logging

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// New builds the root logger. Unknown levels fall back to info.
func New(level string, json bool) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "codepractice",
		Level:      lvl,
		Output:     os.Stdout,
		JSONFormat: json,
	})
	hclog.SetDefault(logger)
	return logger
}

// Discard returns a logger that drops everything, for tests
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}
