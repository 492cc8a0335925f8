// internal/logger/logger.go
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jguerrero45/dashboard-insights/internal/config"
)

// New builds the process logger. JSON output is used when asked for or in
// production. The standard logrus logger is aligned with it so package level
// calls share the same format.
func New(cfg config.LogConfig, production bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if production || strings.EqualFold(cfg.Format, "json") {
		formatter = &logrus.JSONFormatter{}
	}
	logger.SetFormatter(formatter)

	logrus.SetLevel(level)
	logrus.SetFormatter(formatter)

	return logger
}
