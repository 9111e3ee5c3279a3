// Package logging sets up the simulator's shared structured logger.
package logging

import (
	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger; init sets its JSON formatter and
// Setup its level, after which per-robot code derives scoped entries
// from it with WithField.
var Logger *logrus.Logger

func init() {
	Logger = logrus.New()
	Logger.SetFormatter(&logrus.JSONFormatter{})
}

// Setup applies the configured log level to Logger, defaulting to info
// for an unrecognized or empty level string.
func Setup(level string) {
	switch level {
	case "debug":
		Logger.SetLevel(logrus.DebugLevel)
	case "info":
		Logger.SetLevel(logrus.InfoLevel)
	case "warn":
		Logger.SetLevel(logrus.WarnLevel)
	case "error":
		Logger.SetLevel(logrus.ErrorLevel)
	default:
		Logger.SetLevel(logrus.InfoLevel)
	}
}
