package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

const ServiceName = "yatube"

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Packages log before main has a chance to configure anything (tests, init
// code), so a default logger is always in place.
func init() {
	Init("info", false)
}

// Init (re)builds the global logger. An unknown level falls back to info.
func Init(level string, json bool) {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if json {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	Log = logger.WithField("service", ServiceName)
}

// Logger exposes the underlying logger, e.g. to silence it in tests.
func Logger() *logrus.Logger {
	return logger
}
