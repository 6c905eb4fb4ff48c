package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new configured logger. format is "text" or "json";
// anything else selects text.
func NewLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	// Parse log level
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	return logger
}
