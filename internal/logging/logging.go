package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Init configures the package-level logrus logger. Logs always go to stderr
// so they never mix with an NDJSON stdout sink; when jsonOutput is true a
// JSON formatter is used, otherwise a timestamped text formatter.
func Init(jsonOutput bool, level logrus.Level) {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(level)
	if jsonOutput {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// ParseLevel converts a string ("debug", "info", "warn", "error", "trace")
// to a logrus.Level. Unknown strings default to InfoLevel.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(s) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
