package config

import (
	"strings"

	"github.com/sirupsen/logrus"
)

var logLevels = map[string]logrus.Level{
	"debug": logrus.DebugLevel,
	"info":  logrus.InfoLevel,
	"warn":  logrus.WarnLevel,
	"error": logrus.ErrorLevel,
}

// ParseLogLevel converts a level name into a logger level. The empty string
// means "info".
func ParseLogLevel(name string) (logrus.Level, error) {
	if name == "" {
		return logrus.InfoLevel, nil
	}

	level, ok := logLevels[strings.ToLower(name)]
	if !ok {
		return logrus.InfoLevel,
			Errorf("log_level", "must be one of debug, info, warn, error; got %q", name)
	}

	return level, nil
}

// SetupLogging applies the configured log level.
func (c Config) SetupLogging() error {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return err
	}

	logrus.SetLevel(level)

	return nil
}
