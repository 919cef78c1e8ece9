package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logg = newLogger("info")

// Get returns the shared application logger
func Get() *logrus.Logger {
	return logg
}

// Init replaces the shared logger level (debug, info, warn, error)
func Init(level string) *logrus.Logger {
	logg = newLogger(level)
	return logg
}

func newLogger(level string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// LogError writes err with the module/function/context fields used across services
func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
