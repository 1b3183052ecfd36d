package logging

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu    sync.RWMutex
	level = logrus.InfoLevel
)

// SetLevel changes the level used by loggers created afterwards.
func SetLevel(name string) {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		logrus.WithError(err).Warnf("Unknown log level %q, keeping %s", name, level)
		return
	}
	mu.Lock()
	level = lvl
	mu.Unlock()
	logrus.SetLevel(lvl)
}

// New returns a component logger with full timestamps.
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	mu.RLock()
	logger.SetLevel(level)
	mu.RUnlock()
	return logger
}
