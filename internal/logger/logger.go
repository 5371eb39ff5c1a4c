// Package logger centralizes log setup for storagelab.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var root = logrus.New()

func init() {
	root.SetOutput(os.Stderr)
	root.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	root.SetLevel(logrus.InfoLevel)
}

// SetLevel applies a level name (debug, info, warn, error). Unknown names
// leave the level unchanged.
func SetLevel(level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	root.SetLevel(parsed)
	return nil
}

// WithComponent returns an entry scoped to one component, e.g. "vm" or "guest".
func WithComponent(component string) *logrus.Entry {
	return root.WithField("component", component)
}

// Discard returns an entry that drops everything. Used by tests.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
