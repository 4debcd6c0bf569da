// Package logx provides the process-wide logrus configuration and a
// small per-component logger helper, generalized from
// opd-ai/toxcore's crypto.LoggerHelper: every package that logs gets
// its own *logrus.Entry stamped with a "component" field instead of
// writing to the bare package-level logger directly.
package logx

import (
	"os"

	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.SetOutput(os.Stderr)
}

// New returns a logger entry scoped to component, e.g. "engine",
// "dispatcher", "track". All fields logged through the returned entry
// carry component so log lines from concurrent subsystems can be
// told apart without per-callsite bookkeeping.
func New(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}

// SetLevel changes the process-wide minimum log level, exposed for
// cmd/sushi's -log-level flag and for tests that want to quiet or
// enable debug output.
func SetLevel(level logrus.Level) {
	logrus.SetLevel(level)
}
