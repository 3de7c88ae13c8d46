// Package log wraps logrus with per-module masks and lazily-built typed
// fields, so that hot emulation paths can carry debug statements that cost a
// single branch when their module is muted.
package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

func init() {
	logrus.SetLevel(logrus.DebugLevel)
}

// SetOutput redirects all log output (stderr by default).
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}
