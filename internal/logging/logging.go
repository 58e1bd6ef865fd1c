// Package logging configures the process wide logger.
//
// All engine logs go to stderr so they never interleave with the UCI
// reply stream on stdout.
package logging

import (
	"os"
	"sync"

	"github.com/op/go-logging"
)

var (
	once sync.Once
	log  *logging.Logger
)

// GetLog returns the shared logger, configuring the backend on first use.
func GetLog() *logging.Logger {
	once.Do(func() {
		log = logging.MustGetLogger("yoki")
		backend := logging.NewLogBackend(os.Stderr, "", 0)
		format := logging.MustStringFormatter(
			`%{time:15:04:05.000} %{shortpkg:-8s} %{level:-7s} %{message}`)
		formatted := logging.NewBackendFormatter(backend, format)
		leveled := logging.AddModuleLevel(formatted)
		leveled.SetLevel(logging.INFO, "")
		logging.SetBackend(leveled)
	})
	return log
}

// SetLevel adjusts the log level, e.g. to enable debug output.
func SetLevel(level logging.Level) {
	GetLog()
	logging.SetLevel(level, "yoki")
}
