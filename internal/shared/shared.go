// Package shared holds the configuration, journal database, sentinel errors and logging helpers used across duesync.
package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const logPrefix = "duesync"

// NewLogger creates the [log.Logger] used by every command. Entries are timestamped and prefixed
// with the program name.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{ReportTimestamp: true, Prefix: logPrefix})
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
// The sync uses it to tag every entry of a run with the run ID.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for l. Caller locations are only reported at debug level.
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
	l.SetReportCaller(ll <= log.DebugLevel)
}

// GenerateID returns a new v4 UUID string, used for run IDs and Todoist request IDs.
func GenerateID() string {
	return uuid.New().String()
}
