// Package monitoring holds the process-wide diagnostic logger used by the
// animation driver and the CLI.
package monitoring

import (
	"io"
	"log"
)

// Logf defaults to log.Printf. Replace it with SetLogger or SetOutput; tests
// usually mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetOutput routes Logf to w without timestamps, the form used for
// per-frame progress lines.
func SetOutput(w io.Writer) {
	SetLogger(log.New(w, "", 0).Printf)
}
