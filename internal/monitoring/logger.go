// Package monitoring holds the process-wide diagnostic logger used by the
// conversion pipeline. Library packages log through Logf and its level
// helpers so tests and the CLI can redirect or mute output in one place.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Infof logs a routine progress message.
func Infof(format string, v ...interface{}) {
	Logf("[INFO] "+format, v...)
}

// Warnf logs a notable but non-fatal condition, such as an empty point
// cloud or a rasterization that produced no occupied cells.
func Warnf(format string, v ...interface{}) {
	Logf("[WARNING] "+format, v...)
}

// Errorf logs a failure that aborted a single frame or file.
func Errorf(format string, v ...interface{}) {
	Logf("[ERROR] "+format, v...)
}
