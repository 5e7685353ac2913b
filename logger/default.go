package logger

import "sync/atomic"

var defLogger atomic.Pointer[Logger]

func init() {
	l := NewSlog(InfoLevel, false)
	defLogger.Store(&l)
}

// GetLogger returns the default logger. It is the value used by config
// constructors when no WithLogger option is given.
func GetLogger() Logger {
	return *defLogger.Load()
}

// SetDefault replaces the default logger for configs created afterwards.
// A nil logger is ignored.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defLogger.Store(&l)
}
