package utils

import (
	"runtime/debug"
	"time"

	"golang-crypto-trader/pkg/logger"
)

// GoSafe runs fn in a new goroutine and recovers from any panic so a single
// worker cannot take down the process. Recovered panics are logged with the
// goroutine's stack.
func GoSafe(log *logger.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Recovered from panic in goroutine",
					logger.Field("panic", r),
					logger.StringField("stack", string(debug.Stack())),
				)
			}
		}()
		fn()
	}()
}

// ToPointer returns a pointer to the given value.
func ToPointer[T any](v T) *T {
	return &v
}

// FormatEventTime formats a timestamp for human-readable trade reports.
func FormatEventTime(t time.Time) string {
	return t.Format("(15:04:05) 02-01-2006")
}
