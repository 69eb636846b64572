package utils

import (
	"fmt"
	"runtime/debug"
)

// RecoverFromPanic recovers from panics and logs them. Use it deferred at
// the top of UI callbacks so a bad handler does not take the window down.
func RecoverFromPanic(logger *Logger, context string) {
	if r := recover(); r != nil {
		stack := debug.Stack()
		logger.Error("Panic recovered in %s: %v\nStack trace:\n%s", context, r, string(stack))
	}
}

// Guard wraps a callback with RecoverFromPanic
func Guard(logger *Logger, context string, fn func()) func() {
	return func() {
		defer RecoverFromPanic(logger, context)
		fn()
	}
}

// WrapError wraps an error with additional context
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
