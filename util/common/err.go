package common

import (
	"errors"

	"github.com/nbazone/nbazone/logger"
)

// Combine joins the non-nil errors; nil when there are none.
func Combine(errs ...error) error {
	return errors.Join(errs...)
}

// Recover must be deferred directly. It logs and returns the panic value, if any.
func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil && msg != "" {
		logger.Error(msg, "panic:", panicErr)
	}
	return panicErr
}
