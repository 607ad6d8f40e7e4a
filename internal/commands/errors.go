package commands

import (
	"errors"
	"log/slog"

	"github.com/dotcommander/cerror/internal/output"
)

type printedError struct {
	err error
}

func (e printedError) Error() string {
	// Intentionally hide the original error: the JSON error response is the output.
	return "error already printed"
}

func (e printedError) Unwrap() error { return e.err }

// cmdErr logs err, prints it as the JSON error envelope and returns a
// printedError so Execute does not log it a second time.
func cmdErr(err error) error {
	if err == nil {
		return nil
	}
	attrs := []any{"error", err.Error()}
	type recoverable interface {
		ErrorCode() string
	}
	var re recoverable
	if errors.As(err, &re) {
		attrs = append(attrs, "error_code", re.ErrorCode())
	}
	slog.Error("command error", attrs...)
	if perr := output.PrintError(err); perr != nil {
		return perr
	}
	return printedError{err: err}
}
