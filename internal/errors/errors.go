package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/validation"
)

// Exit codes
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// ExitCode maps err to the process exit code. Bad user input gets its own
// code so scripts can tell it apart from storage failures.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var vErr *validation.ValidationError
	if stderrors.As(err, &vErr) {
		return ExitValidation
	}
	return ExitFailure
}

// Report writes the formatted error to w and logs it. Validation errors are
// logged at warn level since they are expected user mistakes.
func Report(w io.Writer, err error) int {
	code := ExitCode(err)
	if code == ExitOK {
		return code
	}
	if code == ExitValidation {
		logger.Warn("Command rejected input", "error", err)
	} else {
		logger.Error("Command execution failed", "error", err)
	}
	fmt.Fprintln(w, Format(err))
	return code
}

// Fatal reports err on stderr and exits with its exit code
func Fatal(err error) {
	if err != nil {
		os.Exit(Report(os.Stderr, err))
	}
}
