package cli

import (
	"errors"
	"fmt"
	"io"
)

// Exit codes of the powerjoins command.
const (
	ExitSuccess    = 0
	ExitGeneral    = 1
	ExitConfig     = 2
	ExitDefinition = 3
	ExitQuery      = 4
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode prints err to w and returns the code the process should exit with.
func ExitCode(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintln(w, "Error:", err)

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitGeneral
}

// ConfigError creates an ExitError with ExitConfig code.
func ConfigError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitConfig, Message: msg, Err: err}
}

// DefinitionError creates an ExitError with ExitDefinition code.
func DefinitionError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitDefinition, Message: msg, Err: err}
}

// QueryError creates an ExitError with ExitQuery code.
func QueryError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitQuery, Message: msg, Err: err}
}
