package cli

import (
	"errors"
)

// Exit codes for different error scenarios
const (
	ExitSuccess          = 0 // Success
	ExitGeneralError     = 1 // Scan, storage or server failure
	ExitInvalidArguments = 2 // Invalid arguments or configuration
	ExitNotFound         = 3 // No index, or the requested package is not in it
)

// ExitError carries the process exit code for an error
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func invalidArgs(err error) error {
	return &ExitError{Code: ExitInvalidArguments, Err: err}
}

func notFound(err error) error {
	return &ExitError{Code: ExitNotFound, Err: err}
}

// ExitCode maps an error returned by a command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitGeneralError
}
