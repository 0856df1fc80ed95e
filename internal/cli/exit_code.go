package cli

import (
	"errors"

	"github.com/benedict2310/siteindex/pkg/tree"
)

const (
	exitFailure = 1
	// exitUnreadable is returned when the site directory is missing or
	// cannot be listed.
	exitUnreadable = 2
)

// ExitError carries the process exit code for a command error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func exitCodeError(code int, err error) error {
	if code <= 0 || err == nil {
		return err
	}
	return &ExitError{Code: code, Err: err}
}

// classify attaches the exit code for errors that come out of a scan or a
// generation run.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var coded *ExitError
	if errors.As(err, &coded) {
		return err
	}
	if errors.Is(err, tree.ErrDirectoryUnreadable) {
		return exitCodeError(exitUnreadable, err)
	}
	return err
}

// ExitCode maps a command error to the process exit status: 0 on success,
// 2 for an unreadable site directory, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded *ExitError
	if errors.As(classify(err), &coded) && coded.Code > 0 {
		return coded.Code
	}
	return exitFailure
}
