// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and error display for the operator-tui CLI.
//
// Every command handler returns errors; display and exit-code mapping
// happen in one place so behavior stays consistent across commands.
package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/operator-tui/internal/api"
)

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration error
	ExitConfigError = 3
	// ExitNetworkError indicates the backend is unreachable
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// UsageError marks invalid command-line input.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// ErrMissingArgument creates a usage error for a missing required argument.
func ErrMissingArgument(name, usage string) error {
	return &UsageError{Message: fmt.Sprintf("missing %s\nUsage: %s", name, usage)}
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case isUsageError(err):
		return ExitUsageError
	case api.IsNotRunning(err):
		return ExitNetworkError
	case api.IsTimeout(err):
		return ExitTimeoutError
	case api.IsNotFound(err):
		return ExitNotFoundError
	default:
		return ExitGeneralError
	}
}

func isUsageError(err error) bool {
	_, ok := err.(*UsageError)
	return ok
}

// Exit displays err and terminates with the matching exit code. A nil err
// is a no-op.
func Exit(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("Error:"), err)
	if api.IsNotRunning(err) {
		fmt.Fprintln(os.Stderr, infoStyle.Render("Is the Local Operator backend running? Check with: operator-tui status"))
	}
	os.Exit(GetExitCode(err))
}
