package command

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// exitCodeError carries a process exit code for a failure whose payload
// has already been written for the user.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// ExitStatus returns the exit code for an error from Execute and whether
// the failure was already reported on the command's output streams.
func ExitStatus(err error) (int, bool) {
	var exit *exitCodeError
	if errors.As(err, &exit) {
		return exit.code, true
	}
	return 1, false
}

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
	return &exitCodeError{code: 1}
}

// writeJSONError reports a structured failure on stdout and exits with
// the given code.
func writeJSONError(cmd *cobra.Command, message string, code int) error {
	_ = json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"error": message})
	return &exitCodeError{code: code}
}

func writeIndented(cmd *cobra.Command, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// writeIndentedExit reports an indented payload on stdout and exits with
// the given code.
func writeIndentedExit(cmd *cobra.Command, payload any, code int) error {
	if err := writeIndented(cmd, payload); err != nil {
		return err
	}
	return &exitCodeError{code: code}
}
