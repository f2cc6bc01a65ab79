package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/livestyle/internal/event"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool               `json:"valid"`
	Source string             `json:"source"`
	Events int                `json:"events"`
	ByType map[event.Kind]int `json:"by_type,omitempty"`
	Errors []event.Violation  `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <events.yaml>",
		Short: "Validate an event document without applying it",
		Long: `Validate an event document against the event schema and decode every
event strictly, without running the engine.

Exit codes:
  0 - The document is valid
  1 - The document is invalid
  2 - Command error (file not readable)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if _, err := os.Stat(path); err != nil {
		return f.Fail(ExitCommandError, CodeInput, "cannot read events", err, nil)
	}

	events, err := event.LoadFile(path)
	if err != nil {
		return failValidate(f, path, err)
	}

	result := ValidationResult{
		Valid:  true,
		Source: path,
		Events: len(events),
		ByType: make(map[event.Kind]int),
	}
	for _, ev := range events {
		result.ByType[ev.Kind()]++
	}

	if f.JSON() {
		return f.Success(result)
	}
	f.Printf("%s %s: %d event(s) valid\n", markOK, path, result.Events)
	for _, kind := range event.Kinds {
		if n := result.ByType[kind]; n > 0 {
			f.VerboseLog("  %-32s %d", kind, n)
		}
	}
	return nil
}

func failValidate(f *OutputFormatter, path string, err error) error {
	result := ValidationResult{Source: path}

	var schemaErr *event.SchemaError
	if errors.As(err, &schemaErr) {
		result.Errors = schemaErr.Violations
		if !f.JSON() {
			f.Printf("%s %s: %d schema violation(s)\n", markFail, path, len(schemaErr.Violations))
			for _, v := range schemaErr.Violations {
				f.Printf("  %s\n", v)
			}
		}
		return f.Fail(ExitFailure, CodeSchema, "invalid event document", nil, result)
	}

	code := CodeDecode
	var decodeErr *event.DecodeError
	if !errors.As(err, &decodeErr) {
		code = CodeInput
	}
	result.Errors = []event.Violation{{Path: path, Message: err.Error()}}
	if !f.JSON() {
		f.Printf("%s %s\n", markFail, path)
	}
	return f.Fail(ExitFailure, code, fmt.Sprintf("invalid event document %s", path), err, result)
}
