package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/watchtower/internal/model"
	"github.com/roach88/watchtower/internal/ruleconfig"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                         `json:"valid"`
	Rules  int                          `json:"rules"`
	Errors []ruleconfig.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [rules-dir]",
		Short: "Validate CUE violation rules",
		Long: `Compile and validate the CUE violation rules in a directory without
loading them into a database.

The directory defaults to $WATCHTOWER_RULES.

Exit codes:
  0 - All rules are valid
  1 - One or more rules are invalid
  2 - Command error (directory not found, no CUE files)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootOpts.Config.Rules
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(rootOpts, dir, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	rules, verrs, loadErr := compileRules(dir, formatter)
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, loadErr.Message)
	}

	if len(verrs) > 0 {
		return outputValidationErrors(formatter, len(rules), verrs)
	}

	if opts.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Rules: len(rules)})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d rule(s) valid\n", len(rules))
	return nil
}

// compileRules loads and validates the rules in dir.
// A non-nil LoadError means nothing could be compiled; per-rule compile
// problems are reported as validation errors alongside Validate's.
func compileRules(dir string, formatter *OutputFormatter) ([]model.ViolationRule, []ruleconfig.ValidationError, *ruleconfig.LoadError) {
	if dir == "" {
		return nil, nil, &ruleconfig.LoadError{
			Code:    ruleconfig.ErrCodeNotFound,
			Message: "no rules directory given (pass one or set " + EnvRules + ")",
		}
	}

	result, errs := ruleconfig.LoadDir(dir)
	if result == nil {
		var le *ruleconfig.LoadError
		if len(errs) > 0 && errors.As(errs[0], &le) {
			return nil, nil, le
		}
		return nil, nil, &ruleconfig.LoadError{Code: ruleconfig.ErrCodeGeneric, Message: fmt.Sprintf("%v", errs)}
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, dir)

	var verrs []ruleconfig.ValidationError
	for _, err := range errs {
		var le *ruleconfig.LoadError
		if errors.As(err, &le) {
			verrs = append(verrs, ruleconfig.ValidationError{Field: "load", Message: le.Error(), Code: le.Code})
			continue
		}
		verrs = append(verrs, ruleconfig.ValidationError{Field: "load", Message: err.Error(), Code: ruleconfig.ErrCodeGeneric})
	}
	for _, r := range result.Rules {
		formatter.VerboseLog("Compiled rule: %s (%s)", r.ID, r.Kind)
	}
	verrs = append(verrs, ruleconfig.Validate(result.Rules)...)
	return result.Rules, verrs, nil
}

// outputValidationErrors reports validation failures and returns exit code 1.
func outputValidationErrors(f *OutputFormatter, rules int, errs []ruleconfig.ValidationError) error {
	if f.Format == "json" {
		_ = f.Error(errs[0].Code, fmt.Sprintf("%d validation error(s)", len(errs)),
			ValidationResult{Valid: false, Rules: rules, Errors: errs})
	} else {
		fmt.Fprintf(f.Writer, "✗ %d validation error(s):\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(f.Writer, "  %s\n", e.Error())
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(errs)))
}
