package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/watchtower/internal/model"
)

// RulesOptions holds flags for the rules subcommands.
type RulesOptions struct {
	*RootOptions
	Database string
}

// NewRulesCommand creates the rules command group.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage violation rules",
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", rootOpts.Config.Database, "SQLite path or postgres:// DSN")

	cmd.AddCommand(&cobra.Command{
		Use:   "load [rules-dir]",
		Short: "Compile CUE rules into the violation_rules collection",
		Long: `Compile and validate CUE violation rules, then replace the
violation_rules collection with them. Nothing is written if any rule is
invalid.

Example:
  watchtower rules load ./rules --db ./watchtower.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootOpts.Config.Rules
			if len(args) == 1 {
				dir = args[0]
			}
			return runRulesLoad(opts, dir, cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "show",
		Short:         "Print the loaded violation rules",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesShow(opts, cmd)
		},
	})

	return cmd
}

func runRulesLoad(opts *RulesOptions, dir string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
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

	data, err := model.MarshalCanonical(rules)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode rules", err)
	}

	backend, err := openBackend(ctx, opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer backend.Close()

	if err := backend.Replace(ctx, model.CollectionViolationRules, data); err != nil {
		return WrapExitError(ExitCommandError, "failed to store rules", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{"loaded": len(rules)})
	}
	fmt.Fprintf(formatter.Writer, "✓ Loaded %d rule(s)\n", len(rules))
	return nil
}

func runRulesShow(opts *RulesOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	backend, err := openBackend(ctx, opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer backend.Close()

	data, _, err := backend.Read(ctx, model.CollectionViolationRules)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read rules", err)
	}
	rules, err := model.Decode[model.ViolationRule](data)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to decode rules", err)
	}

	if opts.Format == "json" {
		return formatter.Success(rules)
	}
	if len(rules) == 0 {
		fmt.Fprintln(formatter.Writer, "No rules loaded.")
		return nil
	}
	for _, r := range rules {
		state := "enabled"
		if !r.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(formatter.Writer, "%s\t%s\t%s\tthreshold=%g fine=%g\t%s\n",
			r.ID, r.Kind, state, r.Threshold, r.Fine, r.MessageTemplate)
	}
	return nil
}
