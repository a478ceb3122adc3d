package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/watchtower/internal/engine"
	"github.com/roach88/watchtower/internal/model"
)

// ReplaceOptions holds flags for the replace command.
type ReplaceOptions struct {
	*RootOptions
	Database string
	Actor    string
}

// NewReplaceCommand creates the replace command.
func NewReplaceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplaceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replace <collection> <file.json|->",
		Short: "Replace a collection and print the resulting notifications",
		Long: `Replace the whole value of a collection with a JSON array and run one pass.

The stored value is the baseline: only transitions between it and the new
value notify. Replacing users or vehicles also runs the violation rules.

Exit codes:
  0 - Collection replaced
  2 - Command error (unknown collection, malformed JSON, database error)

Examples:
  watchtower replace tickets ./tickets.json --actor ./admin.yaml
  cat users.json | watchtower replace users - --db postgres://localhost/fleet`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplace(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.Database, "SQLite path or postgres:// DSN")
	cmd.Flags().StringVar(&opts.Actor, "actor", rootOpts.Config.Actor, "actor profile YAML (empty: nobody logged in)")

	return cmd
}

func runReplace(opts *ReplaceOptions, name, path string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	c, err := model.ParseCollection(name)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid collection", err)
	}

	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}

	actors, err := actorSource(opts.Actor)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load actor", err)
	}

	backend, err := openBackend(ctx, opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer backend.Close()

	d := engine.New(backend, engine.WithActorSource(actors))
	if err := d.Prime(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to prime", err)
	}
	formatter.VerboseLog("Primed from %s", opts.Database)

	notes, err := d.Replace(ctx, c, data)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replace %s", c), err)
	}
	return formatter.Notifications(notes)
}

// readInput reads path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
