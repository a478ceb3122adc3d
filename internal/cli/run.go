package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/roach88/watchtower/internal/engine"
)

// pollBatch caps the history entries observed per poll.
const pollBatch = 100

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Actor    string
	Sweep    string
	Poll     time.Duration
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch the store and deliver notifications",
		Long: `Start the watchtower daemon for one actor.

The daemon primes from the current store contents, then polls snapshot
history for replaces made by other processes, runs maintenance sweeps on
a cron schedule, and prints each notification as it reaches the front of
the queue.

Examples:
  watchtower run --db ./watchtower.db --actor ./supervisor.yaml
  watchtower run --db postgres://localhost/fleet --actor ./admin.yaml --sweep "0 * * * *"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.Database, "SQLite path or postgres:// DSN")
	cmd.Flags().StringVar(&opts.Actor, "actor", rootOpts.Config.Actor, "actor profile YAML (empty: nobody logged in)")
	cmd.Flags().StringVar(&opts.Sweep, "sweep", rootOpts.Config.Sweep, "cron schedule for maintenance sweeps (empty: never)")
	cmd.Flags().DurationVar(&opts.Poll, "poll", rootOpts.Config.Poll, "history poll interval")

	return cmd
}

// daemon holds the state shared by the scheduled jobs.
type daemon struct {
	backend Backend
	disp    *engine.Dispatcher
	out     io.Writer
	asJSON  bool

	mu   sync.Mutex // guards last
	last int64
}

// newDaemon primes d and positions the poll cursor at the end of history.
// The cursor is read before priming, so a replace that lands in between is
// observed again and produces no transitions.
func newDaemon(ctx context.Context, backend Backend, d *engine.Dispatcher, out io.Writer, asJSON bool) (*daemon, error) {
	last, err := backend.LastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("read history position: %w", err)
	}
	if err := d.Prime(ctx); err != nil {
		return nil, err
	}
	return &daemon{backend: backend, disp: d, out: out, asJSON: asJSON, last: last}, nil
}

// poll observes the history written since the last poll.
// A malformed entry is logged and skipped. It returns the number of
// entries consumed.
func (dm *daemon) poll(ctx context.Context) (int, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	entries, err := dm.backend.History(ctx, dm.last, pollBatch)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		notes, err := dm.disp.Observe(ctx, e.Collection, e.Data)
		if err != nil {
			slog.Warn("skipping history entry", "seq", e.Seq, "collection", e.Collection, "error", err)
		} else if len(notes) > 0 {
			slog.Debug("history entry observed", "seq", e.Seq, "collection", e.Collection, "notifications", len(notes))
		}
		dm.last = e.Seq
	}
	return len(entries), nil
}

// sweep runs the violation evaluator.
func (dm *daemon) sweep(ctx context.Context) {
	n, err := dm.disp.Sweep(ctx)
	if err != nil {
		slog.Error("sweep failed", "error", err)
		return
	}
	slog.Info("sweep complete", "recorded", n)
}

// deliver prints and dismisses every queued notification, in order.
// It returns the number delivered.
func (dm *daemon) deliver() int {
	n := 0
	for {
		note, ok := dm.disp.Current()
		if !ok {
			return n
		}
		if dm.asJSON {
			data, err := json.Marshal(note)
			if err != nil {
				slog.Error("encode notification", "id", note.ID, "error", err)
			} else {
				fmt.Fprintln(dm.out, string(data))
			}
		} else {
			fmt.Fprintln(dm.out, formatNotification(note))
		}
		dm.disp.Dismiss()
		n++
	}
}

// drain delivers notifications as they arrive until ctx is done.
func (dm *daemon) drain(ctx context.Context) error {
	for {
		dm.deliver()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-dm.disp.Queue().Wait():
		}
	}
}

// cronLogger routes cron's logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

// newScheduler builds the cron scheduler for dm. An empty sweep spec
// schedules no sweeps.
func newScheduler(ctx context.Context, dm *daemon, sweepSpec string, poll time.Duration) (*cron.Cron, error) {
	logger := cronLogger{logger: slog.Default().With("component", "cron")}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if sweepSpec != "" {
		if _, err := c.AddFunc(sweepSpec, func() { dm.sweep(ctx) }); err != nil {
			return nil, fmt.Errorf("invalid sweep schedule %q: %w", sweepSpec, err)
		}
	}
	if _, err := c.AddFunc("@every "+poll.String(), func() {
		if _, err := dm.poll(ctx); err != nil {
			slog.Error("history poll failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid poll interval %s: %w", poll, err)
	}
	return c, nil
}

func runDaemon(opts *RunOptions, cmd *cobra.Command) error {
	if opts.Poll <= 0 {
		return NewExitError(ExitCommandError, "--poll must be positive")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	actors, err := actorSource(opts.Actor)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load actor", err)
	}

	slog.Info("opening database", "db", opts.Database)
	backend, err := openBackend(ctx, opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	d := engine.New(backend, engine.WithActorSource(actors))
	dm, err := newDaemon(ctx, backend, d, cmd.OutOrStdout(), opts.Format == "json")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}

	scheduler, err := newScheduler(ctx, dm, opts.Sweep, opts.Poll)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to schedule jobs", err)
	}

	slog.Info("watching", "db", opts.Database, "from_seq", dm.last, "sweep", opts.Sweep, "poll", opts.Poll)
	dm.sweep(ctx)
	scheduler.Start()

	if err := dm.drain(ctx); err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return WrapExitError(ExitFailure, "delivery error", err)
	}

	<-scheduler.Stop().Done()
	slog.Info("stopped")
	return nil
}
