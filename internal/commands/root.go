package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"attendance-bot/internal/app"
	"attendance-bot/internal/config"
	"attendance-bot/internal/logging"
	"attendance-bot/internal/repository"

	"github.com/spf13/cobra"
)

// Opener connects to the store and returns the services plus a cleanup func.
type Opener func(ctx context.Context) (*app.Services, func(), error)

type runtime struct {
	open     Opener
	services *app.Services
	cleanup  func()
	asJSON   bool
}

// NewRootCmd builds the attendancectl command tree. A nil opener uses the
// process configuration.
func NewRootCmd(open Opener) *cobra.Command {
	if open == nil {
		open = openFromConfig
	}
	rt := &runtime{open: open}

	root := &cobra.Command{
		Use:   "attendancectl",
		Short: "Admin tool for the attendance bot",
		Long: `attendancectl reads and edits the attendance store the bot uses.
Print reports, enter missed days, list users and import holiday calendars.`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.cleanup != nil {
				rt.cleanup()
			}
		},
	}
	root.PersistentFlags().BoolVar(&rt.asJSON, "json", false, "Print results as JSON")

	root.AddCommand(newReportCmd(rt))
	root.AddCommand(newManualCmd(rt))
	root.AddCommand(newUsersCmd(rt))
	root.AddCommand(newHolidaysCmd(rt))

	return root
}

// Execute runs the root command with the process configuration.
func Execute() error {
	return NewRootCmd(nil).Execute()
}

// withServices wraps a command function to connect to the store first.
func (rt *runtime) withServices(fn func(cmd *cobra.Command, args []string, s *app.Services) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if rt.services == nil {
			services, cleanup, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			rt.services, rt.cleanup = services, cleanup
		}
		return fn(cmd, args, rt.services)
	}
}

func (rt *runtime) printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func openFromConfig(ctx context.Context) (*app.Services, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(false); err != nil {
		return nil, nil, err
	}
	logging.SetLevel(cfg.LogLevel)

	db, err := repository.OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	opts, err := app.OptionsFromConfig(&cfg)
	if err != nil {
		_ = repository.CloseDatabase(db)
		return nil, nil, err
	}

	notifier, err := app.NewNotifier(ctx, &cfg)
	if err != nil {
		_ = repository.CloseDatabase(db)
		return nil, nil, err
	}
	opts.Notifier = notifier

	services, err := app.NewServices(db, opts)
	if err != nil {
		_ = repository.CloseDatabase(db)
		return nil, nil, err
	}

	cleanup := func() {
		notifier.Wait()
		_ = repository.CloseDatabase(db)
	}
	return services, cleanup, nil
}
