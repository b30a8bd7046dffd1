// Package cli wires the ticketdeck commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lotas/ticketdeck/internal/applog"
	"github.com/lotas/ticketdeck/internal/deck"
	"github.com/lotas/ticketdeck/internal/jira"
	"github.com/lotas/ticketdeck/internal/tui"
)

// Exit codes
const (
	ExitOK            = 0
	ExitUsage         = 1
	ExitConfigError   = 2
	ExitOffline       = 3
	ExitTrackerError  = 4
	ExitBusy          = 5
	ExitTicketMissing = 6
	ExitInternalError = 10
)

// GlobalOptions holds options shared across all commands.
type GlobalOptions struct {
	ConfigPath string
	DBPath     string
	JSON       bool
}

// NewRootCmd builds the command tree. Running it with no subcommand starts
// the terminal UI.
func NewRootCmd() *cobra.Command {
	opts := &GlobalOptions{}

	root := &cobra.Command{
		Use:   "ticketdeck",
		Short: "Browse and cache issue tracker tickets from the terminal",
		Long: `ticketdeck runs JQL searches against a Jira-compatible tracker, keeps the
results in a local SQLite cache and lets you page through, inspect and prune
them.

With no subcommand it starts the interactive view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			dir, err := applog.DefaultDir()
			if err == nil {
				err = applog.Init(dir)
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: logging disabled: %v\n", err)
			}
			applog.Info("cli.start", "command", cmd.Name())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			sink := tui.NewSink()
			e, err := openEnv(opts, cmd.ErrOrStderr(), sink)
			if err != nil {
				return err
			}
			defer e.Close()
			return tui.Run(e.deck, sink)
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to config file (or set TICKETDECK_CONFIG)")
	root.PersistentFlags().StringVar(&opts.DBPath, "db", "", "Path to ticket cache (or set TICKETDECK_DB)")
	root.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	root.AddCommand(newSearchCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newShowCmd(opts))
	root.AddCommand(newDeleteCmd(opts))
	root.AddCommand(newEditMetaCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	return root
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	var cfgErr *jira.ConfigError
	var statusErr *jira.StatusError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.Is(err, jira.ErrOffline):
		return ExitOffline
	case errors.As(err, &statusErr):
		return ExitTrackerError
	case errors.Is(err, deck.ErrBusy):
		return ExitBusy
	case errors.Is(err, errTicketMissing):
		return ExitTicketMissing
	case errors.Is(err, errUsage):
		return ExitUsage
	}
	return ExitInternalError
}

// Execute runs the root command against os.Args.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stdout, os.Stderr)
}

// usageArgs marks positional argument errors as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
		return nil
	}
}

func run(root *cobra.Command, args []string, stdout, stderr io.Writer) int {
	defer applog.Close()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", jira.UserMessage(err))
		return ExitCode(err)
	}
	return ExitOK
}
