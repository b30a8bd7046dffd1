package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lotas/ticketdeck/internal/storage"
	"github.com/lotas/ticketdeck/internal/types"
)

type showOutput struct {
	Key    string         `json:"key"`
	Stub   bool           `json:"stub"`
	Fields map[string]any `json:"fields,omitempty"`
}

func newShowCmd(opts *GlobalOptions) *cobra.Command {
	var fetch bool

	cmd := &cobra.Command{
		Use:   "show KEY",
		Short: "Show one cached ticket",
		Long: `Show the cached fields of a ticket. A ticket that has only been seen as a
key is fetched from the tracker when --fetch is given.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			defer e.Close()

			key := args[0]
			t, err := storage.GetTicket(e.db, key)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%w: %s", errTicketMissing, key)
			}
			if err != nil {
				return err
			}
			if t.IsStub() && fetch {
				if err := e.deck.Load(); err != nil {
					return err
				}
				if t, err = e.deck.Hydrate(cmd.Context(), key); err != nil {
					return err
				}
			}

			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), showOutput{Key: t.Key, Stub: t.IsStub(), Fields: t.Fields})
			}
			printTicket(cmd, t)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fetch, "fetch", false, "Fetch the ticket from the tracker if only its key is cached")
	return cmd
}

func printTicket(cmd *cobra.Command, t types.Ticket) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, t.Key)
	if t.IsStub() {
		fmt.Fprintln(out, "  (not loaded; use --fetch)")
		return
	}
	for _, row := range [][2]string{
		{"Summary", t.Summary()},
		{"Status", t.Status()},
		{"Type", t.IssueType()},
		{"Assignee", t.Assignee()},
	} {
		if row[1] != "" {
			fmt.Fprintf(out, "  %-9s %s\n", row[0]+":", row[1])
		}
	}
	names := make([]string, 0, len(t.Fields))
	for name := range t.Fields {
		switch name {
		case "summary", "status", "issuetype", "assignee":
			continue
		}
		if t.Fields[name] != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) > 0 {
		fmt.Fprintf(out, "  %d more fields: %v\n", len(names), names)
	}
}
