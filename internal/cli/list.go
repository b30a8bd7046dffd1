package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lotas/ticketdeck/internal/pager"
	"github.com/lotas/ticketdeck/internal/types"
)

type listOutput struct {
	Page    int          `json:"page"`
	Pages   int          `json:"pages"`
	Count   int          `json:"count"`
	Tickets []listTicket `json:"tickets"`
}

type listTicket struct {
	Key      string `json:"key"`
	Status   string `json:"status,omitempty"`
	Assignee string `json:"assignee,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Stub     bool   `json:"stub,omitempty"`
}

func newListCmd(opts *GlobalOptions) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached tickets one page at a time",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.deck.Load(); err != nil {
				return err
			}
			var snap types.Page
			if page == 1 {
				snap = e.deck.Page()
			} else if snap, err = e.deck.Jump(page); err != nil {
				return fmt.Errorf("%w: %w", errUsage, err)
			}

			out := listOutput{Page: snap.Number, Pages: snap.Total, Count: snap.Count, Tickets: []listTicket{}}
			for _, t := range snap.Tickets {
				out.Tickets = append(out.Tickets, listTicket{
					Key:      t.Key,
					Status:   t.Status(),
					Assignee: t.Assignee(),
					Summary:  t.Summary(),
					Stub:     t.IsStub(),
				})
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), out)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range out.Tickets {
				status := t.Status
				if t.Stub {
					status = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Key, status, t.Summary)
			}
			tw.Flush()
			fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d tickets\n", out.Page, out.Pages, out.Count)
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, fmt.Sprintf("Page to show (%d tickets per page)", pager.PageSize))
	return cmd
}
