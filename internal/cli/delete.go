package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lotas/ticketdeck/internal/tickets"
)

type deleteResult struct {
	Deleted []string `json:"deleted"`
}

func newDeleteCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY...",
		Short: "Remove tickets from the cache",
		Long: `Remove tickets and their cached field metadata from the local cache.
Nothing is changed on the tracker. Every key must be cached.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.deck.Load(); err != nil {
				return err
			}
			cached := tickets.KeysOf(e.deck.Tickets())
			for _, key := range args {
				if !cached.Has(key) {
					return fmt.Errorf("%w: %s", errTicketMissing, key)
				}
				e.deck.Select(key)
			}
			keys := e.deck.Selected()
			n, err := e.deck.BulkDelete(cmd.Context())
			if err != nil {
				return err
			}

			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), deleteResult{Deleted: keys[:n]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d tickets\n", n)
			return nil
		},
	}
}
