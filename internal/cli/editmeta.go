package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newEditMetaCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "editmeta KEY",
		Short: "Show which fields of a ticket can be edited",
		Long: `Fetch the edit metadata for a ticket and cache it. When the tracker cannot
be reached the last cached metadata is shown instead.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.deck.Load(); err != nil {
				return err
			}
			metas, err := e.deck.EditMeta(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), metas)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FIELD\tNAME\tWIDGET\tEDITABLE\tCURRENT")
			for _, m := range metas {
				current := m.CurrentValue
				if len(m.AllowedValues) > 0 {
					current += " [" + strings.Join(m.AllowedValues, ", ") + "]"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", m.FieldKey, m.FieldName, m.WidgetType, m.IsEditable, current)
			}
			return tw.Flush()
		},
	}
}
