package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

type searchOutput struct {
	JQL     string `json:"jql"`
	Fetched int    `json:"fetched"`
	Added   int    `json:"added"`
	Total   int    `json:"total"`
}

func newSearchCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search JQL...",
		Short: "Run a JQL search and cache the results",
		Long: `Run a JQL search against the configured tracker and store every matching
ticket in the local cache. Arguments are joined with spaces, so the query
does not need quoting.`,
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
			jql := strings.Join(args, " ")
			res, err := e.deck.Search(cmd.Context(), jql)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSON {
				return printJSON(out, searchOutput{JQL: jql, Fetched: res.Fetched, Added: res.Added, Total: res.Total})
			}
			fmt.Fprintf(out, "%d fetched, %d new, %d cached\n", res.Fetched, res.Added, res.Total)
			return nil
		},
	}
}
