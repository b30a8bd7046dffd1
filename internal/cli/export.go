package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lotas/ticketdeck/internal/export"
	"github.com/lotas/ticketdeck/internal/storage"
	"github.com/lotas/ticketdeck/internal/types"
)

func newExportCmd(opts *GlobalOptions) *cobra.Command {
	var (
		out      string
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the cached tickets as markdown or JSON",
		Long: `Export every cached ticket grouped by status. Markdown is the default;
--json writes a JSON document including any cached edit metadata.
--lz4 wraps the output in a tdlz4 container and requires --out.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if compress && out == "" {
				return fmt.Errorf("%w: --lz4 needs --out", errUsage)
			}

			e, err := openEnv(opts, cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			defer e.Close()

			ts, err := storage.ListTickets(e.db)
			if err != nil {
				return err
			}

			var doc string
			if opts.JSON {
				meta := make(map[string][]types.FieldMeta)
				for _, t := range ts {
					m, err := storage.ListFieldMeta(e.db, t.Key)
					if errors.Is(err, storage.ErrNotFound) {
						continue
					}
					if err != nil {
						return err
					}
					if len(m) > 0 {
						meta[t.Key] = m
					}
				}
				if doc, err = export.JSON(e.cfg.Server, ts, meta); err != nil {
					return err
				}
			} else {
				doc = export.Markdown(e.cfg.Server, ts)
			}

			if out == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), doc)
				return err
			}
			data := []byte(doc)
			if compress {
				if data, err = export.CompressLz4(data); err != nil {
					return err
				}
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d tickets to %s\n", len(ts), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&compress, "lz4", false, "Compress the output file")
	return cmd
}
