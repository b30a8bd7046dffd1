package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lotas/ticketdeck/internal/config"
)

func newConfigCmd(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(newConfigShowCmd(opts))
	cmd.AddCommand(newConfigSetCmd(opts))
	cmd.AddCommand(newConfigPathCmd(opts))
	return cmd
}

// masked hides credentials for display.
func masked(cfg config.Config) config.Config {
	for _, s := range []*string{&cfg.Password, &cfg.Token} {
		if *s != "" {
			*s = "********"
		}
	}
	return cfg
}

func newConfigShowCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings with secrets masked",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), masked(cfg))
		},
	}
}

func newConfigSetCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one setting",
		Long: `Change one setting and save the config file.

Keys: server, auth_type (Basic|Token), username, password, token,
proxy_option (Yes|No), http_proxy, https_proxy,
thread_count (safe_mode|8|12|16|20|24|28|32), theme (Light|Dark).`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return fmt.Errorf("%w: %w", errUsage, err)
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
			return nil
		},
	}
}

func newConfigPathCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
