// Package configcmder provides the config command for managing persistent
// masque configuration stored in the .masque/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/masque/pkg/cliui"
	"github.com/papercomputeco/masque/pkg/config"
)

const configLongDesc string = `Manage persistent masque configuration.

Configuration is stored as config.toml in the .masque/ directory and provides
default values for command flags. CLI flags and MASQUE_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  upstream.url, upstream.username, upstream.password, upstream.max_retries,
  upstream.initial_backoff, upstream.max_backoff,
  server.listen, server.initial_value, server.mcp,
  snapshot.provider, snapshot.target,
  eventstream.provider, eventstream.brokers, eventstream.topic,
  client.target

Use subcommands to get, set, or list configuration values:
  masque config set <key> <value>    Set a configuration value
  masque config get <key>            Get a configuration value
  masque config list                 List all configuration values

Examples:
  masque config set upstream.url https://www.masquerade.io/api/v1/stream/dev/dev/
  masque config set snapshot.provider sqlite
  masque config get server.listen
  masque config list`

const configShortDesc string = "Manage persistent masque configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func validateKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

// displayValue masks secret keys so they never reach the terminal in full.
func displayValue(key, value string) string {
	if config.IsSecretConfigKey(key) {
		return cliui.Mask(value)
	}
	return value
}

func printTarget(w io.Writer, cfger *config.Configer) {
	target := cfger.GetTarget()
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
}

func keyCompletion(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
