// Package masquecmder
package masquecmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/masque/cmd/masque/config"
	getcmder "github.com/papercomputeco/masque/cmd/masque/get"
	initcmder "github.com/papercomputeco/masque/cmd/masque/init"
	servecmder "github.com/papercomputeco/masque/cmd/masque/serve"
	versioncmder "github.com/papercomputeco/masque/cmd/version"
)

const masqueLongDesc string = `Masque relays the latest event of a server-sent event stream.

It subscribes to an upstream SSE stream and serves the most recent event to
local HTTP clients on demand.

  masque serve     Run the relay
  masque get       Fetch the latest event from a running relay
  masque config    Manage persistent configuration
  masque init      Initialize a local .masque/ directory`

const masqueShortDesc string = "Masque - SSE last-value relay"

func NewMasqueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "masque",
		Short: masqueShortDesc,
		Long:  masqueLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .masque/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(getcmder.NewGetCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
