package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chatbox-community/mcpsync"
	"github.com/chatbox-community/mcpsync/pkg/logging"
)

var noBackup bool

// syncCmd merges the remote catalog into the Chatbox config file.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Merge the ModelScope MCP directory into the Chatbox config",
	Long: `Fetch the ModelScope MCP service directory and reconcile it with the
local Chatbox configuration.

Matching is by server URL: a known URL with a new upstream name is renamed
in place (keeping its id and enabled state), an unknown URL is appended as
a new enabled server. Nothing is ever removed. When nothing changed, the
file is left alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		syncer := newSyncer(mcpsync.WithBackup(!noBackup))

		_, err := syncer.Sync(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip the pre-write .bak copy of the config file")
}

// newSyncer assembles a Syncer from the resolved CLI configuration.
func newSyncer(opts ...mcpsync.Option) *mcpsync.Syncer {
	base := []mcpsync.Option{
		mcpsync.WithAPIKey(viper.GetString("token")),
		mcpsync.WithRegistryPath(viper.GetString("path")),
		mcpsync.WithAPIURL(viper.GetString("api-url")),
		mcpsync.WithLogger(logging.Default()),
	}
	return mcpsync.New(append(base, opts...)...)
}
