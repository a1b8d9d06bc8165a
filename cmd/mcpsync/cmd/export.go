package cmd

import (
	"github.com/spf13/cobra"
)

// exportCmd writes the remote catalog as a standalone mcp.json document.
var exportCmd = &cobra.Command{
	Use:   "export <output-path>",
	Short: "Export the ModelScope MCP directory as an mcp.json file",
	Long: `Fetch the ModelScope MCP service directory and write it to the given
path in the standard mcp.json shape:

  {"mcpServers": {"<slug>": {"type": "sse", "url": "..."}}}

The Chatbox config file is not read or written by this command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		syncer := newSyncer()

		return syncer.Export(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
