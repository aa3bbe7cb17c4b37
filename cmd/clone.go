package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"vmforge/internal/server"
)

// cloneCmd represents the clone command
var cloneCmd = &cobra.Command{
	Use:   "clone <prototype>",
	Short: "Provision a virtual machine by cloning a prototype",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withClient(func(ctx context.Context, c *server.Client) error {
			result, err := c.ProvisionFromPrototype(ctx, args[0])
			if err != nil {
				return err
			}
			return printYAML(result)
		})
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}
