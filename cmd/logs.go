package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vmforge/internal/server"
)

// logsCmd represents the logs command
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the newest provisioning log entries",
	Run: func(cmd *cobra.Command, args []string) {
		withClient(func(ctx context.Context, c *server.Client) error {
			logs, err := c.Logs(ctx)
			if err != nil {
				return err
			}
			for _, l := range logs {
				line := fmt.Sprintf("%s  %-9s %-10s %-7s", l.String("timestamp"), l.String("mode"), l.String("provider"), l.String("status"))
				if id := l.String("vm_id"); id != "" {
					line += "  " + id
				}
				if msg := l.String("error_message"); msg != "" {
					line += "  " + msg
				}
				fmt.Println(line)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
}
