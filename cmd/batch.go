package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vmforge/internal/family"
	"vmforge/internal/logging"
	"vmforge/internal/provisioning"
	"vmforge/internal/server"
)

var batchFile string

// batchRequest is one entry of the batch request file
type batchRequest struct {
	Provider string         `yaml:"provider"`
	Type     string         `yaml:"type"`
	Size     string         `yaml:"size"`
	Region   string         `yaml:"region"`
	Params   map[string]any `yaml:"params"`
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [requests file]",
	Short: "Provision several category-sized bundles concurrently",
	Long: `Provision every request of a YAML list concurrently. Each entry has provider,
type, size, region and optional params. Results are printed in request order.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if batchFile == "" {
			if len(args) > 0 {
				batchFile = args[0]
			} else {
				logging.Logger().Fatal("Requests file is required")
			}
		}

		var entries []batchRequest
		if err := readYAML(batchFile, &entries); err != nil {
			logging.Logger().Fatal("Invalid requests file", zap.Error(err))
		}
		reqs := make([]provisioning.PolicyRequest, len(entries))
		for i, e := range entries {
			reqs[i] = provisioning.PolicyRequest{
				Provider: e.Provider,
				Category: e.Type,
				Size:     e.Size,
				Region:   e.Region,
				Params:   family.Params(e.Params),
			}
		}

		withClient(func(ctx context.Context, c *server.Client) error {
			results, err := c.ProvisionBatch(ctx, reqs)
			if err != nil {
				return err
			}
			return printYAML(results)
		})
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "Path to requests YAML file")
}
