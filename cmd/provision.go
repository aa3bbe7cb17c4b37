package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vmforge/internal/logging"
	"vmforge/internal/server"
)

var (
	provisionFile     string
	provisionProvider string
)

// directRequest is the request file of the provision command
type directRequest struct {
	Provider string         `yaml:"provider"`
	VM       map[string]any `yaml:"vm"`
	Network  map[string]any `yaml:"network"`
	Disk     map[string]any `yaml:"disk"`
}

func (r directRequest) params() map[string]any {
	params := map[string]any{}
	if r.VM != nil {
		params["vm"] = r.VM
	}
	if r.Network != nil {
		params["network"] = r.Network
	}
	if r.Disk != nil {
		params["disk"] = r.Disk
	}
	return params
}

// provisionCmd represents the provision command
var provisionCmd = &cobra.Command{
	Use:   "provision [request file]",
	Short: "Provision a bundle from explicit parameters",
	Long: `Provision a virtual machine, network and disk from a YAML request file with
provider, vm, network and disk sections.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if provisionFile == "" {
			if len(args) > 0 {
				provisionFile = args[0]
			} else {
				logging.Logger().Fatal("Request file is required")
			}
		}

		var req directRequest
		if err := readYAML(provisionFile, &req); err != nil {
			logging.Logger().Fatal("Invalid request file", zap.Error(err))
		}
		if provisionProvider != "" {
			req.Provider = provisionProvider
		}

		withClient(func(ctx context.Context, c *server.Client) error {
			result, err := c.Provision(ctx, req.Provider, req.params())
			if err != nil {
				return err
			}
			return printYAML(result)
		})
	},
}

func init() {
	rootCmd.AddCommand(provisionCmd)

	provisionCmd.Flags().StringVarP(&provisionFile, "file", "f", "", "Path to request YAML file")
	provisionCmd.Flags().StringVarP(&provisionProvider, "provider", "p", "", "Override the provider of the request file")
}
