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

var (
	buildProvider   string
	buildCategory   string
	buildSize       string
	buildRegion     string
	buildParamsFile string
	buildPlanOnly   bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Provision a bundle from a workload category and size",
	Long: `Provision a virtual machine, network and disk sized by workload category
(standard, memory-optimized, compute-optimized) and size (small, medium, large).
Optional overrides for keyPairName and the vm, network and disk sections are
read from a YAML file. With --plan the bundle and the provider's native request
are printed and nothing is persisted.`,
	Run: func(cmd *cobra.Command, args []string) {
		req := policyRequest(buildProvider, buildCategory, buildSize, buildRegion, buildParamsFile)

		withClient(func(ctx context.Context, c *server.Client) error {
			if buildPlanOnly {
				plan, err := c.Plan(ctx, req)
				if err != nil {
					return err
				}
				return printYAML(plan)
			}
			result, err := c.ProvisionWithBuilder(ctx, req)
			if err != nil {
				return err
			}
			return printYAML(result)
		})
	},
}

func policyRequest(provider, category, size, region, paramsFile string) provisioning.PolicyRequest {
	req := provisioning.PolicyRequest{
		Provider: provider,
		Category: category,
		Size:     size,
		Region:   region,
	}
	if paramsFile != "" {
		var params map[string]any
		if err := readYAML(paramsFile, &params); err != nil {
			logging.Logger().Fatal("Invalid params file", zap.Error(err))
		}
		req.Params = family.Params(params)
	}
	return req
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildProvider, "provider", "p", "", "Provider: aws, azure, gcp or onpremise")
	buildCmd.Flags().StringVarP(&buildCategory, "type", "t", "standard", "Workload category")
	buildCmd.Flags().StringVar(&buildSize, "size", "small", "Size: small, medium or large")
	buildCmd.Flags().StringVarP(&buildRegion, "region", "r", "", "Region, location, zone or datacenter")
	buildCmd.Flags().StringVarP(&buildParamsFile, "params", "f", "", "Path to YAML file with optional overrides")
	buildCmd.Flags().BoolVar(&buildPlanOnly, "plan", false, "Render the bundle without provisioning it")
	if err := buildCmd.MarkFlagRequired("provider"); err != nil {
		panic(err)
	}
}
