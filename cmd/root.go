package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var serverAddr string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vmforge",
	Short: "Multi-cloud virtual machine provisioning",
	Long: `vmforge provisions virtual machines together with their network and disk
on AWS, Azure, GCP and on-premise infrastructure.

Bundles can be created from explicit parameters, from a workload category and
size, or by cloning a registered prototype. Every request is recorded in the
provisioning log.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverAddr, "server", "s", "localhost:50051", "Server address")
}
