package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vmforge/internal/logging"
	"vmforge/internal/server"
)

var prototypeFile string

// prototypeCmd groups the prototype registry commands
var prototypeCmd = &cobra.Command{
	Use:   "prototype",
	Short: "Manage virtual machine prototypes",
}

var prototypeRegisterCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Register a prototype from a virtual machine record",
	Long: `Register a prototype from a YAML virtual machine record, for example:

  provider: aws
  instance_type: t3.medium
  region: us-east-1
  vcpus: 2
  memory_gb: 4`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var template map[string]any
		if err := readYAML(prototypeFile, &template); err != nil {
			logging.Logger().Fatal("Invalid template file", zap.Error(err))
		}

		withClient(func(ctx context.Context, c *server.Client) error {
			if err := c.RegisterPrototype(ctx, args[0], template); err != nil {
				return err
			}
			fmt.Printf("Prototype %s registered\n", args[0])
			return nil
		})
	},
}

var prototypeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered prototypes",
	Run: func(cmd *cobra.Command, args []string) {
		withClient(func(ctx context.Context, c *server.Client) error {
			prototypes, err := c.ListPrototypes(ctx)
			if err != nil {
				return err
			}
			for _, p := range prototypes {
				t := p.Map("template")
				fmt.Printf("- %s [%s] %d vcpu / %d GB\n", p.String("name"), t.String("provider"), intOf(t, "vcpus"), intOf(t, "memory_gb"))
			}
			return nil
		})
	},
}

var prototypeRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a registered prototype",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withClient(func(ctx context.Context, c *server.Client) error {
			if err := c.RemovePrototype(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Prototype %s removed\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(prototypeCmd)
	prototypeCmd.AddCommand(prototypeRegisterCmd, prototypeListCmd, prototypeRemoveCmd)

	prototypeRegisterCmd.Flags().StringVarP(&prototypeFile, "file", "f", "", "Path to template YAML file")
	if err := prototypeRegisterCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark flag as required: %v", err))
	}
}
