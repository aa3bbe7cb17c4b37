package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vmforge/internal/resource"
	"vmforge/internal/server"
)

// vmCmd groups the persisted virtual machine queries
var vmCmd = &cobra.Command{
	Use:   "vm",
	Short: "Inspect provisioned virtual machines",
}

var vmGetCmd = &cobra.Command{
	Use:   "get <vm id>",
	Short: "Show a provisioned virtual machine",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withClient(func(ctx context.Context, c *server.Client) error {
			vm, err := c.GetVM(ctx, args[0])
			if err != nil {
				return err
			}
			return printYAML(vm)
		})
	},
}

var vmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List provisioned virtual machines, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		withClient(func(ctx context.Context, c *server.Client) error {
			vms, err := c.ListVMs(ctx)
			if err != nil {
				return err
			}
			for _, vm := range vms {
				fmt.Printf("%s\t%s\t%d vcpu / %d GB\t%s\n",
					vm.String("vm_id"), vm.String("provider"), intOf(vm, "vcpus"), intOf(vm, "memory_gb"), vm.String("status"))
			}
			return nil
		})
	},
}

func intOf(rec resource.Record, key string) int {
	v, _ := rec.Int(key)
	return v
}

func init() {
	rootCmd.AddCommand(vmCmd)
	vmCmd.AddCommand(vmGetCmd, vmListCmd)
}
