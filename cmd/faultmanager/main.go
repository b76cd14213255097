// cmd/faultmanager/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "faultmanager",
		Short:         "Fault manager pseudo-device",
		Long:          "Records fault ids written to the fault manager endpoint and serves its status text.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("endpoint", "", "endpoint socket path (client commands; default from config or /tmp/fault_manager)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWriteCmd())
	rootCmd.AddCommand(newReadCmd())
	rootCmd.AddCommand(newPulseCmd())
	rootCmd.AddCommand(newStatCmd())

	return rootCmd
}
