package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "menulayout",
		Short:        "Fit, paginate and reposition printable menu documents",
		SilenceUsage: true,
	}

	root.AddCommand(detectCmd())
	root.AddCommand(normalizeCmd())
	root.AddCommand(paginateCmd())
	root.AddCommand(applyCmd())
	root.AddCommand(exportCmd())
	return root
}
