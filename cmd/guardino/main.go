package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/guardino-io/guardino/internal/interfaces/cli/bootstrap"
	"github.com/guardino-io/guardino/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "guardino",
		Short: "Guardino - multi-panel VPN reseller platform",
		Long:  `Guardino provisions VPN users across heterogeneous panel nodes and meters reseller wallets.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		bootstrap.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
