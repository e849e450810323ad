// Command consolidator manages an encrypted Solana wallet vault and migrates
// tokens and SOL from many wallets into one destination.
//
// @title        Wallet Consolidator API
// @version      1.0
// @description  Encrypted wallet vault and multi-wallet Solana migration.
// @host         localhost:8080
// @BasePath     /
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var mainCmd = &cobra.Command{
	Use:   "consolidator",
	Short: "Encrypted wallet vault and Solana asset consolidation.",
}

func main() {
	mainCmd.AddCommand(serveCmd())
	mainCmd.AddCommand(walletCmd())
	mainCmd.AddCommand(migrateCmd())

	if mainCmd.Execute() != nil {
		os.Exit(1)
	}
}
