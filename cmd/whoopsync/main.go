package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/garrettladley/whoopsync/internal/version"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "whoopsync",
		Short:   "Operate the WHOOP sync store from the command line",
		Version: version.Get(),
	}
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(newMigrationCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(syncAllCmd())

	if err := fang.Execute(context.Background(), rootCmd, fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM)); err != nil {
		os.Exit(1)
	}
}
