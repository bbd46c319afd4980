package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <user-id>",
		Short: "Fetch and store the latest completed cycle for one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := newSyncService(cmd, newLogger())
			if err != nil {
				return err
			}
			defer closeDB()

			if !svc.SyncUser(cmd.Context(), args[0]) {
				return fmt.Errorf("sync for user %s stored nothing; see logs", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced user %s\n", args[0])
			return nil
		},
	}
}

func syncAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-all",
		Short: "Sync every user with stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := newSyncService(cmd, newLogger())
			if err != nil {
				return err
			}
			defer closeDB()

			summary := svc.SyncAllUsers(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Attempted: %d\nSucceeded: %d\nFailed:    %d\n",
				summary.Attempted, summary.Succeeded, summary.Failed)
			return nil
		},
	}
}
