package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/garrettladley/whoopsync/internal/oauth"
	"github.com/garrettladley/whoopsync/internal/repository"
)

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token [user-id]",
		Short: "Show stored OAuth credentials",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := openDatabase(ctx, newLogger())
			if err != nil {
				return err
			}
			defer db.Close()

			var creds []repository.Credential
			if len(args) == 1 {
				cred, err := db.Credentials.Get(ctx, args[0])
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("no credentials stored for user %s", args[0])
				}
				if err != nil {
					return fmt.Errorf("failed to get credentials: %w", err)
				}
				creds = append(creds, *cred)
			} else {
				creds, err = db.Credentials.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list credentials: %w", err)
				}
			}

			if len(creds) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No credentials stored")
				return nil
			}
			now := time.Now()
			for i, cred := range creds {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				printCredential(cmd.OutOrStdout(), cred, now)
			}
			return nil
		},
	}
}

func printCredential(w io.Writer, cred repository.Credential, now time.Time) {
	fmt.Fprintf(w, "User ID:       %s\n", cred.UserID)
	fmt.Fprintf(w, "Access Token:  %s\n", redact(cred.AccessToken))
	fmt.Fprintf(w, "Refresh Token: %s\n", redact(cred.RefreshToken))
	fmt.Fprintf(w, "Expiry:        %s\n", cred.ExpiresAt.Format(time.RFC3339))

	switch {
	case oauth.NeedsRefresh(cred.ExpiresAt, now):
		fmt.Fprintf(w, "Status:        EXPIRED (refreshes on next sync)\n")
	case cred.ExpiresAt.Before(now):
		fmt.Fprintf(w, "Status:        Expired %s ago\n", now.Sub(cred.ExpiresAt).Round(time.Second))
	default:
		fmt.Fprintf(w, "Status:        Valid (expires in %s)\n", cred.ExpiresAt.Sub(now).Round(time.Second))
	}
}

func redact(token string) string {
	const visible = 6
	if token == "" {
		return "(none)"
	}
	if len(token) <= visible {
		return "******"
	}
	return token[:visible] + "..."
}
