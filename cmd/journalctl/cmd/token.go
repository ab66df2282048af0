package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect the stored tokens",
}

var tokenStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an access token is stored, its age and expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenStatus(cmd.Context(), cmd.OutOrStdout(), time.Now)
	},
}

func init() {
	tokenCmd.AddCommand(tokenStatusCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenStatus(ctx context.Context, w io.Writer, now func() time.Time) error {
	cs, err := openSession(ctx, w)
	if err != nil {
		return err
	}
	defer cs.Close()

	status, err := cs.auth.TokenStatus(ctx)
	if err != nil {
		return err
	}
	if !status.Present {
		fmt.Fprintln(w, "No access token stored.")
		return nil
	}

	fmt.Fprintf(w, "Access token stored %s ago\n", status.Age.Round(time.Second))
	if status.Claims != nil {
		fmt.Fprintf(w, "Subject: %s (%s)\n", status.Claims.Subject, status.Claims.Role)
	}
	if status.ExpiresAt != nil {
		if left := status.ExpiresAt.Sub(now()); left > 0 {
			fmt.Fprintf(w, "Expires in %s\n", left.Round(time.Second))
		} else {
			fmt.Fprintln(w, "Expired; the next request will refresh it")
		}
	}
	return nil
}
