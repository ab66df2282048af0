package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and remove the stored tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogout(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(ctx context.Context, w io.Writer) error {
	cs, err := openSession(ctx, w)
	if err != nil {
		return err
	}
	defer cs.Close()

	cs.auth.Logout(ctx)
	return nil
}
