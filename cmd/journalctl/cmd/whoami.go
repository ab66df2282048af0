package cmd

import (
	"context"
	"fmt"
	"io"

	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWhoami(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(ctx context.Context, w io.Writer) error {
	cs, err := openSession(ctx, w)
	if err != nil {
		return err
	}
	defer cs.Close()

	user, err := cs.auth.Rehydrate(ctx)
	if apperrors.Is(err, apperrors.ErrTokenNotFound) {
		fmt.Fprintln(w, "Not signed in.")
		return nil
	}
	if apperrors.Is(err, apperrors.ErrSessionExpired) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s <%s>\nRole: %s\nID:   %s\n", user.Name, user.Email, user.Role, user.ID)
	return nil
}
