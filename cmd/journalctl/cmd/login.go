package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrsteele09/journal-session/users"
	"github.com/spf13/cobra"
)

var (
	loginRole     string
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session tokens",
	Long: `Sign in through the login portal of the given role. The password may also be
supplied through JOURNAL_PASSWORD.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		role, err := users.ParseRole(loginRole)
		if err != nil {
			return err
		}
		password := loginPassword
		if password == "" {
			password = os.Getenv("JOURNAL_PASSWORD")
		}
		return runLogin(ctx, cmd.OutOrStdout(), role, loginEmail, password)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginRole, "role", string(users.RoleAuthor), "Role to sign in as: admin, manager, frontdesk, reviewer or author")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (or JOURNAL_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(ctx context.Context, w io.Writer, role users.Role, email, password string) error {
	cs, err := openSession(ctx, w)
	if err != nil {
		return err
	}
	defer cs.Close()

	user, err := cs.auth.Login(ctx, role, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintf(w, "Signed in as %s <%s> (%s)\n", user.Name, user.Email, user.Role)
	return nil
}
