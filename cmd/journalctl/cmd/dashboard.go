package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jrsteele09/journal-session/authapi"
	"github.com/jrsteele09/journal-session/users"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show manuscripts, review assignments and the editorial summary",
	Long: `Fetch manuscripts, review assignments and, for staff, the editorial summary
concurrently. Requests that hit an expired token share a single refresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

type dashboardView struct {
	Manuscripts []authapi.Manuscript
	Assignments []authapi.ReviewAssignment
	Summary     *authapi.Dashboard
}

func runDashboard(ctx context.Context, w io.Writer) error {
	cs, err := openSession(ctx, w)
	if err != nil {
		return err
	}
	defer cs.Close()

	user, err := cs.auth.Rehydrate(ctx)
	if err != nil {
		return fmt.Errorf("not signed in: %w", err)
	}

	var view dashboardView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view.Manuscripts, err = cs.api.Manuscripts(gctx)
		return err
	})
	if _, ok := cs.auth.Guard(users.RoleAdmin, users.RoleManager, users.RoleFrontdesk, users.RoleReviewer); ok {
		g.Go(func() error {
			var err error
			view.Assignments, err = cs.api.ReviewAssignments(gctx)
			return err
		})
	}
	if user.Role.IsStaff() {
		g.Go(func() error {
			var err error
			view.Summary, err = cs.api.Dashboard(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	printDashboard(w, &view)
	return nil
}

func printDashboard(w io.Writer, view *dashboardView) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "MANUSCRIPT\tTITLE\tSTATUS")
	for _, m := range view.Manuscripts {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, m.Title, m.Status)
	}
	if len(view.Assignments) > 0 {
		fmt.Fprintln(tw, "\nASSIGNMENT\tMANUSCRIPT\tTYPE\tSTATUS")
		for _, a := range view.Assignments {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.ManuscriptID, a.ReviewType, a.Status)
		}
	}
	if s := view.Summary; s != nil {
		fmt.Fprintf(tw, "\nSubmissions\t%d\nUnder review\t%d\nAwaiting decision\t%d\nPublished\t%d\nPending invitations\t%d\n",
			s.Submissions, s.UnderReview, s.AwaitingDecision, s.Published, s.PendingInvitations)
	}
}
