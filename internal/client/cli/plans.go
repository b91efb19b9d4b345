package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"
)

func newFavoriteCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite",
		Short: "Mark places as favorites",
	}
	toggle := &cobra.Command{
		Use:   "toggle PLACE_ID",
		Short: "Add or remove a place from favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			uid, err := a.requireUser()
			if err != nil {
				return err
			}
			pid, err := parseID(args[0])
			if err != nil {
				return err
			}
			on, err := a.journal.ToggleFavorite(cmd.Context(), uid, pid)
			if err != nil {
				return err
			}
			if on {
				fmt.Fprintf(cmd.OutOrStdout(), "Place %d is a favorite\n", pid)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Place %d removed from favorites\n", pid)
			}
			return nil
		},
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List favorite places",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			uid, err := a.requireUser()
			if err != nil {
				return err
			}
			favs, err := a.journal.Favorites(cmd.Context(), uid)
			if err != nil {
				return err
			}
			for _, f := range favs {
				fmt.Fprintf(cmd.OutOrStdout(), "place %d (favorite %d, synced=%s)\n", f.PlaceID, f.ID, yesNo(f.Synched))
			}
			return nil
		},
	}
	cmd.AddCommand(toggle, list)
	return cmd
}

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseDate accepts YYYY-MM-DD or an English expression such as
// "next friday" relative to now. The result is midnight UTC of that day.
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	r, err := dateParser.Parse(s, now)
	if err != nil {
		return time.Time{}, err
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("cannot understand date %q", s)
	}
	y, m, d := r.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func newVisitCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visit",
		Short: "Plan visits to places",
	}

	var date string
	add := &cobra.Command{
		Use:   "add PLACE_ID",
		Short: "Plan a visit; --date takes YYYY-MM-DD or text like \"next friday\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			uid, err := a.requireUser()
			if err != nil {
				return err
			}
			pid, err := parseID(args[0])
			if err != nil {
				return err
			}
			var at time.Time
			if date != "" {
				if at, err = parseDate(date, time.Now()); err != nil {
					return err
				}
			}
			v, err := a.journal.PlanVisit(cmd.Context(), uid, pid, at)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Planned visit %d\n", v.ID)
			return nil
		},
	}
	add.Flags().StringVar(&date, "date", "", "planned date")

	var undo bool
	complete := &cobra.Command{
		Use:   "complete VISIT_ID",
		Short: "Mark a visit as done (or not done with --undo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app().journal.CompleteVisit(cmd.Context(), id, !undo)
		},
	}
	complete.Flags().BoolVar(&undo, "undo", false, "mark as not done")

	list := &cobra.Command{
		Use:   "list",
		Short: "List planned visits by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			uid, err := a.requireUser()
			if err != nil {
				return err
			}
			vs, err := a.journal.Visits(cmd.Context(), uid)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPLACE\tDATE\tDONE")
			for _, v := range vs {
				d := "-"
				if !v.PlannedDate.IsZero() {
					d = v.PlannedDate.UTC().Format(time.DateOnly)
				}
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", v.ID, v.PlaceID, d, yesNo(v.IsCompleted))
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, complete, list)
	return cmd
}
