package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/repositories/synclogs"
	"github.com/franckludovic/travelbuddy/internal/client/services"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/spf13/cobra"
)

func newSyncCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push unsynced changes to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if !a.session.IsOnline() {
				a.watcher.Check(ctx)
			}
			res, err := a.session.TriggerSync(ctx)
			switch {
			case errors.Is(err, common.ErrNetworkUnavailable):
				fmt.Fprintln(w, "Offline: changes stay queued until the backend is reachable")
				return nil
			case err != nil:
				return err
			}
			printPass(cmd, res)
			return nil
		},
	}
}

func printPass(cmd *cobra.Command, res services.PassResult) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tPENDING\tSYNCED\tFAILED\tCHANGED")
	for _, t := range res.Tables {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", t.Table, t.Pending, t.Synced, t.Failed, t.Changed)
	}
	_ = tw.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "synced %d, failed %d in %s\n",
		res.Synced(), res.Failed(), res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
}

func newStatusCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity, account and sync state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			mode := "online"
			if !a.session.IsOnline() && !a.watcher.Check(ctx) {
				mode = "offline"
			}
			fmt.Fprintf(w, "backend:  %s (%s)\n", mode, a.cfg.APIBaseURL)

			if u := a.session.User(); u != nil {
				fmt.Fprintf(w, "user:     %s (authenticated=%s)\n", u.Email, yesNo(a.session.IsAuthenticated()))
			} else {
				fmt.Fprintln(w, "user:     none")
			}
			fmt.Fprintf(w, "sync:     %s\n", a.engine.Status())

			if uid := a.session.UserID(); uid != 0 {
				last, err := synclogs.NewSQLiteRepository(a.store.DB()).Last(ctx, uid)
				if err != nil {
					return err
				}
				if last != nil {
					fmt.Fprintf(w, "last run: %s %s (%s)\n", last.LastSyncTime.Local().Format(time.DateTime), last.Status, last.Message)
				}
			}
			return nil
		},
	}
}

func newEvictCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "evict",
		Short: "Delete local copies of photos already stored in the cloud",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app().journal.EvictSynced(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Evicted %d photos\n", n)
			return nil
		},
	}
}

// newRemoteCmd reads what the backend holds, for comparison with the local
// journal.
func newRemoteCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Query the backend directly",
	}

	var placeID int64
	places := &cobra.Command{
		Use:   "places",
		Short: "List places stored on the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if !a.session.IsAuthenticated() {
				return common.ErrNotAuthenticated
			}
			list, err := a.gateway.Places().List(cmd.Context(), nil)
			if err != nil {
				return err
			}
			for _, p := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", p.ID, p.Title)
			}
			return nil
		},
	}
	notes := &cobra.Command{
		Use:   "notes",
		Short: "List notes stored on the backend, optionally for one place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if !a.session.IsAuthenticated() {
				return common.ErrNotAuthenticated
			}
			var filter url.Values
			if placeID > 0 {
				filter = url.Values{"place_id": {strconv.FormatInt(placeID, 10)}}
			}
			list, err := a.gateway.Notes().List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			for _, n := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\t%s\n", n.ID, n.PlaceID, n.Title)
			}
			return nil
		},
	}
	notes.Flags().Int64Var(&placeID, "place", 0, "only notes of this remote place id")

	cmd.AddCommand(places, notes)
	return cmd
}
