package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/spf13/cobra"
)

func newPlaceCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Capture and manage places",
	}
	cmd.AddCommand(
		newPlaceAddCmd(app),
		newPlaceListCmd(app),
		newPlaceShowCmd(app),
		newPlaceUpdateCmd(app),
		newPlaceDeleteCmd(app),
	)
	return cmd
}

func captures(uris []string) []models.Capture {
	out := make([]models.Capture, 0, len(uris))
	for _, u := range uris {
		out = append(out, models.Capture{URI: u})
	}
	return out
}

func newPlaceAddCmd(app func() *App) *cobra.Command {
	var (
		p      models.Place
		photos []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a place with optional photos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if p.Title == "" {
				t, err := a.prompt.Text("Title")
				if err != nil {
					return err
				}
				p.Title = t
			}
			if p.Title == "" {
				return fmt.Errorf("title is required")
			}
			p.UserID = a.ownerRef()
			if err := a.journal.CreatePlace(cmd.Context(), &p, captures(photos)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved place %d (%d photos)\n", p.ID, len(photos))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Title, "title", "", "place title")
	f.StringVar(&p.Description, "description", "", "free text")
	f.Float64Var(&p.Latitude, "lat", 0, "latitude")
	f.Float64Var(&p.Longitude, "lon", 0, "longitude")
	f.StringArrayVar(&photos, "photo", nil, "path or file:// URI of a photo (repeatable)")
	return cmd
}

func newPlaceListCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your places, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			uid, err := a.requireUser()
			if err != nil {
				return err
			}
			places, err := a.journal.Places(cmd.Context(), uid)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tLAT\tLON\tSYNCED")
			for _, p := range places {
				fmt.Fprintf(tw, "%d\t%s\t%.5f\t%.5f\t%s\n", p.ID, p.Title, p.Latitude, p.Longitude, yesNo(p.Synched))
			}
			return tw.Flush()
		},
	}
}

func newPlaceShowCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a place with its photos and notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := a.journal.Place(ctx, id)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("place %d not found", id)
			}
			photos, err := a.journal.PlacePhotos(ctx, id)
			if err != nil {
				return err
			}
			notes, err := a.journal.Notes(ctx, id)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d  %s  (%.5f, %.5f)  synced=%s\n", p.ID, p.Title, p.Latitude, p.Longitude, yesNo(p.Synched))
			if p.Description != "" {
				fmt.Fprintln(w, p.Description)
			}
			for _, ph := range photos {
				fmt.Fprintf(w, "  photo %d  %s\n", ph.ID, photoLocation(ph))
			}
			for _, n := range notes {
				fmt.Fprintf(w, "  note %d  %s  %s\n", n.ID, n.Title, n.Content)
			}
			return nil
		},
	}
}

func photoLocation(p models.Photo) string {
	switch {
	case p.PendingUpload():
		return p.LocalPath + " (pending upload)"
	case p.PhotoURL != "":
		return p.PhotoURL
	default:
		return p.LocalPath
	}
}

func newPlaceUpdateCmd(app func() *App) *cobra.Command {
	var (
		title, description string
		lat, lon           float64
	)
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change only the given fields of a place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var patch models.PlacePatch
			f := cmd.Flags()
			if f.Changed("title") {
				patch.Title = &title
			}
			if f.Changed("description") {
				patch.Description = &description
			}
			if f.Changed("lat") {
				patch.Latitude = &lat
			}
			if f.Changed("lon") {
				patch.Longitude = &lon
			}
			if err := app().journal.UpdatePlace(cmd.Context(), id, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated place %d\n", id)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "new title")
	f.StringVar(&description, "description", "", "new description")
	f.Float64Var(&lat, "lat", 0, "new latitude")
	f.Float64Var(&lon, "lon", 0, "new longitude")
	return cmd
}

func newPlaceDeleteCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a place with its photos and notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app().journal.DeletePlace(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted place %d\n", id)
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
