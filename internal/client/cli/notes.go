package cli

import (
	"fmt"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/spf13/cobra"
)

func newNoteCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Journal notes attached to places",
	}
	cmd.AddCommand(newNoteAddCmd(app))
	return cmd
}

func newNoteAddCmd(app func() *App) *cobra.Command {
	var (
		n      models.Note
		photos []string
	)
	cmd := &cobra.Command{
		Use:   "add PLACE_ID",
		Short: "Write a note for a place; the body is prompted for when --content is empty",
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
			if n.Content == "" {
				if n.Content, err = a.prompt.Multiline("Note"); err != nil {
					return err
				}
			}
			n.UserID, n.PlaceID = uid, pid
			if err := a.journal.AddNote(cmd.Context(), &n, captures(photos)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved note %d\n", n.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&n.Title, "title", "", "note title")
	f.StringVar(&n.Content, "content", "", "note body")
	f.StringArrayVar(&photos, "photo", nil, "path or file:// URI of a photo (repeatable)")
	return cmd
}

func newPhotoCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Add or remove photos",
	}

	var onNote bool
	add := &cobra.Command{
		Use:   "add OWNER_ID URI",
		Short: "Attach a photo to a place (or a note with --note)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			owner, err := parseID(args[0])
			if err != nil {
				return err
			}
			c := models.Capture{URI: args[1]}
			var p *models.Photo
			if onNote {
				p, err = a.journal.AddNotePhoto(cmd.Context(), owner, c)
			} else {
				p, err = a.journal.AddPlacePhoto(cmd.Context(), owner, c)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved photo %d\n", p.ID)
			return nil
		},
	}
	add.Flags().BoolVar(&onNote, "note", false, "OWNER_ID is a note")

	var delNote bool
	del := &cobra.Command{
		Use:   "delete PHOTO_ID",
		Short: "Delete a place photo (or a note photo with --note) and its staged file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if delNote {
				err = a.journal.DeleteNotePhoto(cmd.Context(), id)
			} else {
				err = a.journal.DeletePlacePhoto(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted photo %d\n", id)
			return nil
		},
	}
	del.Flags().BoolVar(&delNote, "note", false, "PHOTO_ID is a note photo")

	cmd.AddCommand(add, del)
	return cmd
}
