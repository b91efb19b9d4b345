package cli

import (
	"fmt"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/spf13/cobra"
)

func newSignupCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create a local account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			name, err := a.prompt.Text("Full name")
			if err != nil {
				return err
			}
			email, err := a.prompt.Text("Email")
			if err != nil {
				return err
			}
			pw, err := a.prompt.Password("Password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			u, err := a.auth.SignUpOffline(cmd.Context(), name, email, pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s (user %d)\n", u.FullName, u.ID)
			return nil
		},
	}
}

func newLoginCmd(app func() *App) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a local password, or adopt a backend token with --token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			email, err := a.prompt.Text("Email")
			if err != nil {
				return err
			}

			var u *models.User
			if token != "" {
				u, err = a.auth.LoginWithToken(cmd.Context(), models.User{Email: email, FullName: email}, token)
			} else {
				var pw []byte
				if pw, err = a.prompt.Password("Password"); err != nil {
					return err
				}
				defer common.WipeByteArray(pw)
				u, err = a.auth.LoginOffline(cmd.Context(), email, pw)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token issued by the backend")
	return cmd
}

func newLogoutCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app().auth.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
