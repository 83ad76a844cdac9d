package cli

import (
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/localchefbazaar/bazaar/internal/session"
)

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Manage the stored marketplace credential`,
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthWhoamiCommand())

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the marketplace",
		Long: `Sign in with email and password and persist the credential.

The password is always prompted and never echoed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			if email == "" {
				fmt.Print("Email: ")
				if _, err := fmt.Scanln(&email); err != nil {
					return fmt.Errorf("failed to read email: %w", err)
				}
			}
			email = strings.TrimSpace(email)

			fmt.Print("Password: ")
			passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			id, err := ctx.Store.SignIn(cmd.Context(), email, string(passwordBytes))
			if err != nil {
				return fmt.Errorf("sign-in failed: %w", err)
			}

			if err := ctx.Credentials.SaveCredentials(&session.Credentials{
				AccessToken: id.IDToken,
				UID:         id.UID,
				Email:       id.Email,
				DisplayName: id.DisplayName,
				PhotoURL:    id.PhotoURL,
				ExpiresAt:   id.ExpiresAt,
			}); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			// Let the auth-state transition settle so the record is attached.
			if err := ctx.waitSettled(2 * time.Second); err != nil {
				ctx.Logger.Warn("session did not settle after sign-in")
			}
			ctx.Store.FetchSessionRecord(cmd.Context(), id.Email)

			fmt.Printf("Signed in as %s\n", id.Email)
			if snap := ctx.Store.Snapshot(); snap.Record != nil {
				fmt.Printf("Role: %s\n", snap.Record.Role)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address (prompted if not provided)")
	return cmd
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			if err := ctx.Store.SignOut(cmd.Context()); err != nil {
				return fmt.Errorf("sign-out failed: %w", err)
			}

			fmt.Println("Signed out")
			return nil
		},
	}
}

func newAuthWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			snap := ctx.Store.Snapshot()
			if snap.Identity == nil {
				fmt.Println("Not signed in")
				return nil
			}

			fmt.Printf("Email: %s\n", snap.Identity.Email)
			if snap.Identity.DisplayName != "" {
				fmt.Printf("Name: %s\n", snap.Identity.DisplayName)
			}
			fmt.Printf("Role: %s\n", snap.EffectiveRole())
			if !snap.Identity.ExpiresAt.IsZero() {
				if time.Now().After(snap.Identity.ExpiresAt) {
					fmt.Printf("Credential expired at %s\n",
						snap.Identity.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
				} else {
					fmt.Printf("Credential valid until %s\n",
						snap.Identity.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
				}
			}
			if snap.Record != nil && snap.Record.Status != "" {
				fmt.Printf("Status: %s\n", snap.Record.Status)
			}
			return nil
		},
	}
}
