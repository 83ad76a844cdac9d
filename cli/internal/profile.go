package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/internal/identity"
	"github.com/localchefbazaar/bazaar/internal/session"
)

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	cmd.AddCommand(newProfileShowCommand())
	cmd.AddCommand(newProfileUpdateCommand())
	cmd.AddCommand(newProfileRequestRoleCommand())

	return cmd
}

func newProfileShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			id, err := ctx.requireIdentity()
			if err != nil {
				return err
			}

			fmt.Printf("Name: %s\n", id.DisplayName)
			fmt.Printf("Email: %s\n", id.Email)
			if id.PhotoURL != "" {
				fmt.Printf("Photo: %s\n", id.PhotoURL)
			}

			snap := ctx.Store.Snapshot()
			fmt.Printf("Role: %s\n", snap.EffectiveRole())
			if snap.Record != nil {
				fmt.Printf("Status: %s\n", snap.Record.Status)
				if snap.Record.Address != "" {
					fmt.Printf("Address: %s\n", snap.Record.Address)
				}
			}
			return nil
		},
	}
}

func newProfileUpdateCommand() *cobra.Command {
	var (
		name  string
		photo string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your display profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			if name == "" && photo == "" {
				return fmt.Errorf("nothing to update; pass --name or --photo")
			}

			if err := ctx.Store.UpdateProfile(cmd.Context(), identity.Profile{
				DisplayName: name,
				PhotoURL:    photo,
			}); err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}

			// Persist the refreshed identity so the next invocation sees it.
			if cur := ctx.Provider.Current(); cur != nil {
				if err := ctx.Credentials.SaveCredentials(&session.Credentials{
					AccessToken: cur.IDToken,
					UID:         cur.UID,
					Email:       cur.Email,
					DisplayName: cur.DisplayName,
					PhotoURL:    cur.PhotoURL,
					ExpiresAt:   cur.ExpiresAt,
				}); err != nil {
					ctx.Logger.Warn("failed to persist refreshed profile", "error", err)
				}
			}

			fmt.Println("Profile updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&photo, "photo", "", "New photo URL")
	return cmd
}

func newProfileRequestRoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "request-role <chef|admin>",
		Short: "Ask for a role upgrade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			id, err := ctx.requireIdentity()
			if err != nil {
				return err
			}

			var reqType api.RequestType
			switch args[0] {
			case string(api.RequestChef):
				reqType = api.RequestChef
			case string(api.RequestAdmin):
				reqType = api.RequestAdmin
			default:
				return fmt.Errorf("unknown role %q; choose chef or admin", args[0])
			}

			err = ctx.Client.SubmitRoleRequest(cmd.Context(), id.DisplayName, id.Email, reqType)
			switch {
			case err == nil:
				fmt.Printf("Requested %s role; an admin will review it\n", reqType)
				return nil
			case api.IsConflict(err):
				fmt.Println("You already have a pending request")
				return nil
			default:
				return fmt.Errorf("failed to submit request: %w", err)
			}
		},
	}
}
