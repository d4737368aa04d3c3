package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ayu-zh/placement-connector/internal/api/request"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/session"
)

func newLoginCmd(rt *env) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a student or administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.manager.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			rt.out.Print(rt.whoami())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newSignupCmd(rt *env) *cobra.Command {
	var req request.RegisterRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a student account",
		Long: `Register a student account with the portal.

The account starts unverified. Sign in with login afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := rt.client.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			rt.out.Print(created)
			rt.out.PrintMessage("Registered. Sign in with: placement login --email " + created.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name (required)")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (required)")
	cmd.Flags().StringVar(&req.Department, "department", "", "Department (required)")
	cmd.Flags().StringVar(&req.Year, "year", "", "Year of study")
	for _, name := range []string{"name", "email", "password", "department"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newAdminLoginCmd(rt *env) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "admin-login",
		Short: "Sign in as an administrator",
		Long: `Sign in and confirm administrator privileges with the portal.

If the account is not an administrator, or its role cannot be confirmed,
the new session is revoked and no session is kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := rt.manager.AdminLogin(cmd.Context(), email, password); err != nil {
				return err
			}
			rt.out.Print(rt.whoami())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.manager.State() == session.StateAuthenticated {
				if err := rt.manager.Logout(cmd.Context()); err != nil {
					// Local state is already cleared
					rt.out.PrintError(err)
				}
				rt.out.PrintMessage("Logged out")
				return nil
			}

			// The stored session could not be resumed. Revoke it if the server
			// is reachable and forget it either way.
			if token, err := rt.tokens.Load(); err == nil && token != "" {
				if err := rt.client.SignOut(cmd.Context(), token); err != nil && !errors.Is(err, model.ErrInvalidSession) {
					rt.out.PrintError(err)
				}
			}
			if err := rt.tokens.Clear(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}
			rt.out.PrintMessage("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.restoreErr != nil {
				return rt.restoreErr
			}
			rt.out.Print(rt.whoami())
			return nil
		},
	}
}

func newWatchCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the session and print every change",
		Long: `Subscribe to the portal's session events and print each transition:
sign-outs from elsewhere, expiry, token refreshes and role changes.

Press Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt.onChange = func(c session.Change) {
				rt.out.Print(newChangeLine(c, time.Now()))
			}
			if err := rt.manager.Start(ctx); err != nil {
				return err
			}

			w := rt.whoami()
			rt.out.Print(newChangeLine(session.Change{State: w.State, Identity: w.Identity, Reason: "watching"}, time.Now()))

			<-ctx.Done()
			return rt.manager.Close()
		},
	}
}

func (rt *env) whoami() Whoami {
	return Whoami{
		State:    rt.manager.State(),
		Admin:    rt.manager.IsAdmin(),
		Identity: rt.manager.CurrentIdentity(),
	}
}
