package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ayu-zh/placement-connector/internal/authclient"
	"github.com/Ayu-zh/placement-connector/internal/session"
)

// errNotLoggedIn is returned by commands that need a session when there is none
var errNotLoggedIn = errors.New("not logged in: run 'placement login' first")

// env is the state shared by the commands of one invocation
type env struct {
	cfg     *Config
	tokens  *session.FileTokenStore
	client  *authclient.Client
	manager *session.Manager
	out     *Output
	// restoreErr is why the stored session could not be resumed, if it could not
	restoreErr error
	onChange   func(session.Change)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rt := &env{cfg: DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "placement",
		Short: "CLI for the college placement portal",
		Long: `placement is a CLI for the college placement portal API.

It keeps one session per token file. Students and administrators sign in
with login; admin-login only succeeds for administrators. Commands that
change portal data are checked locally and again by the server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if rt.manager != nil {
				return rt.manager.Close()
			}
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&rt.cfg.ServerURL, "server", rt.cfg.ServerURL, "Server URL (env: PLACEMENT_SERVER)")
	rootCmd.PersistentFlags().StringVar(&rt.cfg.TokenFile, "token-file", rt.cfg.TokenFile, "Token file path (env: PLACEMENT_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&rt.cfg.Output, "output", "o", rt.cfg.Output, "Output format: text, json (env: PLACEMENT_OUTPUT)")
	rootCmd.PersistentFlags().BoolVarP(&rt.cfg.Verbose, "verbose", "v", rt.cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newSignupCmd(rt))
	rootCmd.AddCommand(newLoginCmd(rt))
	rootCmd.AddCommand(newAdminLoginCmd(rt))
	rootCmd.AddCommand(newLogoutCmd(rt))
	rootCmd.AddCommand(newWhoamiCmd(rt))
	rootCmd.AddCommand(newWatchCmd(rt))
	rootCmd.AddCommand(newJobsCmd(rt))
	rootCmd.AddCommand(newStudentsCmd(rt))
	rootCmd.AddCommand(newTeammatesCmd(rt))
	rootCmd.AddCommand(newStatsCmd(rt))
	rootCmd.AddCommand(newHealthCmd(rt))

	return rootCmd
}

// setup builds the client and session manager and resumes the stored session
func (rt *env) setup(cmd *cobra.Command) error {
	if rt.cfg.Output != "text" && rt.cfg.Output != "json" {
		return fmt.Errorf("invalid output format %q: must be text or json", rt.cfg.Output)
	}
	rt.out = NewOutput(rt.cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())

	level := slog.LevelWarn
	if rt.cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	rt.tokens = session.NewFileTokenStore(rt.cfg.TokenFile)
	rt.client = authclient.New(rt.cfg.ServerURL, func() string {
		if rt.manager == nil {
			return ""
		}
		return rt.manager.Token()
	})

	manager, err := session.New(session.Config{
		Authority: rt.client,
		Roles:     rt.client,
		Tokens:    rt.tokens,
		Logger:    logger,
		OnChange: func(c session.Change) {
			if rt.onChange != nil {
				rt.onChange(c)
			}
		},
	})
	if err != nil {
		return err
	}
	rt.manager = manager

	if cmd.Name() == "health" || cmd.Name() == "signup" {
		return nil
	}
	rt.restoreErr = manager.Restore(cmd.Context())
	return nil
}

// requireSession fails unless a session was resumed or established
func (rt *env) requireSession() error {
	if rt.manager.State() == session.StateAuthenticated {
		return nil
	}
	if rt.restoreErr != nil {
		return rt.restoreErr
	}
	return errNotLoggedIn
}

// requireAdmin is the local check made before sending a privileged request.
// The server repeats it.
func (rt *env) requireAdmin() error {
	if err := rt.requireSession(); err != nil {
		return err
	}
	return rt.manager.RequireAdmin()
}

// Execute runs the root command
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
