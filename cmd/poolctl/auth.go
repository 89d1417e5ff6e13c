package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lkarlslund/tokenpool/pkg/config"
	"github.com/lkarlslund/tokenpool/pkg/session"
)

func newConfigCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Configure the tokenpool server URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrCreateClientConfig(*cfgPath)
			if err != nil {
				return fmt.Errorf("load client config: %w", err)
			}
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Poolctl client config: %s\n", *cfgPath)
			fmt.Fprintln(out, "Press Enter to keep current value.")

			serverURL, err := promptLine(reader, out, fmt.Sprintf("Server URL [%s]: ", cfg.ServerURL))
			if err != nil {
				return err
			}
			serverURL = strings.TrimSpace(serverURL)
			if serverURL != "" {
				cfg.ServerURL = serverURL
			}

			cfg.Normalize()
			if err := cfg.Validate(); err != nil {
				return err
			}
			if _, err := cfg.ServerBaseURL(); err != nil {
				return err
			}
			if err := config.Save(*cfgPath, cfg); err != nil {
				return fmt.Errorf("save client config: %w", err)
			}
			fmt.Fprintln(out, "Saved.")
			return nil
		},
	}
}

func newLoginCmd(cfgPath, sessionPath *string) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, *sessionPath)
			if err != nil {
				return err
			}
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			if strings.TrimSpace(username) == "" {
				username, err = promptLine(reader, out, "Username: ")
				if err != nil {
					return err
				}
			}
			password, err := promptLine(reader, out, "Password: ")
			if err != nil {
				return err
			}
			if strings.TrimSpace(username) == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}
			res, err := a.gw.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := a.store.Commit(res.User, res.AccessToken); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}
			fmt.Fprintf(out, "Logged in as %s (daily quota %d)\n", res.User.Username, res.User.DailyQuota)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Account username (prompted when omitted)")
	return cmd
}

func newRegisterCmd(cfgPath, sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, *sessionPath)
			if err != nil {
				return err
			}
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			username, err := promptLine(reader, out, "Username: ")
			if err != nil {
				return err
			}
			password, err := promptLine(reader, out, "Password: ")
			if err != nil {
				return err
			}
			if strings.TrimSpace(username) == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}
			cred, err := a.gw.Register(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			// The register response carries only the credential; commit a
			// provisional identity, then refresh it from the backend.
			if err := a.store.Commit(session.Identity{Username: username}, cred); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}
			id, err := a.gw.Me(cmd.Context())
			if err == nil {
				_ = a.store.UpdateIdentity(id)
			}
			fmt.Fprintf(out, "Registered and logged in as %s\n", username)
			return nil
		},
	}
}

func newLogoutCmd(sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := session.NewStore(*sessionPath)
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
