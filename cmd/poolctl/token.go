package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lkarlslund/tokenpool/pkg/callback"
	"github.com/lkarlslund/tokenpool/pkg/dashboard"
)

func newTokenCmd(cfgPath, sessionPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage your pool credentials",
	}
	cmd.AddCommand(newTokenListCmd(cfgPath, sessionPath))
	cmd.AddCommand(newTokenUploadCmd(cfgPath, sessionPath))
	cmd.AddCommand(newTokenOAuthCmd(cfgPath, sessionPath))
	cmd.AddCommand(newTokenManualCmd(cfgPath, sessionPath))
	cmd.AddCommand(newTokenToggleCmd(cfgPath, sessionPath))
	cmd.AddCommand(newTokenDeleteCmd(cfgPath, sessionPath))
	return cmd
}

func newTokenModel(cmd *cobra.Command, cfgPath, sessionPath string) (*dashboard.Model, *app, error) {
	a, err := newApp(cfgPath, sessionPath)
	if err != nil {
		return nil, nil, err
	}
	if err := a.requireAuth(); err != nil {
		return nil, nil, err
	}
	confirm := promptConfirmer{reader: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout()}
	return dashboard.NewModel(a.gw, a.store, confirm), a, nil
}

func flowResult(m *dashboard.Model, err error) error {
	if msg := m.Message(); msg != nil {
		if msg.Kind == dashboard.MessageError {
			return fmt.Errorf("%s", msg.Text)
		}
	}
	return err
}

func newTokenListCmd(cfgPath, sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your credentials and pool health",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, a, err := newTokenModel(cmd, *cfgPath, *sessionPath)
			if err != nil {
				return err
			}
			if err := m.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("load dashboard data: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), dashboard.View(m, a.store.Credential()))
			return nil
		},
	}
}

func newTokenUploadCmd(cfgPath, sessionPath *string) *cobra.Command {
	var public bool
	cmd := &cobra.Command{
		Use:   "upload [token]",
		Short: "Upload a pasted provider token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := newTokenModel(cmd, *cfgPath, *sessionPath)
			if err != nil {
				return err
			}
			token := ""
			if len(args) == 1 {
				token = args[0]
			} else {
				reader := bufio.NewReader(cmd.InOrStdin())
				token, err = promptLine(reader, cmd.OutOrStdout(), "Paste token: ")
				if err != nil {
					return err
				}
			}
			m.OpenUpload()
			m.SetUploadToken(token)
			m.SetUploadPublic(public)
			if !m.CanSubmitUpload() {
				return fmt.Errorf("token cannot be empty")
			}
			err = m.SubmitUpload(cmd.Context())
			if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), m.Message().Text)
			}
			return flowResult(m, err)
		},
	}
	cmd.Flags().BoolVar(&public, "public", true, "Donate the credential to the shared pool")
	return cmd
}

func newTokenOAuthCmd(cfgPath, sessionPath *string) *cobra.Command {
	var public bool
	var listen bool
	var listenAddr string
	cmd := &cobra.Command{
		Use:   "oauth",
		Short: "Acquire a credential through the provider authorization flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := newTokenModel(cmd, *cfgPath, *sessionPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			authURL, err := m.StartOAuth(cmd.Context())
			if err != nil {
				return flowResult(m, err)
			}
			fmt.Fprintln(out, "Open this URL in a browser and authorize:")
			fmt.Fprintln(out, "  "+authURL)
			m.SetOAuthPublic(public)

			callbackURL := ""
			if listen {
				l, lerr := callback.Listen(listenAddr)
				if lerr != nil {
					fmt.Fprintf(out, "Callback listener unavailable (%v); paste the URL instead.\n", lerr)
				} else {
					defer l.Close()
					fmt.Fprintln(out, "Waiting for the provider redirect on "+l.Addr()+" ...")
					callbackURL, err = l.Wait(cmd.Context())
					if err != nil {
						return err
					}
				}
			}
			if callbackURL == "" {
				reader := bufio.NewReader(cmd.InOrStdin())
				callbackURL, err = promptLine(reader, out, "Paste the full callback URL: ")
				if err != nil {
					return err
				}
			}
			m.SetCallbackURL(callbackURL)
			if !m.CanSubmitCallback() {
				return fmt.Errorf("callback URL cannot be empty")
			}
			err = m.SubmitCallback(cmd.Context())
			if err == nil {
				fmt.Fprintln(out, m.Message().Text)
			}
			return flowResult(m, err)
		},
	}
	cmd.Flags().BoolVar(&public, "public", true, "Donate the credential to the shared pool")
	cmd.Flags().BoolVar(&listen, "listen", false, "Capture the redirect on the local callback port instead of pasting")
	cmd.Flags().StringVar(&listenAddr, "listen-addr", callback.DefaultAddr, "Callback listener address")
	return cmd
}

func newTokenManualCmd(cfgPath, sessionPath *string) *cobra.Command {
	var public bool
	var accessToken, refreshToken, expiresIn string
	cmd := &cobra.Command{
		Use:   "manual",
		Short: "Register a hand-entered access/refresh token pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := newTokenModel(cmd, *cfgPath, *sessionPath)
			if err != nil {
				return err
			}
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			if strings.TrimSpace(accessToken) == "" {
				accessToken, err = promptLine(reader, out, "Access token: ")
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(refreshToken) == "" {
				refreshToken, err = promptLine(reader, out, "Refresh token: ")
				if err != nil {
					return err
				}
			}
			m.OpenManual()
			m.SetManualAccessToken(accessToken)
			m.SetManualRefreshToken(refreshToken)
			if strings.TrimSpace(expiresIn) != "" {
				m.SetManualExpiresIn(expiresIn)
			}
			m.SetManualPublic(public)
			if !m.CanSubmitManual() {
				return fmt.Errorf("access and refresh tokens are both required")
			}
			err = m.SubmitManual(cmd.Context())
			if err == nil {
				fmt.Fprintln(out, m.Message().Text)
			}
			return flowResult(m, err)
		},
	}
	cmd.Flags().BoolVar(&public, "public", true, "Donate the credential to the shared pool")
	cmd.Flags().StringVar(&accessToken, "access-token", "", "Access token (prompted when omitted)")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "Refresh token (prompted when omitted)")
	cmd.Flags().StringVar(&expiresIn, "expires-in", "", "Expiry in seconds (default 3600)")
	return cmd
}

func withLoadedToken(cmd *cobra.Command, cfgPath, sessionPath, rawID string, fn func(ctx context.Context, m *dashboard.Model, id int64) error) error {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid token id %q", rawID)
	}
	m, _, err := newTokenModel(cmd, cfgPath, sessionPath)
	if err != nil {
		return err
	}
	if err := m.Reload(cmd.Context()); err != nil {
		return fmt.Errorf("load token list: %w", err)
	}
	return fn(cmd.Context(), m, id)
}

func newTokenToggleCmd(cfgPath, sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Toggle a credential's public-pool donation flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLoadedToken(cmd, *cfgPath, *sessionPath, args[0], func(ctx context.Context, m *dashboard.Model, id int64) error {
				if err := m.TogglePublic(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Updated.")
				return nil
			})
		},
	}
}

func newTokenDeleteCmd(cfgPath, sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a credential (asks for confirmation)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLoadedToken(cmd, *cfgPath, *sessionPath, args[0], func(ctx context.Context, m *dashboard.Model, id int64) error {
				if err := m.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Done.")
				return nil
			})
		},
	}
}
