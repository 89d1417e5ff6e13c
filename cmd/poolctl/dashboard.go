package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lkarlslund/tokenpool/pkg/dashboard"
)

func newDashboardCmd(cfgPath, sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive credential dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, a, err := newTokenModel(cmd, *cfgPath, *sessionPath)
			if err != nil {
				return err
			}
			return runDashboardLoop(cmd, m, a)
		},
	}
}

const dashboardHelp = "commands: r=refresh  u=upload  o=oauth  m=manual  t <id>=toggle public  d <id>=delete  k=api key  q=quit"

func runDashboardLoop(cmd *cobra.Command, m *dashboard.Model, a *app) error {
	ctx := cmd.Context()
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	if err := m.Reload(ctx); err != nil {
		fmt.Fprintf(out, "could not load dashboard data: %v\n", err)
	}
	for {
		fmt.Fprint(out, dashboard.View(m, a.store.Credential()))
		fmt.Fprintln(out, dashboardHelp)
		line, err := promptLine(reader, out, "> ")
		if err != nil {
			return nil
		}
		m.ClearMessage()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "q", "quit", "exit":
			return nil
		case "r", "refresh":
			if err := m.Reload(ctx); err != nil {
				fmt.Fprintf(out, "refresh failed: %v\n", err)
			}
		case "u", "upload":
			runUploadFlow(ctx, m, reader, out)
		case "o", "oauth":
			runOAuthFlow(ctx, m, reader, out)
		case "m", "manual":
			runManualFlow(ctx, m, reader, out)
		case "t", "toggle":
			if id, ok := parseIDArg(out, fields); ok {
				if err := m.TogglePublic(ctx, id); err != nil {
					fmt.Fprintln(out, err.Error())
				}
			}
		case "d", "delete":
			if id, ok := parseIDArg(out, fields); ok {
				if err := m.Delete(ctx, id); err != nil {
					fmt.Fprintln(out, err.Error())
				}
			}
		case "k", "key":
			fmt.Fprintln(out, "base url: "+dashboard.BaseEndpoint(a.baseURL))
			fmt.Fprintln(out, "api key:  "+dashboard.MaskedKey(a.store.Credential()))
		default:
			fmt.Fprintln(out, dashboardHelp)
		}
	}
}

func parseIDArg(out io.Writer, fields []string) (int64, bool) {
	if len(fields) < 2 {
		fmt.Fprintln(out, "token id required")
		return 0, false
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		fmt.Fprintf(out, "invalid token id %q\n", fields[1])
		return 0, false
	}
	return id, true
}

func runUploadFlow(ctx context.Context, m *dashboard.Model, reader *bufio.Reader, out io.Writer) {
	m.OpenUpload()
	token, err := promptLine(reader, out, "Paste token (empty to cancel): ")
	if err != nil || strings.TrimSpace(token) == "" {
		m.Cancel()
		return
	}
	m.SetUploadToken(token)
	m.SetUploadPublic(promptYesNo(reader, out, "Donate to the public pool?", true))
	_ = m.SubmitUpload(ctx)
}

func runOAuthFlow(ctx context.Context, m *dashboard.Model, reader *bufio.Reader, out io.Writer) {
	authURL, err := m.StartOAuth(ctx)
	if err != nil {
		return
	}
	fmt.Fprintln(out, "Open this URL in a browser and authorize:")
	fmt.Fprintln(out, "  "+authURL)
	callbackURL, err := promptLine(reader, out, "Paste the full callback URL (empty to cancel): ")
	if err != nil || strings.TrimSpace(callbackURL) == "" {
		m.Cancel()
		return
	}
	m.SetCallbackURL(callbackURL)
	m.SetOAuthPublic(promptYesNo(reader, out, "Donate to the public pool?", true))
	_ = m.SubmitCallback(ctx)
}

func runManualFlow(ctx context.Context, m *dashboard.Model, reader *bufio.Reader, out io.Writer) {
	m.OpenManual()
	access, err := promptLine(reader, out, "Access token (empty to cancel): ")
	if err != nil || strings.TrimSpace(access) == "" {
		m.Cancel()
		return
	}
	refresh, err := promptLine(reader, out, "Refresh token (empty to cancel): ")
	if err != nil || strings.TrimSpace(refresh) == "" {
		m.Cancel()
		return
	}
	expires, err := promptLine(reader, out, "Expiry seconds [3600]: ")
	if err != nil {
		m.Cancel()
		return
	}
	m.SetManualAccessToken(access)
	m.SetManualRefreshToken(refresh)
	if strings.TrimSpace(expires) != "" {
		m.SetManualExpiresIn(expires)
	}
	m.SetManualPublic(promptYesNo(reader, out, "Donate to the public pool?", true))
	_ = m.SubmitManual(ctx)
}
