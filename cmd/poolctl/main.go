package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lkarlslund/tokenpool/pkg/config"
	"github.com/lkarlslund/tokenpool/pkg/gateway"
	"github.com/lkarlslund/tokenpool/pkg/logutil"
	"github.com/lkarlslund/tokenpool/pkg/session"
	"github.com/lkarlslund/tokenpool/pkg/version"
)

func main() {
	root := &cobra.Command{
		Use:   "poolctl",
		Short: "Tokenpool client CLI",
		Long:  "Poolctl manages your credentials in a shared tokenpool server: upload, OAuth acquisition, manual entry, pool donation and pool health.",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true
	var logLevel string
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return logutil.Configure(logLevel)
	}
	root.PersistentFlags().StringVar(&logLevel, "loglevel", "info", "Log level (trace, debug, info, warn, error, fatal)")

	var configPath string
	var sessionPath string
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultClientConfigPath(), "Client config TOML path")
	root.PersistentFlags().StringVar(&sessionPath, "session", config.DefaultSessionPath(), "Session state path")

	root.AddCommand(newConfigCmd(&configPath))
	root.AddCommand(newLoginCmd(&configPath, &sessionPath))
	root.AddCommand(newRegisterCmd(&configPath, &sessionPath))
	root.AddCommand(newLogoutCmd(&sessionPath))
	root.AddCommand(newDashboardCmd(&configPath, &sessionPath))
	root.AddCommand(newTokenCmd(&configPath, &sessionPath))
	root.AddCommand(newStatsCmd(&configPath, &sessionPath))
	root.AddCommand(newAPIKeyCmd(&configPath, &sessionPath))
	root.AddCommand(newProbeCmd(&configPath, &sessionPath))

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print poolctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Detailed("poolctl"))
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the restored session and the gateway for one command run.
type app struct {
	store   *session.Store
	gw      *gateway.Client
	baseURL string
}

func newApp(cfgPath, sessionPath string) (*app, error) {
	cfg, err := config.LoadClientConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load client config (run `poolctl config` first): %w", err)
	}
	base, err := cfg.ServerBaseURL()
	if err != nil {
		return nil, err
	}
	store := session.NewStore(sessionPath)
	if err := store.Restore(); err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return &app{
		store:   store,
		gw:      gateway.NewClient(base, store),
		baseURL: base,
	}, nil
}

func (a *app) requireAuth() error {
	if !a.store.Authenticated() {
		return fmt.Errorf("not logged in (run: poolctl login)")
	}
	return nil
}

func promptLine(reader *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		if len(line) == 0 {
			return "", err
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string, def bool) bool {
	suffix := " [y/N]: "
	if def {
		suffix = " [Y/n]: "
	}
	line, err := promptLine(reader, out, prompt+suffix)
	if err != nil {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return def
	case "y", "yes", "true":
		return true
	default:
		return false
	}
}

// promptConfirmer backs destructive-action confirmation with a terminal
// prompt.
type promptConfirmer struct {
	reader *bufio.Reader
	out    io.Writer
}

func (p promptConfirmer) Confirm(prompt string) bool {
	return promptYesNo(p.reader, p.out, prompt, false)
}
