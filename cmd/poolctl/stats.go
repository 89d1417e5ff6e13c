package main

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/lkarlslund/tokenpool/pkg/dashboard"
)

func newStatsCmd(cfgPath, sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate pool statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, *sessionPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			stats, err := a.gw.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch pool stats: %w", err)
			}
			fmt.Fprintf(out, "users:          %d\n", stats.Users)
			fmt.Fprintf(out, "pool tokens:    %d (%d valid)\n", stats.Tokens.Total, stats.Tokens.Valid)
			fmt.Fprintf(out, "  claude-ready: %d\n", stats.Tokens.Claude)
			fmt.Fprintf(out, "  gemini-ready: %d\n", stats.Tokens.Gemini)
			fmt.Fprintf(out, "requests today: %d (total %d)\n", stats.TodayRequests, stats.TotalRequests)

			if ann, err := a.gw.Announcement(cmd.Context()); err == nil && ann.Enabled {
				fmt.Fprintln(out)
				if strings.TrimSpace(ann.Title) != "" {
					fmt.Fprintln(out, ann.Title)
				}
				if strings.TrimSpace(ann.Content) != "" {
					fmt.Fprintln(out, ann.Content)
				}
			}
			return nil
		},
	}
}

func newAPIKeyCmd(cfgPath, sessionPath *string) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Show the API endpoint and key for external clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, *sessionPath)
			if err != nil {
				return err
			}
			if err := a.requireAuth(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "base url: "+dashboard.BaseEndpoint(a.baseURL))
			if reveal {
				fmt.Fprintln(out, "api key:  "+a.store.Credential())
			} else {
				fmt.Fprintln(out, "api key:  "+dashboard.MaskedKey(a.store.Credential())+"  (display only; --reveal for the real key)")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the full session credential instead of the masked key")
	return cmd
}

// newProbeCmd checks the pool end to end: it lists the models the
// OpenAI-compatible /v1 surface offers using the caller's own session
// credential.
func newProbeCmd(cfgPath, sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Probe the pool's /v1 surface with your credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, *sessionPath)
			if err != nil {
				return err
			}
			if err := a.requireAuth(); err != nil {
				return err
			}
			clientCfg := openai.DefaultConfig(a.store.Credential())
			clientCfg.BaseURL = dashboard.BaseEndpoint(a.baseURL)
			client := openai.NewClientWithConfig(clientCfg)
			models, err := client.ListModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("probe /v1/models: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(models.Models) == 0 {
				fmt.Fprintln(out, "pool reachable, no models available")
				return nil
			}
			fmt.Fprintf(out, "pool reachable, %d models:\n", len(models.Models))
			for _, m := range models.Models {
				fmt.Fprintln(out, "  "+m.ID)
			}
			return nil
		},
	}
}
