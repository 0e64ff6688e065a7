package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/henry-johnson/spotify-playlist-creator/internal/config"
	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
	"github.com/henry-johnson/spotify-playlist-creator/internal/core/services"
	"github.com/henry-johnson/spotify-playlist-creator/internal/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build and publish the weekly mix for every configured listener",
	Long: `Runs the full pipeline for each configured listener in turn: resolve the
listening profile, generate discovery queries, search, rank, assemble, and
publish to a playlist named after the ISO week. Listeners are isolated; one
failing account never stops the others.`,
	RunE: runWeekly,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("week", "", `target ISO week, e.g. "2026-W35" (default: current week)`)
	runCmd.Flags().Bool("dry-run", false, "assemble the mix but skip publication")
}

func runWeekly(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger := logging.Init(logging.Config{Level: level, Format: cfg.LogFormat})

	target := domain.CurrentPeriod(time.Now())
	if week, _ := cmd.Flags().GetString("week"); week != "" {
		target, err = domain.ParsePeriod(week)
		if err != nil {
			return err
		}
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	prompts, err := config.LoadPrompts(cfg.Prompts.Dir)
	if err != nil {
		return err
	}

	users, incomplete := config.DiscoverUsers(os.Environ())
	for _, name := range incomplete {
		logger.Warn().Str("user", name).Msg("incomplete SPOTIFY_USER_* credential set, skipping")
	}
	if len(users) == 0 {
		single, ok := cfg.SingleUser()
		if !ok {
			return errors.New("no credentials configured: set SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET and SPOTIFY_REFRESH_TOKEN, or per-user SPOTIFY_USER_<NAME>_* variables")
		}
		users = []config.UserCredentials{single}
	}

	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Name
	}
	logger.Info().Str("week", target.String()).Strs("users", names).Bool("dry_run", dryRun).Msg("starting weekly run")

	builder := newEngineBuilder(cfg, prompts, users, logger, dryRun)
	report := services.NewOrchestrator(builder, logger).Run(cmd.Context(), names, target)

	renderReport(cmd.OutOrStdout(), report)
	if report.AllFailed() {
		return fmt.Errorf("all %d listener runs failed", len(report.Results))
	}
	return nil
}
