// Package cli contains the cobra commands driving the tool.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "weeklymix",
	Short: "Weekly music-discovery playlist builder",
	Long: `weeklymix assembles a weekly discovery playlist per configured listener:
AI-suggested searches first, a few familiar anchors, then genre and artist
fallback searches, deduplicated against what the listener already knows.

Credentials come from the environment: either the flat SPOTIFY_CLIENT_ID /
SPOTIFY_CLIENT_SECRET / SPOTIFY_REFRESH_TOKEN trio for a single listener,
or one SPOTIFY_USER_<NAME>_* trio per listener for multi-user runs.

Example usage:
  weeklymix run                      # publish this week's mixes
  weeklymix run --week 2026-W35      # target a specific ISO week
  weeklymix run --dry-run            # assemble without publishing`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. The caller owns the exit code.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion stamps the build version reported by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default: $CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
