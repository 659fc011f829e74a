package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/launcher"
	"github.com/teemow/meetsync/internal/logging"
)

// rootCmd represents the base command for the meetsync application
var rootCmd = &cobra.Command{
	Use:   "meetsync",
	Short: "Keeps calendar meetings and Notion meeting notes in sync",
	Long: `meetsync connects your calendar with a Notion workspace.

It can:
  - Copy calendar events into a meetings database (ingest)
  - Create meeting notes for upcoming meetings and mark cancelled ones (notes)
  - Capture tasks, journal entries, clipboard dumps and ad-hoc meeting notes
  - Run both sync flows on a schedule (watch)
  - Serve the sync flows as MCP tools for AI assistants (serve)

Capture and sync commands print launcher items when called with a query and
run the action when called with their action flag.`,
	SilenceUsage: true,
}

var (
	// version will be set by main
	version = "dev"

	debugMode bool
	envFile   string
)

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "meetsync version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file (default: .env when present)")

	rootCmd.AddCommand(newNotesCmd())
	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newTaskCmd())
	rootCmd.AddCommand(newJournalCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newMeetingCmd())
	rootCmd.AddCommand(newOpenCmd())
	rootCmd.AddCommand(newGoogleAuthCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// newLogger returns the stderr logger selected by --debug.
func newLogger() logging.Logger {
	return logging.NewSlogAdapter(logging.NewLogger(os.Stderr, debugMode))
}

// loadConfig reads the configuration from the environment and --env-file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnvFile(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// launcherConfig loads the configuration for a launcher command. A failure
// is printed the way the command reports results: an error item in query
// mode, a ❌ line in action mode.
func launcherConfig(w io.Writer, action bool) (*config.Config, bool) {
	cfg, err := loadConfig()
	if err == nil {
		return cfg, true
	}
	if action {
		launcher.Fail(w, err)
	} else {
		writeItems(w, launcher.ErrorItem(err))
	}
	return nil, false
}

// localNow returns the current time in the configured location.
func localNow(cfg *config.Config) time.Time {
	now := time.Now()
	if cfg != nil && cfg.Location != nil {
		now = now.In(cfg.Location)
	}
	return now
}

// queryText joins positional arguments into one launcher query.
func queryText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// writeItems prints launcher items, reporting a failed write on stderr only.
func writeItems(w io.Writer, items ...launcher.Item) {
	if err := launcher.Write(w, items...); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write launcher output: %v\n", err)
	}
}
