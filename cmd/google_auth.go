package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/meetsync/internal/google"
	"github.com/teemow/meetsync/internal/launcher"
)

func newGoogleAuthCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "google-auth",
		Short: "Authorize read access to Google Calendar",
		Long: `Authorize meetsync to read your Google Calendar.

The command prints an authorization URL. Open it, grant access and paste the
code back (or pass it with --code). The resulting token is written to
GOOGLE_TOKEN_FILE and refreshed automatically afterwards.

The OAuth client is read from GOOGLE_CREDENTIALS_FILE, as downloaded from the
Google Cloud console.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			conf, err := google.LoadOAuthConfig(cfg.GoogleCredentialsFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if code == "" {
				fmt.Fprintf(out, "Open this URL in your browser and authorize calendar access:\n\n%s\n\n", google.AuthURL(conf))
				fmt.Fprint(out, "Authorization code: ")

				scanner := bufio.NewScanner(cmd.InOrStdin())
				if scanner.Scan() {
					code = strings.TrimSpace(scanner.Text())
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read authorization code: %w", err)
				}
			}
			if code == "" {
				return fmt.Errorf("no authorization code given")
			}

			if err := google.ExchangeAndSave(cmd.Context(), conf, code, cfg.GoogleTokenFile); err != nil {
				return err
			}
			launcher.Succeed(out, "Google Calendar token saved to %s", cfg.GoogleTokenFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code (prompted for when empty)")

	return cmd
}
