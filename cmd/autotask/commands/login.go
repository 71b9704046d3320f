package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fieldops-io/autotask-client/internal/constants"
	"github.com/fieldops-io/autotask-client/pkg/atclient"
	"github.com/fieldops-io/autotask-client/pkg/autotask"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command. Login verifies the
// credentials through zone discovery and persists them for later
// commands.
func NewLoginCommand() *cobra.Command {
	var (
		username        string
		integrationCode string
		secret          string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store Autotask API credentials",
		Long: `Validate Autotask API credentials against the zone discovery endpoint
and store them, together with the resolved zone URL, in the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)

			if username == "" {
				fmt.Print("API user (email): ")
				username, _ = reader.ReadString('\n')
				username = strings.TrimSpace(username)
			}

			if integrationCode == "" {
				fmt.Print("Integration code: ")
				integrationCode, _ = reader.ReadString('\n')
				integrationCode = strings.TrimSpace(integrationCode)
			}

			if secret == "" {
				fmt.Print("Secret: ")
				byteSecret, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read secret: %w", err)
				}
				secret = string(byteSecret)
				fmt.Println()
			}

			cfg := &autotask.Config{
				IntegrationCode: integrationCode,
				Username:        username,
				Secret:          secret,
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			zone, err := atclient.DiscoverZone(context.Background(), cfg)
			if err != nil {
				return err
			}

			path, err := saveConfig(&CLIConfig{
				Endpoint:        zone.URL,
				Username:        username,
				IntegrationCode: integrationCode,
				Secret:          secret,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Logged in as %s (zone: %s)\n", username, zone.ZoneName)
			_, _ = fmt.Fprintf(os.Stdout, "Credentials saved to %s (secret: %s)\n", path, constants.MaskedSecret)

			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "API user email address")
	cmd.Flags().StringVar(&integrationCode, "integration-code", "", "API integration code")
	cmd.Flags().StringVar(&secret, "secret", "", "API secret (prompted when omitted)")

	return cmd
}
