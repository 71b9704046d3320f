package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fieldops-io/autotask-client/pkg/atclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewZoneCommand creates the zone command, which shows the API zone
// serving the configured user.
func NewZoneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "zone",
		Short: "Show the API zone for the configured user",
		Long:  "Resolve and display the Autotask API zone serving the configured user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := apiConfig()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("%w. Run 'autotask login' or set AUTOTASK_* environment variables", err)
			}

			zone, err := atclient.DiscoverZone(context.Background(), cfg)
			if err != nil {
				return err
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(zone)
			case OutputFormatYAML:
				return StandardYAMLRenderer(zone)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")
				_ = table.Append("Zone", zone.ZoneName)
				_ = table.Append("API URL", zone.URL)
				_ = table.Append("Web URL", zone.WebURL)
				_ = table.Append("CI", strconv.Itoa(zone.CI))
				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}
}
