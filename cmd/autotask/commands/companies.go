package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fieldops-io/autotask-client/pkg/autotask"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewCompaniesCommand creates the companies command group.
func NewCompaniesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "companies",
		Aliases: []string{"company"},
		Short:   "Manage companies",
		Long:    "List, inspect, and query Autotask companies",
	}

	cmd.AddCommand(newCompaniesListCommand())
	cmd.AddCommand(newCompaniesGetCommand())

	return cmd
}

func newCompaniesListCommand() *cobra.Command {
	var (
		allPages   bool
		maxRecords int
		name       string
		activeOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List companies",
		Long:  "List companies, optionally filtered by name substring",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompaniesListCommand(cmd, allPages, maxRecords, name, activeOnly)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&maxRecords, "max-records", 0, "results per page")
	cmd.Flags().StringVar(&name, "name", "", "filter by company name substring")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only active companies")

	return cmd
}

func runCompaniesListCommand(cmd *cobra.Command, allPages bool, maxRecords int, name string, activeOnly bool) error {
	client, err := CreateClient(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx := context.Background()

	filter := autotask.NewFilter()
	if name != "" {
		filter = filter.Contains("companyName", name)
	}
	if activeOnly {
		filter = filter.Eq("isActive", true)
	}

	params := &autotask.QueryParams{MaxRecords: maxRecords}
	if len(filter.Clauses()) > 0 {
		params.Filter = filter
	}

	if allPages {
		companies, err := client.Companies().QueryAll(ctx, params)
		if err != nil {
			return fmt.Errorf("failed to list companies: %w", err)
		}

		return outputCompanies(companies, nil)
	}

	list, err := client.Companies().Query(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	return outputCompanies(list.Items, list)
}

func outputCompanies(companies []autotask.Company, list *autotask.ListResponse[autotask.Company]) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(companies)
	case OutputFormatYAML:
		return StandardYAMLRenderer(companies)
	default:
		return renderCompaniesTable(companies, list)
	}
}

func renderCompaniesTable(companies []autotask.Company, list *autotask.ListResponse[autotask.Company]) error {
	if len(companies) == 0 {
		_, _ = os.Stdout.WriteString("No companies found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Name", "Phone", "City", "Active")

	for _, company := range companies {
		active := "no"
		if company.IsActive {
			active = "yes"
		}

		_ = table.Append(
			strconv.FormatInt(company.ID, 10),
			company.CompanyName,
			company.Phone,
			company.City,
			active)
	}

	_ = table.Render()

	if list.HasNextPage() {
		_, _ = os.Stdout.WriteString("\nMore results available. Use --all to fetch all pages.\n")
	}

	return nil
}

func newCompaniesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get COMPANY_ID",
		Short: "Get company details",
		Long:  "Display detailed information about a specific company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompaniesGetCommand(cmd, args[0])
		},
	}
}

func runCompaniesGetCommand(cmd *cobra.Command, idArg string) error {
	companyID, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid company ID %q: %w", idArg, err)
	}

	client, err := CreateClient(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	company, err := client.Companies().Get(context.Background(), companyID)
	if err != nil {
		return fmt.Errorf("failed to get company: %w", err)
	}

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(company)
	case OutputFormatYAML:
		return StandardYAMLRenderer(company)
	default:
		return renderCompanyDetailsTable(company)
	}
}

func renderCompanyDetailsTable(company *autotask.Company) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	active := "no"
	if company.IsActive {
		active = "yes"
	}

	_ = table.Append("ID", strconv.FormatInt(company.ID, 10))
	_ = table.Append("Name", company.CompanyName)
	_ = table.Append("Phone", company.Phone)
	_ = table.Append("Address", company.Address1)
	_ = table.Append("City", company.City)
	_ = table.Append("State", company.State)
	_ = table.Append("Country", company.Country)
	_ = table.Append("Active", active)

	_, _ = os.Stdout.WriteString("Company details:\n\n")

	_ = table.Render()

	return nil
}
