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

// NewTicketsCommand creates the tickets command group.
func NewTicketsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tickets",
		Aliases: []string{"ticket"},
		Short:   "Manage tickets",
		Long:    "List, inspect, and query Autotask service desk tickets",
	}

	cmd.AddCommand(newTicketsListCommand())
	cmd.AddCommand(newTicketsGetCommand())
	cmd.AddCommand(newTicketsNotesCommand())

	return cmd
}

func newTicketsListCommand() *cobra.Command {
	var (
		allPages   bool
		maxRecords int
		status     int
		companyID  int64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets",
		Long:  "List tickets, optionally filtered by status and company",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTicketsListCommand(cmd, allPages, maxRecords, status, companyID)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&maxRecords, "max-records", 0, "results per page")
	cmd.Flags().IntVar(&status, "status", 0, "filter by status value")
	cmd.Flags().Int64Var(&companyID, "company", 0, "filter by company ID")

	return cmd
}

func runTicketsListCommand(cmd *cobra.Command, allPages bool, maxRecords, status int, companyID int64) error {
	client, err := CreateClient(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx := context.Background()

	params := &autotask.QueryParams{
		Filter:     ticketListFilter(status, companyID),
		MaxRecords: maxRecords,
	}

	if allPages {
		tickets, err := client.Tickets().QueryAll(ctx, params)
		if err != nil {
			return fmt.Errorf("failed to list tickets: %w", err)
		}

		return outputTickets(tickets, nil)
	}

	list, err := client.Tickets().Query(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to list tickets: %w", err)
	}

	return outputTickets(list.Items, list)
}

func ticketListFilter(status int, companyID int64) *autotask.Filter {
	filter := autotask.NewFilter()
	if status > 0 {
		filter = filter.Eq("status", status)
	}
	if companyID > 0 {
		filter = filter.Eq("companyID", companyID)
	}
	if len(filter.Clauses()) == 0 {
		return nil
	}

	return filter
}

func outputTickets(tickets []autotask.Ticket, list *autotask.ListResponse[autotask.Ticket]) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(tickets)
	case OutputFormatYAML:
		return StandardYAMLRenderer(tickets)
	default:
		return renderTicketsTable(tickets, list)
	}
}

func renderTicketsTable(tickets []autotask.Ticket, list *autotask.ListResponse[autotask.Ticket]) error {
	if len(tickets) == 0 {
		_, _ = os.Stdout.WriteString("No tickets found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Number", "Title", "Status", "Company", "Created")

	for _, ticket := range tickets {
		_ = table.Append(
			strconv.FormatInt(ticket.ID, 10),
			ticket.TicketNumber,
			ticket.Title,
			strconv.Itoa(ticket.Status),
			strconv.FormatInt(ticket.CompanyID, 10),
			formatDate(ticket.CreateDate))
	}

	_ = table.Render()

	if list.HasNextPage() {
		_, _ = os.Stdout.WriteString("\nMore results available. Use --all to fetch all pages.\n")
	}

	return nil
}

func newTicketsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get TICKET_ID",
		Short: "Get ticket details",
		Long:  "Display detailed information about a specific ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTicketsGetCommand(cmd, args[0])
		},
	}
}

func runTicketsGetCommand(cmd *cobra.Command, idArg string) error {
	ticketID, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid ticket ID %q: %w", idArg, err)
	}

	client, err := CreateClient(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ticket, err := client.Tickets().Get(context.Background(), ticketID)
	if err != nil {
		return fmt.Errorf("failed to get ticket: %w", err)
	}

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(ticket)
	case OutputFormatYAML:
		return StandardYAMLRenderer(ticket)
	default:
		return renderTicketDetailsTable(ticket)
	}
}

func renderTicketDetailsTable(ticket *autotask.Ticket) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("ID", strconv.FormatInt(ticket.ID, 10))
	_ = table.Append("Number", ticket.TicketNumber)
	_ = table.Append("Title", ticket.Title)
	_ = table.Append("Status", strconv.Itoa(ticket.Status))
	_ = table.Append("Priority", strconv.Itoa(ticket.Priority))
	_ = table.Append("Company", strconv.FormatInt(ticket.CompanyID, 10))
	_ = table.Append("Created", formatDate(ticket.CreateDate))
	_ = table.Append("Due", formatDate(ticket.DueDateTime))

	_, _ = os.Stdout.WriteString("Ticket details:\n\n")

	_ = table.Render()

	return nil
}

func newTicketsNotesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "notes TICKET_ID",
		Short: "List ticket notes",
		Long:  "List the notes attached to a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTicketsNotesCommand(cmd, args[0])
		},
	}
}

func runTicketsNotesCommand(cmd *cobra.Command, idArg string) error {
	ticketID, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid ticket ID %q: %w", idArg, err)
	}

	client, err := CreateClient(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	notes, err := client.Tickets().Notes(context.Background(), ticketID, nil)
	if err != nil {
		return fmt.Errorf("failed to list ticket notes: %w", err)
	}

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(notes.Items)
	case OutputFormatYAML:
		return StandardYAMLRenderer(notes.Items)
	default:
		if len(notes.Items) == 0 {
			_, _ = os.Stdout.WriteString("No notes found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Title", "Description", "Created")

		for _, note := range notes.Items {
			_ = table.Append(
				strconv.FormatInt(note.ID, 10),
				note.Title,
				note.Description,
				formatDate(note.CreateDateTime))
		}

		_ = table.Render()

		return nil
	}
}
