package commands

import (
	"fmt"

	"ticketleap-admin/lib/scrapers/ticketleap/view"
	"ticketleap-admin/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(datesCmd)
	rootCmd.AddCommand(ticketsCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Checks the configured credentials and prints the account's admin site.",
	Run: func(cmd *cobra.Command, args []string) {
		session := login(cmd.Context())
		fmt.Println(session.Origin.String())
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Lists the events of the account.",
	Run: func(cmd *cobra.Command, args []string) {
		client := view.NewClient(login(cmd.Context()))
		events, err := client.Events(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list events", err)
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Slug", "Title", "Uuid"})
		for _, e := range events {
			t.AppendRow(table.Row{e.Slug, e.Title, e.Uuid})
		}
		t.Render()
	},
}

var datesCmd = &cobra.Command{
	Use:   "dates <slug>",
	Short: "Lists the performance dates of an event.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := view.NewClient(login(cmd.Context()))
		dates, err := client.Dates(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to list dates", err)
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Key", "Date", "Uuid"})
		for _, d := range dates {
			t.AppendRow(table.Row{d.Key, d.Text, d.Uuid})
		}
		t.Render()
	},
}

var ticketsCmd = &cobra.Command{
	Use:   "tickets <slug> <date>",
	Short: "Lists the ticket types of a performance date.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := view.NewClient(login(cmd.Context()))
		tickets, err := client.Tickets(cmd.Context(), args[0], args[1])
		if err != nil {
			serviceutil.Fatal("failed to list tickets", err)
		}

		t := NewTable()
		t.AppendHeader(table.Row{"#", "Name", "Uuid"})
		for i, ticket := range tickets {
			t.AppendRow(table.Row{i + 1, ticket.Name, ticket.Uuid})
		}
		t.Render()
	},
}
