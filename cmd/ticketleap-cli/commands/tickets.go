package commands

import (
	"fmt"

	"ticketleap-admin/lib/scrapers/ticketleap/edit"
	"ticketleap-admin/lib/scrapers/ticketleap/payload"
	"ticketleap-admin/lib/serviceutil"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ticketFlags binds the attributes of a ticket to flags, only flags given on
// the command line end up set.
type ticketFlags struct {
	flags *pflag.FlagSet

	name           *string
	price          *float64
	pricingType    *string
	inventory      *int
	minPrice       *float64
	visibility     *string
	description    *string
	minPerOrder    *int
	maxPerOrder    *int
	deliveryMethod *string
}

func bindTicketFlags(cmd *cobra.Command, nameFlag string) *ticketFlags {
	f := cmd.Flags()
	return &ticketFlags{
		flags:          f,
		name:           f.String(nameFlag, "", "Ticket name."),
		price:          f.Float64("price", 0, "Ticket price."),
		pricingType:    f.String("pricing-type", "", "Pricing type, fixed or variable."),
		inventory:      f.Int("inventory", 0, "Number of tickets available, limits inventory."),
		minPrice:       f.Float64("min-price", 0, "Minimum price of variably priced tickets."),
		visibility:     f.String("visibility", "", "Who can see the ticket."),
		description:    f.String("description", "", "Ticket description."),
		minPerOrder:    f.Int("min-per-order", 0, "Minimum tickets per order."),
		maxPerOrder:    f.Int("max-per-order", 0, "Maximum tickets per order."),
		deliveryMethod: f.String("delivery-method", "", "How tickets are delivered."),
	}
}

func flagOpt[T any](flags *pflag.FlagSet, name string, value *T) payload.Opt[T] {
	if !flags.Changed(name) {
		return payload.Unset[T]()
	}
	return payload.Value(*value)
}

func (f *ticketFlags) ticket(nameFlag string) payload.Ticket {
	t := payload.Ticket{
		Name:        flagOpt(f.flags, nameFlag, f.name),
		Price:       flagOpt(f.flags, "price", f.price),
		Inventory:   flagOpt(f.flags, "inventory", f.inventory),
		MinPrice:    flagOpt(f.flags, "min-price", f.minPrice),
		Description: flagOpt(f.flags, "description", f.description),
		MinPerOrder: flagOpt(f.flags, "min-per-order", f.minPerOrder),
		MaxPerOrder: flagOpt(f.flags, "max-per-order", f.maxPerOrder),
	}
	if f.flags.Changed("pricing-type") {
		t.PricingType = payload.Value(payload.PricingType(*f.pricingType))
	}
	if f.flags.Changed("visibility") {
		t.Visibility = payload.Value(payload.Visibility(*f.visibility))
	}
	if f.flags.Changed("delivery-method") {
		t.DeliveryMethod = payload.Value(payload.DeliveryMethod(*f.deliveryMethod))
	}
	return t
}

var (
	addDates   *[]string
	addFile    *string
	addTicket  *ticketFlags
	modifyFlag *ticketFlags
	deleteName *string
	deleteUuid *string
)

func init() {
	addDates = addTicketsCmd.Flags().StringArray("date", nil, "Date to add the tickets to, can be repeated.")
	addFile = addTicketsCmd.Flags().String("file", "", "json5 file with a list of tickets to add.")
	addTicket = bindTicketFlags(addTicketsCmd, "name")
	addTicketsCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(addTicketsCmd)

	modifyFlag = bindTicketFlags(modifyTicketCmd, "rename")
	rootCmd.AddCommand(modifyTicketCmd)

	deleteName = deleteTicketCmd.Flags().String("name", "", "Name of the ticket, the first one listed wins.")
	deleteUuid = deleteTicketCmd.Flags().String("uuid", "", "Uuid of the ticket.")
	rootCmd.AddCommand(deleteTicketCmd)

	rootCmd.AddCommand(clearDateCmd)
	rootCmd.AddCommand(clearEventCmd)
}

var addTicketsCmd = &cobra.Command{
	Use:   "add-tickets <slug> --date <date> [--file tickets.json5 | --name <name> --price <price> ...]",
	Short: "Adds ticket types to one or more dates of an event.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var list []payload.Ticket
		if *addFile != "" {
			specs, err := readJson5[[]ticketSpec](*addFile)
			if err != nil {
				serviceutil.Fatal("failed to read tickets", err)
			}
			list = tickets(specs)
		} else {
			list = []payload.Ticket{addTicket.ticket("name")}
		}

		client := editClient(cmd.Context())
		err := client.AddTickets(cmd.Context(), args[0], *addDates, list)
		if err != nil {
			serviceutil.Fatal("failed to add tickets", err)
		}
		fmt.Printf("added %d ticket(s) to %d date(s)\n", len(list), len(*addDates))
	},
}

var modifyTicketCmd = &cobra.Command{
	Use:   "modify-ticket <slug> <date> <name> [--rename <name>] [--price <price>] ...",
	Short: "Changes the attributes of a ticket type, attributes not given are kept.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		client := editClient(cmd.Context())
		err := client.ModifyTicket(cmd.Context(), args[0], args[1], args[2], modifyFlag.ticket("rename"))
		if err != nil {
			serviceutil.Fatal("failed to modify ticket", err)
		}
	},
}

var deleteTicketCmd = &cobra.Command{
	Use:   "delete-ticket <slug> <date> (--name <name> | --uuid <uuid>)",
	Short: "Deletes a ticket type from a date.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := editClient(cmd.Context())
		err := client.DeleteTicket(cmd.Context(), args[0], args[1], edit.TicketRef{
			Name: *deleteName,
			Uuid: *deleteUuid,
		})
		if err != nil {
			serviceutil.Fatal("failed to delete ticket", err)
		}
	},
}

var clearDateCmd = &cobra.Command{
	Use:   "clear-date <slug> <date>",
	Short: "Deletes every ticket type of a date.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := editClient(cmd.Context())
		err := client.ClearDate(cmd.Context(), args[0], args[1])
		if err != nil {
			serviceutil.Fatal("failed to clear date", err)
		}
	},
}

var clearEventCmd = &cobra.Command{
	Use:   "clear-event <slug>",
	Short: "Deletes every ticket type of every date of an event.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := editClient(cmd.Context())
		err := client.ClearEvent(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to clear event", err)
		}
	},
}
