package commands

import (
	"fmt"

	"ticketleap-admin/lib/scrapers/ticketleap/edit"
	"ticketleap-admin/lib/scrapers/ticketleap/view"
	"ticketleap-admin/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	cloneTitle       *string
	cloneSlug        *string
	cloneDates       *[]string
	cloneCopyTickets *bool
)

func init() {
	cloneTitle = cloneEventCmd.Flags().String("title", "", "Title of the new event.")
	cloneSlug = cloneEventCmd.Flags().String("slug", "", "Slug of the new event, derived from the title by default.")
	cloneDates = cloneEventCmd.Flags().StringArray(
		"date", nil,
		`Date of the new event as "<start>/<end>", can be repeated.`,
	)
	cloneCopyTickets = cloneEventCmd.Flags().Bool("copy-tickets", true, "Copy the ticket types of the source event.")
	cloneEventCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(cloneEventCmd)

	rootCmd.AddCommand(uploadImageCmd)
	rootCmd.AddCommand(createEventCmd)
	rootCmd.AddCommand(postPurchaseMessageCmd)
}

var cloneEventCmd = &cobra.Command{
	Use:   "clone-event <source slug> --title <title> [--slug <slug>] [--date <start>/<end> ...]",
	Short: "Clones an event with new dates.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dates, err := parseRanges(*cloneDates)
		if err != nil {
			serviceutil.Fatal("failed to parse dates", err)
		}

		client := editClient(cmd.Context())
		err = client.CloneEvent(cmd.Context(), edit.CloneOptions{
			Source:      args[0],
			Title:       *cloneTitle,
			Slug:        *cloneSlug,
			Dates:       dates,
			CopyTickets: *cloneCopyTickets,
		})
		if err != nil {
			serviceutil.Fatal("failed to clone event", err)
		}
	},
}

var uploadImageCmd = &cobra.Command{
	Use:   "upload-image <path>",
	Short: "Uploads an event image and prints its urls.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := editClient(cmd.Context())
		image, err := client.UploadImage(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to upload image", err)
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Id", "Full", "Hero"})
		t.AppendRow(table.Row{image.ID, image.FullURL, image.HeroURL})
		t.Render()
	},
}

var createEventCmd = &cobra.Command{
	Use:   "create-event <event.json5>",
	Short: "Creates an event, with its image, dates and tickets, from a json5 file.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := readJson5[eventSpec](args[0])
		if err != nil {
			serviceutil.Fatal("failed to read event", err)
		}
		opts, err := spec.options()
		if err != nil {
			serviceutil.Fatal("invalid event", err)
		}

		client := editClient(cmd.Context())
		err = client.CreateEvent(cmd.Context(), opts)
		if err != nil {
			serviceutil.Fatal("failed to create event", err)
		}
		fmt.Println(client.Core.Url(view.DetailsPath(opts.Event.Slug)))
	},
}

var postPurchaseMessageCmd = &cobra.Command{
	Use:   "post-purchase-message <slug> <message>",
	Short: "Replaces the message buyers receive after purchasing a ticket.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := editClient(cmd.Context())
		err := client.ModifyPostPurchaseMessage(cmd.Context(), args[0], args[1])
		if err != nil {
			serviceutil.Fatal("failed to modify post purchase message", err)
		}
	},
}
