package commands

import (
	"fmt"
	"strings"

	"ticketleap-admin/lib/scrapers/ticketleap/datefmt"
	"ticketleap-admin/lib/serviceutil"
	"ticketleap-admin/lib/textutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(slugCmd)
	rootCmd.AddCommand(iso8601Cmd)
}

var slugCmd = &cobra.Command{
	Use:   "slug <title>",
	Short: "Prints the slug the platform derives from an event title.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(textutil.FormatDefaultSlug(strings.Join(args, " ")))
	},
}

var iso8601Cmd = &cobra.Command{
	Use:   "iso8601 <text>",
	Short: "Converts a date range as the platform renders it into the start key of the range.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key, err := datefmt.ISO8601(strings.Join(args, " "))
		if err != nil {
			serviceutil.Fatal("failed to parse date", err)
		}
		fmt.Println(key)
	},
}
