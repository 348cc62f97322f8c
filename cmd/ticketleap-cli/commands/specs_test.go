package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ticketleap-admin/lib/scrapers/ticketleap/payload"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	cases := []struct {
		text  string
		start string
		end   string
	}{
		{"2019-09-29T13:00/2019-09-29T15:00", "2019-09-29T13:00", "2019-09-29T15:00"},
		{"2019-09-29 13:00/2019-09-30T01:00:00", "2019-09-29T13:00", "2019-09-30T01:00"},
		{"Sep 29, 2019 1:00p.m.-3:00p.m.", "2019-09-29T13:00", "2019-09-29T15:00"},
	}
	for _, c := range cases {
		r, err := parseRange(c.text)
		require.NoError(t, err, c.text)
		require.Equal(t, c.start, r.Start.Format("2006-01-02T15:04"), c.text)
		require.Equal(t, c.end, r.End.Format("2006-01-02T15:04"), c.text)
	}

	_, err := parseRange("2019-09-29T15:00/2019-09-29T13:00")
	require.Error(t, err)
	_, err = parseRange("tomorrow")
	require.Error(t, err)
}

func TestTicketSpec(t *testing.T) {
	price := 25.0
	spec := ticketSpec{
		Name:        "Adult",
		Price:       &price,
		PricingType: "fixed",
	}
	ticket := spec.ticket()

	name, ok := ticket.Name.Get()
	require.True(t, ok)
	require.Equal(t, "Adult", name)
	got, ok := ticket.Price.Get()
	require.True(t, ok)
	require.Equal(t, 25.0, got)
	pricing, _ := ticket.PricingType.Get()
	require.Equal(t, payload.PricingType("fixed"), pricing)

	require.True(t, ticket.Inventory.IsUnset())
	require.True(t, ticket.Description.IsUnset())
	require.True(t, ticket.Visibility.IsUnset())
	require.True(t, ticket.DeliveryMethod.IsUnset())
}

func TestEventSpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event.json5")
	err := os.WriteFile(path, []byte(`{
		// trailing commas and comments are fine
		title: "Spring Gala 2024",
		image: "hero.png",
		venue: {name: "Main Hall", city: "Berkeley"},
		dates: ["2024-04-20T19:00/2024-04-20T22:00"],
		tickets: [{name: "General", price: 10}],
	}`), 0600)
	require.NoError(t, err)

	spec, err := readJson5[eventSpec](path)
	require.NoError(t, err)
	opts, err := spec.options()
	require.NoError(t, err)

	require.Equal(t, "hero.png", opts.ImagePath)
	require.Equal(t, "spring-gala-2024", opts.Event.Slug)
	require.Equal(t, "Main Hall", opts.Event.VenueName)
	require.True(t, opts.Event.Latitude.IsUnset())

	expected := []payload.DateRange{{
		Start: time.Date(2024, 4, 20, 19, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 4, 20, 22, 0, 0, 0, time.UTC),
	}}
	if diff := cmp.Diff(expected, opts.Event.Dates); diff != "" {
		t.Fatal(diff)
	}
	require.Len(t, opts.Event.Tickets, 1)

	_, err = eventSpec{}.options()
	require.Error(t, err)
}
