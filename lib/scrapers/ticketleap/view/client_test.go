package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"ticketleap-admin/lib/scrapers/ticketleap/core"
	"ticketleap-admin/lib/scrapers/ticketleap/datefmt"
	"ticketleap-admin/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var gala = time.Date(2019, time.September, 29, 13, 0, 0, 0, time.UTC)

func newClient(t *testing.T) (*Client, *testutil.FakePlatform) {
	t.Helper()
	p := testutil.NewFakePlatform(t)
	session, err := core.Login(context.Background(), core.ClientOptions{
		LoginUrl:  p.Url(),
		RateLimit: 100,
	}, testutil.Username, testutil.Password)
	require.NoError(t, err)
	return NewClient(session), p
}

func TestEvents(t *testing.T) {
	client, p := newClient(t)
	springGala := p.AddEvent("spring-gala", "Spring Gala", gala)
	recital := p.AddEvent("recital", "Recital")

	ctx := WithScope(context.Background())
	events, err := client.Events(ctx)
	require.NoError(t, err)

	expected := EventList{
		{Slug: "spring-gala", Uuid: springGala.Uuid, Title: "Spring Gala"},
		{Slug: "recital", Uuid: recital.Uuid, Title: "Recital"},
	}
	if diff := cmp.Diff(expected, events); diff != "" {
		t.Fatal(diff)
	}

	id, err := client.EventUuid(ctx, "recital")
	require.NoError(t, err)
	require.Equal(t, recital.Uuid, id)

	// served from the scope
	require.Equal(t, 1, p.CountRequests("GET", "/admin/events"))
}

func TestEventUuidNotFound(t *testing.T) {
	client, p := newClient(t)
	p.AddEvent("spring-gala", "Spring Gala", gala)

	_, err := client.EventUuid(context.Background(), "spring-gal")
	require.ErrorIs(t, err, core.ErrNotFound)

	var notFound *core.NotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, core.KindEvent, notFound.Kind)
	require.Equal(t, "spring-gala", notFound.Suggestion)
}

func TestEventsDrift(t *testing.T) {
	client, p := newClient(t)
	p.AddEvent("spring-gala", "Spring Gala", gala)
	p.SetDrift(testutil.Drift{EventsWithoutClone: true})

	_, err := client.Events(context.Background())
	require.ErrorIs(t, err, core.ErrMalformedPage)
}

func TestDates(t *testing.T) {
	client, p := newClient(t)
	event := p.AddEvent("spring-gala", "Spring Gala", gala, gala.AddDate(0, 0, 1))

	dates, err := client.Dates(context.Background(), "spring-gala")
	require.NoError(t, err)
	require.Len(t, dates, 2)
	require.Equal(t, Date{
		Key:   "2019-09-29T13:00",
		Text:  "Sep 29, 2019 1:00p.m.-3:00p.m.",
		Start: gala,
		End:   gala.Add(2 * time.Hour),
		Uuid:  event.Dates[0].Uuid,
	}, dates[0])
	require.Equal(t, event.Dates[1].Uuid, dates[1].Uuid)
}

func TestDateUuidForms(t *testing.T) {
	client, p := newClient(t)
	event := p.AddEvent("spring-gala", "Spring Gala", gala)
	expected := event.Dates[0].Uuid

	forms := []string{
		"Sep 29, 2019 1:00p.m.-3:00p.m.",
		"Sep 29, 2019 1:00p.m.",
		"2019-09-29T13:00",
		"2019-09-29T13:00:00",
		expected,
	}
	for _, date := range forms {
		id, err := client.DateUuid(context.Background(), "spring-gala", date)
		require.NoError(t, err, date)
		require.Equal(t, expected, id, date)
	}
}

func TestDateUuidErrors(t *testing.T) {
	client, p := newClient(t)
	p.AddEvent("spring-gala", "Spring Gala", gala)

	_, err := client.DateUuid(context.Background(), "spring-gala", "2019-09-30T13:00")
	var notFound *core.NotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, core.KindDate, notFound.Kind)
	require.Equal(t, "spring-gala", notFound.Scope)

	_, err = client.DateUuid(context.Background(), "spring-gala", "next tuesday")
	require.ErrorIs(t, err, datefmt.ErrFormat)

	_, err = client.DateUuid(context.Background(), "autumn-gala", "2019-09-29T13:00")
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, core.KindEvent, notFound.Kind)
}

func TestDatesDrift(t *testing.T) {
	client, p := newClient(t)
	p.AddEvent("spring-gala", "Spring Gala", gala)
	p.SetDrift(testutil.Drift{DetailsWithoutDates: true})

	_, err := client.Dates(context.Background(), "spring-gala")
	require.ErrorIs(t, err, core.ErrMalformedPage)

	var malformed *core.MalformedPageError
	require.True(t, errors.As(err, &malformed))
	require.Equal(t, "div.dropdown.hide", malformed.Landmark)
}

func TestTickets(t *testing.T) {
	client, p := newClient(t)
	event := p.AddEvent("spring-gala", "Spring Gala", gala)
	date := event.Dates[0].Uuid
	general := p.AddTicket("spring-gala", date, "General Admission", "20")
	first := p.AddTicket("spring-gala", date, "VIP", "80")
	p.AddTicket("spring-gala", date, "VIP", "90")

	tickets, err := client.Tickets(context.Background(), "spring-gala", "2019-09-29T13:00")
	require.NoError(t, err)
	require.Equal(t, []string{"General Admission", "VIP", "VIP"}, tickets.Names())
	require.Len(t, tickets.Candidates("VIP"), 2)

	id, err := client.TicketUuid(context.Background(), "spring-gala", date, "General Admission")
	require.NoError(t, err)
	require.Equal(t, general.Uuid, id)

	id, err = client.TicketUuid(context.Background(), "spring-gala", date, "VIP")
	require.NoError(t, err)
	require.Equal(t, first.Uuid, id)

	_, err = client.TicketUuid(context.Background(), "spring-gala", date, "General Admision")
	var notFound *core.NotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, core.KindTicket, notFound.Kind)
	require.Equal(t, "General Admission", notFound.Suggestion)
}

func TestInvalidateTickets(t *testing.T) {
	client, p := newClient(t)
	event := p.AddEvent("spring-gala", "Spring Gala", gala)
	date := event.Dates[0].Uuid
	ctx := WithScope(context.Background())

	tickets, err := client.Tickets(ctx, "spring-gala", date)
	require.NoError(t, err)
	require.Empty(t, tickets)

	p.AddTicket("spring-gala", date, "General Admission", "20")
	tickets, err = client.Tickets(ctx, "spring-gala", date)
	require.NoError(t, err)
	require.Empty(t, tickets)

	client.InvalidateTickets(ctx, "spring-gala", date)
	tickets, err = client.Tickets(ctx, "spring-gala", date)
	require.NoError(t, err)
	require.Equal(t, []string{"General Admission"}, tickets.Names())
}

func TestUnscopedCallsScrapeLive(t *testing.T) {
	client, p := newClient(t)
	event := p.AddEvent("spring-gala", "Spring Gala", gala)
	date := event.Dates[0].Uuid

	tickets, err := client.Tickets(context.Background(), "spring-gala", date)
	require.NoError(t, err)
	require.Empty(t, tickets)

	balcony := p.AddTicket("spring-gala", date, "Balcony", "30")
	id, err := client.TicketUuid(context.Background(), "spring-gala", date, "Balcony")
	require.NoError(t, err)
	require.Equal(t, balcony.Uuid, id)

	p.AddEvent("recital", "Recital")
	events, err := client.Events(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"spring-gala", "recital"}, events.Slugs())
}

func TestHrefParsing(t *testing.T) {
	require.Equal(t, "spring-gala", slugFromHref("/admin/events/spring-gala/details?d=Sep-29-2019_at_0100PM"))
	require.Equal(t, "", slugFromHref("/admin/events/spring-gala/edit"))
	require.Equal(t,
		"3f1c1f2e-0c1b-4c55-9a59-4a0bdc1c1e0f",
		uuidFromCloneHref("#dialog=/admin/events/clone/3f1c1f2e-0c1b-4c55-9a59-4a0bdc1c1e0f"),
	)
	require.Equal(t, "", uuidFromCloneHref("/admin/events/clone/x"))
}
