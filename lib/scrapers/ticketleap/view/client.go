// Package view resolves human-facing names (event slugs, date text, ticket
// names) into the uuids the admin site addresses them by.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"ticketleap-admin/lib/htmlutil"
	"ticketleap-admin/lib/scrapers/ticketleap/core"
	"ticketleap-admin/lib/scrapers/ticketleap/datefmt"
	"ticketleap-admin/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/ticketleap/view")

const (
	eventsPath       = "/admin/events"
	manageSelector   = "a[title=Manage]"
	cloneSelector    = "a[title=Clone]"
	dropdownSelector = "div.dropdown.hide"
	ticketSelector   = "tr.ticket-type"
	ticketIdPrefix   = "ticket-type-"
	cloneFragment    = "dialog=/admin/events/clone/"
)

type Client struct {
	Core *core.Session
}

func NewClient(session *core.Session) *Client {
	return &Client{Core: session}
}

func DetailsPath(slug string) string {
	return fmt.Sprintf("/admin/events/%s/details", slug)
}

func DatePath(slug, dateUuid string) string {
	return fmt.Sprintf("/admin/events/%s/performance/%s", slug, dateUuid)
}

// InvalidateEvent forgets everything resolved about an event and the events
// listing itself.
func (c *Client) InvalidateEvent(ctx context.Context, slug string) {
	scope(ctx).invalidateEvent(slug)
}

func (c *Client) InvalidateTickets(ctx context.Context, slug, dateUuid string) {
	scope(ctx).invalidateTickets(slug, dateUuid)
}

func isStatus(err error, status int) bool {
	var transportErr *core.TransportError
	return errors.As(err, &transportErr) && transportErr.Status == status
}

func slugFromHref(href string) string {
	link, err := url.Parse(href)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(link.Path, "/"), "/")
	if len(segments) < 4 || segments[len(segments)-1] != "details" {
		return ""
	}
	return segments[len(segments)-2]
}

func uuidFromCloneHref(href string) string {
	_, fragment, ok := strings.Cut(href, "#")
	if !ok || !strings.HasPrefix(fragment, cloneFragment) {
		return ""
	}
	return path.Base(fragment)
}

// Events lists the events of the account in the order of the events page.
func (c *Client) Events(ctx context.Context) (EventList, error) {
	ctx, span := tracer.Start(ctx, "client:Events")
	defer span.End()

	if events, ok := scope(ctx).getEvents(); ok {
		span.SetStatus(codes.Ok, "CACHE HIT")
		return events, nil
	}

	doc, err := c.Core.Page(ctx, core.PageRequest{Path: eventsPath})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch events")
		return nil, err
	}

	page := doc.Url.String()
	manage := htmlutil.GetAnchors(ctx, doc.Find(manageSelector))
	clone := htmlutil.GetAnchors(ctx, doc.Find(cloneSelector))
	if len(manage) != len(clone) {
		err := &core.MalformedPageError{
			Page:     page,
			Landmark: cloneSelector,
			Err: fmt.Errorf(
				"%d events but %d clone links",
				len(manage), len(clone),
			),
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	events := make(EventList, len(manage))
	for i := range manage {
		slug := slugFromHref(manage[i].Href)
		if slug == "" {
			return nil, &core.MalformedPageError{Page: page, Landmark: manageSelector + " href"}
		}
		id := uuidFromCloneHref(clone[i].Href)
		if !isUuid(id) {
			return nil, &core.MalformedPageError{Page: page, Landmark: cloneSelector + " href"}
		}
		events[i] = Event{Slug: slug, Uuid: id, Title: manage[i].Name}
	}
	span.SetAttributes(attribute.Int("count", len(events)))

	scope(ctx).setEvents(events)
	return events, nil
}

// suggestEvent returns the known slug closest to slug, it is only used to
// decorate errors so failures are ignored.
func (c *Client) suggestEvent(ctx context.Context, slug string) string {
	events, err := c.Events(ctx)
	if err != nil {
		return ""
	}
	suggestion, _ := textutil.Closest(slug, events.Slugs())
	return suggestion
}

func (c *Client) EventUuid(ctx context.Context, slug string) (string, error) {
	ctx, span := tracer.Start(ensureScope(ctx), "client:EventUuid")
	defer span.End()

	events, err := c.Events(ctx)
	if err != nil {
		return "", err
	}
	event, ok := events.Find(slug)
	if !ok {
		suggestion, _ := textutil.Closest(slug, events.Slugs())
		err := &core.NotFoundError{Kind: core.KindEvent, Key: slug, Suggestion: suggestion}
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return event.Uuid, nil
}

// Dates lists the performance dates of an event.
func (c *Client) Dates(ctx context.Context, slug string) (DateList, error) {
	ctx, span := tracer.Start(ctx, "client:Dates")
	defer span.End()
	span.SetAttributes(attribute.String("slug", slug))

	if dates, ok := scope(ctx).getDates(slug); ok {
		span.SetStatus(codes.Ok, "CACHE HIT")
		return dates, nil
	}

	doc, err := c.Core.Page(ctx, core.PageRequest{Path: DetailsPath(slug)})
	if isStatus(err, http.StatusNotFound) {
		err = &core.NotFoundError{
			Kind:       core.KindEvent,
			Key:        slug,
			Suggestion: c.suggestEvent(ctx, slug),
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch event details")
		return nil, err
	}

	page := doc.Url.String()
	dropdown := doc.Find(dropdownSelector)
	if dropdown.Length() == 0 {
		err := &core.MalformedPageError{Page: page, Landmark: dropdownSelector}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var dates DateList
	var parseErr error
	dropdown.Find("li").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		text := htmlutil.Text(item)
		id := item.AttrOr("id", "")
		start, end, err := datefmt.ParseRange(text)
		if err != nil {
			parseErr = &core.MalformedPageError{Page: page, Landmark: "date " + id, Err: err}
			return false
		}
		if !isUuid(id) {
			parseErr = &core.MalformedPageError{Page: page, Landmark: "date uuid of " + text}
			return false
		}
		dates = append(dates, Date{
			Key:   datefmt.Key(start),
			Text:  text,
			Start: start,
			End:   end,
			Uuid:  id,
		})
		return true
	})
	if parseErr != nil {
		span.RecordError(parseErr)
		span.SetStatus(codes.Error, "failed to read dates")
		return nil, parseErr
	}
	span.SetAttributes(attribute.Int("count", len(dates)))

	scope(ctx).setDates(slug, dates)
	return dates, nil
}

// DateUuid resolves a date given as a uuid, an ISO 8601 timestamp or the
// platform's own date text. Uuids are returned unchanged.
func (c *Client) DateUuid(ctx context.Context, slug, date string) (string, error) {
	ctx, span := tracer.Start(ensureScope(ctx), "client:DateUuid")
	defer span.End()
	span.SetAttributes(attribute.String("slug", slug), attribute.String("date", date))

	if isUuid(date) {
		return date, nil
	}
	key, err := datefmt.Normalize(date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to normalize date")
		return "", err
	}

	dates, err := c.Dates(ctx, slug)
	if err != nil {
		return "", err
	}
	found, ok := dates.Find(key)
	if !ok {
		suggestion, _ := textutil.Closest(key, dates.Keys())
		err := &core.NotFoundError{
			Kind:       core.KindDate,
			Key:        date,
			Scope:      slug,
			Suggestion: suggestion,
		}
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return found.Uuid, nil
}

// Tickets lists the ticket types of a date in page order.
func (c *Client) Tickets(ctx context.Context, slug, date string) (TicketList, error) {
	ctx, span := tracer.Start(ensureScope(ctx), "client:Tickets")
	defer span.End()

	dateUuid, err := c.DateUuid(ctx, slug, date)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("date_uuid", dateUuid))

	if tickets, ok := scope(ctx).getTickets(slug, dateUuid); ok {
		span.SetStatus(codes.Ok, "CACHE HIT")
		return tickets, nil
	}

	doc, err := c.Core.Page(ctx, core.PageRequest{
		Path:  DatePath(slug, dateUuid) + "/tickets/",
		Query: map[string]string{"ajax": "true"},
		Ajax:  true,
	})
	if isStatus(err, http.StatusNotFound) {
		err = &core.NotFoundError{Kind: core.KindDate, Key: date, Scope: slug}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch tickets")
		return nil, err
	}

	page := doc.Url.String()
	tickets := TicketList{}
	var parseErr error
	doc.Find(ticketSelector).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		id, ok := strings.CutPrefix(row.AttrOr("id", ""), ticketIdPrefix)
		if !ok || id == "" {
			parseErr = &core.MalformedPageError{Page: page, Landmark: ticketSelector + " id"}
			return false
		}
		tickets = append(tickets, Ticket{
			Name: htmlutil.Text(row.Find("td").First()),
			Uuid: id,
		})
		return true
	})
	if parseErr != nil {
		span.SetStatus(codes.Error, parseErr.Error())
		return nil, parseErr
	}
	span.SetAttributes(attribute.Int("count", len(tickets)))

	scope(ctx).setTickets(slug, dateUuid, tickets)
	return tickets, nil
}

// TicketUuid resolves a ticket by exact name. When several tickets share the
// name the first one listed wins.
func (c *Client) TicketUuid(ctx context.Context, slug, date, name string) (string, error) {
	ctx, span := tracer.Start(ensureScope(ctx), "client:TicketUuid")
	defer span.End()
	span.SetAttributes(attribute.String("name", name))

	tickets, err := c.Tickets(ctx, slug, date)
	if err != nil {
		return "", err
	}
	candidates := tickets.Candidates(name)
	if len(candidates) == 0 {
		suggestion, _ := textutil.Closest(name, tickets.Names())
		err := &core.NotFoundError{
			Kind:       core.KindTicket,
			Key:        name,
			Scope:      fmt.Sprintf("%s on %s", slug, date),
			Suggestion: suggestion,
		}
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if len(candidates) > 1 {
		slog.WarnContext(
			ctx, "ticket name is ambiguous, using the first listed",
			"slug", slug,
			"date", date,
			"name", name,
			"candidates", len(candidates),
		)
	}
	return candidates[0].Uuid, nil
}
