package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"ticketleap-admin/lib/telemetry"

	"github.com/google/uuid"
)

const (
	Username = "box-office@example.com"
	Password = "correct horse battery staple"
)

// TicketFields lists the fields of a ticket in the order the admin forms
// render them.
var TicketFields = []string{
	"name",
	"inventory",
	"limit_inventory",
	"pricing_type",
	"price",
	"min_price",
	"visibility",
	"description",
	"sales_start_days_before",
	"sales_start_hours_before",
	"sales_end_days_before",
	"sales_end_hours_before",
	"min_per_order",
	"max_per_order",
	"grouping_key",
	"delivery_method",
}

type Ticket struct {
	Uuid   string
	Fields map[string]string
}

func (t Ticket) Name() string {
	return t.Fields["name"]
}

type Date struct {
	Uuid    string
	Start   time.Time
	End     time.Time
	Tickets []Ticket
}

// Text renders the date the way the event details page does, like
// "Sep 29, 2019 1:00p.m.-10:00p.m.".
func (d Date) Text() string {
	start := platformDay(d.Start) + " " + platformTime(d.Start)
	if d.End.IsZero() {
		return start
	}
	sameDay := d.Start.Year() == d.End.Year() && d.Start.YearDay() == d.End.YearDay()
	if sameDay {
		return start + "-" + platformTime(d.End)
	}
	return start + "-" + platformDay(d.End) + " " + platformTime(d.End)
}

func platformDay(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

func platformTime(t time.Time) string {
	meridiem := "a.m."
	if t.Hour() >= 12 {
		meridiem = "p.m."
	}
	return t.Format("3:04") + meridiem
}

type Event struct {
	Uuid                string
	Slug                string
	Title               string
	Fields              map[string]string
	PostPurchaseMessage string
	Dates               []Date
}

type Image struct {
	Id       string
	FileName string
	FullUrl  string
	HeroUrl  string
}

// Drift makes the fake render markup the scrapers do not expect.
type Drift struct {
	// drop the "Clone" links from the events listing
	EventsWithoutClone bool
	// drop the date dropdown from the event details page
	DetailsWithoutDates bool
	// rename the tickets formset form
	RenameTicketsForm bool
}

// FakePlatform is an in-memory emulation of the ticketleap admin site.
type FakePlatform struct {
	Server *httptest.Server

	mutex    sync.Mutex
	events   []*Event
	images   []Image
	sessions map[string]bool
	// tickets with sales, the platform refuses to delete them
	sold     map[string]bool
	drift    Drift
	requests []string
}

// NewFakePlatform starts a fake platform, it is closed when the test ends.
func NewFakePlatform(t testing.TB) *FakePlatform {
	t.Helper()

	cleanup := telemetry.SetupForTesting(t, "test:ticketleap")
	t.Cleanup(cleanup)

	p := &FakePlatform{sessions: map[string]bool{}, sold: map[string]bool{}}
	p.Server = httptest.NewServer(p.routes())
	t.Cleanup(p.Server.Close)
	return p
}

func (p *FakePlatform) Url() string {
	return p.Server.URL
}

func (p *FakePlatform) SetDrift(drift Drift) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.drift = drift
}

// ExpireSessions logs every client out.
func (p *FakePlatform) ExpireSessions() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.sessions = map[string]bool{}
}

// Requests returns "METHOD path" for every request served so far.
func (p *FakePlatform) Requests() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	out := make([]string, len(p.requests))
	copy(out, p.requests)
	return out
}

func (p *FakePlatform) CountRequests(method, prefix string) int {
	count := 0
	for _, r := range p.Requests() {
		if strings.HasPrefix(r, method+" "+prefix) {
			count++
		}
	}
	return count
}

func newUuid() string {
	return uuid.NewString()
}

// DefaultTicket returns the fields of a ticket the way the platform stores
// a freshly created one.
func DefaultTicket(name, price string) map[string]string {
	fields := map[string]string{}
	for _, f := range TicketFields {
		fields[f] = ""
	}
	fields["name"] = name
	fields["price"] = price
	fields["pricing_type"] = "fixed"
	fields["visibility"] = "all"
	fields["delivery_method"] = "ticket"
	return fields
}

// AddEvent seeds an event with one date per start time, every date lasting
// two hours.
func (p *FakePlatform) AddEvent(slug, title string, starts ...time.Time) Event {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	e := &Event{
		Uuid:   newUuid(),
		Slug:   slug,
		Title:  title,
		Fields: map[string]string{"title": title, "slug": slug},
	}
	for _, start := range starts {
		e.Dates = append(e.Dates, Date{
			Uuid:  newUuid(),
			Start: start,
			End:   start.Add(2 * time.Hour),
		})
	}
	p.events = append(p.events, e)
	return copyEvent(e)
}

// AddTicket seeds a ticket on the date of slug with the given uuid.
func (p *FakePlatform) AddTicket(slug, dateUuid, name, price string) Ticket {
	return p.SeedTicket(slug, dateUuid, DefaultTicket(name, price))
}

// SeedTicket seeds a ticket with the given fields, fields left out keep the
// values of a fresh ticket.
func (p *FakePlatform) SeedTicket(slug, dateUuid string, fields map[string]string) Ticket {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	date := p.date(slug, dateUuid)
	if date == nil {
		panic(fmt.Sprintf("no date %s on event %s", dateUuid, slug))
	}
	ticket := Ticket{Uuid: newUuid(), Fields: DefaultTicket(fields["name"], fields["price"])}
	for k, v := range fields {
		ticket.Fields[k] = v
	}
	date.Tickets = append(date.Tickets, ticket)
	return copyTicket(ticket)
}

// MarkSold records sales for a ticket, deleting it is refused from then on.
func (p *FakePlatform) MarkSold(ticketUuid string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.sold[ticketUuid] = true
}

func (p *FakePlatform) Event(slug string) (Event, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	e := p.event(slug)
	if e == nil {
		return Event{}, false
	}
	return copyEvent(e), true
}

// Tickets returns the tickets of a date in listing order.
func (p *FakePlatform) Tickets(slug, dateUuid string) []Ticket {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	date := p.date(slug, dateUuid)
	if date == nil {
		return nil
	}
	out := make([]Ticket, len(date.Tickets))
	for i, t := range date.Tickets {
		out[i] = copyTicket(t)
	}
	return out
}

func (p *FakePlatform) Images() []Image {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	out := make([]Image, len(p.images))
	copy(out, p.images)
	return out
}

func (p *FakePlatform) event(slug string) *Event {
	for _, e := range p.events {
		if e.Slug == slug {
			return e
		}
	}
	return nil
}

func (p *FakePlatform) eventByUuid(id string) *Event {
	for _, e := range p.events {
		if e.Uuid == id {
			return e
		}
	}
	return nil
}

func (p *FakePlatform) date(slug, dateUuid string) *Date {
	e := p.event(slug)
	if e == nil {
		return nil
	}
	for i := range e.Dates {
		if e.Dates[i].Uuid == dateUuid {
			return &e.Dates[i]
		}
	}
	return nil
}

func copyTicket(t Ticket) Ticket {
	fields := make(map[string]string, len(t.Fields))
	for k, v := range t.Fields {
		fields[k] = v
	}
	return Ticket{Uuid: t.Uuid, Fields: fields}
}

func copyEvent(e *Event) Event {
	out := *e
	out.Fields = make(map[string]string, len(e.Fields))
	for k, v := range e.Fields {
		out.Fields[k] = v
	}
	out.Dates = make([]Date, len(e.Dates))
	for i, d := range e.Dates {
		tickets := make([]Ticket, len(d.Tickets))
		for j, t := range d.Tickets {
			tickets[j] = copyTicket(t)
		}
		d.Tickets = tickets
		out.Dates[i] = d
	}
	return out
}

// TicketNames returns the sorted ticket names of a date.
func TicketNames(tickets []Ticket) []string {
	names := make([]string, len(tickets))
	for i, t := range tickets {
		names[i] = t.Name()
	}
	sort.Strings(names)
	return names
}

func (p *FakePlatform) record(r *http.Request) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.requests = append(p.requests, r.Method+" "+r.URL.Path)
}
