package view

import (
	"time"

	"ticketleap-admin/lib/scrapers/ticketleap/datefmt"

	"github.com/google/uuid"
)

type Event struct {
	Slug  string
	Uuid  string
	Title string
}

// EventList is in the order of the events listing.
type EventList []Event

func (l EventList) Find(slug string) (Event, bool) {
	for _, e := range l {
		if e.Slug == slug {
			return e, true
		}
	}
	return Event{}, false
}

func (l EventList) Slugs() []string {
	slugs := make([]string, len(l))
	for i, e := range l {
		slugs[i] = e.Slug
	}
	return slugs
}

// Date is a performance date of an event.
type Date struct {
	// ISO 8601 key of the start, see datefmt.Key
	Key string
	// as rendered by the event details page
	Text  string
	Start time.Time
	End   time.Time
	Uuid  string
}

type DateList []Date

func isUuid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Find looks a date up by uuid, ISO key or platform text. Platform text and
// its ISO key always resolve to the same date.
func (l DateList) Find(date string) (Date, bool) {
	if isUuid(date) {
		for _, d := range l {
			if d.Uuid == date {
				return d, true
			}
		}
		return Date{}, false
	}

	key, err := datefmt.Normalize(date)
	if err != nil {
		return Date{}, false
	}
	for _, d := range l {
		if d.Key == key {
			return d, true
		}
	}
	return Date{}, false
}

func (l DateList) Keys() []string {
	keys := make([]string, len(l))
	for i, d := range l {
		keys[i] = d.Key
	}
	return keys
}

type Ticket struct {
	Name string
	Uuid string
}

// TicketList is in page order.
type TicketList []Ticket

// Candidates returns every ticket called name, in page order.
func (l TicketList) Candidates(name string) []Ticket {
	var out []Ticket
	for _, t := range l {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

func (l TicketList) FindUuid(id string) (Ticket, bool) {
	for _, t := range l {
		if t.Uuid == id {
			return t, true
		}
	}
	return Ticket{}, false
}

func (l TicketList) Names() []string {
	names := make([]string, len(l))
	for i, t := range l {
		names[i] = t.Name
	}
	return names
}
