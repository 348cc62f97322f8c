package edit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"ticketleap-admin/lib/scrapers/ticketleap/core"
	"ticketleap-admin/lib/scrapers/ticketleap/form"
	"ticketleap-admin/lib/scrapers/ticketleap/payload"
	"ticketleap-admin/lib/scrapers/ticketleap/view"
)

const (
	ticketsForm   = "tickets"
	ticketsPrefix = "tickets"
	ticketForm    = "ticket"
)

func ticketsEditPath(slug, dateUuid string) string {
	return view.DatePath(slug, dateUuid) + "/tickets/edit/"
}

func ticketPath(slug, dateUuid, ticketUuid, action string) string {
	return fmt.Sprintf("%s/ticket/%s/%s/", view.DatePath(slug, dateUuid), ticketUuid, action)
}

type resolvedDate struct {
	// as given by the caller
	key  string
	uuid string
}

// resolveDates resolves every date, duplicates collapse into their first
// occurrence.
func (c *Client) resolveDates(ctx context.Context, op *operation, slug string, dates []string) ([]resolvedDate, error) {
	op.at(StageResolving)
	seen := map[string]bool{}
	var out []resolvedDate
	for _, date := range dates {
		op.on(date)
		id, err := c.View.DateUuid(ctx, slug, date)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, resolvedDate{key: date, uuid: id})
	}
	return out, nil
}

// AddTickets appends the tickets to every given date of an event. The
// tickets already on a date are resubmitted unchanged.
func (c *Client) AddTickets(ctx context.Context, slug string, dates []string, tickets []payload.Ticket) error {
	return c.run(ctx, "add_tickets", slug, func(ctx context.Context, op *operation) error {
		op.at(StageBuilding)
		for i, t := range tickets {
			_, err := payload.TicketRow(i, t)
			if err != nil {
				return err
			}
		}

		resolved, err := c.resolveDates(ctx, op, slug, dates)
		if err != nil {
			return err
		}

		for _, date := range resolved {
			op.on(date.key)
			err := c.addTicketsToDate(ctx, op, slug, date.uuid, tickets)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Client) addTicketsToDate(ctx context.Context, op *operation, slug, dateUuid string, tickets []payload.Ticket) error {
	path := ticketsEditPath(slug, dateUuid)
	fields, page, err := c.fetchForm(ctx, op, path, ticketsForm)
	if err != nil {
		return err
	}
	formset, err := form.ReadFormset(page, fields, ticketsPrefix)
	if err != nil {
		return err
	}

	op.at(StageBuilding)
	total := formset.Total + len(tickets)
	if total > formset.Max {
		return fmt.Errorf("%w: %d rows exceed the maximum of %d", ErrTooManyRows, total, formset.Max)
	}
	for i, t := range tickets {
		row, err := payload.TicketRow(formset.Total+i, t)
		if err != nil {
			return err
		}
		fields.Merge(row)
	}
	fields.Set(ticketsPrefix+"-TOTAL_FORMS", strconv.Itoa(total))

	op.at(StageSubmitting)
	_, err = c.Core.Submit(ctx, core.Submission{
		Action:  "add tickets",
		Key:     op.key,
		Path:    path,
		Fields:  fields,
		Referer: path,
	})
	c.View.InvalidateTickets(ctx, slug, dateUuid)
	return err
}

// TicketChanges lists the attributes to change, unset attributes keep their
// current value. Setting Name renames the ticket.
type TicketChanges = payload.Ticket

// ModifyTicket changes the attributes of the ticket called name.
func (c *Client) ModifyTicket(ctx context.Context, slug, date, name string, changes TicketChanges) error {
	return c.run(ctx, "modify_ticket", name, func(ctx context.Context, op *operation) error {
		if !changes.Name.IsUnset() {
			rename, _ := changes.Name.Get()
			if rename == "" {
				op.at(StageBuilding)
				return payload.ErrTicketNameRequired
			}
		}

		dateUuid, err := c.View.DateUuid(ctx, slug, date)
		if err != nil {
			return err
		}
		ticketUuid, err := c.View.TicketUuid(ctx, slug, date, name)
		if err != nil {
			return err
		}

		path := ticketPath(slug, dateUuid, ticketUuid, "edit")
		fields, _, err := c.fetchForm(ctx, op, path, ticketForm)
		if err != nil {
			return err
		}

		op.at(StageBuilding)
		payload.ApplyTicket(&fields, "", changes)

		op.at(StageSubmitting)
		_, err = c.Core.Submit(ctx, core.Submission{
			Action:  "modify ticket",
			Key:     name,
			Path:    path,
			Fields:  fields,
			Referer: path,
		})
		c.View.InvalidateTickets(ctx, slug, dateUuid)
		return err
	})
}

// TicketRef names a ticket either by name or by uuid, the uuid wins when
// both are given.
type TicketRef struct {
	Name string
	Uuid string
}

func (r TicketRef) key() string {
	if r.Uuid != "" {
		return r.Uuid
	}
	return r.Name
}

// DeleteTicket deletes one ticket of a date.
func (c *Client) DeleteTicket(ctx context.Context, slug, date string, ref TicketRef) error {
	return c.run(ctx, "delete_ticket", ref.key(), func(ctx context.Context, op *operation) error {
		if ref.Name == "" && ref.Uuid == "" {
			return ErrNoTicketRef
		}

		dateUuid, err := c.View.DateUuid(ctx, slug, date)
		if err != nil {
			return err
		}
		ticket, err := c.resolveTicket(ctx, slug, date, ref)
		if err != nil {
			return err
		}
		return c.deleteTicket(ctx, op, slug, dateUuid, ticket)
	})
}

// resolveTicket reports lookups against date as the caller wrote it.
func (c *Client) resolveTicket(ctx context.Context, slug, date string, ref TicketRef) (view.Ticket, error) {
	if ref.Uuid == "" {
		id, err := c.View.TicketUuid(ctx, slug, date, ref.Name)
		if err != nil {
			return view.Ticket{}, err
		}
		return view.Ticket{Name: ref.Name, Uuid: id}, nil
	}

	tickets, err := c.View.Tickets(ctx, slug, date)
	if err != nil {
		return view.Ticket{}, err
	}
	ticket, ok := tickets.FindUuid(ref.Uuid)
	if !ok {
		return view.Ticket{}, &core.NotFoundError{
			Kind:  core.KindTicket,
			Key:   ref.Uuid,
			Scope: fmt.Sprintf("%s on %s", slug, date),
		}
	}
	return ticket, nil
}

func (c *Client) deleteTicket(ctx context.Context, op *operation, slug, dateUuid string, ticket view.Ticket) error {
	op.at(StageSubmitting)
	_, err := c.Core.Submit(ctx, core.Submission{
		Action:  "delete ticket",
		Key:     ticket.Name,
		Method:  http.MethodGet,
		Path:    ticketPath(slug, dateUuid, ticket.Uuid, "delete"),
		Query:   map[string]string{"submit": "delete"},
		Ajax:    true,
		Referer: view.DetailsPath(slug),
	})
	c.View.InvalidateTickets(ctx, slug, dateUuid)
	return err
}

// ClearDate deletes every ticket of a date. The first failure stops it,
// tickets deleted until then stay deleted.
func (c *Client) ClearDate(ctx context.Context, slug, date string) error {
	return c.run(ctx, "clear_date", date, func(ctx context.Context, op *operation) error {
		dateUuid, err := c.View.DateUuid(ctx, slug, date)
		if err != nil {
			return err
		}
		return c.clearDate(ctx, op, slug, date, dateUuid)
	})
}

// clearDate reports a failing ticket as "<date key>/<ticket name>".
func (c *Client) clearDate(ctx context.Context, op *operation, slug, dateKey, dateUuid string) error {
	op.at(StageResolving)
	c.View.InvalidateTickets(ctx, slug, dateUuid)
	tickets, err := c.View.Tickets(ctx, slug, dateUuid)
	if err != nil {
		return err
	}
	for _, t := range tickets {
		op.on(dateKey + "/" + t.Name)
		err := c.deleteTicket(ctx, op, slug, dateUuid, t)
		if err != nil {
			return err
		}
	}
	return nil
}

// ClearEvent deletes every ticket of every date of an event.
func (c *Client) ClearEvent(ctx context.Context, slug string) error {
	return c.run(ctx, "clear_event", slug, func(ctx context.Context, op *operation) error {
		dates, err := c.View.Dates(ctx, slug)
		if err != nil {
			return err
		}
		for _, d := range dates {
			op.on(d.Key)
			err := c.clearDate(ctx, op, slug, d.Key, d.Uuid)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
