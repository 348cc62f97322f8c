package edit

import (
	"context"
	"errors"
	"fmt"

	"ticketleap-admin/lib/scrapers/ticketleap/core"
	"ticketleap-admin/lib/scrapers/ticketleap/payload"
	"ticketleap-admin/lib/scrapers/ticketleap/view"
	"ticketleap-admin/lib/textutil"
)

const (
	cloneForm  = "clone"
	createPath = "/admin/events/create"
)

var ErrTitleRequired = errors.New("event title is required")

type CloneOptions struct {
	// slug of the event being cloned
	Source string
	Title  string
	// defaults to the slug the platform would derive from Title
	Slug string
	// replace the dates of the source event
	Dates []payload.DateRange
	// copy the ticket types of the source event onto every new date
	CopyTickets bool
}

// CloneEvent copies an event, everything but its dates carries over.
func (c *Client) CloneEvent(ctx context.Context, opts CloneOptions) error {
	return c.run(ctx, "clone_event", opts.Source, func(ctx context.Context, op *operation) error {
		if opts.Title == "" {
			op.at(StageBuilding)
			return ErrTitleRequired
		}
		slug := opts.Slug
		if slug == "" {
			slug = textutil.FormatDefaultSlug(opts.Title)
		}

		sourceUuid, err := c.View.EventUuid(ctx, opts.Source)
		if err != nil {
			return err
		}

		path := fmt.Sprintf("/admin/events/clone/%s", sourceUuid)
		fields, _, err := c.fetchForm(ctx, op, path, cloneForm)
		if err != nil {
			return err
		}

		op.at(StageBuilding)
		fields.Set("title", opts.Title)
		fields.Set("slug", slug)
		if opts.CopyTickets {
			fields.Set("copy_tickets", "on")
		} else {
			fields.Delete("copy_tickets")
		}
		fields.DeletePrefix("dates-")
		fields.Merge(payload.DateRows(opts.Dates))

		op.at(StageSubmitting)
		_, err = c.Core.Submit(ctx, core.Submission{
			Action:  "clone event",
			Key:     opts.Source,
			Path:    path,
			Fields:  fields,
			Ajax:    true,
			Referer: "/admin/events/",
		})
		c.View.InvalidateEvent(ctx, slug)
		return err
	})
}

type EventOptions struct {
	payload.Event
	// local path of the event image, uploaded before the event is created.
	// leave empty when Event already carries hero image urls.
	ImagePath string
}

// CreateEvent creates a new event with its dates and ticket types.
func (c *Client) CreateEvent(ctx context.Context, opts EventOptions) error {
	event := opts.Event
	if event.Slug == "" {
		event.Slug = textutil.FormatDefaultSlug(event.Title)
	}

	return c.run(ctx, "create_event", event.Slug, func(ctx context.Context, op *operation) error {
		if event.Title == "" {
			op.at(StageBuilding)
			return ErrTitleRequired
		}

		op.at(StageBuilding)
		fields, err := payload.EventTemplate(event)
		if err != nil {
			return err
		}

		if opts.ImagePath != "" {
			image, err := c.uploadImage(ctx, op, opts.ImagePath)
			if err != nil {
				return err
			}
			fields.Set("hero_image_url", image.HeroURL)
			fields.Set("hero_small_image_url", image.FullURL)
		}

		op.at(StageSubmitting)
		_, err = c.Core.Submit(ctx, core.Submission{
			Action:  "create event",
			Key:     event.Slug,
			Path:    createPath,
			Fields:  fields,
			Referer: createPath,
		})
		c.View.InvalidateEvent(ctx, event.Slug)
		return err
	})
}

// ModifyPostPurchaseMessage replaces the message buyers receive after
// purchasing a ticket to an event.
func (c *Client) ModifyPostPurchaseMessage(ctx context.Context, slug, message string) error {
	return c.run(ctx, "modify_post_purchase_message", slug, func(ctx context.Context, op *operation) error {
		op.at(StageSubmitting)
		_, err := c.Core.Submit(ctx, core.Submission{
			Action: "modify post purchase message",
			Key:    slug,
			Path:   view.DetailsPath(slug) + "/modify-post-purchase-message",
			Fields: payload.NewFields(payload.Field{
				Name:  "post_purchase_message",
				Value: message,
			}),
			UrlEncoded: true,
			Ajax:       true,
			Referer:    view.DetailsPath(slug),
		})
		return err
	})
}
