package commands

import (
	"fmt"

	"ticketleap-admin/lib/scrapers/ticketleap/edit"
	"ticketleap-admin/lib/scrapers/ticketleap/payload"
	"ticketleap-admin/lib/textutil"
)

// ticketSpec is a ticket as written in a json5 file, missing attributes
// are left unset.
type ticketSpec struct {
	Name           string   `json:"name"`
	Price          *float64 `json:"price"`
	PricingType    string   `json:"pricing_type"`
	Inventory      *int     `json:"inventory"`
	MinPrice       *float64 `json:"min_price"`
	Visibility     string   `json:"visibility"`
	Description    *string  `json:"description"`
	MinPerOrder    *int     `json:"min_per_order"`
	MaxPerOrder    *int     `json:"max_per_order"`
	DeliveryMethod string   `json:"delivery_method"`
}

func optional[T any](value *T) payload.Opt[T] {
	if value == nil {
		return payload.Unset[T]()
	}
	return payload.Value(*value)
}

func optionalString[T ~string](value string) payload.Opt[T] {
	if value == "" {
		return payload.Unset[T]()
	}
	return payload.Value(T(value))
}

func (s ticketSpec) ticket() payload.Ticket {
	return payload.Ticket{
		Name:           optionalString[string](s.Name),
		Price:          optional(s.Price),
		PricingType:    optionalString[payload.PricingType](s.PricingType),
		Inventory:      optional(s.Inventory),
		MinPrice:       optional(s.MinPrice),
		Visibility:     optionalString[payload.Visibility](s.Visibility),
		Description:    optional(s.Description),
		MinPerOrder:    optional(s.MinPerOrder),
		MaxPerOrder:    optional(s.MaxPerOrder),
		DeliveryMethod: optionalString[payload.DeliveryMethod](s.DeliveryMethod),
	}
}

func tickets(specs []ticketSpec) []payload.Ticket {
	out := make([]payload.Ticket, len(specs))
	for i, s := range specs {
		out[i] = s.ticket()
	}
	return out
}

type eventSpec struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	// local path, resolved relative to the working directory
	Image       string `json:"image"`
	AccentColor string `json:"accent_color"`
	FocalPoint  string `json:"focal_point"`

	Venue struct {
		Name          string   `json:"name"`
		StreetAddress string   `json:"street_address"`
		City          string   `json:"city"`
		Region        string   `json:"region"`
		PostalCode    string   `json:"postal_code"`
		CountryCode   string   `json:"country_code"`
		Latitude      *float64 `json:"latitude"`
		Longitude     *float64 `json:"longitude"`
		Timezone      string   `json:"timezone"`
	} `json:"venue"`

	EventPage bool `json:"event_page"`
	Draft     bool `json:"draft"`

	// see parseRange for the accepted formats
	Dates   []string     `json:"dates"`
	Tickets []ticketSpec `json:"tickets"`
}

func (s eventSpec) options() (edit.EventOptions, error) {
	if s.Title == "" {
		return edit.EventOptions{}, fmt.Errorf("event title is required")
	}
	dates, err := parseRanges(s.Dates)
	if err != nil {
		return edit.EventOptions{}, err
	}
	slug := s.Slug
	if slug == "" {
		slug = textutil.FormatDefaultSlug(s.Title)
	}

	return edit.EventOptions{
		ImagePath: s.Image,
		Event: payload.Event{
			Title:               s.Title,
			Slug:                slug,
			Description:         s.Description,
			HeroImageFocalPoint: s.FocalPoint,
			AccentColor:         s.AccentColor,
			VenueName:           s.Venue.Name,
			StreetAddress:       s.Venue.StreetAddress,
			City:                s.Venue.City,
			Region:              s.Venue.Region,
			PostalCode:          s.Venue.PostalCode,
			CountryCode:         s.Venue.CountryCode,
			Latitude:            optional(s.Venue.Latitude),
			Longitude:           optional(s.Venue.Longitude),
			Timezone:            s.Venue.Timezone,
			HasEventPage:        s.EventPage,
			Draft:               s.Draft,
			Dates:               dates,
			Tickets:             tickets(s.Tickets),
		},
	}, nil
}
