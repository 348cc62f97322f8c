package payload

// Event describes a new event for the create-event form.
type Event struct {
	Title       string
	Slug        string
	Description string

	HeroImageUrl        string
	HeroSmallImageUrl   string
	HeroImageFocalPoint string
	AccentColor         string

	// venue
	VenueName     string
	StreetAddress string
	City          string
	Region        string
	PostalCode    string
	CountryCode   string
	Latitude      Opt[float64]
	Longitude     Opt[float64]
	Timezone      string

	HasEventPage bool
	Draft        bool

	Dates   []DateRange
	Tickets []Ticket
}

// EventTemplate renders the static field set of the create-event form.
func EventTemplate(e Event) (Fields, error) {
	focal := e.HeroImageFocalPoint
	if focal == "" {
		focal = "center center"
	}
	country := e.CountryCode
	if country == "" {
		country = "USA"
	}
	latitude, _ := encode(e.Latitude, formatPrice)
	longitude, _ := encode(e.Longitude, formatPrice)
	draft := "0"
	if e.Draft {
		draft = "1"
	}
	hasPage := "False"
	if e.HasEventPage {
		hasPage = "True"
	}

	out := NewFields(
		Field{Name: "facebook_event_id"},
		Field{Name: "facebook_page_id"},
		Field{Name: "has_ticketleap_event_page", Value: hasPage},
		Field{Name: "title", Value: e.Title},
		Field{Name: "slug", Value: e.Slug},
		Field{Name: "description", Value: e.Description},
		Field{Name: "gallery_type", Value: "no-gallery"},
		Field{Name: "gallery_name"},
		Field{Name: "gallery_media", Value: `{"media": []}`},
		Field{Name: "gallery_media_config"},
		Field{Name: "media-upload-url", Value: "/admin/galleries/media/create"},
		Field{Name: "hero_image_url", Value: e.HeroImageUrl},
		Field{Name: "hero_small_image_url", Value: e.HeroSmallImageUrl},
		Field{Name: "hero_image_focal_point", Value: focal},
		Field{Name: "accent_color", Value: e.AccentColor},
		Field{Name: "latitude", Value: latitude},
		Field{Name: "longitude", Value: longitude},
		Field{Name: "timezone", Value: e.Timezone},
		Field{Name: "name", Value: e.VenueName},
		Field{Name: "street_address", Value: e.StreetAddress},
		Field{Name: "country_code", Value: country},
		Field{Name: "city", Value: e.City},
		Field{Name: "region", Value: e.Region},
		Field{Name: "postal_code", Value: e.PostalCode},
	)

	out.Merge(DateRows(e.Dates))
	out.Merge(ManagementForm("tickets", len(e.Tickets), 0))
	for i, t := range e.Tickets {
		row, err := TicketRow(i, t)
		if err != nil {
			return Fields{}, err
		}
		out.Merge(row)
	}

	out.Add("number_of_tickets", "")
	out.Add("draft-setting", draft)
	out.Add("submit", "start sales now")
	return out, nil
}
