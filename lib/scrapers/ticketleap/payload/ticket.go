package payload

import (
	"errors"
	"fmt"
	"strconv"
)

type PricingType string

const (
	PricingFixed    PricingType = "fixed"
	PricingVariable PricingType = "variable"
)

type Visibility string

const VisibilityAll Visibility = "all"

type DeliveryMethod string

const DeliveryTicket DeliveryMethod = "ticket"

// Ticket holds the attributes of a ticket type. Unset attributes take the
// template default when a ticket is created and keep their scraped value
// when a ticket is updated.
type Ticket struct {
	Name           Opt[string]
	Price          Opt[float64]
	PricingType    Opt[PricingType]
	Inventory      Opt[int]
	MinPrice       Opt[float64]
	Visibility     Opt[Visibility]
	Description    Opt[string]
	MinPerOrder    Opt[int]
	MaxPerOrder    Opt[int]
	DeliveryMethod Opt[DeliveryMethod]
}

var ErrTicketNameRequired = errors.New("ticket name is required")

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatString[T ~string](v T) string {
	return string(v)
}

type ticketField struct {
	name  string
	value string
	ok    bool
}

// fields lists the ticket attributes in the order the admin form renders
// them. Unset attributes are reported with ok == false.
func (t Ticket) fields() []ticketField {
	field := func(name string, value string, ok bool) ticketField {
		return ticketField{name: name, value: value, ok: ok}
	}

	inventory, inventoryOk := encode(t.Inventory, strconv.Itoa)
	limit := ""
	if _, isValue := t.Inventory.Get(); isValue {
		limit = "on"
	}

	name, nameOk := encode(t.Name, formatString[string])
	pricingType, pricingTypeOk := encode(t.PricingType, formatString[PricingType])
	price, priceOk := encode(t.Price, formatPrice)
	minPrice, minPriceOk := encode(t.MinPrice, formatPrice)
	visibility, visibilityOk := encode(t.Visibility, formatString[Visibility])
	description, descriptionOk := encode(t.Description, formatString[string])
	minPerOrder, minPerOrderOk := encode(t.MinPerOrder, strconv.Itoa)
	maxPerOrder, maxPerOrderOk := encode(t.MaxPerOrder, strconv.Itoa)
	delivery, deliveryOk := encode(t.DeliveryMethod, formatString[DeliveryMethod])

	return []ticketField{
		field("name", name, nameOk),
		field("inventory", inventory, inventoryOk),
		field("limit_inventory", limit, inventoryOk),
		field("pricing_type", pricingType, pricingTypeOk),
		field("price", price, priceOk),
		field("min_price", minPrice, minPriceOk),
		field("visibility", visibility, visibilityOk),
		field("description", description, descriptionOk),
		field("min_per_order", minPerOrder, minPerOrderOk),
		field("max_per_order", maxPerOrder, maxPerOrderOk),
		field("delivery_method", delivery, deliveryOk),
	}
}

// ticketTemplate holds the values a freshly added ticket row carries.
var ticketTemplate = []Field{
	{Name: "name"},
	{Name: "inventory"},
	{Name: "limit_inventory"},
	{Name: "pricing_type", Value: string(PricingFixed)},
	{Name: "price"},
	{Name: "min_price"},
	{Name: "visibility", Value: string(VisibilityAll)},
	{Name: "description"},
	{Name: "sales_start_days_before"},
	{Name: "sales_start_hours_before"},
	{Name: "sales_end_days_before"},
	{Name: "sales_end_hours_before"},
	{Name: "min_per_order"},
	{Name: "max_per_order"},
	{Name: "grouping_key"},
	{Name: "delivery_method", Value: string(DeliveryTicket)},
}

func TicketPrefix(index int) string {
	return fmt.Sprintf("tickets-%d-", index)
}

// TicketRow renders t as the row at index of the "tickets" formset. The
// index has to match the row's position in the submitted form or the
// platform binds the fields to another ticket.
func TicketRow(index int, t Ticket) (Fields, error) {
	if name, ok := t.Name.Get(); !ok || name == "" {
		return Fields{}, ErrTicketNameRequired
	}

	prefix := TicketPrefix(index)
	row := Fields{}
	for _, f := range ticketTemplate {
		row.Add(prefix+f.Name, f.Value)
	}
	ApplyTicket(&row, prefix, t)
	return row, nil
}

// ApplyTicket overlays the set attributes of t onto fields whose names carry
// prefix ("" for the single ticket edit form).
func ApplyTicket(fields *Fields, prefix string, t Ticket) {
	for _, f := range t.fields() {
		if !f.ok {
			continue
		}
		fields.Set(prefix+f.name, f.value)
	}
}
