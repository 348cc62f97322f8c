package form

import (
	"strings"
	"testing"

	"ticketleap-admin/lib/scrapers/ticketleap/core"
	"ticketleap-admin/lib/scrapers/ticketleap/payload"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const ticketForm = `<html><body>
<form name="search"><input name="q" value="ignored"></form>
<form name="ticket" method="post" enctype="multipart/form-data">
	<input type="hidden" name="csrfmiddlewaretoken" value="tok">
	<input type="text" name="name" value="General">
	<input type="text" name="inventory" value="100">
	<input type="checkbox" name="limit_inventory" checked>
	<input type="checkbox" name="hide_remaining" value="yes">
	<input type="radio" name="pricing_type" value="fixed" checked>
	<input type="radio" name="pricing_type" value="variable">
	<input type="text" name="price" value="10.00">
	<input type="text" name="locked" value="x" disabled>
	<input type="file" name="attachment">
	<select name="visibility">
		<option value="all">Everyone</option>
		<option value="hidden" selected>Hidden</option>
	</select>
	<select name="delivery_method">
		<option value="ticket">Ticket</option>
		<option value="will_call">Will call</option>
	</select>
	<select name="tags" multiple>
		<option value="a" selected>A</option>
		<option value="b">B</option>
		<option selected>C</option>
	</select>
	<textarea name="description">Standing room only</textarea>
	<input type="submit" name="submit" value="save">
</form>
</body></html>`

func parse(t testing.TB, markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestExtract(t *testing.T) {
	fields, err := Extract(parse(t, ticketForm), "ticket")
	require.NoError(t, err)

	expected := []payload.Field{
		{Name: "csrfmiddlewaretoken", Value: "tok"},
		{Name: "name", Value: "General"},
		{Name: "inventory", Value: "100"},
		{Name: "limit_inventory", Value: "on"},
		{Name: "pricing_type", Value: "fixed"},
		{Name: "price", Value: "10.00"},
		{Name: "visibility", Value: "hidden"},
		{Name: "delivery_method", Value: "ticket"},
		{Name: "tags", Value: "a"},
		{Name: "tags", Value: "C"},
		{Name: "description", Value: "Standing room only"},
	}
	if diff := cmp.Diff(expected, fields.All()); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
}

func TestExtractMissingForm(t *testing.T) {
	_, err := Extract(parse(t, ticketForm), "clone")
	require.ErrorIs(t, err, core.ErrMalformedPage)

	var malformed *core.MalformedPageError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, `form[name="clone"]`, malformed.Landmark)
}

func TestReadFormset(t *testing.T) {
	fields := payload.NewFields(
		payload.Field{Name: "tickets-TOTAL_FORMS", Value: "3"},
		payload.Field{Name: "tickets-INITIAL_FORMS", Value: "3"},
		payload.Field{Name: "tickets-MIN_NUM_FORMS", Value: "0"},
		payload.Field{Name: "tickets-MAX_NUM_FORMS", Value: "1000"},
	)

	formset, err := ReadFormset("tickets/edit", fields, "tickets")
	require.NoError(t, err)
	require.Equal(t, Formset{
		Prefix:  "tickets",
		Total:   3,
		Initial: 3,
		Min:     0,
		Max:     1000,
	}, formset)
	require.Equal(t, "tickets-3-", formset.RowPrefix(3))
}

func TestReadFormsetMalformed(t *testing.T) {
	testCases := []struct {
		name   string
		fields payload.Fields
	}{
		{
			name:   "missing total",
			fields: payload.NewFields(payload.Field{Name: "tickets-INITIAL_FORMS", Value: "1"}),
		},
		{
			name:   "non numeric total",
			fields: payload.NewFields(payload.Field{Name: "tickets-TOTAL_FORMS", Value: "many"}),
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadFormset("tickets/edit", test.fields, "tickets")
			require.ErrorIs(t, err, core.ErrMalformedPage)
		})
	}
}
