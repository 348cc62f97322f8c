// Package form recovers the state of the admin forms a browser would submit.
package form

import (
	"fmt"
	"strconv"
	"strings"

	"ticketleap-admin/lib/scrapers/ticketleap/core"
	"ticketleap-admin/lib/scrapers/ticketleap/payload"

	"github.com/PuerkitoBio/goquery"
)

var skippedInputs = map[string]bool{
	"submit": true,
	"button": true,
	"image":  true,
	"file":   true,
	"reset":  true,
}

// Extract collects the successful controls of form[name=<name>] in
// document order, the same set a browser would submit.
func Extract(doc *goquery.Document, name string) (payload.Fields, error) {
	selector := fmt.Sprintf("form[name=%q]", name)
	form := doc.Find(selector).First()
	if form.Length() == 0 {
		return payload.Fields{}, &core.MalformedPageError{
			Page:     pageOf(doc),
			Landmark: selector,
		}
	}

	out := payload.Fields{}
	form.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		field, ok := s.Attr("name")
		if !ok || field == "" {
			return
		}
		if _, disabled := s.Attr("disabled"); disabled {
			return
		}

		switch goquery.NodeName(s) {
		case "input":
			kind := strings.ToLower(s.AttrOr("type", "text"))
			if skippedInputs[kind] {
				return
			}
			if kind == "checkbox" || kind == "radio" {
				if _, checked := s.Attr("checked"); !checked {
					return
				}
				out.Add(field, s.AttrOr("value", "on"))
				return
			}
			out.Add(field, s.AttrOr("value", ""))
		case "select":
			extractSelect(&out, field, s)
		case "textarea":
			out.Add(field, s.Text())
		}
	})
	return out, nil
}

func pageOf(doc *goquery.Document) string {
	if doc.Url == nil {
		return ""
	}
	return doc.Url.String()
}

func optionValue(option *goquery.Selection) string {
	if value, ok := option.Attr("value"); ok {
		return value
	}
	return strings.TrimSpace(option.Text())
}

func extractSelect(out *payload.Fields, field string, s *goquery.Selection) {
	options := s.Find("option")
	selected := options.FilterFunction(func(_ int, o *goquery.Selection) bool {
		_, ok := o.Attr("selected")
		return ok
	})

	if _, multiple := s.Attr("multiple"); multiple {
		selected.Each(func(_ int, o *goquery.Selection) {
			out.Add(field, optionValue(o))
		})
		return
	}

	if selected.Length() > 0 {
		out.Add(field, optionValue(selected.Last()))
		return
	}
	if options.Length() > 0 {
		out.Add(field, optionValue(options.First()))
	}
}

// Formset is the management form of a Django formset.
type Formset struct {
	Prefix  string
	Total   int
	Initial int
	Min     int
	Max     int
}

// RowPrefix returns the field prefix of the row at index.
func (f Formset) RowPrefix(index int) string {
	return fmt.Sprintf("%s-%d-", f.Prefix, index)
}

// ReadFormset reads the management form of the formset called prefix from
// scraped fields. page is only used to describe failures.
func ReadFormset(page string, fields payload.Fields, prefix string) (Formset, error) {
	read := func(name string, fallback int, required bool) (int, error) {
		key := fmt.Sprintf("%s-%s", prefix, name)
		value, ok := fields.Get(key)
		if !ok || value == "" {
			if required {
				return 0, &core.MalformedPageError{Page: page, Landmark: key}
			}
			return fallback, nil
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, &core.MalformedPageError{Page: page, Landmark: key, Err: err}
		}
		return n, nil
	}

	total, err := read("TOTAL_FORMS", 0, true)
	if err != nil {
		return Formset{}, err
	}
	initial, err := read("INITIAL_FORMS", 0, false)
	if err != nil {
		return Formset{}, err
	}
	min, err := read("MIN_NUM_FORMS", 0, false)
	if err != nil {
		return Formset{}, err
	}
	max, err := read("MAX_NUM_FORMS", 1000, false)
	if err != nil {
		return Formset{}, err
	}

	return Formset{
		Prefix:  prefix,
		Total:   total,
		Initial: initial,
		Min:     min,
		Max:     max,
	}, nil
}
