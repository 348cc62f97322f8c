package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"ticketleap-admin/lib/scrapers/ticketleap/datefmt"
	"ticketleap-admin/lib/scrapers/ticketleap/payload"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/titanous/json5"
)

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// parseRange accepts "<start>/<end>" in ISO 8601 or a range as the platform
// renders it, like "Sep 29, 2019 1:00p.m.-10:00p.m.".
func parseRange(text string) (payload.DateRange, error) {
	startText, endText, ok := strings.Cut(text, "/")
	if !ok {
		start, end, err := datefmt.ParseRange(text)
		if err != nil {
			return payload.DateRange{}, err
		}
		return payload.DateRange{Start: start, End: end}, nil
	}

	parse := func(s string) (time.Time, error) {
		key, err := datefmt.Normalize(s)
		if err != nil {
			return time.Time{}, err
		}
		return time.Parse(datefmt.KeyLayout, key)
	}
	start, err := parse(startText)
	if err != nil {
		return payload.DateRange{}, err
	}
	end, err := parse(endText)
	if err != nil {
		return payload.DateRange{}, err
	}
	if end.Before(start) {
		return payload.DateRange{}, fmt.Errorf("date range %q ends before it starts", text)
	}
	return payload.DateRange{Start: start, End: end}, nil
}

func parseRanges(texts []string) ([]payload.DateRange, error) {
	out := make([]payload.DateRange, len(texts))
	for i, text := range texts {
		r, err := parseRange(text)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func readJson5[T any](path string) (T, error) {
	var out T
	contents, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	err = json5.Unmarshal(contents, &out)
	return out, err
}
