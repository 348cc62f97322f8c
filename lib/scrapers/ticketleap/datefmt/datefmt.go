// Package datefmt converts between the textual dates rendered by the
// ticketleap admin pages and the ISO 8601 keys used to look dates up.
package datefmt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// KeyLayout is the layout of the keys produced by ISO8601 and Key.
const KeyLayout = "2006-01-02T15:04"

// platformLayout matches "Sep 29, 2019 1:00PM" once dots and case have
// been normalized away.
const platformLayout = "Jan 2, 2006 3:04PM"

var ErrFormat = errors.New("unrecognized date format")

type FormatError struct {
	Text string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrFormat.Error(), e.Text)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

var (
	// "1:00 PM" -> "1:00PM"
	meridiemSpace = regexp.MustCompile(`(\d) +([AP]M)\b`)
	timeOnly      = regexp.MustCompile(`^\d{1,2}:\d{2}[AP]M$`)
	innerSpace    = regexp.MustCompile(`\s+`)
)

func clean(text string) string {
	text = strings.ToUpper(strings.TrimSpace(text))
	text = strings.ReplaceAll(text, ".", "")
	text = innerSpace.ReplaceAllString(text, " ")
	return meridiemSpace.ReplaceAllString(text, "$1$2")
}

// ParseRange parses a platform date range such as
// "May 13, 2019 2:00p.m.-5:00p.m." or
// "May 13, 2019 9:00p.m.-May 14, 2019 1:00a.m.". The end may be omitted,
// in which case it equals the start. An end without a date inherits the
// date of the start.
func ParseRange(text string) (start, end time.Time, err error) {
	cleaned := clean(text)
	startText, endText, hasEnd := strings.Cut(cleaned, "-")
	startText = strings.TrimSpace(startText)
	endText = strings.TrimSpace(endText)

	start, err = time.Parse(platformLayout, startText)
	if err != nil {
		return time.Time{}, time.Time{}, &FormatError{Text: text}
	}
	if !hasEnd {
		return start, start, nil
	}

	if timeOnly.MatchString(endText) {
		datePart := strings.TrimRight(startText, "0123456789APM:")
		endText = strings.TrimSpace(datePart) + " " + endText
	}
	end, err = time.Parse(platformLayout, endText)
	if err != nil {
		return time.Time{}, time.Time{}, &FormatError{Text: text}
	}
	return start, end, nil
}

// ISO8601 converts platform date text into its key, the start of the range
// formatted with KeyLayout.
func ISO8601(text string) (string, error) {
	start, _, err := ParseRange(text)
	if err != nil {
		return "", err
	}
	return Key(start), nil
}

func Key(t time.Time) string {
	return t.Format(KeyLayout)
}

var isoLayouts = []string{
	KeyLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Normalize accepts either an ISO 8601 timestamp or platform date text and
// returns the corresponding key.
func Normalize(date string) (string, error) {
	trimmed := strings.TrimSpace(date)
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, trimmed)
		if err == nil {
			return Key(t), nil
		}
	}
	return ISO8601(trimmed)
}

// FormParts renders t the way the date inputs of the admin forms expect it:
// "09/29/2019", "01:00", "pm".
func FormParts(t time.Time) (date, clock, meridiem string) {
	return t.Format("01/02/2006"), t.Format("03:04"), strings.ToLower(t.Format("PM"))
}
