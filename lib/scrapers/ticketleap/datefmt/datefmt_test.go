package datefmt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestISO8601(t *testing.T) {
	cases := []struct {
		text     string
		expected string
	}{
		{text: "Sep 29, 2019 1:00p.m.-10:00p.m.", expected: "2019-09-29T13:00"},
		{text: "May 13, 2019 2:00p.m.-5:00p.m.", expected: "2019-05-13T14:00"},
		{text: "Jan 1, 2020 12:00a.m.-1:00a.m.", expected: "2020-01-01T00:00"},
		{text: "Dec 31, 2021 12:30p.m.", expected: "2021-12-31T12:30"},
		{text: "  Jun 5, 2022 9:15 a.m. - 11:00 a.m. ", expected: "2022-06-05T09:15"},
		{text: "May 13, 2019 9:00p.m.-May 14, 2019 1:00a.m.", expected: "2019-05-13T21:00"},
	}

	for _, test := range cases {
		got, err := ISO8601(test.text)
		require.NoError(t, err, test.text)
		require.Equal(t, test.expected, got, test.text)
	}
}

func TestISO8601Rejects(t *testing.T) {
	for _, text := range []string{
		"",
		"tomorrow",
		"2019-09-29",
		"Sep 29 2019 1:00p.m.",
		"Sep 29, 2019 13:00",
	} {
		_, err := ISO8601(text)
		require.Error(t, err, text)
		require.True(t, errors.Is(err, ErrFormat), text)

		var formatErr *FormatError
		require.True(t, errors.As(err, &formatErr))
		require.Equal(t, text, formatErr.Text)
	}
}

func TestParseRange(t *testing.T) {
	start, end, err := ParseRange("Sep 29, 2019 1:00p.m.-10:00p.m.")
	require.NoError(t, err)
	require.Equal(t, time.Date(2019, time.September, 29, 13, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2019, time.September, 29, 22, 0, 0, 0, time.UTC), end)

	start, end, err = ParseRange("May 13, 2019 9:00p.m.-May 14, 2019 1:00a.m.")
	require.NoError(t, err)
	require.Equal(t, time.Date(2019, time.May, 13, 21, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2019, time.May, 14, 1, 0, 0, 0, time.UTC), end)

	_, _, err = ParseRange("Sep 29, 2019 1:00p.m.-whenever")
	require.ErrorIs(t, err, ErrFormat)
}

func TestNormalize(t *testing.T) {
	raw := "Sep 29, 2019 1:00p.m.-10:00p.m."
	iso, err := ISO8601(raw)
	require.NoError(t, err)

	for _, input := range []string{
		raw,
		iso,
		"2019-09-29T13:00:00",
		"2019-09-29 13:00",
		"2019-09-29T13:00:00Z",
	} {
		got, err := Normalize(input)
		require.NoError(t, err, input)
		require.Equal(t, iso, got, input)
	}
}

func TestFormParts(t *testing.T) {
	date, clock, meridiem := FormParts(time.Date(2019, time.September, 29, 13, 5, 0, 0, time.UTC))
	require.Equal(t, "09/29/2019", date)
	require.Equal(t, "01:05", clock)
	require.Equal(t, "pm", meridiem)

	date, clock, meridiem = FormParts(time.Date(2020, time.January, 1, 0, 30, 0, 0, time.UTC))
	require.Equal(t, "01/01/2020", date)
	require.Equal(t, "12:30", clock)
	require.Equal(t, "am", meridiem)
}
