package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatDefaultSlug(t *testing.T) {
	cases := []struct {
		title    string
		expected string
	}{
		{title: "Spring Gala", expected: "spring-gala"},
		{title: "Rock & Roll: Live!", expected: "rock-roll-live"},
		{title: "  The   Nutcracker  (2019) ", expected: "the-nutcracker-2019"},
		{title: "already-a-slug", expected: "already-a-slug"},
		{title: "$5 Tuesdays | 2-for-1", expected: "5-tuesdays-2-for-1"},
		{title: "Café Night", expected: "café-night"},
		{title: "", expected: ""},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, FormatDefaultSlug(test.title), test.title)
	}
}

func TestFormatDefaultSlugIdempotent(t *testing.T) {
	for _, input := range []string{
		"Spring Gala",
		"Rock & Roll: Live!",
		"a -- b",
		"\tTabs\tand\nnewlines ",
		"MiXeD CaSe 123",
		"$5 Tuesdays | 2-for-1",
		"",
	} {
		once := FormatDefaultSlug(input)
		require.Equal(t, once, FormatDefaultSlug(once), input)
	}
}

func TestClosest(t *testing.T) {
	candidates := []string{"spring-gala", "summer-concert", "winter-show"}

	got, ok := Closest("sprng-gala", candidates)
	require.True(t, ok)
	require.Equal(t, "spring-gala", got)

	_, ok = Closest("zzzzzz", candidates)
	require.False(t, ok)

	_, ok = Closest("anything", nil)
	require.False(t, ok)
}
