package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// dashes count as separators so that a slug survives being formatted again
var separatorRegex = regexp.MustCompile(`[\s-]+`)

const asciiPunctuation = "!\"#$%&'()*+,./:;<=>?@[\\]^_`{|}~"

// FormatDefaultSlug reproduces the slug the platform derives from an event
// title: ASCII punctuation removed, whitespace and dash runs collapsed into a
// single dash and everything lower-cased.
func FormatDefaultSlug(title string) string {
	slug := strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, title)
	slug = separatorRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	return strings.ToLower(slug)
}

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, " ")
	return name
}

// Closest returns the candidate most similar to name, it returns false if
// nothing is similar enough to be worth suggesting.
func Closest(name string, candidates []string) (string, bool) {
	target := NormalizeName(name)
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		score := matchr.JaroWinkler(target, NormalizeName(c), false)
		if score > bestScore {
			best = c
			bestScore = score
		}
	}
	if bestScore < 0.8 {
		return "", false
	}
	return best, true
}
