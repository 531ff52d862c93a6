package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"localserv/internal/domain"
)

var lowerPT = cases.Lower(language.BrazilianPortuguese)

// Fold lowercases s and strips diacritics so "São José" matches "sao jose".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return lowerPT.String(strings.TrimSpace(out))
}

// Matches reports whether any field contains query after folding. An empty query
// matches everything.
func Matches(query string, fields ...string) bool {
	q := Fold(query)
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Fold(f), q) {
			return true
		}
	}
	return false
}

// TitleCity normalizes the casing of a city name.
func TitleCity(city string) string {
	city = strings.Join(strings.Fields(city), " ")
	return cases.Title(language.BrazilianPortuguese).String(city)
}

// Listings keeps the listings whose title or description matches query.
func Listings(items []domain.Listing, query string) []domain.Listing {
	return filter(items, func(l domain.Listing) bool {
		return Matches(query, l.Title, l.Description)
	})
}

// AdminListings matches on title, owner name and city.
func AdminListings(items []domain.Listing, query string) []domain.Listing {
	return filter(items, func(l domain.Listing) bool {
		owner := ""
		if l.Owner != nil {
			owner = l.Owner.Name
		}
		return Matches(query, l.Title, owner, l.City)
	})
}

// Profiles matches on name and email.
func Profiles(items []domain.Profile, query string) []domain.Profile {
	return filter(items, func(p domain.Profile) bool {
		return Matches(query, p.Name, p.Email)
	})
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
