package names

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type Category string

const (
	CategoryIsland  Category = "island"
	CategoryCountry Category = "country"
	CategoryUnknown Category = "unknown"
)

// NamedPlace is the result of translating a user supplied name.
type NamedPlace struct {
	DisplayName string   `json:"display_name"`
	SearchTerm  string   `json:"search_term"`
	Category    Category `json:"category"`
}

// Query returns the free-text query to send to the geocoder. Islands
// are qualified with the country so that e.g. "Iki" does not match
// something else entirely.
func (place NamedPlace) Query() string {
	if place.Category == CategoryIsland {
		return place.SearchTerm + " Japan"
	}
	return place.SearchTerm
}

// MainlandOnly reports whether only the largest polygon of the
// result should be shown.
func (place NamedPlace) MainlandOnly() bool {
	return place.Category != CategoryIsland
}

func normalize(name string) string {
	return strings.TrimSpace(norm.NFKC.String(name))
}

func Translate(name string) NamedPlace {
	normalized := normalize(name)

	if english, ok := islandNames[normalized]; ok {
		return NamedPlace{DisplayName: name, SearchTerm: english, Category: CategoryIsland}
	}

	if english, ok := countryNames[normalized]; ok {
		return NamedPlace{DisplayName: name, SearchTerm: english, Category: CategoryCountry}
	}

	// probably already an english name.
	return NamedPlace{DisplayName: name, SearchTerm: normalized, Category: CategoryUnknown}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func Islands() []string {
	return sortedKeys(islandNames)
}

func Countries() []string {
	return sortedKeys(countryNames)
}
