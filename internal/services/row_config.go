package services

import (
	"fmt"
	"slices"

	"golang.org/x/text/language"

	"reelshelf/internal/types"
)

// LocaleFilter restricts a row to titles produced in, or outside of, a home locale.
type LocaleFilter int

const (
	LocaleAny LocaleFilter = iota
	// LocaleHome keeps titles from the home region in the home language.
	LocaleHome
	// LocaleInternational keeps titles from outside the home region not in the home language.
	LocaleInternational
)

// LocaleRule matches MediaItems against a home locale such as en-US.
type LocaleRule struct {
	language string
	region   string
}

// NewLocaleRule parses a BCP 47 tag carrying both a language and a region.
func NewLocaleRule(tag string) (LocaleRule, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return LocaleRule{}, fmt.Errorf("invalid locale %q: %w", tag, err)
	}
	base, baseConf := t.Base()
	region, regionConf := t.Region()
	if baseConf != language.Exact || regionConf != language.Exact {
		return LocaleRule{}, fmt.Errorf("locale %q must name a language and a region", tag)
	}
	return LocaleRule{language: base.String(), region: region.String()}, nil
}

// DefaultLocale is the en-US rule used when CONTENT_LOCALE is not set.
var DefaultLocale = LocaleRule{language: "en", region: "US"}

// IsHome reports whether the item originates in the home region and language.
func (l LocaleRule) IsHome(item types.MediaItem) bool {
	return item.OriginalLanguage == l.language && slices.Contains(item.OriginCountry, l.region)
}

// IsInternational reports whether the item is from outside the home region and language.
func (l LocaleRule) IsInternational(item types.MediaItem) bool {
	return item.OriginalLanguage != l.language && !slices.Contains(item.OriginCountry, l.region)
}

// Allows applies filter f to item.
func (l LocaleRule) Allows(f LocaleFilter, item types.MediaItem) bool {
	switch f {
	case LocaleHome:
		return l.IsHome(item)
	case LocaleInternational:
		return l.IsInternational(item)
	default:
		return true
	}
}

// RowConfig describes one discovery row.
type RowConfig struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Category  string       `json:"category"`
	MediaType string       `json:"mediaType"`
	Locale    LocaleFilter `json:"-"`
}

// DefaultRows is the row catalog served by /api/content-rows.
var DefaultRows = []RowConfig{
	{ID: "trending-movies", Title: "Trending Movies", Category: "trending", MediaType: types.MediaTypeMovie},
	{ID: "popular-movies", Title: "Popular Movies", Category: "popular", MediaType: types.MediaTypeMovie},
	{ID: "top-rated-movies", Title: "Top Rated Movies", Category: "top_rated", MediaType: types.MediaTypeMovie},
	{ID: "now-playing-movies", Title: "In Theaters", Category: "now_playing", MediaType: types.MediaTypeMovie},
	{ID: "upcoming-movies", Title: "Coming Soon", Category: "upcoming", MediaType: types.MediaTypeMovie},
	{ID: "trending-tv", Title: "Trending Shows", Category: "trending", MediaType: types.MediaTypeTV, Locale: LocaleHome},
	{ID: "popular-tv", Title: "Popular Shows", Category: "popular", MediaType: types.MediaTypeTV, Locale: LocaleHome},
	{ID: "top-rated-tv", Title: "Top Rated Shows", Category: "top_rated", MediaType: types.MediaTypeTV, Locale: LocaleHome},
	{ID: "airing-today-tv", Title: "Airing Today", Category: "airing_today", MediaType: types.MediaTypeTV, Locale: LocaleHome},
	{ID: "on-the-air-tv", Title: "On The Air", Category: "on_the_air", MediaType: types.MediaTypeTV, Locale: LocaleHome},
	{ID: "international-tv", Title: "International Shows", Category: "popular", MediaType: types.MediaTypeTV, Locale: LocaleInternational},
}

// RowRegistry looks up row configs by id.
type RowRegistry struct {
	order []string
	rows  map[string]RowConfig
}

// NewRowRegistry indexes rows, rejecting duplicates and unknown categories.
func NewRowRegistry(rows []RowConfig) (*RowRegistry, error) {
	reg := &RowRegistry{rows: make(map[string]RowConfig, len(rows))}
	for _, row := range rows {
		if _, dup := reg.rows[row.ID]; dup {
			return nil, fmt.Errorf("duplicate row id %q", row.ID)
		}
		if !ValidCategory(row.MediaType, row.Category) {
			return nil, fmt.Errorf("row %q: %w: %s/%s", row.ID, ErrInvalidCategory, row.MediaType, row.Category)
		}
		reg.rows[row.ID] = row
		reg.order = append(reg.order, row.ID)
	}
	return reg, nil
}

// Get returns the row config for id.
func (r *RowRegistry) Get(id string) (RowConfig, bool) {
	row, ok := r.rows[id]
	return row, ok
}

// All returns rows in declaration order.
func (r *RowRegistry) All() []RowConfig {
	out := make([]RowConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rows[id])
	}
	return out
}
