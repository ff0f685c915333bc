package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"reelshelf/internal/types"
)

const (
	DefaultRowPageCap  = 10
	DefaultRowMinCount = 20
)

// ErrUnknownRow is returned by Build for an id not in the registry.
var ErrUnknownRow = errors.New("unknown content row")

// CategoryFetcher fetches one page of a TMDB category list.
type CategoryFetcher interface {
	FetchCategory(ctx context.Context, mediaType, category string, page int) (*types.PagedResults, error)
}

// ContentRow is an aggregated, deduplicated row ready for rendering.
type ContentRow struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	MediaType string            `json:"mediaType"`
	Items     []types.MediaItem `json:"items"`
}

type ContentRowAggregator struct {
	fetcher    CategoryFetcher
	rows       *RowRegistry
	locale     LocaleRule
	pageCap    int
	defaultMin int
	log        *zap.Logger
}

// NewContentRowAggregator builds rows from fetcher; locale decides which titles count as home.
func NewContentRowAggregator(fetcher CategoryFetcher, rows *RowRegistry, locale LocaleRule, pageCap, defaultMin int, log *zap.Logger) *ContentRowAggregator {
	if pageCap <= 0 {
		pageCap = DefaultRowPageCap
	}
	if defaultMin <= 0 {
		defaultMin = DefaultRowMinCount
	}
	return &ContentRowAggregator{
		fetcher:    fetcher,
		rows:       rows,
		locale:     locale,
		pageCap:    pageCap,
		defaultMin: defaultMin,
		log:        log,
	}
}

// DefaultMinCount is used when the caller does not ask for a specific count.
func (a *ContentRowAggregator) DefaultMinCount() int {
	return a.defaultMin
}

// Rows lists the configured rows.
func (a *ContentRowAggregator) Rows() []RowConfig {
	return a.rows.All()
}

// Build pages through the row's category until minCount items with posters that pass
// the row's locale rule have been collected, the page cap is reached, or TMDB runs dry.
// The first fetch error aborts the build.
func (a *ContentRowAggregator) Build(ctx context.Context, rowID string, minCount int) (*ContentRow, error) {
	row, ok := a.rows.Get(rowID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRow, rowID)
	}
	if minCount <= 0 {
		minCount = a.defaultMin
	}

	items := make([]types.MediaItem, 0, minCount)
	seen := make(map[int]struct{})
	pagesFetched := 0

	for page := 1; len(items) < minCount && page <= a.pageCap; page++ {
		resp, err := a.fetcher.FetchCategory(ctx, row.MediaType, row.Category, page)
		if err != nil {
			return nil, fmt.Errorf("row %s page %d: %w", row.ID, page, err)
		}
		pagesFetched++

		if len(resp.Results) == 0 {
			break
		}

		for _, item := range resp.Results {
			if !item.HasPoster() || !a.locale.Allows(row.Locale, item) {
				continue
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			item.MediaType = row.MediaType
			items = append(items, item)
		}

		if resp.TotalPages > 0 && page >= resp.TotalPages {
			break
		}
	}

	if len(items) > minCount {
		items = items[:minCount]
	}

	a.log.Debug("content row built",
		zap.String("row", row.ID),
		zap.Int("pages", pagesFetched),
		zap.Int("items", len(items)),
		zap.Int("requested", minCount),
	)

	return &ContentRow{
		ID:        row.ID,
		Title:     row.Title,
		MediaType: row.MediaType,
		Items:     items,
	}, nil
}

// FilterPage drops poster-less items, and non-home items when homeOnly is set,
// from a single TMDB page and stamps the media type. Used by paged catalog routes.
func (l LocaleRule) FilterPage(items []types.MediaItem, mediaType string, homeOnly bool) []types.MediaItem {
	out := make([]types.MediaItem, 0, len(items))
	for _, item := range items {
		if !item.HasPoster() {
			continue
		}
		if homeOnly && !l.IsHome(item) {
			continue
		}
		if mediaType != "" {
			item.MediaType = mediaType
		}
		out = append(out, item)
	}
	return out
}
