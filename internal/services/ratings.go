package services

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"reelshelf/internal/types"
)

// ContentRatingFetcher looks up the certification of a single title.
type ContentRatingFetcher interface {
	GetContentRating(ctx context.Context, mediaType string, tmdbID int) (string, error)
}

// RatingsService resolves content ratings for batches of items concurrently.
// A failed lookup is logged and left out of the result; it never fails the batch.
type RatingsService struct {
	fetcher  ContentRatingFetcher
	cache    *expirable.LRU[string, string]
	parallel int
	log      *zap.Logger
}

func NewRatingsService(fetcher ContentRatingFetcher, log *zap.Logger) *RatingsService {
	return &RatingsService{
		fetcher:  fetcher,
		cache:    expirable.NewLRU[string, string](4096, nil, 6*time.Hour),
		parallel: 8,
		log:      log,
	}
}

// Lookup returns ratings keyed by MediaItem.Key for every item whose lookup succeeded.
func (s *RatingsService) Lookup(ctx context.Context, items []types.MediaItem) map[string]string {
	result := make(map[string]string, len(items))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(s.parallel)
	for _, item := range items {
		key := item.Key()
		if rating, ok := s.cache.Get(key); ok {
			mu.Lock()
			result[key] = rating
			mu.Unlock()
			continue
		}

		p.Go(func() {
			rating, err := s.fetcher.GetContentRating(ctx, item.MediaType, item.ID)
			if err != nil {
				s.log.Warn("content rating lookup failed",
					zap.String("item", key),
					zap.Error(err),
				)
				return
			}
			s.cache.Add(key, rating)

			mu.Lock()
			result[key] = rating
			mu.Unlock()
		})
	}
	p.Wait()

	return result
}

// Enrich sets ContentRating on items in place.
func (s *RatingsService) Enrich(ctx context.Context, items []types.MediaItem) {
	ratings := s.Lookup(ctx, items)
	for i := range items {
		if rating, ok := ratings[items[i].Key()]; ok {
			items[i].ContentRating = rating
		}
	}
}

// Rating resolves one title, returning "" on failure.
func (s *RatingsService) Rating(ctx context.Context, mediaType string, tmdbID int) string {
	item := types.MediaItem{ID: tmdbID, MediaType: mediaType}
	return s.Lookup(ctx, []types.MediaItem{item})[item.Key()]
}
