package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"reelshelf/internal/services"
	"reelshelf/internal/types"
	"reelshelf/internal/utils"
)

// TMDB caps list endpoints at 500 pages.
const maxPage = 500

// CatalogClient is the part of the TMDB client the catalog routes use.
type CatalogClient interface {
	FetchCategory(ctx context.Context, mediaType, category string, page int) (*types.PagedResults, error)
	SearchMulti(ctx context.Context, query string, page int) (*types.PagedResults, error)
	DiscoverByGenre(ctx context.Context, mediaType string, genreID, page int) (*types.PagedResults, error)
	GetGenres(ctx context.Context, mediaType string) ([]types.Genre, error)
	GetDetails(ctx context.Context, mediaType string, tmdbID int) (*types.MediaDetails, error)
}

// RatingSource attaches content ratings to catalog items.
type RatingSource interface {
	Enrich(ctx context.Context, items []types.MediaItem)
	Rating(ctx context.Context, mediaType string, tmdbID int) string
}

type CatalogHandler struct {
	tmdbClient CatalogClient
	ratings    RatingSource
	locale     services.LocaleRule
	log        *zap.Logger
}

// NewCatalogHandler serves catalog pages; filterUsOnly keeps titles that are home to locale.
func NewCatalogHandler(tmdbClient CatalogClient, ratings RatingSource, locale services.LocaleRule, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		tmdbClient: tmdbClient,
		ratings:    ratings,
		locale:     locale,
		log:        log,
	}
}

type pageResponse struct {
	Results      []types.MediaItem `json:"results"`
	Page         int               `json:"page"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
}

func newPageResponse(resp *types.PagedResults, results []types.MediaItem) pageResponse {
	return pageResponse{
		Results:      results,
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}
}

// GetContent serves one page of a category list, e.g. /api/content?category=popular&type=tv.
func (h *CatalogHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	category := utils.GetQueryParam(r, "category", "")
	mediaType := utils.GetQueryParam(r, "type", "")

	if category == "" || mediaType == "" {
		utils.RespondError(w, "category and type are required", http.StatusBadRequest)
		return
	}
	if !types.ValidMediaType(mediaType) {
		utils.RespondError(w, "type must be movie or tv", http.StatusBadRequest)
		return
	}
	if !services.ValidCategory(mediaType, category) {
		utils.RespondError(w, "Invalid category for "+mediaType, http.StatusBadRequest)
		return
	}

	page, err := utils.ParseQueryInt(r, "page", 1, 1, maxPage)
	if err != nil {
		utils.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	usOnly := utils.GetQueryParamBool(r, "filterUsOnly")

	resp, err := h.tmdbClient.FetchCategory(r.Context(), mediaType, category, page)
	if err != nil {
		h.log.Error("failed to fetch content",
			zap.String("category", category),
			zap.String("type", mediaType),
			zap.Int("page", page),
			zap.Error(err),
		)
		utils.RespondError(w, "Failed to fetch content", http.StatusInternalServerError)
		return
	}

	results := h.locale.FilterPage(resp.Results, mediaType, usOnly)
	utils.RespondJSON(w, newPageResponse(resp, results), http.StatusOK)
}

// Search runs a multi search and keeps movie and tv results that have posters.
// limit trims the page for preview dropdowns.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := utils.GetQueryParam(r, "query", "")
	if query == "" {
		utils.RespondError(w, "query is required", http.StatusBadRequest)
		return
	}

	page, err := utils.ParseQueryInt(r, "page", 1, 1, maxPage)
	if err != nil {
		utils.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := utils.ParseQueryInt(r, "limit", 0, 1, 100)
	if err != nil {
		utils.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.tmdbClient.SearchMulti(r.Context(), query, page)
	if err != nil {
		h.log.Error("search failed", zap.String("query", query), zap.Error(err))
		utils.RespondError(w, "Failed to search", http.StatusInternalServerError)
		return
	}

	results := make([]types.MediaItem, 0, len(resp.Results))
	for _, item := range resp.Results {
		if !types.ValidMediaType(item.MediaType) || !item.HasPoster() {
			continue
		}
		results = append(results, item)
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	utils.RespondJSON(w, newPageResponse(resp, results), http.StatusOK)
}

// GetGenre lists titles of one genre: /api/genre/{id}?type=tv&page=2.
func (h *CatalogHandler) GetGenre(w http.ResponseWriter, r *http.Request) {
	genreID, err := utils.GetPathParamInt(r, "id")
	if err != nil || genreID <= 0 {
		utils.RespondError(w, "Invalid genre ID", http.StatusBadRequest)
		return
	}

	mediaType := utils.GetQueryParam(r, "type", types.MediaTypeMovie)
	if !types.ValidMediaType(mediaType) {
		utils.RespondError(w, "type must be movie or tv", http.StatusBadRequest)
		return
	}

	page, err := utils.ParseQueryInt(r, "page", 1, 1, maxPage)
	if err != nil {
		utils.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.tmdbClient.DiscoverByGenre(r.Context(), mediaType, genreID, page)
	if err != nil {
		h.log.Error("genre discover failed",
			zap.Int("genre_id", genreID),
			zap.String("type", mediaType),
			zap.Error(err),
		)
		utils.RespondError(w, "Failed to fetch genre", http.StatusInternalServerError)
		return
	}

	results := h.locale.FilterPage(resp.Results, mediaType, false)
	utils.RespondJSON(w, newPageResponse(resp, results), http.StatusOK)
}

// GetGenres returns the genre list, or an empty list when TMDB fails.
func (h *CatalogHandler) GetGenres(w http.ResponseWriter, r *http.Request) {
	mediaType := utils.GetQueryParam(r, "type", types.MediaTypeMovie)
	if !types.ValidMediaType(mediaType) {
		utils.RespondError(w, "type must be movie or tv", http.StatusBadRequest)
		return
	}

	genres, err := h.tmdbClient.GetGenres(r.Context(), mediaType)
	if err != nil {
		h.log.Warn("genre list unavailable", zap.String("type", mediaType), zap.Error(err))
		genres = nil
	}
	if genres == nil {
		genres = []types.Genre{}
	}

	utils.RespondJSON(w, map[string]interface{}{
		"genres": genres,
	}, http.StatusOK)
}

// GetDetails serves /api/details/{type}/{id} with the US content rating attached.
func (h *CatalogHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	mediaType := utils.GetPathParam(r, "type")
	if !types.ValidMediaType(mediaType) {
		utils.RespondError(w, "type must be movie or tv", http.StatusBadRequest)
		return
	}

	tmdbID, err := utils.GetPathParamInt(r, "id")
	if err != nil || tmdbID <= 0 {
		utils.RespondError(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	details, err := h.tmdbClient.GetDetails(r.Context(), mediaType, tmdbID)
	if errors.Is(err, services.ErrNotFound) {
		utils.RespondError(w, "Content not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("details lookup failed",
			zap.String("type", mediaType),
			zap.Int("id", tmdbID),
			zap.Error(err),
		)
		utils.RespondError(w, "Failed to fetch details", http.StatusInternalServerError)
		return
	}

	details.ContentRating = h.ratings.Rating(r.Context(), mediaType, tmdbID)
	details.PosterURL = services.GetPosterURL(details.PosterPath, "w500")
	if mediaType == types.MediaTypeMovie {
		details.Year = services.ExtractYear(details.ReleaseDate)
	} else {
		details.Year = services.ExtractYear(details.FirstAirDate)
	}

	utils.RespondJSON(w, details, http.StatusOK)
}
