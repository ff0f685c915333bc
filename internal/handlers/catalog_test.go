package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reelshelf/internal/services"
	"reelshelf/internal/types"
)

func samplePage() *types.PagedResults {
	return &types.PagedResults{
		Page: 1,
		Results: []types.MediaItem{
			{ID: 1, Name: "Home", PosterPath: posterPath("/a.jpg"), OriginCountry: []string{"US"}, OriginalLanguage: "en"},
			{ID: 2, Name: "Abroad", PosterPath: posterPath("/b.jpg"), OriginCountry: []string{"KR"}, OriginalLanguage: "ko"},
			{ID: 3, Name: "No poster", OriginCountry: []string{"US"}, OriginalLanguage: "en"},
		},
		TotalPages:   4,
		TotalResults: 60,
	}
}

func decodePage(t *testing.T, body []byte) pageResponse {
	t.Helper()
	var resp pageResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestGetContent(t *testing.T) {
	catalog := &fakeCatalog{page: samplePage()}
	h := NewCatalogHandler(catalog, &fakeRatings{}, services.DefaultLocale, zap.NewNop())

	rec := serve("GET /api/content", h.GetContent,
		newRequest(http.MethodGet, "/api/content?category=popular&type=tv&page=2", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, catalog.lastPage)

	resp := decodePage(t, rec.Body.Bytes())
	require.Len(t, resp.Results, 2)
	assert.Equal(t, types.MediaTypeTV, resp.Results[0].MediaType)
	assert.Equal(t, 4, resp.TotalPages)

	rec = serve("GET /api/content", h.GetContent,
		newRequest(http.MethodGet, "/api/content?category=popular&type=tv&filterUsOnly=true", "", nil))
	resp = decodePage(t, rec.Body.Bytes())
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 1, resp.Results[0].ID)
}

func TestGetContentFiltersByConfiguredLocale(t *testing.T) {
	korea, err := services.NewLocaleRule("ko-KR")
	require.NoError(t, err)
	h := NewCatalogHandler(&fakeCatalog{page: samplePage()}, &fakeRatings{}, korea, zap.NewNop())

	rec := serve("GET /api/content", h.GetContent,
		newRequest(http.MethodGet, "/api/content?category=popular&type=tv&filterUsOnly=true", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodePage(t, rec.Body.Bytes())
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 2, resp.Results[0].ID)
}

func TestGetContentBadInput(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{page: samplePage()}, &fakeRatings{}, services.DefaultLocale, zap.NewNop())

	for _, target := range []string{
		"/api/content?type=movie",
		"/api/content?category=popular&type=person",
		"/api/content?category=airing_today&type=movie",
		"/api/content?category=popular&type=movie&page=0",
		"/api/content?category=popular&type=movie&page=x",
	} {
		rec := serve("GET /api/content", h.GetContent, newRequest(http.MethodGet, target, "", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestGetContentUpstreamError(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{err: errors.New("boom")}, &fakeRatings{}, services.DefaultLocale, zap.NewNop())

	rec := serve("GET /api/content", h.GetContent,
		newRequest(http.MethodGet, "/api/content?category=popular&type=movie", "", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch content"}`, rec.Body.String())
}

func TestSearch(t *testing.T) {
	page := &types.PagedResults{
		Page: 1,
		Results: []types.MediaItem{
			{ID: 1, Title: "Movie", MediaType: "movie", PosterPath: posterPath("/m.jpg")},
			{ID: 2, Name: "Person", MediaType: "person", PosterPath: posterPath("/p.jpg")},
			{ID: 3, Name: "Show", MediaType: "tv", PosterPath: posterPath("/s.jpg")},
			{ID: 4, Name: "Show without poster", MediaType: "tv"},
			{ID: 5, Title: "Another", MediaType: "movie", PosterPath: posterPath("/x.jpg")},
		},
		TotalPages: 1,
	}
	h := NewCatalogHandler(&fakeCatalog{page: page}, &fakeRatings{}, services.DefaultLocale, zap.NewNop())

	rec := serve("GET /api/search", h.Search, newRequest(http.MethodGet, "/api/search?query=star", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodePage(t, rec.Body.Bytes())
	assert.Len(t, resp.Results, 3)

	rec = serve("GET /api/search", h.Search, newRequest(http.MethodGet, "/api/search?query=star&limit=2", "", nil))
	resp = decodePage(t, rec.Body.Bytes())
	assert.Len(t, resp.Results, 2)

	rec = serve("GET /api/search", h.Search, newRequest(http.MethodGet, "/api/search", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetGenre(t *testing.T) {
	catalog := &fakeCatalog{page: samplePage()}
	h := NewCatalogHandler(catalog, &fakeRatings{}, services.DefaultLocale, zap.NewNop())

	rec := serve("GET /api/genre/{id}", h.GetGenre, newRequest(http.MethodGet, "/api/genre/18?type=tv&page=3", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, catalog.lastPage)
	assert.Len(t, decodePage(t, rec.Body.Bytes()).Results, 2)

	rec = serve("GET /api/genre/{id}", h.GetGenre, newRequest(http.MethodGet, "/api/genre/drama", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetGenresDegradesToEmpty(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{err: errors.New("down")}, &fakeRatings{}, services.DefaultLocale, zap.NewNop())

	rec := serve("GET /api/genres", h.GetGenres, newRequest(http.MethodGet, "/api/genres?type=tv", "", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"genres":[]}`, rec.Body.String())
}

func TestGetDetails(t *testing.T) {
	details := &types.MediaDetails{
		MediaItem: types.MediaItem{ID: 550, Title: "Fight Club", PosterPath: posterPath("/f.jpg"), MediaType: "movie", ReleaseDate: "1999-10-15"},
		Runtime:   139,
	}
	h := NewCatalogHandler(&fakeCatalog{details: details}, &fakeRatings{rating: "R"}, services.DefaultLocale, zap.NewNop())

	rec := serve("GET /api/details/{type}/{id}", h.GetDetails, newRequest(http.MethodGet, "/api/details/movie/550", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got types.MediaDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "R", got.ContentRating)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/f.jpg", got.PosterURL)
	assert.Equal(t, 139, got.Runtime)
	require.NotNil(t, got.Year)
	assert.Equal(t, 1999, *got.Year)
}

func TestGetDetailsErrors(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{err: fmt.Errorf("wrapped: %w", services.ErrNotFound)}, &fakeRatings{}, services.DefaultLocale, zap.NewNop())

	rec := serve("GET /api/details/{type}/{id}", h.GetDetails, newRequest(http.MethodGet, "/api/details/tv/1", "", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve("GET /api/details/{type}/{id}", h.GetDetails, newRequest(http.MethodGet, "/api/details/person/1", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = NewCatalogHandler(&fakeCatalog{err: errors.New("timeout")}, &fakeRatings{}, services.DefaultLocale, zap.NewNop())
	rec = serve("GET /api/details/{type}/{id}", h.GetDetails, newRequest(http.MethodGet, "/api/details/tv/1", "", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
