package handlers

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"reelshelf/internal/auth"
	"reelshelf/internal/database"
	"reelshelf/internal/services"
	"reelshelf/internal/types"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *sql.DB, email string) *auth.User {
	t.Helper()
	user, err := database.GetOrCreateUserByEmail(context.Background(), db, email)
	require.NoError(t, err)
	return &auth.User{ID: user.ID, Email: user.Email}
}

func newRequest(method, target, body string, user *auth.User) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}
	return req
}

// serve routes req through a mux so path values are populated.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func posterPath(p string) *string { return &p }

type fakeCatalog struct {
	page    *types.PagedResults
	genres  []types.Genre
	details *types.MediaDetails
	err     error

	lastCategory string
	lastPage     int
}

func (f *fakeCatalog) FetchCategory(ctx context.Context, mediaType, category string, page int) (*types.PagedResults, error) {
	f.lastCategory = category
	f.lastPage = page
	return f.page, f.err
}

func (f *fakeCatalog) SearchMulti(ctx context.Context, query string, page int) (*types.PagedResults, error) {
	f.lastPage = page
	return f.page, f.err
}

func (f *fakeCatalog) DiscoverByGenre(ctx context.Context, mediaType string, genreID, page int) (*types.PagedResults, error) {
	f.lastPage = page
	return f.page, f.err
}

func (f *fakeCatalog) GetGenres(ctx context.Context, mediaType string) ([]types.Genre, error) {
	return f.genres, f.err
}

func (f *fakeCatalog) GetDetails(ctx context.Context, mediaType string, tmdbID int) (*types.MediaDetails, error) {
	return f.details, f.err
}

type fakeRatings struct {
	rating   string
	enriched int
}

func (f *fakeRatings) Enrich(ctx context.Context, items []types.MediaItem) {
	f.enriched += len(items)
	for i := range items {
		items[i].ContentRating = f.rating
	}
}

func (f *fakeRatings) Rating(ctx context.Context, mediaType string, tmdbID int) string {
	return f.rating
}

type fakeRows struct {
	row      *services.ContentRow
	err      error
	minCount int
}

func (f *fakeRows) Build(ctx context.Context, rowID string, minCount int) (*services.ContentRow, error) {
	f.minCount = minCount
	return f.row, f.err
}

func (f *fakeRows) Rows() []services.RowConfig {
	return services.DefaultRows
}
