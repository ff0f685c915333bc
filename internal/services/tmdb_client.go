package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reelshelf/internal/types"
)

const DefaultTMDBBaseURL = "https://api.themoviedb.org/3"

var (
	// ErrNotFound is returned when TMDB answers 404.
	ErrNotFound = errors.New("tmdb: resource not found")
	// ErrInvalidCategory is returned for a category the media type does not support.
	ErrInvalidCategory = errors.New("tmdb: invalid category for media type")
)

// Category names accepted by FetchCategory, keyed by media type.
var categories = map[string][]string{
	types.MediaTypeMovie: {"popular", "top_rated", "now_playing", "upcoming", "trending"},
	types.MediaTypeTV:    {"popular", "top_rated", "airing_today", "on_the_air", "trending"},
}

// ValidCategory reports whether category can be listed for mediaType.
func ValidCategory(mediaType, category string) bool {
	for _, c := range categories[mediaType] {
		if c == category {
			return true
		}
	}
	return false
}

type TMDBClient struct {
	APIKey  string
	BaseURL string
	client  *http.Client
}

type genreListResponse struct {
	Genres []types.Genre `json:"genres"`
}

type releaseDatesResponse struct {
	Results []struct {
		Country      string `json:"iso_3166_1"`
		ReleaseDates []struct {
			Certification string `json:"certification"`
			Type          int    `json:"type"`
		} `json:"release_dates"`
	} `json:"results"`
}

type contentRatingsResponse struct {
	Results []struct {
		Country string `json:"iso_3166_1"`
		Rating  string `json:"rating"`
	} `json:"results"`
}

func NewTMDBClient(apiKey, baseURL string) *TMDBClient {
	if baseURL == "" {
		baseURL = DefaultTMDBBaseURL
	}
	return &TMDBClient{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *TMDBClient) makeRequest(ctx context.Context, endpoint string, params map[string]string) (*http.Response, error) {
	u, err := url.Parse(c.BaseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	query := u.Query()
	query.Set("api_key", c.APIKey)
	for key, value := range params {
		query.Set(key, value)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	return resp, nil
}

func (c *TMDBClient) getJSON(ctx context.Context, endpoint string, params map[string]string, dst any) error {
	resp, err := c.makeRequest(ctx, endpoint, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *TMDBClient) getPage(ctx context.Context, endpoint string, params map[string]string) (*types.PagedResults, error) {
	var page types.PagedResults
	if err := c.getJSON(ctx, endpoint, params, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []types.MediaItem{}
	}
	return &page, nil
}

func pageParam(page int) string {
	if page <= 0 {
		page = 1
	}
	return strconv.Itoa(page)
}

// FetchCategory gets one page of a category list such as popular movies or on-the-air TV.
func (c *TMDBClient) FetchCategory(ctx context.Context, mediaType, category string, page int) (*types.PagedResults, error) {
	if !ValidCategory(mediaType, category) {
		return nil, fmt.Errorf("%w: %s/%s", ErrInvalidCategory, mediaType, category)
	}

	endpoint := fmt.Sprintf("/%s/%s", mediaType, category)
	if category == "trending" {
		endpoint = fmt.Sprintf("/trending/%s/week", mediaType)
	}

	results, err := c.getPage(ctx, endpoint, map[string]string{"page": pageParam(page)})
	if err != nil {
		return nil, fmt.Errorf("%s %s request failed: %w", category, mediaType, err)
	}
	return results, nil
}

// SearchMulti searches movies, TV shows and people in one call.
func (c *TMDBClient) SearchMulti(ctx context.Context, query string, page int) (*types.PagedResults, error) {
	params := map[string]string{
		"query":         query,
		"page":          pageParam(page),
		"include_adult": "false",
	}

	results, err := c.getPage(ctx, "/search/multi", params)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	return results, nil
}

// DiscoverByGenre lists titles of a genre ordered by popularity.
func (c *TMDBClient) DiscoverByGenre(ctx context.Context, mediaType string, genreID, page int) (*types.PagedResults, error) {
	params := map[string]string{
		"with_genres": strconv.Itoa(genreID),
		"sort_by":     "popularity.desc",
		"page":        pageParam(page),
	}

	results, err := c.getPage(ctx, "/discover/"+mediaType, params)
	if err != nil {
		return nil, fmt.Errorf("discover request failed: %w", err)
	}
	return results, nil
}

// GetGenres gets the official genre list for a media type.
func (c *TMDBClient) GetGenres(ctx context.Context, mediaType string) ([]types.Genre, error) {
	var resp genreListResponse
	if err := c.getJSON(ctx, "/genre/"+mediaType+"/list", nil, &resp); err != nil {
		return nil, fmt.Errorf("genre list request failed: %w", err)
	}
	return resp.Genres, nil
}

// GetDetails gets detailed information about a movie or TV show.
func (c *TMDBClient) GetDetails(ctx context.Context, mediaType string, tmdbID int) (*types.MediaDetails, error) {
	var details types.MediaDetails
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/%d", mediaType, tmdbID), nil, &details); err != nil {
		return nil, fmt.Errorf("%s details request failed: %w", mediaType, err)
	}
	details.MediaType = mediaType
	return &details, nil
}

// GetContentRating returns the US certification (movies) or TV rating, or "" if none is listed.
func (c *TMDBClient) GetContentRating(ctx context.Context, mediaType string, tmdbID int) (string, error) {
	switch mediaType {
	case types.MediaTypeMovie:
		var resp releaseDatesResponse
		if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d/release_dates", tmdbID), nil, &resp); err != nil {
			return "", fmt.Errorf("release dates request failed: %w", err)
		}
		for _, r := range resp.Results {
			if r.Country != "US" {
				continue
			}
			for _, rd := range r.ReleaseDates {
				if rd.Certification != "" {
					return rd.Certification, nil
				}
			}
		}
		return "", nil
	case types.MediaTypeTV:
		var resp contentRatingsResponse
		if err := c.getJSON(ctx, fmt.Sprintf("/tv/%d/content_ratings", tmdbID), nil, &resp); err != nil {
			return "", fmt.Errorf("content ratings request failed: %w", err)
		}
		for _, r := range resp.Results {
			if r.Country == "US" {
				return r.Rating, nil
			}
		}
		return "", nil
	default:
		return "", fmt.Errorf("unsupported media type %q", mediaType)
	}
}

// GetPosterURL generates the full URL for a poster
func GetPosterURL(posterPath *string, size string) string {
	if posterPath == nil || *posterPath == "" {
		return ""
	}

	if size == "" {
		size = "w500"
	}

	return fmt.Sprintf("https://image.tmdb.org/t/p/%s%s", size, *posterPath)
}

// ExtractYear pulls the year out of a TMDB date string
func ExtractYear(date string) *int {
	if date == "" {
		return nil
	}

	parts := strings.Split(date, "-")
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}

	return &year
}
