package types

import (
	"strconv"
	"time"
)

const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// ValidMediaType reports whether t is one of the catalog media types.
func ValidMediaType(t string) bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// MediaItem is a TMDB list record passed through to clients.
// Only MediaType and ContentRating are set by us.
type MediaItem struct {
	ID               int      `json:"id"`
	Title            string   `json:"title,omitempty"`
	Name             string   `json:"name,omitempty"`
	OriginalTitle    string   `json:"original_title,omitempty"`
	OriginalName     string   `json:"original_name,omitempty"`
	Overview         string   `json:"overview"`
	PosterPath       *string  `json:"poster_path"`
	BackdropPath     *string  `json:"backdrop_path"`
	ReleaseDate      string   `json:"release_date,omitempty"`
	FirstAirDate     string   `json:"first_air_date,omitempty"`
	GenreIDs         []int    `json:"genre_ids"`
	OriginCountry    []string `json:"origin_country,omitempty"`
	OriginalLanguage string   `json:"original_language"`
	Popularity       float64  `json:"popularity"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	Adult            bool     `json:"adult"`
	MediaType        string   `json:"media_type,omitempty"`
	ContentRating    string   `json:"content_rating,omitempty"`
}

// HasPoster reports whether the item carries a usable poster path.
func (m MediaItem) HasPoster() bool {
	return m.PosterPath != nil && *m.PosterPath != ""
}

// Key combines media type and id; movie and tv ids overlap on TMDB.
func (m MediaItem) Key() string {
	return m.MediaType + ":" + strconv.Itoa(m.ID)
}

// PagedResults is the envelope TMDB uses for list endpoints.
type PagedResults struct {
	Page         int         `json:"page"`
	Results      []MediaItem `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MediaDetails is the subset of /movie/{id} and /tv/{id} the detail page renders.
type MediaDetails struct {
	MediaItem
	Genres           []Genre `json:"genres"`
	Runtime          int     `json:"runtime,omitempty"`
	EpisodeRunTime   []int   `json:"episode_run_time,omitempty"`
	NumberOfSeasons  int     `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int     `json:"number_of_episodes,omitempty"`
	Status           string  `json:"status"`
	Tagline          string  `json:"tagline,omitempty"`
	Homepage         string  `json:"homepage,omitempty"`
	IMDbID           string  `json:"imdb_id,omitempty"`
	PosterURL        string  `json:"poster_url,omitempty"`
	Year             *int    `json:"year,omitempty"`
}

// User is an account created by the magic-link flow.
type User struct {
	ID            string     `json:"id"`
	Name          *string    `json:"name"`
	Email         string     `json:"email"`
	EmailVerified *time.Time `json:"emailVerified"`
	Image         *string    `json:"image"`
	Created       time.Time  `json:"createdAt"`
	Updated       time.Time  `json:"updatedAt"`
}

type Session struct {
	ID           string    `json:"id"`
	SessionToken string    `json:"-"`
	UserID       string    `json:"userId"`
	Expires      time.Time `json:"expires"`
}

type VerificationToken struct {
	Identifier string
	TokenHash  string
	Expires    time.Time
}

const (
	WatchStatusWantToWatch = "want_to_watch"
	WatchStatusWatching    = "watching"
	WatchStatusWatched     = "watched"
	WatchStatusDropped     = "dropped"
)

// WatchlistItem is one entry of a user's watchlist, unique per (UserID, ContentID, MediaType).
type WatchlistItem struct {
	ID                 int64     `json:"id"`
	UserID             string    `json:"userId"`
	ContentID          int       `json:"contentId"`
	MediaType          string    `json:"mediaType"`
	Status             string    `json:"status"`
	LastWatchedSeason  *int      `json:"lastWatchedSeason"`
	LastWatchedEpisode *int      `json:"lastWatchedEpisode"`
	Created            time.Time `json:"createdAt"`
	Updated            time.Time `json:"updatedAt"`
}

// Request/Response types
type CreateWatchlistItemRequest struct {
	ContentID          int    `json:"contentId" validate:"required,gt=0"`
	MediaType          string `json:"mediaType" validate:"required,oneof=movie tv"`
	Status             string `json:"status" validate:"omitempty,oneof=want_to_watch watching watched dropped"`
	LastWatchedSeason  *int   `json:"lastWatchedSeason" validate:"omitempty,gte=0"`
	LastWatchedEpisode *int   `json:"lastWatchedEpisode" validate:"omitempty,gte=0"`
}

type UpdateWatchlistItemRequest struct {
	Status             *string `json:"status" validate:"omitempty,oneof=want_to_watch watching watched dropped"`
	LastWatchedSeason  *int    `json:"lastWatchedSeason" validate:"omitempty,gte=0"`
	LastWatchedEpisode *int    `json:"lastWatchedEpisode" validate:"omitempty,gte=0"`
}

type UpdateNameRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

type SignInRequest struct {
	Email       string `json:"email" validate:"required,email"`
	CallbackURL string `json:"callbackUrl"`
}
