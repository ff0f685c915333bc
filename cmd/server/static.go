package main

import (
	"io/fs"
	"net/http"
)

// Client-side routes that must load index.html.
var spaRoutes = []string{
	"GET /search",
	"GET /watchlist",
	"GET /profile",
	"GET /signin",
	"GET /genre/{id}",
	"GET /details/{type}/{id}",
}

func registerSPA(mux *http.ServeMux, static fs.FS) {
	files := addCacheHeaders(http.FileServer(http.FS(static)))

	for _, route := range spaRoutes {
		mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
			r.URL.Path = "/"
			files.ServeHTTP(w, r)
		})
	}
	mux.Handle("/", files)
}

// addCacheHeaders disables caching for index.html and caches assets for a year.
func addCacheHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "/index.html" {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=31536000")
		}

		next.ServeHTTP(w, r)
	})
}
