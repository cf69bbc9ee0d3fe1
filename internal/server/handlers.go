// Package server serves a rendered bubble map over HTTP.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Handler routes the map endpoints through the request logger.
func (s *ServerContext) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/points", s.HandlePoints)
	mux.HandleFunc("/points.geojson", s.HandleGeoJSON)
	mux.HandleFunc("/preview.webp", s.HandlePreview)
	mux.HandleFunc("/", s.HandleIndex)

	return RequestLogger(log.Logger, mux)
}

// HandlePoints serves the records and their styles as JSON.
func (s *ServerContext) HandlePoints(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(s.Points)
}

// HandleIndex serves the map page.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	serveAsset(w, r, s.Page)
}

// HandleGeoJSON serves the point table as a FeatureCollection.
func (s *ServerContext) HandleGeoJSON(w http.ResponseWriter, r *http.Request) {
	serveAsset(w, r, s.GeoJSON)
}

// HandlePreview serves the static WebP rendering.
func (s *ServerContext) HandlePreview(w http.ResponseWriter, r *http.Request) {
	serveAsset(w, r, s.Preview)
}

// serveAsset writes a with ETag revalidation.
func serveAsset(w http.ResponseWriter, r *http.Request, a asset) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == a.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("ETag", a.ETag)
	w.Header().Set("Cache-Control", "public, no-cache")

	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(a.Body)
}
