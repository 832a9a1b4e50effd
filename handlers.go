package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/kwv/beaconmesh/mesh"
)

// newHTTPServer creates an HTTP server with all endpoints. publisher may be
// nil when MQTT is off.
func newHTTPServer(stateTracker *mesh.StateTracker, config *mesh.Config, publisher *mesh.Publisher) http.Handler {
	mux := http.NewServeMux()

	renderCfg := mesh.DefaultConfig().Render
	if config != nil {
		renderCfg = config.Render
	}

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] /health request from %s", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status      string    `json:"status"`
			Timestamp   time.Time `json:"timestamp"`
			HasResult   bool      `json:"hasResult"`
			LastError   string    `json:"lastError,omitempty"`
			LastUpdated time.Time `json:"lastUpdated"`
			Published   string    `json:"lastPublishedRunId,omitempty"`
		}{
			Status:      "ok",
			Timestamp:   time.Now(),
			HasResult:   stateTracker.HasResult(),
			LastUpdated: stateTracker.LastUpdated(),
		}
		if err := stateTracker.LastError(); err != nil {
			status.LastError = err.Error()
		}
		if publisher != nil {
			if last, ok := publisher.LastReport(); ok {
				status.Published = last.RunID
			}
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	mux.HandleFunc("/result.json", func(w http.ResponseWriter, r *http.Request) {
		report := stateTracker.Report()
		if report == nil {
			http.Error(w, "No alignment available", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.Printf("Error encoding result: %v", err)
		}
	})

	mux.HandleFunc("/beacons.geojson", func(w http.ResponseWriter, r *http.Request) {
		al := stateTracker.Alignment()
		if al == nil {
			http.Error(w, "No alignment available", http.StatusServiceUnavailable)
			return
		}
		data, err := mesh.BeaconsGeoJSON(al).MarshalJSON()
		if err != nil {
			log.Printf("Error encoding GeoJSON: %v", err)
			http.Error(w, "GeoJSON encoding failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(data)
	})

	mux.HandleFunc("/map.svg", func(w http.ResponseWriter, r *http.Request) {
		al := stateTracker.Alignment()
		if al == nil {
			http.Error(w, "No alignment available", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := mesh.NewVectorRenderer(al, renderCfg).RenderToSVG(w); err != nil {
			log.Printf("Error rendering map SVG: %v", err)
		}
	})

	mux.HandleFunc("/map.png", func(w http.ResponseWriter, r *http.Request) {
		al := stateTracker.Alignment()
		if al == nil {
			http.Error(w, "No alignment available", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := mesh.NewRasterRenderer(al, renderCfg).WritePNG(w); err != nil {
			log.Printf("Error encoding map PNG: %v", err)
		}
	})

	return mux
}
