package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"vyruchaiBack/internal/geo"
	"vyruchaiBack/internal/models"
)

type GeoHandler struct {
	Geocoder *geo.YandexClient
}

// Geocode resolves an address query to coordinates.
func (h *GeoHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Missing query", http.StatusBadRequest)
		return
	}

	lon, lat, err := h.Geocoder.Geocode(r.Context(), query)
	if err != nil {
		if errors.Is(err, models.ErrGeocodeNoResult) {
			http.Error(w, "Address not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Geocoder unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"lon": lon, "lat": lat})
}

// ReverseGeocode resolves coordinates back to a display address.
func (h *GeoHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lon, err1 := strconv.ParseFloat(q.Get("lon"), 64)
	lat, err2 := strconv.ParseFloat(q.Get("lat"), 64)
	if err1 != nil || err2 != nil {
		http.Error(w, "Invalid coordinates", http.StatusBadRequest)
		return
	}

	address, err := h.Geocoder.ReverseGeocode(r.Context(), lon, lat)
	if err != nil {
		if errors.Is(err, models.ErrGeocodeNoResult) {
			http.Error(w, "Address not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Geocoder unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"address": address})
}
