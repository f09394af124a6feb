package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vyruchaiBack/internal/models"
)

const defaultGeocoderBaseURL = "https://geocode-maps.yandex.ru"

// YandexClient resolves addresses through the Yandex geocoder API.
type YandexClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

func NewYandexClient(httpClient *http.Client, apiKey string) *YandexClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &YandexClient{httpClient: httpClient, apiKey: apiKey, baseURL: defaultGeocoderBaseURL}
}

// tryParseLonLat returns lon,lat if query looks like "lon,lat" (WGS84), otherwise (0,0,false).
func tryParseLonLat(query string) (float64, float64, bool) {
	q := strings.TrimSpace(query)
	sep := ","
	if strings.Contains(q, ";") {
		sep = ";"
	}
	parts := strings.Split(q, sep)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lon, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return 0, 0, false
	}
	return lon, lat, true
}

type geocoderResponse struct {
	Response struct {
		GeoObjectCollection struct {
			FeatureMember []struct {
				GeoObject struct {
					Name        string `json:"name"`
					Description string `json:"description"`
					Point       struct {
						Pos string `json:"pos"`
					} `json:"Point"`
				} `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

// Geocode returns coordinates (lon, lat) for an address. A query that
// already looks like "lon,lat" short-circuits without hitting the API.
func (c *YandexClient) Geocode(ctx context.Context, query string) (float64, float64, error) {
	if strings.TrimSpace(query) == "" {
		return 0, 0, errors.New("geocode: empty query")
	}
	if lon, lat, ok := tryParseLonLat(query); ok {
		return lon, lat, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	obj, err := c.fetchFirst(ctx, query)
	if err != nil {
		return 0, 0, err
	}

	parts := strings.Fields(obj.Point.Pos)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("geocode: malformed point %q", obj.Point.Pos)
	}
	lon, err1 := strconv.ParseFloat(parts[0], 64)
	lat, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("geocode: malformed point %q", obj.Point.Pos)
	}
	return lon, lat, nil
}

// ReverseGeocode returns a display address for coordinates.
func (c *YandexClient) ReverseGeocode(ctx context.Context, lon, lat float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	obj, err := c.fetchFirst(ctx, fmt.Sprintf("%f,%f", lon, lat))
	if err != nil {
		return "", err
	}
	if obj.Description != "" {
		return fmt.Sprintf("%s, %s", obj.Description, obj.Name), nil
	}
	return obj.Name, nil
}

func (c *YandexClient) fetchFirst(ctx context.Context, query string) (*struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Point       struct {
		Pos string `json:"pos"`
	} `json:"Point"`
}, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("geocode", query)
	params.Set("format", "json")
	params.Set("results", "1")
	params.Set("lang", "ru_RU")

	endpoint := fmt.Sprintf("%s/1.x/?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocode: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed geocoderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("geocode: decode response: %w", err)
	}

	members := parsed.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		return nil, models.ErrGeocodeNoResult
	}
	return &members[0].GeoObject, nil
}
