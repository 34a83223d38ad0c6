package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Locator resolves a free-text address to coordinates. A nil result with
// a nil error means the address matched nothing; callers must treat a
// non-nil error the same way and never fail the surrounding operation.
type Locator interface {
	Locate(ctx context.Context, address string) (*Coordinates, error)
}

type Nominatim struct {
	BaseURL string
	Client  *http.Client
}

func NewNominatim(baseURL string, timeout time.Duration) *Nominatim {
	return &Nominatim{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

// candidate mirrors the relevant parts of the OSM search payload.
// lat/lon come back as strings.
type candidate struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (n *Nominatim) Locate(ctx context.Context, address string) (*Coordinates, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.BaseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "company-user-management-app")

	resp, err := n.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder status %d", resp.StatusCode)
	}

	var results []candidate
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	// only the first candidate is used
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lat %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lon %q: %w", results[0].Lon, err)
	}
	return &Coordinates{Latitude: lat, Longitude: lon}, nil
}
