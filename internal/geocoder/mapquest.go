// Package geocoder turns free text addresses and zipcodes into coordinates
// through the MapQuest geocoding API, with answers cached in Redis.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/ayush/devcamper/backend/internal/apperr"
	"github.com/ayush/devcamper/backend/internal/models"
)

const DefaultURL = "https://www.mapquestapi.com/geocoding/v1/address"

// Result is the best match for an address.
type Result struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formattedAddress"`
	Street           string  `json:"street"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	Zipcode          string  `json:"zipcode"`
	Country          string  `json:"country"`
}

// Location converts r to the stored GeoJSON point.
func (r Result) Location() *models.Location {
	return &models.Location{
		Type:             "Point",
		Coordinates:      []float64{r.Lng, r.Lat},
		FormattedAddress: r.FormattedAddress,
		Street:           r.Street,
		City:             r.City,
		State:            r.State,
		Zipcode:          r.Zipcode,
		Country:          r.Country,
	}
}

// MapQuest is a geocoding client for the MapQuest address endpoint.
type MapQuest struct {
	http    *retryablehttp.Client
	baseURL string
	apiKey  string
	cache   *Cache
}

// NewMapQuest builds a client against baseURL. cache may be nil.
func NewMapQuest(baseURL, apiKey string, cache *Cache) *MapQuest {
	base := cleanhttp.DefaultPooledClient()
	base.Timeout = 10 * time.Second

	client := retryablehttp.NewClient()
	client.HTTPClient = base
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = slog.Default()
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &MapQuest{http: client, baseURL: baseURL, apiKey: apiKey, cache: cache}
}

type mapquestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			City       string `json:"adminArea5"`
			State      string `json:"adminArea3"`
			Country    string `json:"adminArea1"`
			PostalCode string `json:"postalCode"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

// Geocode resolves address to its best match.
func (m *MapQuest) Geocode(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, apperr.Validation("Please add an address")
	}
	if res, ok := m.cache.get(ctx, address); ok {
		return res, nil
	}

	q := url.Values{}
	q.Set("key", m.apiKey)
	q.Set("location", address)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, apperr.Upstream(err, "Geocoder request failed")
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, apperr.Upstream(err, "Geocoder request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream(fmt.Errorf("geocoder returned %s", resp.Status), "Geocoder request failed")
	}

	var body mapquestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperr.Upstream(err, "Geocoder request failed")
	}
	if body.Info.StatusCode != 0 {
		return nil, apperr.Upstream(fmt.Errorf("geocoder status %d: %s", body.Info.StatusCode, strings.Join(body.Info.Messages, "; ")), "Geocoder request failed")
	}
	if len(body.Results) == 0 || len(body.Results[0].Locations) == 0 {
		return nil, apperr.Validation("Could not find a location for %s", address)
	}

	loc := body.Results[0].Locations[0]
	res := &Result{
		Lat:     loc.LatLng.Lat,
		Lng:     loc.LatLng.Lng,
		Street:  loc.Street,
		City:    loc.City,
		State:   loc.State,
		Zipcode: loc.PostalCode,
		Country: loc.Country,
	}
	res.FormattedAddress = formatAddress(res)

	m.cache.put(ctx, address, res)
	return res, nil
}

func formatAddress(r *Result) string {
	var parts []string
	for _, p := range []string{r.Street, r.City, strings.TrimSpace(r.State + " " + r.Zipcode), r.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
