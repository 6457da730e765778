package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuseats/internal/errors"
	"campuseats/internal/repository"
)

// geocodeBBoxDelta bounds address search to roughly a campus-sized box
// around the campus center (degrees).
const geocodeBBoxDelta = 0.05

// geocodeLimit caps candidate results per lookup.
const geocodeLimit = 5

// GeocodeResult is one address candidate from the geocoding service.
type GeocodeResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// GeocodeService resolves free-text addresses near a campus via a public
// Nominatim-style endpoint.
type GeocodeService interface {
	Search(ctx context.Context, query string, campusID uuid.UUID) ([]GeocodeResult, error)
}

type geocodeService struct {
	campusRepo repository.CampusRepository
	endpoint   string
	client     *http.Client
}

// NewGeocodeService creates a new geocode service.
func NewGeocodeService(campusRepo repository.CampusRepository, endpoint string) GeocodeService {
	return &geocodeService{
		campusRepo: campusRepo,
		endpoint:   endpoint,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Search looks up address candidates for a query, bounded to a box around
// the campus center.
func (s *geocodeService) Search(ctx context.Context, query string, campusID uuid.UUID) ([]GeocodeResult, error) {
	campus, err := s.campusRepo.FindByID(ctx, campusID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCampusNotFound
		}
		return nil, err
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(geocodeLimit))
	params.Set("bounded", "1")
	// viewbox is lon1,lat1,lon2,lat2
	params.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f",
		campus.Longitude-geocodeBBoxDelta,
		campus.Latitude+geocodeBBoxDelta,
		campus.Longitude+geocodeBBoxDelta,
		campus.Latitude-geocodeBBoxDelta,
	))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	// Nominatim's usage policy requires an identifying UA
	req.Header.Set("User-Agent", "campuseats/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var results []GeocodeResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) > geocodeLimit {
		results = results[:geocodeLimit]
	}
	return results, nil
}
