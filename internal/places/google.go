package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

const (
	defaultBaseURL = "https://places.googleapis.com"
	searchPath     = "/v1/places:searchNearby"

	// fieldMask limits responses to the fields the pipeline consumes.
	fieldMask = "places.id,places.displayName,places.location,places.types,places.rating,places.userRatingCount"

	defaultHTTPTimeout = 10 * time.Second
)

// GoogleClient talks to the Places API (New) searchNearby endpoint.
type GoogleClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	logger     *slog.Logger
}

func NewGoogleClient(apiKey, baseURL string, logger *slog.Logger) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("places API key is required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &GoogleClient{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		apiKey:     apiKey,
		baseURL:    baseURL,
		logger:     logger,
	}, nil
}

type searchNearbyRequest struct {
	IncludedTypes       []string            `json:"includedTypes"`
	MaxResultCount      int                 `json:"maxResultCount"`
	RankPreference      string              `json:"rankPreference,omitempty"`
	LocationRestriction locationRestriction `json:"locationRestriction"`
}

type locationRestriction struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchNearbyResponse struct {
	Places []struct {
		ID          string `json:"id"`
		DisplayName *struct {
			Text string `json:"text"`
		} `json:"displayName"`
		Location        *latLng  `json:"location"`
		Types           []string `json:"types"`
		Rating          float64  `json:"rating"`
		UserRatingCount int      `json:"userRatingCount"`
	} `json:"places"`
}

// SearchNearby performs one provider call. Results without a location are
// dropped here; everything else is passed through untouched so the
// aggregator owns filtering and ranking.
func (c *GoogleClient) SearchNearby(ctx context.Context, req SearchRequest) ([]types.Place, error) {
	if req.MaxResults <= 0 {
		req.MaxResults = DefaultResultCap
	}

	body := searchNearbyRequest{
		IncludedTypes:  req.IncludedTypes,
		MaxResultCount: req.MaxResults,
		RankPreference: string(req.RankBy),
		LocationRestriction: locationRestriction{
			Circle: circle{
				Center: latLng{Latitude: req.Center.Lat, Longitude: req.Center.Lng},
				Radius: req.RadiusMeters,
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("places search request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read places response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "Places provider returned non-OK status",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return nil, fmt.Errorf("places search returned status %d", resp.StatusCode)
	}

	var parsed searchNearbyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}

	results := make([]types.Place, 0, len(parsed.Places))
	for _, p := range parsed.Places {
		if p.Location == nil {
			continue
		}
		name := ""
		if p.DisplayName != nil {
			name = p.DisplayName.Text
		}
		results = append(results, types.Place{
			ID:              p.ID,
			DisplayName:     name,
			Location:        types.Coordinate{Lat: p.Location.Latitude, Lng: p.Location.Longitude},
			Types:           p.Types,
			Rating:          p.Rating,
			UserRatingCount: p.UserRatingCount,
		})
	}
	return results, nil
}
