package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"

	detailFields = "place_id,name,formatted_address,formatted_phone_number," +
		"international_phone_number,website,rating,user_ratings_total," +
		"business_status,types,geometry,url,photos"

	maxPhotoReferences = 5
	photoMaxWidth      = 800

	mapsURLFallback = "https://maps.google.com/maps?place_id="
)

var (
	// ErrEmptyQuery indicates a search without a query string.
	ErrEmptyQuery = errors.New("places: query is required")
	// ErrMissingPlaceID indicates a detail lookup without a place identifier.
	ErrMissingPlaceID = errors.New("places: place id is required")
	// ErrNoResults indicates the upstream returned no matching place.
	ErrNoResults = errors.New("places: no results found")

	errMissingAPIKey = errors.New("places: api key is required")
)

// RateLimitError reports upstream throttling; RetryAfter carries the upstream
// Retry-After header value unchanged so callers can propagate it verbatim.
type RateLimitError struct {
	RetryAfter string
}

func (e *RateLimitError) Error() string {
	return "places: upstream rate limited"
}

// ClientConfig describes the dependencies of the lookup gateway.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client forwards search and detail lookups to the Google Places REST API and
// reshapes responses into the internal models. Neither call persists anything.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient validates the configuration and constructs the gateway.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errMissingAPIKey
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api/place"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{apiKey: cfg.APIKey, baseURL: baseURL, httpClient: httpClient, logger: logger}, nil
}

type textSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// Search forwards a free-text query to the upstream text-search endpoint.
func (c *Client) Search(ctx context.Context, query string) ([]Location, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)

	var response textSearchResponse
	if err := c.getJSON(ctx, "/textsearch/json", params, &response); err != nil {
		return nil, err
	}

	if response.Status == statusZeroResults || len(response.Results) == 0 {
		return nil, ErrNoResults
	}
	if response.Status != statusOK {
		c.logger.Warn("places search returned non-ok status", zap.String("status", response.Status))
		return nil, fmt.Errorf("places: upstream status %s", response.Status)
	}

	locations := make([]Location, 0, len(response.Results))
	for _, result := range response.Results {
		locations = append(locations, Location{
			ID:      result.PlaceID,
			Name:    result.Name,
			Address: result.FormattedAddress,
			PlaceID: result.PlaceID,
		})
	}
	return locations, nil
}

type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		PlaceID                  string   `json:"place_id"`
		Name                     string   `json:"name"`
		FormattedAddress         string   `json:"formatted_address"`
		FormattedPhoneNumber     string   `json:"formatted_phone_number"`
		InternationalPhoneNumber string   `json:"international_phone_number"`
		Website                  string   `json:"website"`
		Rating                   float64  `json:"rating"`
		UserRatingsTotal         int      `json:"user_ratings_total"`
		BusinessStatus           string   `json:"business_status"`
		Types                    []string `json:"types"`
		URL                      string   `json:"url"`
		Geometry                 *struct {
			Location Geometry `json:"location"`
		} `json:"geometry"`
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"result"`
}

// Details requests the fixed detail field set for a place and reshapes the
// response: formatted phone preferred over international, a maps URL derived
// when upstream omits one, and at most five photo references converted to
// fully qualified photo URLs.
func (c *Client) Details(ctx context.Context, placeID string) (PlaceDetails, error) {
	if strings.TrimSpace(placeID) == "" {
		return PlaceDetails{}, ErrMissingPlaceID
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailFields)
	params.Set("key", c.apiKey)

	var response detailsResponse
	if err := c.getJSON(ctx, "/details/json", params, &response); err != nil {
		return PlaceDetails{}, err
	}

	if response.Status == statusZeroResults || response.Status == "NOT_FOUND" || response.Result.PlaceID == "" {
		return PlaceDetails{}, ErrNoResults
	}
	if response.Status != statusOK {
		c.logger.Warn("places details returned non-ok status", zap.String("status", response.Status))
		return PlaceDetails{}, fmt.Errorf("places: upstream status %s", response.Status)
	}

	result := response.Result
	phone := result.FormattedPhoneNumber
	if phone == "" {
		phone = result.InternationalPhoneNumber
	}

	googleURL := result.URL
	if googleURL == "" {
		googleURL = mapsURLFallback + url.QueryEscape(result.PlaceID)
	}

	details := PlaceDetails{
		PlaceID:        result.PlaceID,
		Name:           result.Name,
		Address:        result.FormattedAddress,
		Phone:          phone,
		Website:        result.Website,
		Rating:         result.Rating,
		RatingCount:    result.UserRatingsTotal,
		BusinessStatus: result.BusinessStatus,
		Types:          result.Types,
		GoogleURL:      googleURL,
	}
	if result.Geometry != nil {
		geometry := result.Geometry.Location
		details.Geometry = &geometry
	}

	for index, photo := range result.Photos {
		if index == maxPhotoReferences {
			break
		}
		details.PhotoURLs = append(details.PhotoURLs, c.photoURL(photo.PhotoReference))
	}

	return details, nil
}

func (c *Client) photoURL(reference string) string {
	params := url.Values{}
	params.Set("maxwidth", fmt.Sprintf("%d", photoMaxWidth))
	params.Set("photo_reference", reference)
	params.Set("key", c.apiKey)
	return c.baseURL + "/photo?" + params.Encode()
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, target interface{}) error {
	endpoint := c.baseURL + path + "?" + params.Encode()
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("places: build request: %w", err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("places: upstream request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: response.Header.Get("Retry-After")}
	}
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("places: upstream http status %d", response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("places: decode response: %w", err)
	}
	return nil
}
