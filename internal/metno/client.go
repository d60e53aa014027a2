package metno

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/weatherlamp/weatherlamp/internal/provider/resilience"
)

const (
	// ProviderName identifies this upstream for logging and breaker naming.
	ProviderName = "metno"

	// DefaultBaseURL is the MET Norway weatherapi base URL.
	DefaultBaseURL = "https://api.met.no/weatherapi"

	// UserAgent identifies this service to MET Norway, as their terms of
	// service require.
	UserAgent = "WeatherLamp/0.5 github.com/weatherlamp/weatherlamp"
)

// ClientConfig holds configuration for the MET Norway client.
type ClientConfig struct {
	// BaseURL overrides the API base URL (used by tests).
	BaseURL string

	// HTTPClient is the resilient HTTP client to use. If nil, a client
	// with default retry and circuit breaker settings is created.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches raw responses from the MET Norway API.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new MET Norway client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Fetch issues a GET for the given product and coordinate and returns the
// raw response body. Coordinates are formatted to 3 decimal places.
//
// Status handling follows the MET Norway contract: 200 is ok, 203 is ok
// with a deprecation warning, 422 means no data for the location
// (ErrNoData), anything else is ErrUnexpectedStatus.
func (c *Client) Fetch(ctx context.Context, cast CastType, lat, lon float64) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/2.0/complete?lat=%.3f&lon=%.3f", c.baseURL, cast, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNonAuthoritativeInfo:
		c.logger.Warn().
			Str("cast", string(cast)).
			Msg("got 203 from upstream, API version may be deprecated")
	case http.StatusUnprocessableEntity:
		return nil, ErrNoData
	default:
		c.logger.Warn().
			Str("cast", string(cast)).
			Int("status", resp.StatusCode).
			Msg("unexpected upstream status")
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
