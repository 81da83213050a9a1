package ipstack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"geoapi/internal/domain"
	"geoapi/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("ipstack: api key is required")

// Provider error code for a request made without an access key. The health
// probe relies on it: getting this answer back proves the service is up.
const missingAccessKeyCode = 101

// Options configures the ipstack client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the ipstack geolocation API. It issues
// exactly one request per lookup and never retries.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type apiPayload struct {
	Success *bool `json:"success,omitempty"`
	Error   struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
	IP            string   `json:"ip"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	City          string   `json:"city"`
	RegionName    string   `json:"region_name"`
	CountryName   string   `json:"country_name"`
	ContinentName string   `json:"continent_name"`
	Zip           string   `json:"zip"`
	TimeZone      struct {
		ID string `json:"id"`
	} `json:"time_zone"`
	Connection struct {
		ISP string `json:"isp"`
	} `json:"connection"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.ipstack.com"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// LookupIP fetches geolocation data for an IP address.
func (c *Client) LookupIP(ctx context.Context, ip string) (*domain.Geolocation, error) {
	return c.lookup(ctx, ip)
}

// LookupDomain fetches geolocation data for a registrable domain. The
// provider resolves the domain itself; the echoed URL, if any, is discarded
// upstream in favor of the caller's canonical input.
func (c *Client) LookupDomain(ctx context.Context, name string) (*domain.Geolocation, error) {
	return c.lookup(ctx, name)
}

func (c *Client) lookup(ctx context.Context, target string) (*domain.Geolocation, error) {
	endpoint := fmt.Sprintf("%s/%s?access_key=%s", c.baseURL, url.PathEscape(target), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrLookupService, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupService, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrLookupService, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrLookupService, resp.StatusCode)
	}

	var p apiPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrLookupService, err)
	}
	if p.Success != nil && !*p.Success {
		if p.Error.Code == http.StatusNotFound {
			return nil, domain.ErrGeolocationNotFound
		}
		return nil, fmt.Errorf("%w: %s (%d)", domain.ErrLookupService, p.Error.Type, p.Error.Code)
	}
	if p.IP == "" || p.Latitude == nil || p.Longitude == nil {
		return nil, fmt.Errorf("%w: response missing ip or coordinates", domain.ErrLookupService)
	}

	g := &domain.Geolocation{
		IP:         p.IP,
		Latitude:   *p.Latitude,
		Longitude:  *p.Longitude,
		City:       p.City,
		Region:     p.RegionName,
		Country:    p.CountryName,
		Continent:  p.ContinentName,
		PostalCode: p.Zip,
		Timezone:   p.TimeZone.ID,
		ISP:        p.Connection.ISP,
	}
	c.logger.Debug().Str("target", target).Str("ip", g.IP).Msg("ipstack: resolved geolocation")
	return g, nil
}

// Available probes the provider without credentials. A missing-access-key
// answer still counts as available: reachability is what is being tested, not
// authorization. It never returns an error.
func (c *Client) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/check", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("ipstack: health probe failed, assuming unavailable")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusSwitchingProtocols {
		// Legacy missing-key answer delivered as a bare status.
		return true
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}
	var p apiPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return false
	}
	if p.Success != nil && !*p.Success {
		return p.Error.Code == missingAccessKeyCode
	}
	return true
}
