// Package location resolves source IPs to coarse locations via the ip-api.com
// JSON endpoint.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rtotrack.dev/rtotrack/core/models"
)

const (
	defaultBaseURL     = "http://ip-api.com"
	defaultHTTPTimeout = 10 * time.Second
)

// Client talks to the ip-api.com lookup endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client. An empty baseURL selects the public endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

type lookupResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Region      string `json:"region"`
	RegionName  string `json:"regionName"`
	Timezone    string `json:"timezone"`
}

// Lookup resolves one IP address. ip-api reports failures inside a 200
// response with status "fail"; those surface as errors too.
func (c *Client) Lookup(ctx context.Context, ip string) (models.Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/json/"+ip, nil)
	if err != nil {
		return models.Location{}, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to look up %s: %w", ip, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return models.Location{}, fmt.Errorf("lookup of %s failed with status code %d: %s", ip, resp.StatusCode, string(b))
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Location{}, fmt.Errorf("failed to decode lookup response: %w", err)
	}
	if body.Status != "success" {
		return models.Location{}, fmt.Errorf("lookup of %s failed: %s", ip, body.Message)
	}

	return models.Location{
		Country:     body.Country,
		CountryCode: body.CountryCode,
		Region:      body.Region,
		Timezone:    body.Timezone,
	}, nil
}
