// Package nager is a client for the Nager.Date public-holiday API
// (https://date.nager.at).
package nager

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
	defaultBaseURL     = "https://date.nager.at"
	defaultHTTPTimeout = 10 * time.Second
)

// Client talks to the Nager.Date v3 API. It satisfies both the country-table
// and holiday-feed contracts of the core.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client. An empty baseURL selects the public API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// AvailableCountries fetches the list of countries the feed supports.
func (c *Client) AvailableCountries(ctx context.Context) ([]models.Country, error) {
	var countries []models.Country
	if err := c.getJSON(ctx, "/api/v3/AvailableCountries", &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// PublicHolidays fetches the public holidays of a country code for one year.
func (c *Client) PublicHolidays(ctx context.Context, countryCode string, year int) ([]models.PublicHoliday, error) {
	var holidays []models.PublicHoliday
	path := fmt.Sprintf("/api/v3/PublicHolidays/%d/%s", year, countryCode)
	if err := c.getJSON(ctx, path, &holidays); err != nil {
		return nil, err
	}
	return holidays, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s failed with status code %d: %s", path, resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
