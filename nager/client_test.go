package nager

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableCountries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/AvailableCountries", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"countryCode": "AU", "name": "Australia"},
			{"countryCode": "NZ", "name": "New Zealand"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	countries, err := client.AvailableCountries(context.Background())
	assert.NoError(t, err)
	assert.Len(t, countries, 2)
	assert.Equal(t, "Australia", countries[0].Name)
	assert.Equal(t, "AU", countries[0].CountryCode)
}

func TestPublicHolidays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/PublicHolidays/2024/AU", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"date": "2024-01-01", "localName": "New Year's Day", "global": true},
			{"date": "2024-03-11", "localName": "Labour Day", "global": false, "counties": ["AU-VIC"]}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	holidays, err := client.PublicHolidays(context.Background(), "AU", 2024)
	assert.NoError(t, err)
	assert.Len(t, holidays, 2)

	assert.Equal(t, "2024-01-01", holidays[0].Date)
	assert.Equal(t, "New Year's Day", holidays[0].LocalName)
	assert.True(t, holidays[0].Global)

	assert.False(t, holidays[1].Global)
	assert.Equal(t, []string{"AU-VIC"}, holidays[1].Counties)
}

func TestPublicHolidaysErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no data", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	holidays, err := client.PublicHolidays(context.Background(), "XX", 2024)
	assert.Nil(t, holidays)
	assert.ErrorContains(t, err, "status code 404")
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("")
	assert.Equal(t, defaultBaseURL, client.BaseURL)
	assert.Equal(t, defaultHTTPTimeout, client.HTTPClient.Timeout)
}
