package models

// Location is the result of a geolocation lookup for a source IP.
type Location struct {
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Region      string `json:"region"`
	Timezone    string `json:"timezone"`
}

// CountyCode returns the composite county code, e.g. "AU-NSW".
func (l Location) CountyCode() string {
	return l.CountryCode + "-" + l.Region
}

// Country is one entry of the holiday feed's supported-country list.
type Country struct {
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
}

// PublicHoliday is one entry of the external public-holiday feed.
type PublicHoliday struct {
	Date      string   `json:"date"`
	LocalName string   `json:"localName"`
	Global    bool     `json:"global"`
	Counties  []string `json:"counties"`
}
