package nominatim

// SearchOptions contains optional parameters for geocoding searches.
type SearchOptions struct {
	// CountryCodes limits results to specific countries (comma-separated ISO 3166-1 alpha-2 codes, e.g. "fr,de")
	CountryCodes string
	// Limit controls the maximum number of results (default: 1, max: 50)
	Limit int
	// Viewbox biases results toward a specific geographic bounding box
	Viewbox *Viewbox
}

// Viewbox defines a geographic bounding box for biasing search results.
type Viewbox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// SearchResult is a single result from the search endpoint (format=jsonv2).
type SearchResult struct {
	PlaceID     int64    `json:"place_id"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	DisplayName string   `json:"display_name"`
	Type        string   `json:"type"`
	Category    string   `json:"category,omitempty"`
	Importance  float64  `json:"importance"`
	OSMID       int64    `json:"osm_id"`
	OSMType     string   `json:"osm_type"`
	BoundingBox []string `json:"boundingbox,omitempty"`
}
