package staticmap

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// MapboxName is the provider id and preference namespace for Mapbox.
	MapboxName = "mapbox"
	// DefaultMapboxBaseURL is the Mapbox Static Images API endpoint.
	DefaultMapboxBaseURL = "https://api.mapbox.com"

	DefaultMapboxMinZoom = 0
	DefaultMapboxMaxZoom = 20
	DefaultMapboxZoom    = 15
)

// MapboxStyles lists the Mapbox styles offered in the dialog.
var MapboxStyles = MustStyleTable(
	[]string{
		"Streets",
		"Outdoors",
		"Light",
		"Dark",
		"Satellite",
		"Satellite Streets",
		"Traffic Day",
		"Traffic Night",
	},
	map[string]string{
		"Streets":           "streets-v10",
		"Outdoors":          "outdoors-v10",
		"Light":             "light-v9",
		"Dark":              "dark-v9",
		"Satellite":         "satellite-v9",
		"Satellite Streets": "satellite-streets-v10",
		"Traffic Day":       "traffic-day-v2",
		"Traffic Night":     "traffic-night-v2",
	},
)

// MapboxConfig configures the Mapbox provider.
type MapboxConfig struct {
	AccessToken string
	BaseURL     string
	MinZoom     int
	MaxZoom     int
	DefaultZoom int
}

// Mapbox builds zoom based Static Images API URLs centred on a position.
type Mapbox struct {
	cfg    MapboxConfig
	styles StyleTable
	zooms  []string
}

// NewMapbox validates cfg and precomputes the zoom dropdown.
func NewMapbox(cfg MapboxConfig) (*Mapbox, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, fmt.Errorf("mapbox: access token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMapboxBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MinZoom < 0 || cfg.MaxZoom < cfg.MinZoom {
		return nil, fmt.Errorf("mapbox: invalid zoom range [%d,%d]", cfg.MinZoom, cfg.MaxZoom)
	}
	if cfg.DefaultZoom < cfg.MinZoom || cfg.DefaultZoom > cfg.MaxZoom {
		return nil, fmt.Errorf("mapbox: default zoom %d outside [%d,%d]", cfg.DefaultZoom, cfg.MinZoom, cfg.MaxZoom)
	}

	return &Mapbox{
		cfg:    cfg,
		styles: MapboxStyles,
		zooms:  ZoomLevels(cfg.MinZoom, cfg.MaxZoom),
	}, nil
}

// ZoomLevels lists every integer zoom in [min,max] as dropdown labels.
func ZoomLevels(lo, hi int) []string {
	levels := make([]string, 0, hi-lo+1)
	for z := lo; z <= hi; z++ {
		levels = append(levels, strconv.Itoa(z))
	}
	return levels
}

func (m *Mapbox) Name() string { return MapboxName }

func (m *Mapbox) Dialog() DialogSpec {
	return DialogSpec{
		Title:        "Maps Generator (Mapbox)",
		Informative:  "Write an address and choose a zoom option.",
		Icon:         "logo@2x.png",
		LevelKey:     "zoom",
		LevelLabel:   "Please choose a zoom level",
		LevelHint:    "(A higher value increases the zoom level)",
		LevelOptions: append([]string(nil), m.zooms...),
		DefaultLevel: m.cfg.DefaultZoom - m.cfg.MinZoom,
		TypeLabel:    "You can choose a map type as well",
		TypeOptions:  m.styles.Options(),
		DefaultType:  0,
		TypeWidth:    200,
	}
}

// BuildURL returns
// {base}/styles/v1/mapbox/{style}/static/{lon},{lat},{zoom},0,0/{w}x{h}@2x?access_token=...
func (m *Mapbox) BuildURL(req Request) (string, error) {
	if err := req.validateSize(); err != nil {
		return "", err
	}
	if err := req.Position.ValidateMercator(); err != nil {
		return "", err
	}

	zoom, err := strconv.Atoi(strings.TrimSpace(req.ZoomOrScale))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidZoom, req.ZoomOrScale)
	}
	if zoom < m.cfg.MinZoom || zoom > m.cfg.MaxZoom {
		return "", fmt.Errorf("%w: %d outside [%d,%d]", ErrInvalidZoom, zoom, m.cfg.MinZoom, m.cfg.MaxZoom)
	}

	style, err := m.styles.Lookup(req.MapType)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/styles/v1/mapbox/%s/static/%s,%s,%d,0,0/%dx%d@2x?access_token=%s",
		m.cfg.BaseURL,
		style,
		formatFloat(req.Position.Lon),
		formatFloat(req.Position.Lat),
		zoom,
		req.Width,
		req.Height,
		url.QueryEscape(m.cfg.AccessToken),
	), nil
}
