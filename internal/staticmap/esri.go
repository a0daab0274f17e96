package staticmap

import (
	"fmt"
	"strings"

	"github.com/Togather-Foundation/mapgen/internal/geo"
)

const (
	// EsriName is the provider id and preference namespace for Esri.
	EsriName = "esri"
	// DefaultEsriBaseURL is the ArcGIS Online services root.
	DefaultEsriBaseURL = "https://services.arcgisonline.com/arcgis/rest/services"
	// DefaultEsriScale is the scale option selected when nothing is remembered.
	DefaultEsriScale = "10000 - Streets"
)

// EsriScales lists the map scales offered in the dialog, smallest scale first.
var EsriScales = []string{
	ScaleOption(591657528, "World"),
	ScaleOption(147914382, "Continent"),
	ScaleOption(36978595, "Countries"),
	ScaleOption(9244649, "Country"),
	ScaleOption(2311162, "States"),
	ScaleOption(1155581, "State"),
	ScaleOption(577791, "Counties"),
	ScaleOption(288895, "County"),
	ScaleOption(144448, "Metropolitan Area"),
	ScaleOption(72224, "Cities"),
	ScaleOption(36112, "City"),
	ScaleOption(18056, "Town"),
	ScaleOption(10000, "Streets"),
	ScaleOption(5000, "Street"),
	ScaleOption(2500, "Buildings"),
	ScaleOption(1000, "Building"),
}

// EsriStyles maps the Esri basemap names to their MapServer folder paths.
var EsriStyles = MustStyleTable(
	[]string{
		"Streets",
		"Imagery",
		"Topographic",
		"Terrain",
		"Shaded Relief",
		"Physical",
		"National Geographic",
		"Ocean",
		"Light Gray Canvas",
		"Dark Gray Canvas",
	},
	map[string]string{
		"Streets":             "World_Street_Map",
		"Imagery":             "World_Imagery",
		"Topographic":         "World_Topo_Map",
		"Terrain":             "World_Terrain_Base",
		"Shaded Relief":       "World_Shaded_Relief",
		"Physical":            "World_Physical_Map",
		"National Geographic": "NatGeo_World_Map",
		"Ocean":               "Ocean/World_Ocean_Base",
		"Light Gray Canvas":   "Canvas/World_Light_Gray_Base",
		"Dark Gray Canvas":    "Canvas/World_Dark_Gray_Base",
	},
)

// EsriConfig configures the Esri provider.
type EsriConfig struct {
	BaseURL      string
	DefaultScale string
}

// Esri builds MapServer export URLs at an explicit map scale.
//
// The export operation ignores mapScale when bboxSR is set, so the request
// uses a 1 meter box around the projected position and lets mapScale and
// size determine the rendered extent.
type Esri struct {
	cfg          EsriConfig
	styles       StyleTable
	scales       []string
	defaultScale int
}

// NewEsri validates cfg against the scale list.
func NewEsri(cfg EsriConfig) (*Esri, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultEsriBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.DefaultScale == "" {
		cfg.DefaultScale = DefaultEsriScale
	}

	e := &Esri{
		cfg:          cfg,
		styles:       EsriStyles,
		scales:       append([]string(nil), EsriScales...),
		defaultScale: -1,
	}
	for i, opt := range e.scales {
		if _, err := ParseScale(opt); err != nil {
			return nil, fmt.Errorf("esri: %w", err)
		}
		if opt == cfg.DefaultScale {
			e.defaultScale = i
		}
	}
	if e.defaultScale < 0 {
		return nil, fmt.Errorf("esri: default scale %q is not a scale option", cfg.DefaultScale)
	}
	return e, nil
}

func (e *Esri) Name() string { return EsriName }

func (e *Esri) Dialog() DialogSpec {
	return DialogSpec{
		Title:        "Maps Generator (Esri)",
		Informative:  "Write an address and choose a scale option.",
		Icon:         "logo@2x.png",
		LevelKey:     "scale",
		LevelLabel:   "Please choose a map scale",
		LevelHint:    "(A smaller value shows more detail)",
		LevelOptions: append([]string(nil), e.scales...),
		DefaultLevel: e.defaultScale,
		TypeLabel:    "You can choose a map type as well",
		TypeOptions:  e.styles.Options(),
		DefaultType:  0,
		TypeWidth:    200,
	}
}

// BuildURL returns the MapServer export URL for req.
func (e *Esri) BuildURL(req Request) (string, error) {
	if err := req.validateSize(); err != nil {
		return "", err
	}
	if err := req.Position.ValidateMercator(); err != nil {
		return "", err
	}

	scale, err := ParseScale(req.ZoomOrScale)
	if err != nil {
		return "", err
	}
	path, err := e.styles.Lookup(req.MapType)
	if err != nil {
		return "", err
	}

	box := geo.UnitBox(geo.DegreesToMeters(req.Position))

	var b strings.Builder
	b.WriteString(e.cfg.BaseURL)
	b.WriteString("/")
	b.WriteString(path)
	b.WriteString("/MapServer/export?bbox=")
	b.WriteString(formatFloat(box.MinX) + "," + formatFloat(box.MinY) + "," +
		formatFloat(box.MaxX) + "," + formatFloat(box.MaxY))
	b.WriteString("&bboxSR=&layers=&layerDefs=")
	fmt.Fprintf(&b, "&size=%d,%d", req.Width, req.Height)
	b.WriteString("&imageSR=&format=jpg&transparent=false&dpi=&time=&layerTimeOptions=&dynamicLayers=&gdbVersion=")
	b.WriteString("&mapScale=" + scale)
	b.WriteString("&f=image")
	return b.String(), nil
}
