// Package staticmap builds static map image request URLs for the supported
// web mapping services.
package staticmap

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/Togather-Foundation/mapgen/internal/geo"
)

var (
	// ErrUnknownStyle is returned when a map type label has no service path.
	ErrUnknownStyle = errors.New("unknown map style")
	// ErrInvalidZoom is returned for a zoom outside the provider's range.
	ErrInvalidZoom = errors.New("invalid zoom level")
	// ErrInvalidScale is returned when a scale option cannot be parsed.
	ErrInvalidScale = errors.New("invalid map scale")
	// ErrInvalidSize is returned when the target layer has no usable pixel size.
	ErrInvalidSize = errors.New("invalid image size")
	// ErrOutsideProjection is returned for positions beyond the Web-Mercator extent.
	ErrOutsideProjection = geo.ErrOutsideProjection
	// ErrUnknownProvider is returned by Registry.Get for unregistered names.
	ErrUnknownProvider = errors.New("unknown map provider")
)

// Request carries everything a provider needs to build an image URL.
type Request struct {
	Position geo.Position
	// ZoomOrScale is the selected zoom/scale option label.
	ZoomOrScale string
	// MapType is the selected user-facing style label.
	MapType string
	Width   int
	Height  int
}

func (r Request) validateSize() error {
	if r.Width < 1 || r.Height < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, r.Width, r.Height)
	}
	return nil
}

// DialogSpec describes the provider specific parts of the settings dialog.
type DialogSpec struct {
	Title       string
	Informative string
	Icon        string

	// LevelKey is the preference key of the zoom level or map scale.
	LevelKey     string
	LevelLabel   string
	LevelHint    string
	LevelOptions []string
	DefaultLevel int

	TypeLabel   string
	TypeOptions []string
	DefaultType int
	TypeWidth   float64
}

// Provider builds static map URLs for one web mapping service.
type Provider interface {
	Name() string
	Dialog() DialogSpec
	BuildURL(req Request) (string, error)
}

// Registry maps provider names to providers.
type Registry map[string]Provider

// NewRegistry indexes providers by name and rejects duplicates.
func NewRegistry(providers ...Provider) (Registry, error) {
	reg := make(Registry, len(providers))
	for _, p := range providers {
		if _, ok := reg[p.Name()]; ok {
			return nil, fmt.Errorf("duplicate map provider %q", p.Name())
		}
		reg[p.Name()] = p
	}
	return reg, nil
}

// Get returns the named provider.
func (r Registry) Get(name string) (Provider, error) {
	p, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
