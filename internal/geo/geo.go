// Package geo holds the geographic value types and the spherical
// Web-Mercator math used to build static map requests.
package geo

import (
	"errors"
	"fmt"
	"math"
)

const (
	// EarthHalfCircumference is the Web-Mercator half extent in meters (EPSG:3857).
	EarthHalfCircumference = 20037508.34
	// MaxMercatorLatitude is the latitude at which the projection reaches
	// EarthHalfCircumference, making the projected world square.
	MaxMercatorLatitude = 85.0511287798066
)

// ErrOutsideProjection is returned for positions Web-Mercator cannot represent.
var ErrOutsideProjection = errors.New("position outside Web-Mercator bounds")

// Position is a WGS84 latitude/longitude pair in degrees.
type Position struct {
	Lat float64
	Lon float64
}

// Validate reports whether the position lies on the globe.
func (p Position) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("invalid latitude: %f (must be between -90 and 90)", p.Lat)
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("invalid longitude: %f (must be between -180 and 180)", p.Lon)
	}
	return nil
}

// ValidateMercator reports whether p is a valid position that projects
// inside the Web-Mercator extent.
func (p Position) ValidateMercator() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if math.Abs(p.Lat) > MaxMercatorLatitude {
		return fmt.Errorf("%w: latitude %f beyond ±%g", ErrOutsideProjection, p.Lat, MaxMercatorLatitude)
	}
	return nil
}

func (p Position) String() string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lon)
}

// MercatorPoint is a projected position in Web-Mercator meters.
type MercatorPoint struct {
	X float64
	Y float64
}

// DegreesToMeters projects a position onto spherical Web-Mercator.
func DegreesToMeters(p Position) MercatorPoint {
	x := p.Lon * EarthHalfCircumference / 180
	y := math.Log(math.Tan((90+p.Lat)*math.Pi/360)) / (math.Pi / 180)
	y = y * EarthHalfCircumference / 180
	return MercatorPoint{X: x, Y: y}
}

// BoundingBox is a projected extent, minX,minY,maxX,maxY.
type BoundingBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// UnitBox returns the 1x1 meter box anchored at p.
func UnitBox(p MercatorPoint) BoundingBox {
	return BoundingBox{MinX: p.X, MinY: p.Y, MaxX: p.X + 1, MaxY: p.Y + 1}
}

func (b BoundingBox) Width() float64  { return b.MaxX - b.MinX }
func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }
