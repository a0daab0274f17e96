// Package host defines what the map generator needs from the application
// that owns the layers: the current selection, a modal dialog and the
// ability to fill a layer with a remote image.
package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/Togather-Foundation/mapgen/internal/dialog"
)

// LayerKind is the kind of a host layer.
type LayerKind string

const (
	KindShape  LayerKind = "shape"
	KindBitmap LayerKind = "bitmap"
	KindText   LayerKind = "text"
	KindGroup  LayerKind = "group"
	KindSymbol LayerKind = "symbol"
)

// Fillable reports whether a layer of kind k can take an image fill.
func (k LayerKind) Fillable() bool {
	return k == KindShape || k == KindBitmap
}

// ParseLayerKind accepts the kind names above, case-insensitively.
func ParseLayerKind(s string) (LayerKind, error) {
	k := LayerKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindShape, KindBitmap, KindText, KindGroup, KindSymbol:
		return k, nil
	default:
		return "", fmt.Errorf("unknown layer kind %q", s)
	}
}

// Frame is a layer's size in pixels.
type Frame struct {
	Width  int
	Height int
}

// Layer is a selected element of the host document.
type Layer struct {
	ID    string
	Name  string
	Kind  LayerKind
	Frame Frame
}

// Host is implemented by the application embedding the generator.
type Host interface {
	// Selection returns the currently selected layers.
	Selection(ctx context.Context) ([]Layer, error)
	// RunModal shows form and blocks until the user dismisses it.
	RunModal(ctx context.Context, form *dialog.Form) (dialog.Response, error)
	// FillLayerWithImage replaces layer's fill with the image at imageURL.
	FillLayerWithImage(ctx context.Context, imageURL string, layer Layer) error
	// ResourcePath resolves a bundled resource such as the dialog icon.
	ResourcePath(name string) string
}
