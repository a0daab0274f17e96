package terminal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Togather-Foundation/mapgen/internal/host"
)

// ParseLayer parses a layer flag of the form name:WIDTHxHEIGHT[:kind].
// The kind defaults to shape.
func ParseLayer(s string) (host.Layer, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return host.Layer{}, fmt.Errorf("layer %q: want name:WIDTHxHEIGHT[:kind]", s)
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return host.Layer{}, fmt.Errorf("layer %q: name is required", s)
	}

	w, h, ok := strings.Cut(strings.ToLower(parts[1]), "x")
	if !ok {
		return host.Layer{}, fmt.Errorf("layer %q: size %q is not WIDTHxHEIGHT", s, parts[1])
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return host.Layer{}, fmt.Errorf("layer %q: width: %w", s, err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return host.Layer{}, fmt.Errorf("layer %q: height: %w", s, err)
	}

	kind := host.KindShape
	if len(parts) == 3 {
		kind, err = host.ParseLayerKind(parts[2])
		if err != nil {
			return host.Layer{}, fmt.Errorf("layer %q: %w", s, err)
		}
	}

	return host.Layer{
		Name:  name,
		Kind:  kind,
		Frame: host.Frame{Width: width, Height: height},
	}, nil
}

// ParseLayers parses every flag value and numbers the layers from 1.
func ParseLayers(values []string) ([]host.Layer, error) {
	layers := make([]host.Layer, 0, len(values))
	for i, v := range values {
		l, err := ParseLayer(v)
		if err != nil {
			return nil, err
		}
		l.ID = strconv.Itoa(i + 1)
		layers = append(layers, l)
	}
	return layers, nil
}
