// Package generator fills the selected host layer with a static map of an
// address the user enters.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Togather-Foundation/mapgen/internal/dialog"
	"github.com/Togather-Foundation/mapgen/internal/geo"
	"github.com/Togather-Foundation/mapgen/internal/geocoding"
	"github.com/Togather-Foundation/mapgen/internal/host"
	"github.com/Togather-Foundation/mapgen/internal/metrics"
	"github.com/Togather-Foundation/mapgen/internal/staticmap"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/Togather-Foundation/mapgen/internal/generator"

var (
	ErrNoSelection       = errors.New("no layer selected")
	ErrMultipleSelection = errors.New("more than one layer selected")
	ErrLayerNotFillable  = errors.New("selected layer cannot be filled with an image")
	ErrGeocodeFailed     = errors.New("address could not be geocoded")
	ErrUnknownProvider   = staticmap.ErrUnknownProvider
)

// Outcome labels for metrics.GenerationsTotal.
const (
	OutcomeFilled        = "filled"
	OutcomePrecondition  = "precondition"
	OutcomeCancelled     = "cancelled"
	OutcomeInvalid       = "invalid"
	OutcomeGeocodeFailed = "geocode_failed"
	OutcomeURLFailed     = "url_failed"
	OutcomeFillFailed    = "fill_failed"
	OutcomeHostError     = "host_error"
)

// IsAbort reports whether err ended a Create before anything was fetched:
// a failed precondition, a cancelled or invalid dialog, or an address that
// could not be geocoded.
func IsAbort(err error) bool {
	for _, target := range []error{
		ErrNoSelection,
		ErrMultipleSelection,
		ErrLayerNotFillable,
		ErrGeocodeFailed,
		dialog.ErrCancelled,
		dialog.ErrInvalidSettings,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Result describes a successful fill.
type Result struct {
	InvocationID string
	Provider     string
	Layer        host.Layer
	Settings     dialog.Settings
	Position     geo.Position
	ImageURL     string
}

// Generator runs the select → dialog → geocode → build URL → fill sequence.
type Generator struct {
	host      host.Host
	providers staticmap.Registry
	geocoder  geocoding.Geocoder
	dialogs   *dialog.Controller
	logger    zerolog.Logger
}

// New creates a Generator.
func New(h host.Host, providers staticmap.Registry, geocoder geocoding.Geocoder, dialogs *dialog.Controller, logger zerolog.Logger) *Generator {
	return &Generator{
		host:      h,
		providers: providers,
		geocoder:  geocoder,
		dialogs:   dialogs,
		logger:    logger.With().Str("component", "generator").Logger(),
	}
}

// Create fills the single selected layer with a map from providerName.
// Preferences are namespaced by the provider name.
func (g *Generator) Create(ctx context.Context, providerName string) (*Result, error) {
	provider, err := g.providers.Get(providerName)
	if err != nil {
		return nil, err
	}

	invocationID := uuid.NewString()
	logger := g.logger.With().
		Str("invocation_id", invocationID).
		Str("provider", providerName).
		Logger()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "generator.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("mapgen.provider", providerName),
		attribute.String("mapgen.invocation_id", invocationID),
	)

	start := time.Now()
	res, outcome, err := g.create(ctx, provider, logger)
	res.InvocationID = invocationID

	metrics.GenerationsTotal.WithLabelValues(providerName, outcome).Inc()
	metrics.GenerationDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("mapgen.outcome", outcome))

	if err != nil {
		if IsAbort(err) {
			logger.Debug().Err(err).Str("outcome", outcome).Msg("generation aborted")
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error().Err(err).Str("outcome", outcome).Msg("generation failed")
		}
		return nil, err
	}

	logger.Info().
		Str("layer", res.Layer.Name).
		Str("address", res.Settings.Address).
		Msg("layer filled with map")
	return res, nil
}

func (g *Generator) create(ctx context.Context, provider staticmap.Provider, logger zerolog.Logger) (*Result, string, error) {
	res := &Result{Provider: provider.Name()}

	layer, err := g.selectedLayer(ctx)
	if err != nil {
		if IsAbort(err) {
			return res, OutcomePrecondition, err
		}
		return res, OutcomeHostError, err
	}
	res.Layer = layer

	spec := provider.Dialog()
	if spec.Icon != "" {
		spec.Icon = g.host.ResourcePath(spec.Icon)
	}
	settings, err := g.dialogs.Run(ctx, g.host, spec, provider.Name())
	switch {
	case errors.Is(err, dialog.ErrCancelled):
		return res, OutcomeCancelled, err
	case errors.Is(err, dialog.ErrInvalidSettings):
		return res, OutcomeInvalid, err
	case err != nil:
		return res, OutcomeHostError, err
	}
	res.Settings = settings

	pos, err := g.geocoder.Geocode(ctx, settings.Address)
	if err != nil {
		return res, OutcomeGeocodeFailed, fmt.Errorf("%w: %q: %w", ErrGeocodeFailed, settings.Address, err)
	}
	res.Position = pos

	imageURL, err := provider.BuildURL(staticmap.Request{
		Position:    pos,
		ZoomOrScale: settings.ZoomOrScale,
		MapType:     settings.MapType,
		Width:       layer.Frame.Width,
		Height:      layer.Frame.Height,
	})
	if err != nil {
		return res, OutcomeURLFailed, fmt.Errorf("build %s url: %w", provider.Name(), err)
	}
	res.ImageURL = imageURL
	logger.Debug().Str("url", imageURL).Msg("map image url")

	if err := g.host.FillLayerWithImage(ctx, imageURL, layer); err != nil {
		return res, OutcomeFillFailed, err
	}
	return res, OutcomeFilled, nil
}

func (g *Generator) selectedLayer(ctx context.Context) (host.Layer, error) {
	layers, err := g.host.Selection(ctx)
	if err != nil {
		return host.Layer{}, fmt.Errorf("read selection: %w", err)
	}
	switch len(layers) {
	case 0:
		return host.Layer{}, ErrNoSelection
	case 1:
	default:
		return host.Layer{}, fmt.Errorf("%w: %d layers", ErrMultipleSelection, len(layers))
	}
	layer := layers[0]
	if !layer.Kind.Fillable() {
		return host.Layer{}, fmt.Errorf("%w: %q is a %s layer", ErrLayerNotFillable, layer.Name, layer.Kind)
	}
	return layer, nil
}
