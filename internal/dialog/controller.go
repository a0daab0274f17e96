package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Togather-Foundation/mapgen/internal/metrics"
	"github.com/Togather-Foundation/mapgen/internal/prefs"
	"github.com/Togather-Foundation/mapgen/internal/staticmap"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Preference keys shared by all providers. The zoom/scale key comes from
// staticmap.DialogSpec.LevelKey.
const (
	KeyAddress  = "address"
	KeyType     = "type"
	KeyRemember = "remember"
)

var (
	// ErrCancelled is returned when the user dismisses the form with Cancel.
	ErrCancelled = errors.New("dialog cancelled")
	// ErrInvalidSettings is returned when the confirmed form is incomplete or invalid.
	ErrInvalidSettings = errors.New("invalid settings")
)

// InvalidSettingsError keeps the form that produced invalid settings so a
// caller can show it again.
type InvalidSettingsError struct {
	Form   *Form
	Reason string
}

func (e *InvalidSettingsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidSettings, e.Reason)
}

func (e *InvalidSettingsError) Is(target error) bool {
	return target == ErrInvalidSettings
}

// Settings is what the user confirmed.
type Settings struct {
	Address string `validate:"required"`
	// ZoomOrScale is the selected zoom level or map scale option label.
	ZoomOrScale string `validate:"required"`
	MapType     string `validate:"required"`
	Remember    bool
}

// Preferences are the values a form is pre-filled with.
type Preferences struct {
	Remember    bool
	Address     string
	ZoomOrScale string
	MapType     string
}

// FieldType tells the parser how to read a tracked element.
type FieldType string

const (
	FieldInput    FieldType = "input"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
)

// Tracked records where a settings field lives on the form.
type Tracked struct {
	Key   string
	Index int
	Type  FieldType
}

// ModalRunner shows a form and blocks until it is dismissed.
type ModalRunner interface {
	RunModal(ctx context.Context, form *Form) (Response, error)
}

// Controller builds, runs and parses the settings dialog for a provider.
type Controller struct {
	options  *prefs.Options
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewController creates a controller reading and writing preferences through options.
func NewController(options *prefs.Options, logger zerolog.Logger) *Controller {
	return &Controller{
		options:  options,
		validate: validator.New(),
		logger:   logger.With().Str("component", "dialog").Logger(),
	}
}

// LoadPreferences reads the remembered values for namespace, falling back
// to the provider defaults when remember is off.
func (c *Controller) LoadPreferences(ctx context.Context, spec staticmap.DialogSpec, namespace string) Preferences {
	p := Preferences{
		ZoomOrScale: optionAt(spec.LevelOptions, spec.DefaultLevel),
		MapType:     optionAt(spec.TypeOptions, spec.DefaultType),
	}

	p.Remember = c.options.GetBool(ctx, KeyRemember, false, namespace)
	if !p.Remember {
		return p
	}

	p.Address = c.options.GetOption(ctx, KeyAddress, "", namespace)
	p.ZoomOrScale = c.options.GetOption(ctx, spec.LevelKey, p.ZoomOrScale, namespace)
	p.MapType = c.options.GetOption(ctx, KeyType, p.MapType, namespace)
	return p
}

// Build lays out the form and returns the positions of its input fields.
func (c *Controller) Build(spec staticmap.DialogSpec, p Preferences) (*Form, []Tracked) {
	form := NewForm(spec.Title, spec.Informative)
	form.Icon = spec.Icon

	form.AddLabel("Enter an address or a place")
	address := form.AddTextField(p.Address)
	form.AddLabel(" ")
	form.AddLabel(spec.LevelLabel)
	form.AddLabel(spec.LevelHint)
	level := form.AddSelect(spec.LevelOptions, indexOr(spec.LevelOptions, p.ZoomOrScale, spec.DefaultLevel), 0)
	form.AddLabel(" ")
	form.AddLabel(spec.TypeLabel)
	mapType := form.AddSelect(spec.TypeOptions, indexOr(spec.TypeOptions, p.MapType, spec.DefaultType), spec.TypeWidth)
	form.AddLabel(" ")
	remember := form.AddCheckbox("Remember my options", p.Remember)

	form.InitialFirstResponder = address
	form.ChainKeyViews(address, level, mapType)

	return form, []Tracked{
		{Key: KeyAddress, Index: address, Type: FieldInput},
		{Key: spec.LevelKey, Index: level, Type: FieldSelect},
		{Key: KeyType, Index: mapType, Type: FieldSelect},
		{Key: KeyRemember, Index: remember, Type: FieldCheckbox},
	}
}

// Parse reads the tracked fields out of resp. The level field is whichever
// tracked key is not address, type or remember.
func (c *Controller) Parse(form *Form, resp Response, tracked []Tracked) (Settings, error) {
	if resp.Button != ButtonOK {
		return Settings{}, ErrCancelled
	}

	var s Settings
	for _, field := range tracked {
		raw, ok := resp.Values[field.Index]
		if !ok {
			return Settings{}, &InvalidSettingsError{Form: form, Reason: fmt.Sprintf("no value for %s at index %d", field.Key, field.Index)}
		}

		switch field.Type {
		case FieldCheckbox:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return Settings{}, &InvalidSettingsError{Form: form, Reason: fmt.Sprintf("%s: %q is not a checkbox state", field.Key, raw)}
			}
			if field.Key == KeyRemember {
				s.Remember = b
			}
		default:
			switch field.Key {
			case KeyAddress:
				s.Address = strings.TrimSpace(raw)
			case KeyType:
				s.MapType = raw
			default:
				s.ZoomOrScale = raw
			}
		}
	}
	return s, nil
}

// Validate checks s against the provider's options.
func (c *Controller) Validate(form *Form, spec staticmap.DialogSpec, s Settings) error {
	if err := c.validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			names := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				names = append(names, fe.Field())
			}
			return &InvalidSettingsError{Form: form, Reason: "missing " + strings.Join(names, ", ")}
		}
		return &InvalidSettingsError{Form: form, Reason: err.Error()}
	}
	if indexOf(spec.LevelOptions, s.ZoomOrScale) < 0 {
		return &InvalidSettingsError{Form: form, Reason: fmt.Sprintf("%s %q is not an option", spec.LevelKey, s.ZoomOrScale)}
	}
	if indexOf(spec.TypeOptions, s.MapType) < 0 {
		return &InvalidSettingsError{Form: form, Reason: fmt.Sprintf("map type %q is not an option", s.MapType)}
	}
	return nil
}

// Persist stores s under namespace. With remember checked every field is
// written; otherwise only remember=0, so later dialogs use the defaults.
func (c *Controller) Persist(ctx context.Context, spec staticmap.DialogSpec, namespace string, s Settings) error {
	var errs []error
	record := func(key string, err error) {
		if err != nil {
			metrics.PreferenceWritesTotal.WithLabelValues(namespace, "error").Inc()
			errs = append(errs, fmt.Errorf("persist %s: %w", key, err))
			return
		}
		metrics.PreferenceWritesTotal.WithLabelValues(namespace, "success").Inc()
	}

	record(KeyRemember, c.options.SetBool(ctx, KeyRemember, s.Remember, namespace))
	if s.Remember {
		for _, kv := range [][2]string{
			{KeyAddress, s.Address},
			{spec.LevelKey, s.ZoomOrScale},
			{KeyType, s.MapType},
		} {
			record(kv[0], c.options.SetOption(ctx, kv[0], kv[1], namespace))
		}
	}
	return errors.Join(errs...)
}

// Run shows the dialog through runner and returns the confirmed settings.
// Preferences are written only after a valid confirmation; a failed write
// is logged and does not fail the run.
func (c *Controller) Run(ctx context.Context, runner ModalRunner, spec staticmap.DialogSpec, namespace string) (Settings, error) {
	form, tracked := c.Build(spec, c.LoadPreferences(ctx, spec, namespace))

	resp, err := runner.RunModal(ctx, form)
	if err != nil {
		return Settings{}, fmt.Errorf("run dialog: %w", err)
	}

	s, err := c.Parse(form, resp, tracked)
	if err != nil {
		return Settings{}, err
	}
	if err := c.Validate(form, spec, s); err != nil {
		return Settings{}, err
	}

	if err := c.Persist(ctx, spec, namespace, s); err != nil {
		c.logger.Warn().Err(err).Str("namespace", namespace).Msg("failed to persist preferences")
	}
	return s, nil
}

func optionAt(options []string, i int) string {
	if i < 0 || i >= len(options) {
		return ""
	}
	return options[i]
}

func indexOf(options []string, v string) int {
	for i, opt := range options {
		if opt == v {
			return i
		}
	}
	return -1
}

func indexOr(options []string, v string, def int) int {
	if i := indexOf(options, v); i >= 0 {
		return i
	}
	return def
}
