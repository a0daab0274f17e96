package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Togather-Foundation/mapgen/internal/config"
	"github.com/Togather-Foundation/mapgen/internal/dialog"
	"github.com/Togather-Foundation/mapgen/internal/generator"
	"github.com/Togather-Foundation/mapgen/internal/host/terminal"
	"github.com/Togather-Foundation/mapgen/internal/metrics"
	"github.com/Togather-Foundation/mapgen/internal/prefs"
	"github.com/Togather-Foundation/mapgen/internal/staticmap"
	"github.com/Togather-Foundation/mapgen/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	generateCmd = &cobra.Command{
		Use:   "generate <provider>",
		Short: "Fill a layer with a static map",
		Long: `Geocode an address and download a static map sized to the selected layer.

Exactly one fillable layer (shape or bitmap) must be given with --layer.
Dialog answers can be passed as flags; anything not answered is taken from
remembered preferences or the provider defaults, or prompted for with -i.

Examples:
  # Esri street map of Paris into Hero.jpg
  mapgen generate esri --layer Hero:400x300 --address Paris --scale "10000 - Streets"

  # Prompt for every setting
  mapgen generate mapbox --layer Hero:640x480 -i

  # Print the image URL without downloading
  mapgen generate esri --layer Hero:400x300 --address Paris --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}

	generateLayers      []string
	generateAddress     string
	generateLevel       string
	generateType        string
	generateRemember    bool
	generateInteractive bool
	generateCancel      bool
	generateDryRun      bool
	generateOutputDir   string
	generateResources   string
	generateNoProgress  bool
)

func init() {
	generateCmd.Flags().StringArrayVar(&generateLayers, "layer", nil, "selected layer as name:WIDTHxHEIGHT[:kind] (repeatable)")
	generateCmd.Flags().StringVar(&generateAddress, "address", "", "address or place to map")
	generateCmd.Flags().StringVar(&generateLevel, "zoom", "", "zoom level (mapbox)")
	generateCmd.Flags().StringVar(&generateLevel, "scale", "", `map scale option such as "10000 - Streets" (esri)`)
	generateCmd.Flags().StringVar(&generateType, "type", "", "map type, see 'mapgen providers'")
	generateCmd.Flags().BoolVar(&generateRemember, "remember", false, "remember these settings for the provider")
	generateCmd.Flags().BoolVarP(&generateInteractive, "interactive", "i", false, "prompt for every setting")
	generateCmd.Flags().BoolVar(&generateCancel, "cancel", false, "dismiss the dialog with Cancel")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "print the image URL instead of downloading it")
	generateCmd.Flags().StringVarP(&generateOutputDir, "output-dir", "o", ".", "directory the image is written to")
	generateCmd.Flags().StringVar(&generateResources, "resources", "", "directory holding dialog resources")
	generateCmd.Flags().BoolVar(&generateNoProgress, "no-progress", false, "hide the download progress bar")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	providerName := args[0]
	if !knownProvider(providerName) {
		return fmt.Errorf("%w: %q", staticmap.ErrUnknownProvider, providerName)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := config.NewLogger(cfg.Logging)
	metrics.Init(Version, GitCommit, BuildDate)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		logger.Warn().Err(err).Msg("tracing disabled")
	} else {
		defer func() { _ = shutdown(context.Background()) }()
	}

	registry, err := newRegistry(cfg)
	if err != nil && (providerName == staticmap.MapboxName || !errors.Is(err, errMapboxNotConfigured)) {
		return err
	}

	layers, err := terminal.ParseLayers(generateLayers)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	remember := ""
	if cmd.Flags().Changed("remember") {
		remember = prefs.FormatBool(generateRemember)
	}
	term := terminal.New(terminal.Config{
		Layers: layers,
		In:     cmd.InOrStdin(),
		Out:    cmd.OutOrStdout(),
		Answers: terminal.Answers{
			TextFields: []string{generateAddress},
			Selects:    []string{generateLevel, generateType},
			Checkboxes: []string{remember},
		},
		Prompt:      generateInteractive,
		Cancel:      generateCancel,
		DryRun:      generateDryRun,
		OutputDir:   generateOutputDir,
		ResourceDir: generateResources,
		HTTPClient:  &http.Client{Transport: metrics.InstrumentTransport("tiles", nil)},
		Progress:    !generateNoProgress,
	}, logger)

	gen := generator.New(
		term,
		registry,
		newGeocoder(cfg.Geocoding, st.cache, logger),
		dialog.NewController(prefs.NewOptions(st.prefs, logger), logger),
		logger,
	)

	res, err := gen.Create(ctx, providerName)

	if mErr := metrics.WriteTextfile(cfg.Metrics.Textfile); mErr != nil {
		logger.Warn().Err(mErr).Msg("failed to write metrics")
	}

	if errors.Is(err, dialog.ErrCancelled) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	logger.Debug().
		Str("invocation_id", res.InvocationID).
		Float64("lat", res.Position.Lat).
		Float64("lon", res.Position.Lon).
		Msg("generate finished")
	return nil
}
