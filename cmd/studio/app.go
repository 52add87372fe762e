package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/fpang/property-photo-studio/internal/api"
	"github.com/fpang/property-photo-studio/internal/config"
	"github.com/fpang/property-photo-studio/internal/console"
	"github.com/fpang/property-photo-studio/internal/imagefile"
	"github.com/fpang/property-photo-studio/internal/logging"
	"github.com/fpang/property-photo-studio/internal/studio"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app is one configured studio run.
type app struct {
	cfg     *config.Config
	assets  *api.Assets
	console *console.Console
	wb      *studio.Workbench
}

// newApp initializes logging and wires config, backend client, renderer and
// workbench. Exits fatally on invalid configuration.
func newApp(command string) *app {
	start := time.Now()
	logging.Init()

	if err := config.LoadDotEnv(config.DotEnvFile); err != nil {
		log.Warn().Err(err).Msg("Ignoring environment file")
	}
	cfg, err := config.Load(&config.Config{
		APIURL:         apiURLFlag,
		RequestTimeout: timeoutFlag,
		AssetTimeout:   assetTimeoutFlag,
		Metrics:        metricsFlag,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	var opts []api.Option
	if cfg.Metrics {
		opts = append(opts, api.WithMetrics(os.Stderr))
	}
	client, err := api.NewClient(cfg.APIURL, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create backend client")
	}

	assets := api.NewAssets(client)
	con := console.New(os.Stdout, assets)
	wb := studio.New(client, assets, con, studio.Options{
		RequestTimeout: cfg.RequestTimeoutDuration(),
		AssetTimeout:   cfg.AssetTimeoutDuration(),
	})

	logging.NewStartupLogger(command).
		Version(version).
		Endpoint(client.BaseURL()).
		Feature("metrics", cfg.Metrics).
		Config("requestTimeout", cfg.RequestTimeout).
		Config("assetTimeout", cfg.AssetTimeout).
		InitDuration(time.Since(start)).
		Log()

	return &app{cfg: cfg, assets: assets, console: con, wb: wb}
}

// signalContext is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// selectImage loads the given paths as a drop, or opens the file picker
// when there are none. It returns false when nothing usable was chosen.
func (a *app) selectImage(paths []string) bool {
	if len(paths) == 0 {
		path, ok := pickImage()
		if !ok {
			return false
		}
		paths = []string{path}
	}

	handles, err := imagefile.LoadAll(paths)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load image")
	}
	if !a.wb.Session.Drop(handles) {
		fmt.Fprintf(os.Stderr, "%s is not an image\n", handles[0].Name)
		return false
	}
	return true
}

// pickImage opens the native file dialog. Cancelling is not an error.
func pickImage() (string, bool) {
	patterns := make([]string, 0, len(imagefile.SupportedImageExtensions))
	for ext := range imagefile.SupportedImageExtensions {
		patterns = append(patterns, "*"+ext)
	}
	sort.Strings(patterns)

	path, err := zenity.SelectFile(
		zenity.Title("Select a property photo"),
		zenity.FileFilters{
			{Name: "Images", Patterns: patterns},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			log.Info().Msg("File selection canceled")
			return "", false
		}
		log.Fatal().Err(err).Msg("File picker failed")
	}
	log.Info().Str("path", path).Msg("File picked via native dialog")
	return path, true
}

// saveAsset writes a displayed generated image to path.
func (a *app) saveAsset(ref, path string) error {
	asset, ok := a.assets.Get(ref)
	if !ok {
		return fmt.Errorf("image %s was not loaded", ref)
	}
	if err := os.WriteFile(path, asset.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Info().Str("url", ref).Str("path", path).Int("bytes", len(asset.Data)).Msg("Image saved")
	fmt.Printf("💾 Saved %s\n", path)
	return nil
}

// writeComparison drags the slider to split and saves the composite.
func (a *app) writeComparison(path string, split float64) error {
	slider := a.wb.Enhancement.Slider()
	canvas := a.console.Canvas()
	if slider == nil || canvas == nil {
		return errors.New("no comparison displayed")
	}

	left, width := canvas.Bounds()
	slider.PointerDown(left + split*width)
	slider.PointerUp()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := canvas.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	log.Info().Str("path", path).Float64("split", slider.Position()).Msg("Comparison saved")
	fmt.Printf("💾 Saved %s\n", path)
	return nil
}

// completeFrom returns a flag completion function offering values.
func completeFrom(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// fail exits after a stage error. The renderer has already shown the
// advisory, so only the cause is logged.
func fail(err error, msg string) {
	log.Error().Err(err).Msg(msg)
	os.Exit(1)
}
