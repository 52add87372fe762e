package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fpang/property-photo-studio/internal/api"
	"github.com/fpang/property-photo-studio/internal/bundle"
	"github.com/fpang/property-photo-studio/internal/studio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	runRoomFlag   string
	runStyleFlag  string
	runBundleFlag string
)

var runCmd = &cobra.Command{
	Use:   "run [image...]",
	Short: "Analyze, enhance and stage a photo, then export a bundle",
	Long: `Run performs the whole workflow on one photo. When --room is omitted the
room type detected by the analysis is used if it is one of the known room
types. With --bundle the original, the analysis and both generated images
are written to a Zstandard-compressed ZIP.`,
	Run: runWorkflow,
}

func init() {
	runCmd.Flags().StringVar(&runRoomFlag, "room", "", "Room type (default: detected, else "+studio.RoomTypes[0]+")")
	runCmd.Flags().StringVar(&runStyleFlag, "style", studio.Styles[0], "Design style")
	runCmd.Flags().StringVar(&runBundleFlag, "bundle", "", "Write a session bundle ZIP to this file")
	_ = runCmd.RegisterFlagCompletionFunc("room", completeFrom(studio.RoomTypes))
	_ = runCmd.RegisterFlagCompletionFunc("style", completeFrom(studio.Styles))
}

func runWorkflow(cmd *cobra.Command, args []string) {
	a := newApp("run")
	if !a.selectImage(args) {
		return
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := a.wb.Analysis.Analyze(ctx); err != nil {
		fail(err, "Analysis failed")
	}

	// Enhancement and staging are independent and share the overlay.
	a.wb.Staging.SetSelection(stagingRoom(a.wb.Analysis.Result()), runStyleFlag)
	var g errgroup.Group
	if canEnhance(a.wb.Analysis.Result()) {
		g.Go(func() error {
			if err := a.wb.Enhancement.Enhance(ctx); err != nil {
				return fmt.Errorf("enhancement: %w", err)
			}
			return nil
		})
	} else {
		log.Info().Msg("No enhancement prompt in analysis, skipping enhancement")
	}
	g.Go(func() error {
		if err := a.wb.Staging.Stage(ctx); err != nil {
			return fmt.Errorf("staging: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		fail(err, "Workflow failed")
	}

	if runBundleFlag != "" {
		if err := a.writeBundle(runBundleFlag); err != nil {
			log.Fatal().Err(err).Msg("Failed to write bundle")
		}
	}
}

// stagingRoom picks the --room flag, else the detected room type when it
// is a known one, else the first room type.
func stagingRoom(analysis *studio.AnalysisResult) string {
	if runRoomFlag != "" {
		return runRoomFlag
	}
	if analysis != nil {
		for _, room := range studio.RoomTypes {
			if strings.EqualFold(room, strings.TrimSpace(analysis.RoomType)) {
				log.Info().Str("room_type", room).Msg("Using detected room type")
				return room
			}
		}
	}
	return studio.RoomTypes[0]
}

// canEnhance reports whether the analysis carries a prompt to enhance with.
func canEnhance(analysis *studio.AnalysisResult) bool {
	return analysis != nil && analysis.EnhancePrompt != ""
}

func (a *app) writeBundle(path string) error {
	s := bundle.Session{
		ID:          a.wb.Session.ID(),
		Original:    a.wb.Session.Current(),
		Analysis:    a.wb.Analysis.Result(),
		Enhancement: a.wb.Enhancement.Result(),
		Staging:     a.wb.Staging.Result(),
	}
	if s.Enhancement != nil {
		s.Enhanced = a.asset(s.Enhancement.AfterURL)
	}
	if s.Staging != nil {
		s.Staged = a.asset(s.Staging.ImageURL)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	m, err := bundle.Write(f, s)
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	fmt.Printf("📦 Bundle %s (%d files)\n", path, len(m.Files)+1)
	return nil
}

func (a *app) asset(ref string) *api.Asset {
	asset, ok := a.assets.Get(ref)
	if !ok {
		return nil
	}
	return asset
}
