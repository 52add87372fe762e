package main

import (
	"github.com/fpang/property-photo-studio/internal/studio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	enhanceOutFlag     string
	enhanceCompareFlag string
	enhanceSplitFlag   float64
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance [image...]",
	Short: "Analyze a photo, then generate an enhanced rendition",
	Long: `Enhance analyzes the photo and uses the suggested prompt to generate an
enhanced rendition. The enhanced image can be saved with --out, and a
before/after composite split at --split with --compare.`,
	Run: runEnhance,
}

func init() {
	enhanceCmd.Flags().StringVarP(&enhanceOutFlag, "out", "o", "", "Save the enhanced image to this file")
	enhanceCmd.Flags().StringVar(&enhanceCompareFlag, "compare", "", "Save a before/after composite PNG to this file")
	enhanceCmd.Flags().Float64Var(&enhanceSplitFlag, "split", studio.InitialFraction, "Comparison boundary as a fraction of the width (clamped to 0.05-0.95)")
}

func runEnhance(cmd *cobra.Command, args []string) {
	a := newApp("enhance")
	if !a.selectImage(args) {
		return
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := a.wb.Analysis.Analyze(ctx); err != nil {
		fail(err, "Analysis failed")
	}
	if err := a.wb.Enhancement.Enhance(ctx); err != nil {
		fail(err, "Enhancement failed")
	}

	result := a.wb.Enhancement.Result()
	log.Debug().Str("prompt", result.Prompt).Msg("Enhancement prompt")
	if enhanceOutFlag != "" {
		if err := a.saveAsset(result.AfterURL, enhanceOutFlag); err != nil {
			log.Fatal().Err(err).Msg("Failed to save enhanced image")
		}
	}
	if enhanceCompareFlag != "" {
		if err := a.writeComparison(enhanceCompareFlag, enhanceSplitFlag); err != nil {
			log.Fatal().Err(err).Msg("Failed to save comparison")
		}
	}
}
