package main

import (
	"github.com/fpang/property-photo-studio/internal/studio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	roomFlag       string
	styleFlag      string
	regenerateFlag int
	stageOutFlag   string
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Generate a virtually staged room",
	Long: `Stage generates a furnished room for the chosen room type and style. It
does not need a photo. --regenerate asks for further renditions with the
same selection, each replacing the previous one.`,
	Args: cobra.NoArgs,
	Run:  runStage,
}

func init() {
	stageCmd.Flags().StringVar(&roomFlag, "room", studio.RoomTypes[0], "Room type")
	stageCmd.Flags().StringVar(&styleFlag, "style", studio.Styles[0], "Design style")
	stageCmd.Flags().IntVar(&regenerateFlag, "regenerate", 0, "Number of additional renditions")
	stageCmd.Flags().StringVarP(&stageOutFlag, "out", "o", "", "Save the final staged image to this file")
	_ = stageCmd.RegisterFlagCompletionFunc("room", completeFrom(studio.RoomTypes))
	_ = stageCmd.RegisterFlagCompletionFunc("style", completeFrom(studio.Styles))
}

func runStage(cmd *cobra.Command, args []string) {
	a := newApp("stage")

	ctx, cancel := signalContext()
	defer cancel()

	a.wb.Staging.SetSelection(roomFlag, styleFlag)
	if err := a.wb.Staging.Stage(ctx); err != nil {
		fail(err, "Staging failed")
	}
	for i := 0; i < regenerateFlag; i++ {
		if err := a.wb.Staging.Regenerate(ctx); err != nil {
			fail(err, "Regeneration failed")
		}
	}

	result := a.wb.Staging.Result()
	log.Debug().Str("prompt", result.Prompt).Msg("Staging prompt")
	if stageOutFlag != "" {
		if err := a.saveAsset(result.ImageURL, stageOutFlag); err != nil {
			log.Fatal().Err(err).Msg("Failed to save staged image")
		}
	}
}
