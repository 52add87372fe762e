package main

import (
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [image...]",
	Short: "Score a photo and list issues and suggestions",
	Long: `Analyze uploads a photo and prints its quality score, the issues found and
per-category suggestions. Several paths behave like a multi-file drop: only
the first is used.`,
	Run: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) {
	a := newApp("analyze")
	if !a.selectImage(args) {
		return
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := a.wb.Analysis.Analyze(ctx); err != nil {
		fail(err, "Analysis failed")
	}
}
