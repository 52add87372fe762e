package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Persistent flags
var (
	apiURLFlag       string
	timeoutFlag      string
	assetTimeoutFlag string
	metricsFlag      bool
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "AI property photo studio",
	Long: `Studio sends a property photo to the studio backend for quality analysis,
AI enhancement and virtual staging, and shows the results in the terminal.

When no image is given a native file picker opens.

Examples:
  studio analyze living-room.jpg
  studio enhance living-room.jpg --out enhanced.png --compare split.png --split 0.3
  studio stage --room Bedroom --style Coastal --regenerate 2
  studio run kitchen.jpg --style Scandinavian --bundle kitchen.zip
  studio --api-url https://studio.example.com analyze`,
	Version: version,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&apiURLFlag, "api-url", "", "Studio backend base URL (env STUDIO_API_URL, default http://localhost:8000)")
	pf.StringVar(&timeoutFlag, "timeout", "", "Per-request timeout, e.g. 90s (env STUDIO_REQUEST_TIMEOUT)")
	pf.StringVar(&assetTimeoutFlag, "asset-timeout", "", "Generated image load timeout, e.g. 60s (env STUDIO_ASSET_TIMEOUT)")
	pf.BoolVar(&metricsFlag, "metrics", false, "Write per-request EMF metrics to stderr (env STUDIO_METRICS)")

	rootCmd.AddCommand(analyzeCmd, enhanceCmd, stageCmd, runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
