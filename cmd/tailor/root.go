package main

import (
	"github.com/spf13/cobra"

	"github.com/MoKho/resume-api-backend/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Resume tailoring service backed by Google Docs",
	Long: `Tailor rewrites resumes against job descriptions and patches the
changes into Google Docs copies of a master resume.

The pipeline includes:
  - Job description analysis with weighted qualification extraction
  - Per-section achievement rewriting grounded in stored background
  - Format-preserving in-place document patching
  - PDF export and upload to a shared Drive folder`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.tailor/config.yaml)",
	)

	rootCmd.AddCommand(versionCmd)
}
