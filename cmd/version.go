package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/rie/internal/cvreview"
	"github.com/spigell/rie/internal/fusion"
	"github.com/spigell/rie/internal/skillmatch"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s\n", app, version)
		fmt.Printf("scoring models: %s, %s, %s\n", fusion.ModelVersion, skillmatch.ModelVersion, cvreview.ModelVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
