package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tettuan/frontmatter-to-schema/api"
)

var verbosity int

var rootCmd = &cobra.Command{
	Use:   "frontmatter-to-schema",
	Short: "Aggregate document frontmatter into a schema-shaped output artifact",
	Long: `frontmatter-to-schema scans markdown documents, extracts their
frontmatter blocks, aggregates them according to a JSON Schema carrying
x-* directives, and renders the aggregate through an output template.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase trace output (-v, -vv)")
}

func verbosityLevel() api.Verbosity {
	switch {
	case verbosity >= 2:
		return api.Debug
	case verbosity == 1:
		return api.Verbose
	default:
		return api.Normal
	}
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
