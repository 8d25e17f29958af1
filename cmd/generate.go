package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/tettuan/frontmatter-to-schema/api"
	"github.com/tettuan/frontmatter-to-schema/internal/aggregate"
	"github.com/tettuan/frontmatter-to-schema/internal/discovery"
	"github.com/tettuan/frontmatter-to-schema/internal/frontmatter"
	"github.com/tettuan/frontmatter-to-schema/internal/output"
	"github.com/tettuan/frontmatter-to-schema/internal/render"
	"github.com/tettuan/frontmatter-to-schema/internal/schema"
)

var (
	configPath   string
	schemaPath   string
	docsRoot     string
	docGlobs     []string
	templatePath string
	outPath      string
	outFormat    string
	aliasPairs   map[string]string
)

func init() {
	generateCmd.Flags().StringVarP(&configPath, "config", "c", "", "pipeline config file (JSON)")
	generateCmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "schema file with x-* directives")
	generateCmd.Flags().StringVarP(&docsRoot, "docs", "d", ".", "root directory scanned for documents")
	generateCmd.Flags().StringSliceVarP(&docGlobs, "glob", "g", []string{"**/*.md"}, "document glob patterns")
	generateCmd.Flags().StringVarP(&templatePath, "template", "t", "", "output template (omit to emit the raw aggregate)")
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	generateCmd.Flags().StringVarP(&outFormat, "format", "f", "json", "output format: json or yaml")
	generateCmd.Flags().StringToStringVar(&aliasPairs, "alias", nil, "schema-property=document-field mapping overrides")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the full pipeline: discover, aggregate, render, serialize",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := loadPipeline(cmd)
		if err != nil {
			return err
		}

		fsys := osfs.New(".")
		level := verbosityLevel()
		logger := log.New(cmd.ErrOrStderr(), "", 0)

		// 1. Discover documents in stable lexical order.
		entries, err := discovery.Documents(fsys, docsRoot, pipeline.Documents)
		if err != nil {
			return err
		}
		if level >= api.Verbose {
			logger.Printf("discovered %d documents under %s", len(entries), docsRoot)
		}

		// 2. Extract frontmatter.
		docs := make([]api.Document, 0, len(entries))
		for _, entry := range entries {
			doc, ok, err := frontmatter.Read(fsys, entry.Path, entry.ID)
			if err != nil {
				return err
			}
			if !ok {
				if level >= api.Verbose {
					logger.Printf("skip %s: no frontmatter", entry.ID)
				}
				continue
			}
			docs = append(docs, doc)
		}

		// 3. Load the schema.
		sch, loadWarnings, err := schema.Load(fsys, pipeline.Schema)
		if err != nil {
			return err
		}
		for _, w := range loadWarnings {
			logger.Printf("warning: schema %s: %s", w.Path, w.Message)
		}

		// 4. Aggregate.
		engine := aggregate.NewEngine(aggregate.Options{
			Verbosity: level,
			Logger:    logger,
			Aliases:   pipeline.Aliases,
		})
		agg, err := engine.Aggregate(docs, sch)
		if err != nil {
			return err
		}
		for _, w := range agg.Warnings {
			logger.Printf("warning: %s: %s", w.Path, w.Message)
		}

		// 5. Render through the template, when one is configured.
		tree := agg.Tree
		if pipeline.Template != "" {
			store := render.NewStore(fsys, "")
			renderer := render.NewRenderer(store, render.Options{Verbosity: level, Logger: logger})
			rendered, err := renderer.Render(pipeline.Template, agg.Tree, sch.TemplateBindings())
			if err != nil {
				return err
			}
			for _, w := range rendered.Warnings {
				logger.Printf("warning: placeholder %q: %s", w.Placeholder, w.Message)
			}
			tree = rendered.Tree
		}

		// 6. Serialize.
		data, err := output.Marshal(tree, pipeline.Format)
		if err != nil {
			return err
		}
		if pipeline.Output == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		return os.WriteFile(pipeline.Output, data, 0o644)
	},
}

// loadPipeline merges the optional config file with flag overrides. A flag
// set on the command line wins over the config; a flag left at its default
// only fills a gap the config did not cover.
func loadPipeline(cmd *cobra.Command) (*api.Pipeline, error) {
	pipeline := &api.Pipeline{}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
		if err := json.Unmarshal(data, pipeline); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", configPath, err)
		}
	}
	flags := cmd.Flags()
	if schemaPath != "" {
		pipeline.Schema = schemaPath
	}
	if flags.Changed("glob") || len(pipeline.Documents) == 0 {
		pipeline.Documents = docGlobs
	}
	if templatePath != "" {
		pipeline.Template = templatePath
	}
	if outPath != "" {
		pipeline.Output = outPath
	}
	if flags.Changed("format") || pipeline.Format == "" {
		pipeline.Format = outFormat
	}
	if len(aliasPairs) > 0 {
		pipeline.Aliases = aliasPairs
	}
	if pipeline.Schema == "" {
		return nil, fmt.Errorf("no schema configured (use --schema or a config file)")
	}
	return pipeline, nil
}
