package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// docsCmd represents the docs command
var docsCmd = &cobra.Command{
	Use:   "docs [FORMAT]",
	Short: "Generate documentation in various formats",
	Long: `Generate documentation for the backlogr CLI in various formats.

Available formats:
  man        Generate man pages
  markdown   Generate markdown documentation
  yaml       Generate YAML documentation
  rest       Generate reStructuredText documentation
  all        Generate all formats (default)

Examples:
  backlogr docs              # Generate all formats
  backlogr docs markdown     # Generate only markdown
  backlogr docs man -o out   # Generate man pages into out/man`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := "all"
		if len(args) > 0 {
			format = args[0]
		}

		outputDir, _ := cmd.Flags().GetString("output")
		if outputDir == "" {
			outputDir = "docs"
		}

		return generateDocumentation(rootCmd, format, outputDir)
	},
}

// docGenerator writes one documentation format for the command tree into dir
type docGenerator func(root *cobra.Command, dir string) error

var docGenerators = map[string]docGenerator{
	"man": func(root *cobra.Command, dir string) error {
		return doc.GenManTree(root, &doc.GenManHeader{
			Title:   "BACKLOGR",
			Section: "1",
			Manual:  "BACKLOGR Manual",
			Source:  fmt.Sprintf("BACKLOGR %s", Version),
		}, dir)
	},
	"markdown": doc.GenMarkdownTree,
	"yaml":     doc.GenYamlTree,
	"rest":     doc.GenReSTTree,
}

func docFormats() []string {
	formats := make([]string, 0, len(docGenerators))
	for f := range docGenerators {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// generateDocumentation writes format ("all" for every format) under
// outputDir/<format>
func generateDocumentation(root *cobra.Command, format, outputDir string) error {
	formats := []string{format}
	if format == "all" {
		formats = docFormats()
	} else if _, ok := docGenerators[format]; !ok {
		return fmt.Errorf("%w: unknown documentation format: %s (available: %v, all)", errUsage, format, docFormats())
	}

	// generated pages should not carry the build date
	root.DisableAutoGenTag = true

	for _, f := range formats {
		dir := filepath.Join(outputDir, f)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		if err := docGenerators[f](root, dir); err != nil {
			return fmt.Errorf("failed to generate %s docs: %w", f, err)
		}
		fmt.Printf("Generated %s documentation in %s/\n", f, dir)
	}

	return nil
}

func init() {
	docsCmd.Flags().StringP("output", "o", "docs", "Output directory for generated documentation")
}
