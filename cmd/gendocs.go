package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// createRootCmd mirrors the backlogr command tree without its handlers so
// docs can be generated without building the full binary
func createRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "backlogr",
		Short: "Backlog assistant - natural language commands, REST API and forwarding gateway",
		Long: `Backlog assistant - natural language commands, REST API and forwarding gateway

Manage Backlog projects, issues, wikis, users, milestones, categories,
issue types, custom fields and the space itself, either in plain language
(through an OpenAI-compatible model) or with structured commands.`,
	}

	askCmd := &cobra.Command{
		Use:   "ask TEXT...",
		Short: "Run a command written in plain language",
		Args:  cobra.MinimumNArgs(1),
	}
	askCmd.Flags().Bool("dry-run", false, "Only show the interpreted command")
	askCmd.Flags().String("model", "", "Chat model (or set OPENAI_MODEL)")

	execCmd := &cobra.Command{
		Use:   "exec TYPE ACTION [KEY=VALUE...]",
		Short: "Run a structured command",
		Long: `Run a command given as entity type, action and key=value parameters.

EXAMPLES:
  backlogr exec projects list
  backlogr exec issues get issueIdOrKey=TEST-1`,
		Args: cobra.MinimumNArgs(2),
	}

	commandsCmd := &cobra.Command{
		Use:   "commands [TYPE]",
		Short: "List supported command types and actions",
	}

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the effective configuration",
	}
	settingsCmd.Flags().Bool("check", false, "Verify the credentials against the space endpoint")
	settingsCmd.Flags().Bool("save", false, "Save the credentials to the config file")

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Run the REST command API",
	}
	serverCmd.Flags().StringP("port", "p", "8080", "Port for server mode")

	gatewayCmd := &cobra.Command{
		Use:   "gateway",
		Short: "Run the forwarding gateway to the Backlog API",
	}
	gatewayCmd.Flags().StringP("port", "p", "3001", "Port for the gateway")
	gatewayCmd.Flags().String("prefix", "/api", "Path prefix to relay")
	gatewayCmd.Flags().StringSlice("upstream", nil, "Upstream base URL, repeat to add fallbacks")
	gatewayCmd.Flags().Bool("preserve-status", false, "Pass the upstream 2xx status through instead of 200")
	gatewayCmd.Flags().Bool("allow-self-signed", false, "Accept self-signed upstream certificates")

	rootCmd.PersistentFlags().BoolP("quiet", "q", true, "Quiet mode (DEFAULT - minimal CLI output)")
	rootCmd.PersistentFlags().Bool("normal", false, "Normal mode (show standard output)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose mode (detailed output + debug info)")
	rootCmd.PersistentFlags().String("log-file", "", "Log to specified file (or set BACKLOGR_LOG_FILE)")
	rootCmd.PersistentFlags().String("config", "", "Configuration file path (or set BACKLOGR_CONFIG)")
	rootCmd.PersistentFlags().String("api-key", "", "Backlog API key (or set BACKLOG_API_KEY)")
	rootCmd.PersistentFlags().String("space-id", "", "Backlog space id (or set BACKLOG_SPACE_ID)")
	rootCmd.PersistentFlags().String("base-url", "", "API base URL (or set BACKLOG_BASE_URL)")

	rootCmd.AddCommand(askCmd, execCmd, commandsCmd, settingsCmd, serverCmd, gatewayCmd)
	rootCmd.DisableAutoGenTag = true

	return rootCmd
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: gendocs <man|markdown|yaml|rest|all>")
		os.Exit(1)
	}

	rootCmd := createRootCmd()
	docsDir := "docs"

	generators := map[string]func(dir string) error{
		"man": func(dir string) error {
			return doc.GenManTree(rootCmd, &doc.GenManHeader{
				Title:   "BACKLOGR",
				Section: "1",
				Manual:  "BACKLOGR Manual",
			}, dir)
		},
		"markdown": func(dir string) error { return doc.GenMarkdownTree(rootCmd, dir) },
		"yaml":     func(dir string) error { return doc.GenYamlTree(rootCmd, dir) },
		"rest":     func(dir string) error { return doc.GenReSTTree(rootCmd, dir) },
	}

	docType := os.Args[1]
	formats := []string{docType}
	if docType == "all" {
		formats = []string{"man", "markdown", "yaml", "rest"}
	} else if _, ok := generators[docType]; !ok {
		fmt.Printf("Unknown documentation type: %s\n", docType)
		fmt.Println("Available types: man, markdown, yaml, rest, all")
		os.Exit(1)
	}

	for _, f := range formats {
		dir := filepath.Join(docsDir, f)
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
		if err := generators[f](dir); err != nil {
			log.Fatalf("Failed to generate %s docs: %v", f, err)
		}
		fmt.Printf("%s documentation generated in %s/\n", f, dir)
	}
}
