package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/bluefunda/backlogr/backlog"
	"github.com/bluefunda/backlogr/rest/gateway"
	"github.com/bluefunda/backlogr/rest/server"
	"github.com/bluefunda/backlogr/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// POSIX-compliant exit codes
const (
	ExitSuccess      = 0   // Successful completion
	ExitGeneralError = 1   // General error
	ExitMisuse       = 2   // Misuse of shell command
	ExitSIGINT       = 130 // Terminated by Ctrl+C (128 + 2)
	ExitSIGTERM      = 143 // Terminated by SIGTERM (128 + 15)
)

// Build-time variables set via ldflags
var (
	Version   string = "v0.1.0"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
	BuildMode string = "dev"
)

// Configuration
type Config struct {
	// Mode
	Mode string // "cli", "server", "gateway"

	// Common flags - QUIET IS DEFAULT
	Quiet   bool
	Verbose bool
	Normal  bool

	// Backlog credentials
	APIKey  string
	SpaceID string
	BaseURL string

	// Intent parser
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	// REST command server
	Port string

	// Forwarding gateway
	GatewayPort     string
	GatewayPrefix   string
	Upstreams       []string
	PreserveStatus  bool
	AllowSelfSigned bool

	LogFile    string
	ConfigFile string
}

const (
	PROGRAM_NAME = "backlogr"
)

var (
	logger     *zap.Logger
	rootConfig = &Config{}

	// signal that stopped the program, if any
	caughtSignal atomic.Value
)

// Root command
var rootCmd = &cobra.Command{
	Use:   PROGRAM_NAME,
	Short: "Backlog assistant - natural language commands, REST API and forwarding gateway",
	Long: `Backlog assistant - natural language commands, REST API and forwarding gateway

Manage Backlog projects, issues, wikis, users, milestones, categories,
issue types, custom fields and the space itself, either in plain language
(through an OpenAI-compatible model) or with structured commands.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile := loadEnvFile()

		if err := loadConfig(rootConfig, cmd.Flags()); err != nil {
			return err
		}

		// Initialize logger
		initLogger(rootConfig.Verbose, rootConfig.Quiet && !rootConfig.Normal, rootConfig.LogFile)

		// Setup signal handling
		cmd.SetContext(setupSignalHandling(cmd.Context()))

		// Log startup
		logger.Info("Application starting",
			zap.String("version", Version),
			zap.String("build_mode", BuildMode),
			zap.String("build_time", BuildTime),
			zap.String("git_commit", GitCommit),
			zap.String("mode", rootConfig.Mode),
			zap.String("config_file", rootConfig.ConfigFile),
			zap.String("env_file", envFile))

		return nil
	},
}

// Ask command
var askCmd = &cobra.Command{
	Use:   "ask TEXT...",
	Short: "Run a command written in plain language",
	Long: `Interpret a plain language request with the configured model and run it.

Requires OPENAI_API_KEY (or openai.api_key in the config file).

EXAMPLES:
  backlogr ask show me all projects
  backlogr ask "create issue in project DEF with title 'Fix login bug'"
  backlogr ask --dry-run show wiki page with ID 123`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootConfig.Mode = "cli"
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return HandleAsk(cmd.Context(), os.Stdout, rootConfig, strings.Join(args, " "), dryRun)
	},
}

// Exec command
var execCmd = &cobra.Command{
	Use:   "exec TYPE ACTION [KEY=VALUE...]",
	Short: "Run a structured command",
	Long: `Run a command given as entity type, action and key=value parameters.

Numbers and booleans are passed as such, repeating a key builds a list.
Run 'backlogr commands' for every supported type and action.

EXAMPLES:
  backlogr exec projects list
  backlogr exec issues get issueIdOrKey=TEST-1
  backlogr exec issues create projectIdOrKey=DEF summary="Fix login bug"
  backlogr exec milestones delete projectIdOrKey=DEF versionId=12`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootConfig.Mode = "cli"

		params, err := parseKeyValueArgs(args[2:])
		if err != nil {
			return err
		}

		intent := types.Intent{
			Type:   types.EntityType(args[0]),
			Action: types.Action(args[1]),
			Params: params,
		}
		return HandleExec(cmd.Context(), os.Stdout, rootConfig, intent)
	},
}

// Commands command
var commandsCmd = &cobra.Command{
	Use:   "commands [TYPE]",
	Short: "List supported command types and actions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ""
		if len(args) > 0 {
			filter = args[0]
		}
		return HandleCommands(os.Stdout, types.EntityType(filter))
	},
}

// Settings command
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration with secrets masked.

  --check   call the space endpoint to verify the credentials
  --save    write the current credentials to the config file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootConfig.Mode = "cli"
		check, _ := cmd.Flags().GetBool("check")
		save, _ := cmd.Flags().GetBool("save")
		return HandleSettings(cmd.Context(), os.Stdout, rootConfig, check, save)
	},
}

// Server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the REST command API",
	Long: `Start the REST API that accepts structured or plain language commands.

ENDPOINTS:
  POST /api/v1/commands        run {"text": ...} or {"type", "action", "params"}
  GET  /api/v1/commands        list supported commands
  POST /api/v1/commands/parse  interpret {"text": ...} without running it
  GET  /health, /version`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootConfig.Mode = "server"
		return runServerMode(cmd.Context(), rootConfig)
	},
}

// Gateway command
var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the forwarding gateway to the Backlog API",
	Long: `Relay requests under the prefix (default /api) to the Backlog API of the
space, trying https://SPACE.backlog.com/api/v2 first and then
https://SPACE.backlog.jp/api/v2.

EXAMPLES:
  backlogr gateway --space-id acme
  backlogr gateway --upstream https://acme.backlog.com/api/v2 --port 3001`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootConfig.Mode = "gateway"
		return runGatewayMode(cmd.Context(), rootConfig)
	},
}

// Enhanced logger with file support and quiet mode default
func initLogger(verbose, quiet bool, logFile string) {
	var outputPaths, errorPaths []string

	// Configure output based on flags and log file
	if logFile != "" {
		// Create log directory if needed
		logDir := filepath.Dir(logFile)
		if logDir != "." && logDir != "" {
			os.MkdirAll(logDir, 0755)
		}

		outputPaths = []string{logFile}
		errorPaths = []string{logFile}

		// In verbose mode, also output to stderr
		if verbose {
			outputPaths = append(outputPaths, "stderr")
			errorPaths = append(errorPaths, "stderr")
		}
	} else if !quiet {
		outputPaths = []string{"stderr"}
		errorPaths = []string{"stderr"}
	} else {
		// Quiet mode: only errors to stderr
		outputPaths = []string{}
		errorPaths = []string{"stderr"}
	}

	var config zap.Config

	switch {
	case verbose:
		config = zap.Config{
			Level:       zap.NewAtomicLevelAt(zap.DebugLevel),
			Development: true,
			Encoding:    "console",
			EncoderConfig: zapcore.EncoderConfig{
				TimeKey:        "T",
				LevelKey:       "L",
				NameKey:        "N",
				CallerKey:      "C",
				MessageKey:     "M",
				StacktraceKey:  "S",
				LineEnding:     zapcore.DefaultLineEnding,
				EncodeLevel:    zapcore.CapitalColorLevelEncoder,
				EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
				EncodeDuration: zapcore.StringDurationEncoder,
				EncodeCaller:   zapcore.ShortCallerEncoder,
			},
			OutputPaths:      outputPaths,
			ErrorOutputPaths: errorPaths,
		}
	case quiet:
		config = zap.Config{
			Level:            zap.NewAtomicLevelAt(zap.WarnLevel),
			Encoding:         "json",
			OutputPaths:      outputPaths,
			ErrorOutputPaths: errorPaths,
			EncoderConfig: zapcore.EncoderConfig{
				TimeKey:     "timestamp",
				LevelKey:    "level",
				MessageKey:  "message",
				LineEnding:  zapcore.DefaultLineEnding,
				EncodeLevel: zapcore.LowercaseLevelEncoder,
				EncodeTime:  zapcore.ISO8601TimeEncoder,
			},
		}
	default:
		config = zap.Config{
			Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
			Encoding: "json",
			EncoderConfig: zapcore.EncoderConfig{
				TimeKey:        "ts",
				LevelKey:       "level",
				NameKey:        "logger",
				CallerKey:      "caller",
				MessageKey:     "msg",
				StacktraceKey:  "stacktrace",
				LineEnding:     zapcore.DefaultLineEnding,
				EncodeLevel:    zapcore.LowercaseLevelEncoder,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				EncodeDuration: zapcore.SecondsDurationEncoder,
				EncodeCaller:   zapcore.ShortCallerEncoder,
			},
			OutputPaths:      outputPaths,
			ErrorOutputPaths: errorPaths,
		}
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: failed to initialize logger: %v\n", PROGRAM_NAME, err)
		os.Exit(ExitGeneralError)
	}

	if logFile != "" && !quiet {
		fmt.Fprintf(os.Stderr, "📄 Logging to: %s\n", logFile)
	}
}

// setupSignalHandling cancels the returned context on the first SIGINT or
// SIGTERM. A second signal exits immediately.
func setupSignalHandling(parent context.Context) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		caughtSignal.Store(sig)
		logger.Info("Received signal, shutting down gracefully", zap.String("signal", sig.String()))
		cancel()

		sig = <-sigChan
		logger.Warn("Received second signal, exiting", zap.String("signal", sig.String()))
		logger.Sync()
		os.Exit(signalExitCode(sig))
	}()

	return ctx
}

func signalExitCode(sig os.Signal) int {
	switch sig {
	case os.Interrupt:
		return ExitSIGINT
	case syscall.SIGTERM:
		return ExitSIGTERM
	default:
		return ExitGeneralError
	}
}

// runServerMode starts the REST command server
func runServerMode(ctx context.Context, config *Config) error {
	logger.Info("Starting in server mode", zap.String("port", config.Port))

	client, err := CreateBacklogClient(config)
	if err != nil {
		return err
	}
	if !client.IsConfigured() {
		logger.Warn("Backlog API is not configured, commands will report it until credentials are set")
	}

	serverConfig := &server.Config{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		Verbose:   config.Verbose,
		Quiet:     config.Quiet && !config.Normal,
	}

	restServer := server.NewRestServer(serverConfig, logger, CreateDispatcher(client), CreateParser(config))
	return restServer.Start(ctx, config.Port)
}

// runGatewayMode starts the forwarding gateway
func runGatewayMode(ctx context.Context, config *Config) error {
	upstreams := config.Upstreams
	if len(upstreams) == 0 {
		if config.SpaceID == "" {
			return fmt.Errorf("space id not configured (use --space-id, set BACKLOG_SPACE_ID, or pass --upstream)")
		}
		upstreams = gateway.DefaultUpstreams(config.SpaceID)
	}

	gw, err := gateway.New(gateway.Config{
		Prefix:          config.GatewayPrefix,
		Upstreams:       upstreams,
		PreserveStatus:  config.PreserveStatus,
		AllowSelfSigned: config.AllowSelfSigned,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	return gw.ListenAndServe(ctx, ":"+config.GatewayPort)
}

// Error handling helper
func exitWithError(err error, exitCode int) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", PROGRAM_NAME, err)
	if logger != nil {
		logger.Error("Application error", zap.Error(err), zap.Int("exit_code", exitCode))
		logger.Sync()
	}
	os.Exit(exitCode)
}

func init() {
	rootConfig.Mode = "cli"
	rootConfig.Quiet = true // DEFAULT TO QUIET MODE

	// Add persistent flags
	rootCmd.PersistentFlags().BoolVarP(&rootConfig.Quiet, "quiet", "q", true, "Quiet mode (DEFAULT - minimal CLI output)")
	rootCmd.PersistentFlags().BoolVar(&rootConfig.Normal, "normal", false, "Normal mode (show standard output)")
	rootCmd.PersistentFlags().BoolVarP(&rootConfig.Verbose, "verbose", "v", false, "Verbose mode (detailed output + debug info)")
	rootCmd.PersistentFlags().StringVar(&rootConfig.LogFile, "log-file", "", "Log to specified file (or set BACKLOGR_LOG_FILE)")
	rootCmd.PersistentFlags().StringVar(&rootConfig.ConfigFile, "config", "", "Configuration file path (or set BACKLOGR_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&rootConfig.APIKey, "api-key", "", "Backlog API key (or set BACKLOG_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&rootConfig.SpaceID, "space-id", "", "Backlog space id (or set BACKLOG_SPACE_ID)")
	rootCmd.PersistentFlags().StringVar(&rootConfig.BaseURL, "base-url", "", "API base URL (or set BACKLOG_BASE_URL, default "+backlog.DefaultBaseURL+")")

	askCmd.Flags().Bool("dry-run", false, "Only show the interpreted command")
	askCmd.Flags().StringVar(&rootConfig.OpenAIModel, "model", "", "Chat model (or set OPENAI_MODEL)")

	settingsCmd.Flags().Bool("check", false, "Verify the credentials against the space endpoint")
	settingsCmd.Flags().Bool("save", false, "Save the credentials to the config file")

	// Server command flags
	serverCmd.Flags().StringVarP(&rootConfig.Port, "port", "p", "", "Port for server mode (or set BACKLOGR_PORT, default "+defaultServerPort+")")
	serverCmd.Flags().StringVar(&rootConfig.OpenAIModel, "model", "", "Chat model (or set OPENAI_MODEL)")

	// Gateway command flags
	gatewayCmd.Flags().StringVarP(&rootConfig.GatewayPort, "port", "p", "", "Port for the gateway (or set BACKLOGR_GATEWAY_PORT, default "+defaultGatewayPort+")")
	gatewayCmd.Flags().StringVar(&rootConfig.GatewayPrefix, "prefix", "", "Path prefix to relay (or set BACKLOGR_GATEWAY_PREFIX, default "+gateway.DefaultPrefix+")")
	gatewayCmd.Flags().StringSliceVar(&rootConfig.Upstreams, "upstream", nil, "Upstream base URL, repeat to add fallbacks (or set BACKLOGR_UPSTREAMS)")
	gatewayCmd.Flags().BoolVar(&rootConfig.PreserveStatus, "preserve-status", false, "Pass the upstream 2xx status through instead of 200")
	gatewayCmd.Flags().BoolVar(&rootConfig.AllowSelfSigned, "allow-self-signed", false, "Accept self-signed upstream certificates")

	// Add subcommands
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(docsCmd)

	// Customize version template
	rootCmd.SetVersionTemplate(`{{.Use}} {{.Version}}
Built: ` + BuildTime + `
Commit: ` + GitCommit + `
Mode: ` + BuildMode + `
Features: CLI, REST command API, forwarding gateway
POSIX Compliant: Yes
`)
}
