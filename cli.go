package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/bluefunda/backlogr/backlog"
	"github.com/bluefunda/backlogr/dispatch"
	"github.com/bluefunda/backlogr/intent"
	"github.com/bluefunda/backlogr/types"
	"go.uber.org/zap"
)

var (
	// errUsage marks errors caused by malformed command line input
	errUsage = errors.New("invalid usage")

	errCommandFailed = errors.New("command failed")
)

// appLogger returns the program logger, or a no-op logger before
// initLogger has run
func appLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// parseKeyValueArgs turns key=value arguments into intent params. Integers
// and booleans keep their type and a repeated key collects its values in a list.
func parseKeyValueArgs(args []string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(args))

	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q must be KEY=VALUE", errUsage, arg)
		}

		value := parseValue(raw)
		switch existing := params[key].(type) {
		case nil:
			params[key] = value
		case []interface{}:
			params[key] = append(existing, value)
		default:
			params[key] = []interface{}{existing, value}
		}
	}

	return params, nil
}

func parseValue(raw string) interface{} {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

// CreateBacklogClient creates the Backlog client from configuration. Missing
// credentials are not an error; the dispatcher reports them per command.
func CreateBacklogClient(config *Config) (*backlog.Client, error) {
	client := backlog.New(appLogger(), backlog.WithAllowSelfSigned(config.AllowSelfSigned))

	if config.APIKey == "" {
		return client, nil
	}

	if err := client.Configure(types.Config{
		APIKey:  config.APIKey,
		SpaceID: config.SpaceID,
		BaseURL: config.BaseURL,
	}); err != nil {
		return nil, fmt.Errorf("invalid Backlog configuration: %w", err)
	}

	return client, nil
}

// CreateDispatcher wires the dispatcher to a client
func CreateDispatcher(client types.BacklogAPI) *dispatch.Dispatcher {
	return dispatch.New(client, appLogger())
}

// CreateParser returns the intent parser, or nil when no OpenAI key is set
func CreateParser(config *Config) intent.Parser {
	if config.OpenAIKey == "" {
		return nil
	}
	return intent.NewOpenAIParser(intent.Config{
		APIKey:  config.OpenAIKey,
		Model:   config.OpenAIModel,
		BaseURL: config.OpenAIBaseURL,
	}, appLogger())
}

// HandleExec runs a structured command
func HandleExec(ctx context.Context, w io.Writer, config *Config, in types.Intent) error {
	quiet := config.Quiet && !config.Normal

	client, err := CreateBacklogClient(config)
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(w, "⚙️  Running %s %s...\n", in.Type, in.Action)
	}

	result := CreateDispatcher(client).Dispatch(ctx, in)
	return printResult(w, result)
}

// HandleAsk interprets text and runs the resulting command
func HandleAsk(ctx context.Context, w io.Writer, config *Config, text string, dryRun bool) error {
	quiet := config.Quiet && !config.Normal

	parser := CreateParser(config)
	if parser == nil {
		return fmt.Errorf("OpenAI API key not configured (set OPENAI_API_KEY or openai.api_key in %s)", config.ConfigFile)
	}

	if !quiet {
		fmt.Fprintf(w, "🤔 Interpreting %q...\n", text)
	}

	in, err := parser.Parse(ctx, text)
	if err != nil {
		if errors.Is(err, intent.ErrNotUnderstood) {
			fmt.Fprintln(w, "❓ I couldn't understand that command. Try rephrasing it, or run 'backlogr commands' for what is supported.")
			return errCommandFailed
		}
		return fmt.Errorf("failed to interpret command: %w", err)
	}

	if dryRun || !quiet {
		params, _ := json.Marshal(in.Params)
		fmt.Fprintf(w, "🔎 %s %s %s\n", in.Type, in.Action, params)
	}
	if dryRun {
		return nil
	}

	client, err := CreateBacklogClient(config)
	if err != nil {
		return err
	}

	result := CreateDispatcher(client).Dispatch(ctx, in)
	return printResult(w, result)
}

// printResult writes the outcome line and any data as indented JSON.
// A failed result is returned as errCommandFailed.
func printResult(w io.Writer, result types.Result) error {
	if result.Success {
		fmt.Fprintf(w, "✅ %s\n", result.Message)
	} else if strings.HasPrefix(result.Message, "⚠️") {
		fmt.Fprintln(w, result.Message)
	} else {
		fmt.Fprintf(w, "❌ %s\n", result.Message)
	}

	if result.Data != nil {
		out, err := json.MarshalIndent(result.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result data: %w", err)
		}
		fmt.Fprintln(w, string(out))
	}

	if !result.Success {
		return errCommandFailed
	}
	return nil
}

// HandleCommands prints the supported commands, optionally for one type
func HandleCommands(w io.Writer, filter types.EntityType) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tACTION\tREQUIRED\tDESCRIPTION")

	found := 0
	for _, c := range types.Commands {
		if filter != "" && c.Type != filter {
			continue
		}
		found++
		required := strings.Join(c.Required, ", ")
		if required == "" {
			required = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Type, c.Action, required, c.Description)
	}

	if found == 0 {
		return fmt.Errorf("%w: unknown command type %q", errUsage, filter)
	}
	return tw.Flush()
}

// maskSecret keeps the first four characters of long secrets
func maskSecret(s string) string {
	switch {
	case s == "":
		return "(not set)"
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + strings.Repeat("*", 8)
	}
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// HandleSettings shows, checks and optionally saves the configuration
func HandleSettings(ctx context.Context, w io.Writer, config *Config, check, save bool) error {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = backlog.DefaultBaseURL + " (default)"
	}
	model := config.OpenAIModel
	if model == "" {
		model = intent.DefaultModel + " (default)"
	}

	fmt.Fprintln(w, "=== Settings ===")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Config file:\t%s\n", orUnset(config.ConfigFile))
	fmt.Fprintf(tw, "Backlog API key:\t%s\n", maskSecret(config.APIKey))
	fmt.Fprintf(tw, "Space ID:\t%s\n", orUnset(config.SpaceID))
	fmt.Fprintf(tw, "Base URL:\t%s\n", baseURL)
	fmt.Fprintf(tw, "OpenAI API key:\t%s\n", maskSecret(config.OpenAIKey))
	fmt.Fprintf(tw, "OpenAI model:\t%s\n", model)
	fmt.Fprintf(tw, "Server port:\t%s\n", config.Port)
	fmt.Fprintf(tw, "Gateway port:\t%s\n", config.GatewayPort)
	if len(config.Upstreams) > 0 {
		fmt.Fprintf(tw, "Gateway upstreams:\t%s\n", strings.Join(config.Upstreams, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if save {
		if config.ConfigFile == "" {
			return fmt.Errorf("%w: no config file path (use --config)", errUsage)
		}
		if err := writeConfigFile(config.ConfigFile, config); err != nil {
			return err
		}
		fmt.Fprintf(w, "💾 Settings saved to %s\n", config.ConfigFile)
	}

	if !check {
		return nil
	}

	client, err := CreateBacklogClient(config)
	if err != nil {
		return err
	}
	if !client.IsConfigured() {
		fmt.Fprintln(w, dispatch.NotConfiguredMessage)
		return errCommandFailed
	}

	space, err := client.GetSpace(ctx)
	if err != nil {
		fmt.Fprintf(w, "❌ Connection failed: %v\n", err)
		fmt.Fprintln(w, "\n💡 Troubleshooting tips:")
		fmt.Fprintln(w, "  1. Check the API key under Personal Settings > API in Backlog")
		fmt.Fprintln(w, "  2. Make sure the gateway is running if the base URL points to it")
		fmt.Fprintln(w, "  3. Verify the space id matches https://SPACE.backlog.com or .jp")
		return err
	}

	fmt.Fprintf(w, "✅ Connected to space %s (%s)\n", space.Name, space.SpaceKey)
	return nil
}
