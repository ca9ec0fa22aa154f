package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bluefunda/backlogr/rest/gateway"
	"github.com/bluefunda/backlogr/types"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultServerPort  = "8080"
	defaultGatewayPort = gateway.DefaultPort
	configDirName      = "backlogr"
	configFileName     = "config.yaml"
)

// envConfig is the environment view of Config
type envConfig struct {
	APIKey          string   `env:"BACKLOG_API_KEY"`
	SpaceID         string   `env:"BACKLOG_SPACE_ID"`
	BaseURL         string   `env:"BACKLOG_BASE_URL"`
	OpenAIKey       string   `env:"OPENAI_API_KEY"`
	OpenAIModel     string   `env:"OPENAI_MODEL"`
	OpenAIBaseURL   string   `env:"OPENAI_BASE_URL"`
	Port            string   `env:"BACKLOGR_PORT"`
	GatewayPort     string   `env:"BACKLOGR_GATEWAY_PORT"`
	GatewayPrefix   string   `env:"BACKLOGR_GATEWAY_PREFIX"`
	Upstreams       []string `env:"BACKLOGR_UPSTREAMS" envSeparator:","`
	PreserveStatus  *bool    `env:"BACKLOGR_PRESERVE_STATUS"`
	AllowSelfSigned *bool    `env:"BACKLOGR_ALLOW_SELF_SIGNED"`
	LogFile         string   `env:"BACKLOGR_LOG_FILE"`
	ConfigFile      string   `env:"BACKLOGR_CONFIG"`
}

// fileConfig is the layout of the YAML config file
type fileConfig struct {
	Backlog types.Config `yaml:"backlog"`
	OpenAI  struct {
		APIKey  string `yaml:"api_key,omitempty"`
		Model   string `yaml:"model,omitempty"`
		BaseURL string `yaml:"base_url,omitempty"`
	} `yaml:"openai,omitempty"`
	Server struct {
		Port string `yaml:"port,omitempty"`
	} `yaml:"server,omitempty"`
	Gateway struct {
		Port            string   `yaml:"port,omitempty"`
		Prefix          string   `yaml:"prefix,omitempty"`
		Upstreams       []string `yaml:"upstreams,omitempty"`
		PreserveStatus  *bool    `yaml:"preserve_status,omitempty"`
		AllowSelfSigned *bool    `yaml:"allow_self_signed,omitempty"`
	} `yaml:"gateway,omitempty"`
	LogFile string `yaml:"log_file,omitempty"`
}

// changedFlags reports whether a flag was set on the command line.
// *pflag.FlagSet satisfies it.
type changedFlags interface {
	Changed(name string) bool
}

// loadEnvFile loads .env from the working directory or the nearest parent
// that has one. It returns the file that was loaded, or "" if none was found.
func loadEnvFile() string {
	if err := godotenv.Load(); err == nil {
		return ".env"
	}

	workDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for dir := workDir; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err == nil {
				return envPath
			}
		}
	}

	return ""
}

// parseEnv reads the environment. A nil environ reads the process environment.
func parseEnv(environ map[string]string) (envConfig, error) {
	var cfg envConfig
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// defaultConfigPath returns $XDG_CONFIG_HOME/backlogr/config.yaml or its
// platform equivalent
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configDirName, configFileName)
}

// readConfigFile parses path. A missing file is an error only when required.
func readConfigFile(path string, required bool) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// writeConfigFile stores the credential part of config at path
func writeConfigFile(path string, config *Config) error {
	var cfg fileConfig
	cfg.Backlog = types.Config{APIKey: config.APIKey, SpaceID: config.SpaceID, BaseURL: config.BaseURL}
	cfg.OpenAI.APIKey = config.OpenAIKey
	cfg.OpenAI.Model = config.OpenAIModel
	cfg.OpenAI.BaseURL = config.OpenAIBaseURL

	content, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// loadConfig fills config from flags, the environment and the config file,
// in that order of precedence
func loadConfig(config *Config, flags changedFlags) error {
	environment, err := parseEnv(nil)
	if err != nil {
		return err
	}

	path, required := config.ConfigFile, flags.Changed("config")
	if !required {
		path = environment.ConfigFile
		required = path != ""
	}
	if path == "" {
		path = defaultConfigPath()
	}

	file, err := readConfigFile(path, required)
	if err != nil {
		return err
	}

	config.ConfigFile = path
	resolveConfig(config, flags, environment, file)
	return nil
}

// resolveConfig applies env and file values to every field whose flag was
// not set explicitly
func resolveConfig(config *Config, flags changedFlags, e envConfig, f fileConfig) {
	resolveString(flags, "api-key", &config.APIKey, e.APIKey, f.Backlog.APIKey)
	resolveString(flags, "space-id", &config.SpaceID, e.SpaceID, f.Backlog.SpaceID)
	resolveString(flags, "base-url", &config.BaseURL, e.BaseURL, f.Backlog.BaseURL)
	resolveString(flags, "log-file", &config.LogFile, e.LogFile, f.LogFile)

	resolveString(flags, "openai-key", &config.OpenAIKey, e.OpenAIKey, f.OpenAI.APIKey)
	resolveString(flags, "model", &config.OpenAIModel, e.OpenAIModel, f.OpenAI.Model)
	resolveString(flags, "", &config.OpenAIBaseURL, e.OpenAIBaseURL, f.OpenAI.BaseURL)

	// server and gateway both name their listen flag "port"
	resolveString(flags, "port", &config.Port, e.Port, f.Server.Port, defaultServerPort)
	resolveString(flags, "port", &config.GatewayPort, e.GatewayPort, f.Gateway.Port, defaultGatewayPort)
	resolveString(flags, "prefix", &config.GatewayPrefix, e.GatewayPrefix, f.Gateway.Prefix)
	resolveStrings(flags, "upstream", &config.Upstreams, e.Upstreams, f.Gateway.Upstreams)
	resolveBool(flags, "preserve-status", &config.PreserveStatus, e.PreserveStatus, f.Gateway.PreserveStatus)
	resolveBool(flags, "allow-self-signed", &config.AllowSelfSigned, e.AllowSelfSigned, f.Gateway.AllowSelfSigned)
}

func resolveString(flags changedFlags, name string, dst *string, sources ...string) {
	if name != "" && flags.Changed(name) && *dst != "" {
		return
	}
	for _, s := range sources {
		if s != "" {
			*dst = s
			return
		}
	}
}

func resolveStrings(flags changedFlags, name string, dst *[]string, sources ...[]string) {
	if flags.Changed(name) {
		return
	}
	for _, s := range sources {
		if len(s) > 0 {
			*dst = s
			return
		}
	}
}

func resolveBool(flags changedFlags, name string, dst *bool, sources ...*bool) {
	if flags.Changed(name) {
		return
	}
	for _, s := range sources {
		if s != nil {
			*dst = *s
			return
		}
	}
}
