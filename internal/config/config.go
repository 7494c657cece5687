package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("social-manager version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Logging   LoggingConfig             `mapstructure:"logging"`
	CORS      CORSConfig                `mapstructure:"cors"`
	Exchange  ExchangeConfig            `mapstructure:"exchange"`
	Callback  CallbackConfig            `mapstructure:"callback"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	MCP       MCPConfig                 `mapstructure:"mcp"`
	Client    ClientConfig              `mapstructure:"client"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	BaseURL         string        `mapstructure:"base_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// PublicURL is the externally visible base URL of the server.
func (s ServerConfig) PublicURL() string {
	if s.BaseURL != "" {
		return strings.TrimSuffix(s.BaseURL, "/")
	}
	host := s.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, s.Port)
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	Color             bool   `mapstructure:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

type CORSConfig struct {
	AllowedOrigins        []string `mapstructure:"allowed_origins"`
	AllowedOriginPatterns []string `mapstructure:"allowed_origin_patterns"`
	AllowedMethods        []string `mapstructure:"allowed_methods"`
	AllowedHeaders        []string `mapstructure:"allowed_headers"`
	AllowCredentials      bool     `mapstructure:"allow_credentials"`
}

// ExchangeConfig tunes outbound calls to provider endpoints.
type ExchangeConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

type CallbackConfig struct {
	SettingsURL  string        `mapstructure:"settings_url"`
	SuccessDelay time.Duration `mapstructure:"success_delay"`
	ErrorDelay   time.Duration `mapstructure:"error_delay"`
}

// ProviderConfig describes how to talk to one OAuth provider. Response
// fields are addressed with gjson paths so new providers need no code.
type ProviderConfig struct {
	Enabled            bool     `mapstructure:"enabled"`
	DisplayName        string   `mapstructure:"display_name"`
	ClientID           string   `mapstructure:"client_id"`
	ClientSecret       string   `mapstructure:"client_secret"`
	ClientIDParam      string   `mapstructure:"client_id_param"`
	AuthURL            string   `mapstructure:"auth_url"`
	TokenURL           string   `mapstructure:"token_url"`
	TokenParamsInQuery bool     `mapstructure:"token_params_in_query"`
	RedirectURL        string   `mapstructure:"redirect_url"`
	Scopes             []string `mapstructure:"scopes"`
	AccessTokenPath    string   `mapstructure:"access_token_path"`
	UserIDPath         string   `mapstructure:"user_id_path"`
	ErrorPaths         []string `mapstructure:"error_paths"`
	ProfileURL         string   `mapstructure:"profile_url"`
	ProfileTokenParam  string   `mapstructure:"profile_token_param"`
	UsernamePath       string   `mapstructure:"username_path"`
	UsernameFallback   string   `mapstructure:"username_fallback"`
}

// HasCredentials reports whether server-side client credentials are set.
func (p ProviderConfig) HasCredentials() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

type MCPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ClientConfig is used by the CLI and terminal UI to reach a running server.
type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// InitFlags registers the command line flags understood by Load
func InitFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a config file")
	flags.Int("server.port", DefaultPort, "HTTP port")
	flags.String("server.host", "", "HTTP host")
	flags.String("logging.level", "info", "Log level")
	flags.String("client.base_url", "", "Base URL of a running server, used by the client commands")
}

// Load reads configuration from flags, environment and config files.
// Missing config files are not an error; every setting has a default.
func Load(flags *pflag.FlagSet) (*Config, error) {
	viper.Reset() // Ensure clean state

	viper.SetEnvPrefix("SOCIAL_MANAGER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if flags != nil {
		if err := viper.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/social-manager")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	//Loading additionals config files
	if _, err := os.Stat("/config/config.yaml"); err == nil {
		viper.SetConfigFile("/config/config.yaml")
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to merge /config/config.yaml: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	for name, provider := range config.Providers {
		if provider.RedirectURL == "" {
			provider.RedirectURL = fmt.Sprintf("%s/auth/%s/callback", config.Server.PublicURL(), name)
		}
		config.Providers[name] = provider
	}
	if config.Client.BaseURL == "" {
		config.Client.BaseURL = config.Server.PublicURL()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks settings that would otherwise fail at request time.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	for _, pattern := range c.CORS.AllowedOriginPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid cors.allowed_origin_patterns entry %q: %w", pattern, err)
		}
	}
	for name, provider := range c.Providers {
		if !provider.Enabled {
			continue
		}
		if provider.TokenURL == "" {
			return fmt.Errorf("providers.%s.token_url is required when the provider is enabled", name)
		}
		if provider.AccessTokenPath == "" || provider.UserIDPath == "" {
			return fmt.Errorf("providers.%s needs access_token_path and user_id_path", name)
		}
		if provider.ProfileURL != "" && provider.UsernamePath == "" {
			return fmt.Errorf("providers.%s.username_path is required with profile_url", name)
		}
	}
	if c.Exchange.MaxAttempts < 1 {
		return fmt.Errorf("exchange.max_attempts must be at least 1")
	}
	return nil
}
