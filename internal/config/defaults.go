package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultPort is the default port for the HTTP server
	DefaultPort = 3000

	ProviderInstagram = "instagram"
	ProviderTikTok    = "tiktok"
)

// DefaultProviders returns the built-in provider descriptions. Client
// credentials are always empty here and must come from the environment or a
// config file.
func DefaultProviders() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		ProviderInstagram: {
			Enabled:           true,
			DisplayName:       "Instagram",
			ClientIDParam:     "client_id",
			AuthURL:           "https://api.instagram.com/oauth/authorize",
			TokenURL:          "https://api.instagram.com/oauth/access_token",
			Scopes:            []string{"user_profile", "user_media"},
			AccessTokenPath:   "access_token",
			UserIDPath:        "user_id",
			ErrorPaths:        []string{"error_message", "error.message"},
			ProfileURL:        "https://graph.instagram.com/{user_id}?fields=id,username",
			ProfileTokenParam: "access_token",
			UsernamePath:      "username",
		},
		ProviderTikTok: {
			Enabled:            true,
			DisplayName:        "TikTok",
			ClientIDParam:      "client_key",
			AuthURL:            "https://www.tiktok.com/auth/authorize/",
			TokenURL:           "https://open-api.tiktok.com/oauth/access_token/",
			TokenParamsInQuery: true,
			Scopes:             []string{"user.info.basic"},
			AccessTokenPath:    "data.access_token",
			UserIDPath:         "data.open_id",
			ErrorPaths:         []string{"error.description", "error_description"},
			UsernameFallback:   "tiktok_user_%.5s",
		},
	}
}

func setDefaults() {
	viper.SetDefault("server.port", DefaultPort)
	viper.SetDefault("server.host", "")
	viper.SetDefault("server.base_url", "")
	viper.SetDefault("server.shutdown_timeout", 5*time.Second)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")

	viper.SetDefault("cors.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	viper.SetDefault("cors.allowed_origin_patterns", []string{`\.lovableproject\.com$`})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization"})
	viper.SetDefault("cors.allow_credentials", true)

	viper.SetDefault("exchange.timeout", 15*time.Second)
	viper.SetDefault("exchange.max_attempts", 3)
	viper.SetDefault("exchange.initial_backoff", 200*time.Millisecond)
	viper.SetDefault("exchange.max_backoff", 2*time.Second)

	viper.SetDefault("callback.settings_url", "http://localhost:8080/settings")
	viper.SetDefault("callback.success_delay", 2*time.Second)
	viper.SetDefault("callback.error_delay", 5*time.Second)

	viper.SetDefault("mcp.enabled", false)
	viper.SetDefault("mcp.name", "Social Manager")
	viper.SetDefault("mcp.version", "1.0.0")

	viper.SetDefault("client.base_url", "")
	viper.SetDefault("client.timeout", 30*time.Second)

	for name, p := range DefaultProviders() {
		prefix := "providers." + name + "."
		viper.SetDefault(prefix+"enabled", p.Enabled)
		viper.SetDefault(prefix+"display_name", p.DisplayName)
		viper.SetDefault(prefix+"client_id", "")
		viper.SetDefault(prefix+"client_secret", "")
		viper.SetDefault(prefix+"client_id_param", p.ClientIDParam)
		viper.SetDefault(prefix+"auth_url", p.AuthURL)
		viper.SetDefault(prefix+"token_url", p.TokenURL)
		viper.SetDefault(prefix+"token_params_in_query", p.TokenParamsInQuery)
		viper.SetDefault(prefix+"redirect_url", "")
		viper.SetDefault(prefix+"scopes", p.Scopes)
		viper.SetDefault(prefix+"access_token_path", p.AccessTokenPath)
		viper.SetDefault(prefix+"user_id_path", p.UserIDPath)
		viper.SetDefault(prefix+"error_paths", p.ErrorPaths)
		viper.SetDefault(prefix+"profile_url", p.ProfileURL)
		viper.SetDefault(prefix+"profile_token_param", p.ProfileTokenParam)
		viper.SetDefault(prefix+"username_path", p.UsernamePath)
		viper.SetDefault(prefix+"username_fallback", p.UsernameFallback)
	}
}
