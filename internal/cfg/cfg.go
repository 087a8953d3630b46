// Package cfg loads service settings from an optional YAML file with
// environment-variable overrides. Provider credentials and the sender
// identity are required and have no defaults.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	// Messaging provider (required, no defaults)
	TwilioAccountSID string
	TwilioAuthToken  string
	WhatsAppFrom     string

	// DefaultRecipient receives reminders when the request does not name
	// a recipient. Optional; requests without either are rejected at
	// dispatch time.
	DefaultRecipient string

	ProviderBaseURL string
	DispatchTimeout time.Duration

	ModelPath string
	DataPath  string

	ServerPort  int
	MetricsPort int
	GinMode     string

	LogLevel  string
	LogFormat string

	RateLimit       int
	RateLimitWindow time.Duration

	AllowedOrigins []string
}

type ConfigFile struct {
	Provider struct {
		AccountSID       string `yaml:"accountSID"`
		AuthToken        string `yaml:"authToken"`
		WhatsAppFrom     string `yaml:"whatsappFrom"`
		DefaultRecipient string `yaml:"defaultRecipient"`
		BaseURL          string `yaml:"baseURL"`
		DispatchTimeout  string `yaml:"dispatchTimeout"`
	} `yaml:"provider"`

	ML struct {
		ModelPath string `yaml:"modelPath"`
	} `yaml:"ml"`

	System struct {
		ServerPort     int      `yaml:"serverPort"`
		MetricsPort    int      `yaml:"metricsPort"`
		GinMode        string   `yaml:"ginMode"`
		DataPath       string   `yaml:"dataPath"`
		LogLevel       string   `yaml:"logLevel"`
		LogFormat      string   `yaml:"logFormat"`
		RateLimit      int      `yaml:"rateLimit"`
		RateWindow     string   `yaml:"rateWindow"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	dispatchTimeout := getDurationOrDefault("DISPATCH_TIMEOUT",
		parseOrDefault(config.Provider.DispatchTimeout, 5*time.Second))

	settings := Settings{
		TwilioAccountSID: getEnvOrDefault("TWILIO_ACCOUNT_SID", config.Provider.AccountSID),
		TwilioAuthToken:  getEnvOrDefault("TWILIO_AUTH_TOKEN", config.Provider.AuthToken),
		WhatsAppFrom:     getEnvOrDefault("WHATSAPP_FROM", config.Provider.WhatsAppFrom),
		DefaultRecipient: getEnvOrDefault("DEFAULT_RECIPIENT", config.Provider.DefaultRecipient),
		ProviderBaseURL:  getEnvOrDefault("PROVIDER_BASE_URL", defaultString(config.Provider.BaseURL, "https://api.twilio.com")),
		DispatchTimeout:  dispatchTimeout,
		ModelPath:        getEnvOrDefault("MODEL_PATH", defaultString(config.ML.ModelPath, "model_bundle.json")),
		DataPath:         getEnvOrDefault("DATA_PATH", config.System.DataPath),
		ServerPort:       getIntFromEnvOrConfig("SERVER_PORT", config.System.ServerPort, 5001),
		MetricsPort:      getIntFromEnvOrConfig("METRICS_PORT", config.System.MetricsPort, 9090),
		GinMode:          getEnvOrDefault("GIN_MODE", defaultString(config.System.GinMode, "release")),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", defaultString(config.System.LogLevel, "info")),
		LogFormat:        getEnvOrDefault("LOG_FORMAT", defaultString(config.System.LogFormat, "json")),
		RateLimit:        getIntFromEnvOrConfig("RATE_LIMIT", config.System.RateLimit, 60),
		RateLimitWindow:  getDurationOrDefault("RATE_WINDOW", parseOrDefault(config.System.RateWindow, time.Minute)),
		AllowedOrigins:   originsFromEnvOrConfig(config.System.AllowedOrigins),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	sid, err := getEnvRequired("TWILIO_ACCOUNT_SID")
	if err != nil {
		return Settings{}, err
	}
	token, err := getEnvRequired("TWILIO_AUTH_TOKEN")
	if err != nil {
		return Settings{}, err
	}
	from, err := getEnvRequired("WHATSAPP_FROM")
	if err != nil {
		return Settings{}, err
	}

	settings := Settings{
		TwilioAccountSID: sid,
		TwilioAuthToken:  token,
		WhatsAppFrom:     from,
		DefaultRecipient: os.Getenv("DEFAULT_RECIPIENT"), // optional
		ProviderBaseURL:  getEnvOrDefault("PROVIDER_BASE_URL", "https://api.twilio.com"),
		DispatchTimeout:  getDurationOrDefault("DISPATCH_TIMEOUT", 5*time.Second),
		ModelPath:        getEnvOrDefault("MODEL_PATH", "model_bundle.json"),
		DataPath:         os.Getenv("DATA_PATH"), // optional
		ServerPort:       getIntOrDefault("SERVER_PORT", 5001),
		MetricsPort:      getIntOrDefault("METRICS_PORT", 9090),
		GinMode:          getEnvOrDefault("GIN_MODE", "release"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        getEnvOrDefault("LOG_FORMAT", "json"),
		RateLimit:        getIntOrDefault("RATE_LIMIT", 60),
		RateLimitWindow:  getDurationOrDefault("RATE_WINDOW", time.Minute),
		AllowedOrigins:   splitOrDefault(os.Getenv("ALLOWED_ORIGINS"), nil),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func getEnvRequired(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s is missing", key)
	}
	return v, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func defaultString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseOrDefault(v string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(v); err == nil && v != "" {
		return d
	}
	return def
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func splitOrDefault(v string, def []string) []string {
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func originsFromEnvOrConfig(configOrigins []string) []string {
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		return splitOrDefault(env, nil)
	}
	return configOrigins
}

// validateSettings rejects configurations the service cannot safely run
// with. Provider identity is checked here so a misconfigured deployment
// fails at startup rather than on the first qualifying request.
func validateSettings(settings *Settings) error {
	if settings.TwilioAccountSID == "" || settings.TwilioAuthToken == "" {
		return fmt.Errorf("provider account SID and auth token are required")
	}
	if settings.WhatsAppFrom == "" {
		return fmt.Errorf("sender identity is required")
	}
	if !strings.HasPrefix(settings.WhatsAppFrom, "whatsapp:") {
		return fmt.Errorf("sender identity must use the whatsapp: prefix, got %q", settings.WhatsAppFrom)
	}
	if settings.DefaultRecipient != "" && !strings.HasPrefix(settings.DefaultRecipient, "whatsapp:") {
		return fmt.Errorf("default recipient must use the whatsapp: prefix, got %q", settings.DefaultRecipient)
	}

	if settings.ProviderBaseURL == "" {
		return fmt.Errorf("provider base URL cannot be empty")
	}
	if settings.ModelPath == "" {
		return fmt.Errorf("model bundle path cannot be empty")
	}

	if settings.DispatchTimeout < time.Second || settings.DispatchTimeout > time.Minute {
		return fmt.Errorf("dispatch timeout must be between 1s and 1m, got %v", settings.DispatchTimeout)
	}

	if settings.ServerPort < 1 || settings.ServerPort > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", settings.ServerPort)
	}
	if settings.MetricsPort < 1024 || settings.MetricsPort > 65535 {
		return fmt.Errorf("metrics port must be between 1024 and 65535, got %d", settings.MetricsPort)
	}
	if settings.MetricsPort == settings.ServerPort {
		return fmt.Errorf("metrics port and server port must differ, both are %d", settings.ServerPort)
	}

	if settings.RateLimit <= 0 || settings.RateLimit > 10000 {
		return fmt.Errorf("rate limit must be between 1 and 10000 requests, got %d", settings.RateLimit)
	}
	if settings.RateLimitWindow < time.Second || settings.RateLimitWindow > time.Hour {
		return fmt.Errorf("rate limit window must be between 1s and 1h, got %v", settings.RateLimitWindow)
	}

	return nil
}
