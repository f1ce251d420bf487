package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     App     `mapstructure:"app"`
	AI      AI      `mapstructure:"ai"`
	Search  Search  `mapstructure:"search"`
	Server  Server  `mapstructure:"server"`
	Storage Storage `mapstructure:"storage"`
	Output  Output  `mapstructure:"output"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// AI holds LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
}

// Search holds article search configuration
type Search struct {
	Provider          string           `mapstructure:"provider"`
	MaxPerTopic       int              `mapstructure:"max_per_topic"`
	Timeout           string           `mapstructure:"timeout"`
	EnrichContent     bool             `mapstructure:"enrich_content"`
	MaxEnrichArticles int              `mapstructure:"max_enrich_articles"`
	Perplexity        PerplexityConfig `mapstructure:"perplexity"`
}

// PerplexityConfig holds Perplexity API configuration
type PerplexityConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Server holds HTTP server configuration
type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Storage holds persistence configuration
type Storage struct {
	Directory string `mapstructure:"directory"`
}

// Output holds newsletter export configuration
type Output struct {
	Directory string `mapstructure:"directory"`
}

var globalConfig *Config

// Load reads configuration from a file (optional), .env, and the environment.
func Load(cfgFile string) (*Config, error) {
	// .env is optional; environment variables win regardless
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".govbrief")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine; anything else is not
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".govbrief")

	viper.SetDefault("ai.gemini.model", "gemini-1.5-flash-latest")
	viper.SetDefault("ai.gemini.temperature", 0.3)
	viper.SetDefault("ai.gemini.max_tokens", 4096)

	viper.SetDefault("search.provider", "perplexity")
	viper.SetDefault("search.max_per_topic", 10)
	viper.SetDefault("search.timeout", "30s")
	viper.SetDefault("search.enrich_content", false)
	viper.SetDefault("search.max_enrich_articles", 10)
	viper.SetDefault("search.perplexity.model", "sonar-pro")

	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("storage.directory", ".govbrief")
	viper.SetDefault("output.directory", "exports")
}

// bindEnvironmentVariables supports the common env var spellings for API keys.
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})
	bindEnvKeys("search.perplexity.api_key", []string{
		"PERPLEXITY_API_KEY",
	})
}

func bindEnvKeys(configKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(configKey, value)
			return
		}
	}
}
