package conf

import "os"

// Config represents application configuration
type Config struct {
	// Telegram configuration
	Telegram TelegramConfig

	// OpenAI configuration
	OpenAI OpenAIConfig

	// Storage configuration
	DB DBConfig

	// Debug mode
	Debug bool
}

// TelegramConfig contains Telegram configuration
type TelegramConfig struct {
	BotToken string
}

// OpenAIConfig contains OpenAI configuration
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// DBConfig contains storage configuration
type DBConfig struct {
	Path string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "bot_data.db"
	}

	return &Config{
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  model,
		},
		DB: DBConfig{
			Path: dbPath,
		},
		Debug: os.Getenv("DEBUG") == "true",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return &ConfigError{Field: "TELEGRAM_BOT_TOKEN", Message: "required"}
	}
	if c.OpenAI.APIKey == "" {
		return &ConfigError{Field: "OPENAI_API_KEY", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
