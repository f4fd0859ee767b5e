package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. It is resolved once from the
// environment and passed down; nothing below the cmd layer reads env vars.
type Config struct {
	Acquire   AcquireConfig
	Extract   ExtractConfig
	Providers ProvidersConfig
	Database  DatabaseConfig
	Output    OutputConfig
}

// AcquireConfig holds document-download configuration
type AcquireConfig struct {
	Timeout time.Duration
}

// ExtractConfig holds extraction-chain configuration
type ExtractConfig struct {
	MinUsefulLen  int // trimmed rune count a result must reach to win the chain
	MaxPages      int // pages read per backend; 0 = no limit
	DPI           int // rasterization DPI for the OCR backend
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
}

// ProvidersConfig holds image-provider configuration. Credential absence is
// never an error here; it only narrows the eligible-provider list.
type ProvidersConfig struct {
	OpenAI    OpenAIConfig
	Stability StabilityConfig
	SizeHint  string
}

// OpenAIConfig configures the OpenAI image provider.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// StabilityConfig configures the Stability image provider.
type StabilityConfig struct {
	APIKey  string
	BaseURL string
	Engine  string
	Timeout time.Duration
}

// DatabaseConfig holds run-history store configuration. An empty DSN
// disables persistence.
type DatabaseConfig struct {
	DSN         string
	DialTimeout time.Duration
}

// OutputConfig holds artifact placement configuration
type OutputConfig struct {
	Dir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Acquire: AcquireConfig{
			Timeout: getEnvAsDuration("DOWNLOAD_TIMEOUT", 30*time.Second),
		},
		Extract: ExtractConfig{
			MinUsefulLen:  getEnvAsInt("EXTRACT_MIN_CHARS", 40),
			MaxPages:      getEnvAsInt("EXTRACT_MAX_PAGES", 5),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
		},
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				APIKey:  getEnv("OPENAI_API_KEY", ""),
				BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Model:   getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
				Timeout: getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
			},
			Stability: StabilityConfig{
				APIKey:  getEnv("STABILITY_API_KEY", ""),
				BaseURL: getEnv("STABILITY_BASE_URL", "https://api.stability.ai"),
				Engine:  getEnv("STABILITY_ENGINE", "stable-diffusion-xl-1024-v1-0"),
				Timeout: getEnvAsDuration("STABILITY_TIMEOUT", 60*time.Second),
			},
			SizeHint: getEnv("IMAGE_SIZE", "1024x1024"),
		},
		Database: DatabaseConfig{
			DSN:         getEnv("DB_URL", ""),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Output: OutputConfig{
			Dir: getEnv("OUTPUT_DIR", "."),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration. Provider credentials are
// deliberately not checked: their absence only narrows the eligible list.
func (c *Config) Validate() error {
	if c.Extract.MinUsefulLen < 1 {
		return NewAppError(CodeConfig, "EXTRACT_MIN_CHARS must be positive", ErrInvalidInput)
	}
	if c.Output.Dir == "" {
		return NewAppError(CodeConfig, "OUTPUT_DIR must not be empty", ErrInvalidInput)
	}
	return nil
}
