package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	OCR       OCRConfig
	LLM       LLMConfig
	Pipeline  PipelineConfig
	Ingest    IngestConfig
	Reminders RemindersConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	// DSN is either a postgres:// URL or a filesystem path to a SQLite
	// database file.
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract     string
	Pdftoppm      string
	TesseractLang string
	DPI           int
	MaxPages      int
	TessdataDir   string
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// PipelineConfig holds document pipeline configuration
type PipelineConfig struct {
	MaxFileSize       int64
	Workers           int
	QueueSize         int
	PerDocumentBudget time.Duration
}

// IngestConfig holds inbox ingestion configuration
type IngestConfig struct {
	InboxDir    string
	InboxUser   string
	WatchInbox  bool
	InitialScan bool
	Debounce    time.Duration
}

// RemindersConfig holds reminder scheduler configuration. The appointment
// lookahead is not configured here; it lives in the settings table.
type RemindersConfig struct {
	Enabled  bool
	CronSpec string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", "health.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_PATH", "tesseract"),
			Pdftoppm:      getEnv("PDFTOPPM_PATH", "pdftoppm"),
			TesseractLang: getEnv("OCR_LANG", "eng"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 20),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.3),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Pipeline: PipelineConfig{
			MaxFileSize:       int64(getEnvAsInt("MAX_FILE_SIZE_MB", 50)) << 20,
			Workers:           getEnvAsInt("PIPELINE_WORKERS", 4),
			QueueSize:         getEnvAsInt("PIPELINE_QUEUE_SIZE", 256),
			PerDocumentBudget: getEnvAsDuration("PIPELINE_DOC_TIMEOUT", 3*time.Minute),
		},
		Ingest: IngestConfig{
			InboxDir:    getEnv("INBOX_DIR", ""),
			InboxUser:   getEnv("INBOX_USER_ID", ""),
			WatchInbox:  getEnvAsBool("INBOX_WATCH", true),
			InitialScan: getEnvAsBool("INBOX_INITIAL_SCAN", true),
			Debounce:    getEnvAsDuration("INBOX_DEBOUNCE", 2*time.Second),
		},
		Reminders: RemindersConfig{
			Enabled:  getEnvAsBool("REMINDERS_ENABLED", true),
			CronSpec: getEnv("REMINDER_CRON", "* * * * *"),
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

// Validate checks the loaded configuration. The LLM key is optional: without
// it the summarizer runs in rule-based mode.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Pipeline.MaxFileSize <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_FILE_SIZE_MB must be positive", ErrInvalidInput)
	}
	if c.Pipeline.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "PIPELINE_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
