package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Groq        GroqConfig
	HuggingFace HuggingFaceConfig
	Assembly    AssemblyAIConfig
	Storage     StorageConfig
	Insights    InsightsConfig
	Webhook     WebhookConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8000"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	FrontendURL     string   `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:8000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"call_insights"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	Migrations  string `envconfig:"DB_MIGRATIONS_DIR" default:"migrations"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
}

// JWTConfig holds JWT configuration. SalesRepSecret signs the sales-rep
// tokens; it falls back to AccessSecret when unset.
type JWTConfig struct {
	AccessSecret   string        `envconfig:"JWT_ACCESS_SECRET" default:"your-access-secret-change-in-production"`
	SalesRepSecret string        `envconfig:"JWT_SALES_REP_SECRET"`
	AccessExpiry   time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"1h"`
	Issuer         string        `envconfig:"JWT_ISSUER" default:"call-insights"`
}

// GroqConfig holds the hosted LLM settings
type GroqConfig struct {
	APIKey     string        `envconfig:"GROQ_API_KEY"`
	BaseURL    string        `envconfig:"GROQ_API_URL" default:"https://api.groq.com/openai/v1"`
	Model      string        `envconfig:"GROQ_MODEL" default:"llama3-70b-8192"`
	Timeout    time.Duration `envconfig:"GROQ_TIMEOUT" default:"60s"`
	MaxRetries int           `envconfig:"GROQ_MAX_RETRIES" default:"2"`
	JSONMode   bool          `envconfig:"GROQ_JSON_MODE" default:"true"`
}

// HuggingFaceConfig holds the buyer-intent classifier settings.
// Classifier is "hf" for the hosted model or "lexicon" for the offline fallback.
type HuggingFaceConfig struct {
	Token      string        `envconfig:"HF_API_TOKEN"`
	BaseURL    string        `envconfig:"HF_INFERENCE_URL" default:"https://api-inference.huggingface.co/models"`
	Model      string        `envconfig:"HF_INTENT_MODEL" default:"nigelnoronha/BERT-buyer-intent"`
	Classifier string        `envconfig:"INTENT_CLASSIFIER" default:"hf"`
	Timeout    time.Duration `envconfig:"HF_TIMEOUT" default:"60s"`
}

// AssemblyAIConfig holds transcription settings
type AssemblyAIConfig struct {
	APIKey       string `envconfig:"ASSEMBLYAI_API_KEY"`
	LanguageCode string `envconfig:"ASSEMBLYAI_LANGUAGE" default:"en_us"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Enabled         bool   `envconfig:"STORAGE_ENABLED" default:"false"`
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"call-insights"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
}

// InsightsConfig holds the analyzer pipeline settings.
// Runner is "process" (one child process per analyzer) or "inprocess".
type InsightsConfig struct {
	TranscriptDir      string        `envconfig:"INSIGHTS_TRANSCRIPT_DIR" default:"."`
	TranscriptFile     string        `envconfig:"TRANSCRIPT_FILE"`
	TranscriptFilePath string        `envconfig:"TRANSCRIPT_FILE_PATH" default:"diarized-transcript.json"`
	BenchmarkDir       string        `envconfig:"BENCHMARK_FOLDER" default:"benchmark_folder"`
	Runner             string        `envconfig:"INSIGHTS_RUNNER" default:"process"`
	AnalyzerBinary     string        `envconfig:"INSIGHTS_ANALYZER_BIN"`
	Parallel           bool          `envconfig:"INSIGHTS_PARALLEL" default:"false"`
	MaxTranscriptChars int           `envconfig:"INSIGHTS_MAX_TRANSCRIPT_CHARS" default:"12000"`
	ProspectSpeaker    string        `envconfig:"INSIGHTS_PROSPECT_SPEAKER" default:"Speaker 2"`
	SalesRepSpeaker    string        `envconfig:"INSIGHTS_SALES_REP_SPEAKER" default:"Speaker 1"`
	CacheTTL           time.Duration `envconfig:"INSIGHTS_CACHE_TTL" default:"30m"`
	Workers            int           `envconfig:"INSIGHTS_WORKERS" default:"2"`
	QueueSize          int           `envconfig:"INSIGHTS_QUEUE_SIZE" default:"64"`
}

// WebhookConfig holds the call-recorded webhook settings
type WebhookConfig struct {
	Secret string `envconfig:"WEBHOOK_SECRET"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{}
	sections := []interface{}{
		&config.Server,
		&config.Database,
		&config.Redis,
		&config.JWT,
		&config.Groq,
		&config.HuggingFace,
		&config.Assembly,
		&config.Storage,
		&config.Insights,
		&config.Webhook,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if config.JWT.SalesRepSecret == "" {
		config.JWT.SalesRepSecret = config.JWT.AccessSecret
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWT.AccessSecret == "" || c.JWT.AccessSecret == "your-access-secret-change-in-production" {
			return fmt.Errorf("JWT_ACCESS_SECRET is required in production")
		}
		if c.Groq.APIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required in production")
		}
	}
	switch c.Insights.Runner {
	case "process", "inprocess":
	default:
		return fmt.Errorf("INSIGHTS_RUNNER must be process or inprocess, got %q", c.Insights.Runner)
	}
	switch c.HuggingFace.Classifier {
	case "hf", "lexicon":
	default:
		return fmt.Errorf("INTENT_CLASSIFIER must be hf or lexicon, got %q", c.HuggingFace.Classifier)
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// DefaultTranscriptFile mirrors the TRANSCRIPT_FILE then TRANSCRIPT_FILE_PATH lookup.
func (c *Config) DefaultTranscriptFile() string {
	if c.Insights.TranscriptFile != "" {
		return c.Insights.TranscriptFile
	}
	return c.Insights.TranscriptFilePath
}
