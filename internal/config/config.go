package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// Provider display names spoken in prompts and used as match candidates.
	Provider1Name string
	Provider2Name string

	// Twilio webhook transport.
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWebhookSecret  string
	TwilioTransferNumber string

	// Intake engine tuning.
	SessionTTL     time.Duration
	MatcherEnabled bool
	MatcherTimeout time.Duration
	BedrockModelID string
	GeminiAPIKey   string
	GeminiModelID  string

	// Speech (Whisper STT / TTS prompt audio).
	OpenAIAPIKey       string
	TTSVoice           string
	PromptAudioBucket  string
	UseRecordedPrompts bool

	// Session store.
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Intake summary notifications.
	UseMemoryQueue    bool
	WorkerCount       int
	NotifyQueueURL    string
	IntakeNotifyEmail string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	// AWS (SQS, SES, S3, Bedrock).
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		Provider1Name: getEnv("PROVIDER_1_NAME", "Dr. Ahmed"),
		Provider2Name: getEnv("PROVIDER_2_NAME", "Sarah Eannarelli"),

		TwilioAccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWebhookSecret:  getEnv("TWILIO_WEBHOOK_SECRET", ""),
		TwilioTransferNumber: getEnv("TWILIO_TRANSFER_NUMBER", ""),

		SessionTTL:     getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		MatcherEnabled: getEnvAsBool("MATCHER_ENABLED", true),
		MatcherTimeout: getEnvAsDuration("MATCHER_TIMEOUT", 2*time.Second),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		TTSVoice:           getEnv("TTS_VOICE", "alloy"),
		PromptAudioBucket:  getEnv("PROMPT_AUDIO_BUCKET", ""),
		UseRecordedPrompts: getEnvAsBool("USE_RECORDED_PROMPTS", false),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		UseMemoryQueue:    getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:       getEnvAsInt("WORKER_COUNT", 2),
		NotifyQueueURL:    getEnv("NOTIFY_QUEUE_URL", ""),
		IntakeNotifyEmail: getEnv("INTAKE_NOTIFY_EMAIL", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Clinic Intake"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Clinic Intake"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// ProviderNames returns the configured provider display names in declared order.
func (c *Config) ProviderNames() []string {
	return []string{c.Provider1Name, c.Provider2Name}
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
