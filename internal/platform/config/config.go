package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration for the Beam API.
type Config struct {
	Addr        string
	DatabaseURL string // empty means in-memory stores
	Redis       RedisConfig
	Kafka       KafkaConfig

	// ArtifactDir is where uploaded registration documents land on disk.
	ArtifactDir string

	// AdminToken guards the admin approval routes. AdminTokenHash, when set,
	// takes precedence and is verified with bcrypt.
	AdminToken     string
	AdminTokenHash string

	// MaxUploadBytes bounds document uploads server-side.
	MaxUploadBytes int64

	// Verification link parameters.
	VerificationTTL      time.Duration
	VerificationSecret   string
	VerificationBaseURL  string
	VerificationResendIn time.Duration

	// TrialDays is the length of the trial period started at plan selection.
	TrialDays int

	SendgridAPIKey string
	SenderAddress  string
}

// RedisConfig holds connection settings for the verification token store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the registration events publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables so main stays lean.
// Every value has a local-development default.
func FromEnv() Config {
	cfg := Config{
		Addr:        envOr("BEAM_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ArtifactDir: envOr("BEAM_ARTIFACT_DIR", "artifacts"),

		AdminToken:     envOr("BEAM_ADMIN_TOKEN", "dev-admin-token"),
		AdminTokenHash: os.Getenv("BEAM_ADMIN_TOKEN_HASH"),

		MaxUploadBytes: envInt64("BEAM_MAX_UPLOAD_BYTES", 10<<20),

		VerificationTTL:      envDuration("BEAM_VERIFICATION_TTL", 24*time.Hour),
		VerificationSecret:   envOr("BEAM_VERIFICATION_SECRET", "dev-verification-secret"),
		VerificationBaseURL:  envOr("BEAM_VERIFICATION_BASE_URL", "http://localhost:8080"),
		VerificationResendIn: envDuration("BEAM_VERIFICATION_RESEND_IN", time.Minute),

		TrialDays: int(envInt64("BEAM_TRIAL_DAYS", 14)),

		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		SenderAddress:  envOr("BEAM_SENDER_ADDRESS", "no-reply@beam.local"),

		Redis: RedisConfig{
			URL:          os.Getenv("BEAM_REDIS_URL"),
			PoolSize:     int(envInt64("BEAM_REDIS_POOL_SIZE", 10)),
			MinIdleConns: int(envInt64("BEAM_REDIS_MIN_IDLE", 2)),
			DialTimeout:  envDuration("BEAM_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("BEAM_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("BEAM_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Topic: envOr("BEAM_KAFKA_TOPIC", "beam.registration.events"),
		},
	}
	if brokers := os.Getenv("BEAM_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitCSV(brokers)
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if part := s[start:i]; part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}
