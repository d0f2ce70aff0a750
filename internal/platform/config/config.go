package config

import (
	"os"
	"strings"
)

// Server captures process-level configuration. Storage backends are picked
// by which connection settings are present: a Postgres DSN moves record and
// aggregate persistence to Postgres, a Redis address moves aggregates to
// Redis, Kafka brokers enable the audit sink. With none set everything runs
// in memory.
type Server struct {
	Addr          string
	JWTSigningKey string
	AssetsFile    string
	PostgresDSN   string
	RedisAddr     string
	KafkaBrokers  []string
	KafkaTopic    string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("RWA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	assetsFile := os.Getenv("ASSETS_FILE")
	if assetsFile == "" {
		assetsFile = "assets.json"
	}

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "rwa.lifecycle.audit"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		AssetsFile:    assetsFile,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		KafkaBrokers:  brokers,
		KafkaTopic:    topic,
	}
}
