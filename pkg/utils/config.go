package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret     string
	JWTIssuer     string
	JWTDuration   time.Duration
	EncryptionKey string // 64 hex chars, AES-256 key for PII columns
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("ANIHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("ANIHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "anihub"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("ANIHUB_JWT_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			duration = time.Duration(hours) * time.Hour
		}
	}

	key := os.Getenv("ANIHUB_ENCRYPTION_KEY")
	if key == "" {
		// dev default, 32 bytes of zeros (change for demo / production)
		key = "0000000000000000000000000000000000000000000000000000000000000000"
	}

	return AuthConfig{
		JWTSecret:     secret,
		JWTIssuer:     issuer,
		JWTDuration:   duration,
		EncryptionKey: key,
	}
}

type CatalogConfig struct {
	ConsumetBaseURL string
}

func LoadCatalogConfig() CatalogConfig {
	return CatalogConfig{
		ConsumetBaseURL: os.Getenv("ANIHUB_CONSUMET_URL"),
	}
}

type ServerConfig struct {
	Addr string
}

func LoadServerConfig() ServerConfig {
	addr := os.Getenv("ANIHUB_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return ServerConfig{Addr: addr}
}
