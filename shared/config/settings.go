package config

import "time"

// JWTConfig holds token signing settings
type JWTConfig struct {
	Secret   string
	Issuer   string
	Lifetime time.Duration
}

// GetJWTConfig returns JWT settings from environment variables
func GetJWTConfig() *JWTConfig {
	return &JWTConfig{
		Secret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
		Issuer:   getEnv("JWT_ISSUER", "seller-inventory"),
		Lifetime: 24 * time.Hour,
	}
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host string
	Port string
}

// GetRedisConfig returns Redis settings from environment variables
func GetRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host: getEnv("REDIS_HOST", "localhost"),
		Port: getEnv("REDIS_PORT", "6379"),
	}
}

// ServerPort returns the API listen port
func ServerPort() string {
	return getEnv("API_PORT", "8080")
}
