package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	MongoURI   string
	MongoDB    string
	RedisAddr  string
	Port       string
	SchemaPath string
	SessionTTL time.Duration
}

func Load() *Config {
	return &Config{
		MongoURI:   getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:    getEnv("MONGO_DB", "formwoz"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		Port:       getEnv("PORT", "8080"),
		SchemaPath: getEnv("SCHEMA_PATH", "config/questions.yaml"),
		SessionTTL: getDuration("SESSION_TTL_MINUTES", 30) * time.Minute,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal int) time.Duration {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(defaultVal)
}
