package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr         string
	DBPath             string
	VisionBackend      string
	OllamaHost         string
	OllamaModel        string
	ClaudeAPIKey       string
	ClaudeModel        string
	PhotoBackend       string
	PhotoPath          string
	S3Bucket           string
	S3Region           string
	S3Endpoint         string
	S3AccessKey        string
	S3SecretKey        string
	DefaultCountryCode string
	AuthSecret         string
	TokenTTL           time.Duration
	CORSOrigins        []string
	TrustedProxies     []string
	RateLimitRPS       float64
	RateLimitBurst     int
	LogLevel           string
	LogFile            string
}

func Load() *Config {
	return &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		DBPath:             getEnv("DB_PATH", "/data/photoshare.db"),
		VisionBackend:      getEnv("VISION_BACKEND", "none"),
		OllamaHost:         getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:        getEnv("OLLAMA_MODEL", "moondream"),
		ClaudeAPIKey:       getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:        getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),
		PhotoBackend:       getEnv("PHOTO_BACKEND", "local"),
		PhotoPath:          getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Region:           getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3AccessKey:        getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:        getEnv("S3_SECRET_KEY", ""),
		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "91"),
		AuthSecret:         getEnv("AUTH_SECRET", ""),
		TokenTTL:           getEnvDuration("TOKEN_TTL", 30*24*time.Hour),
		CORSOrigins:        getEnvList("CORS_ORIGINS"),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
	}
}

// Validate reports settings that would only fail later at first use.
func (c *Config) Validate() error {
	var errs []error
	switch c.VisionBackend {
	case "none", "ollama":
	case "claude":
		if c.ClaudeAPIKey == "" {
			errs = append(errs, errors.New("CLAUDE_API_KEY is required when VISION_BACKEND=claude"))
		}
	default:
		errs = append(errs, errors.New("VISION_BACKEND must be one of none, ollama, claude"))
	}
	switch c.PhotoBackend {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when PHOTO_BACKEND=s3"))
		}
	default:
		errs = append(errs, errors.New("PHOTO_BACKEND must be one of local, s3"))
	}
	for _, p := range c.TrustedProxies {
		if _, err := netip.ParsePrefix(p); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(p); err != nil {
			errs = append(errs, fmt.Errorf("TRUSTED_PROXIES entry %q is not an address or CIDR range", p))
		}
	}
	return errors.Join(errs...)
}

// ClientConfig configures the command-line share client.
type ClientConfig struct {
	BaseURL            string
	Token              string
	DefaultCountryCode string
}

func LoadClient() *ClientConfig {
	return &ClientConfig{
		BaseURL:            getEnv("PHOTOSHARE_URL", "http://localhost:8080"),
		Token:              getEnv("PHOTOSHARE_TOKEN", ""),
		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "91"),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if f, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return f
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return defaultVal
}

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
