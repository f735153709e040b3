package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings read from the environment
type Config struct {
	Addr          string
	GinMode       string
	AppEnv        string
	DBPath        string
	JWTSecret     []byte
	JWTTTL        time.Duration
	MediaDir      string
	MediaBaseURL  string
	MediaMaxBytes int64
	AdminAccount  string
	AdminPassword string
}

// Load reads .env when present, then the process environment
func Load() Config {
	// a missing .env is fine, real deployments set the environment directly
	_ = godotenv.Load()

	return Config{
		Addr:          getEnv("ADDR", ":8080"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		AppEnv:        getEnv("APP_ENV", "development"),
		DBPath:        getEnv("DB_PATH", "campus_food.db"),
		JWTSecret:     []byte(getEnv("JWT_SECRET", "campus_food_dev_secret")),
		JWTTTL:        getDuration("JWT_TTL", 7*24*time.Hour),
		MediaDir:      getEnv("MEDIA_DIR", "uploads"),
		MediaBaseURL:  getEnv("MEDIA_BASE_URL", "/uploads"),
		MediaMaxBytes: int64(getInt("MEDIA_MAX_BYTES", 1<<20)),
		AdminAccount:  os.Getenv("ADMIN_ACCOUNT"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// IsProduction reports whether the service runs with production defaults
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
