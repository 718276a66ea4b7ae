package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gravadigital/tallywatch-api/internal/domain/verification"
)

// Config holds all configuration for the application
type Config struct {
	Environment string

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string

		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
		ConnectAttempts int
	}

	Server struct {
		Port            string
		GinMode         string
		ShutdownTimeout time.Duration
	}

	Log struct {
		Level  string
		Format string
	}

	Auth struct {
		JWTSecret string
		Issuer    string
	}

	Storage struct {
		Backend   string
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		Region    string
		UseSSL    bool
	}

	Upload struct {
		MaxFileSize int64
		MaxPhotos   int
	}

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}

	Verify struct {
		DefaultRadiusMeters int
		HighTurnout         float64
		LowTurnout          float64
		MaxRejectionRate    float64
		LandslideShare      float64
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.Environment = getEnv("APP_ENV", "development")

	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "tallywatch")
	config.DB.Password = getEnv("DB_PASSWORD", "tallywatch_password")
	config.DB.Name = getEnv("DB_NAME", "tallywatch_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	config.DB.MaxOpenConns = int(getEnvAsInt64("DB_MAX_OPEN_CONNS", 25))
	config.DB.MaxIdleConns = int(getEnvAsInt64("DB_MAX_IDLE_CONNS", 5))
	config.DB.ConnMaxLifetime = getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	config.DB.ConnectAttempts = int(getEnvAsInt64("DB_CONNECT_ATTEMPTS", 3))

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")
	config.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second)

	config.Log.Level = getEnv("LOG_LEVEL", "info")
	config.Log.Format = getEnv("LOG_FORMAT", "text")

	config.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	config.Auth.Issuer = getEnv("JWT_ISSUER", "tallywatch")

	config.Storage.Backend = getEnv("STORAGE_BACKEND", "minio")
	config.Storage.Endpoint = getEnv("MINIO_ENDPOINT", "localhost:9000")
	config.Storage.AccessKey = getEnv("MINIO_ACCESS_KEY", "minioadmin")
	config.Storage.SecretKey = getEnv("MINIO_SECRET_KEY", "minioadmin")
	config.Storage.Bucket = getEnv("MINIO_BUCKET", "submission-photos")
	config.Storage.Region = getEnv("MINIO_REGION", "")
	config.Storage.UseSSL = getEnvAsBool("MINIO_USE_SSL", false)

	config.Upload.MaxFileSize = getEnvAsInt64("UPLOAD_MAX_FILE_SIZE", 10485760)
	config.Upload.MaxPhotos = int(getEnvAsInt64("UPLOAD_MAX_PHOTOS", 10))

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization")

	defaults := verification.DefaultConfig()
	config.Verify.DefaultRadiusMeters = int(getEnvAsInt64("VERIFY_DEFAULT_RADIUS_M", int64(defaults.DefaultRadiusMeters)))
	config.Verify.HighTurnout = getEnvAsFloat("ANOMALY_HIGH_TURNOUT", defaults.HighTurnout)
	config.Verify.LowTurnout = getEnvAsFloat("ANOMALY_LOW_TURNOUT", defaults.LowTurnout)
	config.Verify.MaxRejectionRate = getEnvAsFloat("ANOMALY_MAX_REJECTION", defaults.MaxRejectionRate)
	config.Verify.LandslideShare = getEnvAsFloat("ANOMALY_LANDSLIDE", defaults.LandslideShare)

	return config
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// Verification returns the thresholds injected into the verification
// components.
func (c *Config) Verification() verification.Config {
	v := verification.DefaultConfig()
	v.DefaultRadiusMeters = c.Verify.DefaultRadiusMeters
	v.HighTurnout = c.Verify.HighTurnout
	v.LowTurnout = c.Verify.LowTurnout
	v.MaxRejectionRate = c.Verify.MaxRejectionRate
	v.LandslideShare = c.Verify.LandslideShare
	return v
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 gets an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
