package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort    string `envconfig:"SERVER_PORT"    default:":8080"`
	MongoURI      string `envconfig:"MONGO_URI"      required:"true"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"sweet-shop"`
	LogLevel      string `envconfig:"LOG_LEVEL"      default:"info"`

	JWTSecret   string `envconfig:"JWT_SECRET"    required:"true"`
	JWTTTLHours int    `envconfig:"JWT_TTL_HOURS" default:"720"` // 30 days, as issued by the original deployment

	// CloudinaryURL is optional; when empty, image uploads are rejected
	// and clients must supply a direct image URL instead.
	CloudinaryURL   string `envconfig:"CLOUDINARY_URL"`
	CloudinaryScope string `envconfig:"CLOUDINARY_SCOPE" default:"sweet-shop"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"    default:"admin@example.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		err = envconfig.Process("", &config)
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: ServerPort=%s, MongoDatabase=%s, LogLevel=%s",
			config.ServerPort, config.MongoDatabase, config.LogLevel)
		if config.CloudinaryURL == "" {
			logger.Warn("CLOUDINARY_URL is not set; image asset uploads are disabled")
		}
	})
	return &config
}
