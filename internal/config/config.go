package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/conciliar/internal/matching"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Conciliar"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	DB struct {
		Host           string `envconfig:"DB_HOST" default:"localhost"`
		Port           int    `envconfig:"DB_PORT" default:"5432"`
		User           string `envconfig:"DB_USER" default:"postgres"`
		Password       string `envconfig:"DB_PASSWORD" default:""`
		Name           string `envconfig:"DB_NAME" default:"conciliar"`
		MigrateOnStart bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
		UploadLimit int64         `envconfig:"UPLOAD_LIMIT" default:"10485760"`
	}

	Matching struct {
		Threshold         int    `envconfig:"MATCH_THRESHOLD" default:"60"`
		WeightAmount      int    `envconfig:"MATCH_WEIGHT_AMOUNT" default:"50"`
		WeightDate        int    `envconfig:"MATCH_WEIGHT_DATE" default:"25"`
		WeightDescription int    `envconfig:"MATCH_WEIGHT_DESCRIPTION" default:"25"`
		WindowDays        int    `envconfig:"MATCH_WINDOW_DAYS" default:"3"`
		Similarity        string `envconfig:"MATCH_SIMILARITY" default:"tokens"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// MatchingConfig converts the matching section and validates it.
func (c *Config) MatchingConfig() (matching.Config, error) {
	sim, err := matching.SimilarityByName(c.Matching.Similarity)
	if err != nil {
		return matching.Config{}, err
	}

	mc := matching.Config{
		WeightAmount:      c.Matching.WeightAmount,
		WeightDate:        c.Matching.WeightDate,
		WeightDescription: c.Matching.WeightDescription,
		Threshold:         c.Matching.Threshold,
		WindowDays:        c.Matching.WindowDays,
		Similarity:        sim,
	}

	if err := mc.Validate(); err != nil {
		return matching.Config{}, err
	}

	return mc, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
