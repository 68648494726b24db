package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Kiosk-local API
	Port        int    `envconfig:"PORT" default:"8790"`
	Environment string `envconfig:"ENV" default:"development"`
	KioskToken  string `envconfig:"KIOSK_TOKEN" required:"true"`

	// HR backend
	BackendURL    string `envconfig:"BACKEND_URL" required:"true"`
	BackendToken  string `envconfig:"BACKEND_TOKEN" required:"true"`
	SigningSecret string `envconfig:"SIGNING_SECRET"`

	// Verification
	Strategy         string        `envconfig:"VERIFY_STRATEGY" default:"local"`
	MatchThreshold   float64       `envconfig:"MATCH_THRESHOLD" default:"0.6"`
	BlinkThreshold   float64       `envconfig:"BLINK_EAR_THRESHOLD" default:"0.21"`
	MaxMatchAttempts int           `envconfig:"MAX_MATCH_ATTEMPTS" default:"5"`
	AttemptWindow    time.Duration `envconfig:"ATTEMPT_WINDOW" default:"10m"`

	// Local inference daemon (local strategy)
	InferenceURL         string `envconfig:"INFERENCE_URL" default:"http://localhost:5005"`
	InferenceFallbackURL string `envconfig:"INFERENCE_FALLBACK_URL"`

	// AWS (rekognition strategy)
	AWSRegion string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Camera
	CameraDevice string `envconfig:"CAMERA_DEVICE" default:"0"`
	FrameMaxEdge int    `envconfig:"FRAME_MAX_EDGE" default:"640"`

	// Position
	PositionLat      float64       `envconfig:"POSITION_LAT"`
	PositionLng      float64       `envconfig:"POSITION_LNG"`
	PositionInterval time.Duration `envconfig:"POSITION_INTERVAL" default:"5s"`

	// Server clock polling
	ClockInterval time.Duration `envconfig:"CLOCK_INTERVAL" default:"30s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields envconfig tags cannot express.
func (c *Config) Validate() error {
	switch c.Strategy {
	case "local", "remote", "rekognition":
	default:
		return fmt.Errorf("unknown VERIFY_STRATEGY %q (supported: local, remote, rekognition)", c.Strategy)
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("MATCH_THRESHOLD must be in (0, 1], got %v", c.MatchThreshold)
	}
	// Zero disables the attempt limiter entirely.
	if c.MaxMatchAttempts < 0 {
		return fmt.Errorf("MAX_MATCH_ATTEMPTS must be >= 0, got %d", c.MaxMatchAttempts)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
