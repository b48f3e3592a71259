package app

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is loaded from TIMESAGE_-prefixed environment variables. The
// database and OTEL settings are optional; the server runs fully in-memory
// without them.
type Config struct {
	Addr            string        `envconfig:"ADDR" default:":8000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	TursoDatabaseURL string `envconfig:"TURSO_DATABASE_URL"`
	TursoAuthToken   string `envconfig:"TURSO_AUTH_TOKEN"`

	OTELEndpoint string `envconfig:"OTEL_ENDPOINT"`
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELInsecure bool   `envconfig:"OTEL_INSECURE" default:"true"`

	Contamination       float64 `envconfig:"CONTAMINATION" default:"0.1"`
	FeedbackHistorySize int     `envconfig:"FEEDBACK_HISTORY_SIZE" default:"1000"`

	// Seed fixes the models' random source when non-zero.
	Seed int64 `envconfig:"SEED" default:"0"`
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("timesage", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
