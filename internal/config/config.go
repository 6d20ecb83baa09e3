package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/ryabkov82/backoffice-server/internal/ingest"
	"github.com/ryabkov82/backoffice-server/internal/logger"
)

// Config holds all server settings, read from the environment
type Config struct {
	Port      string `env:"PORT" envDefault:"5000"`
	StaticDir string `env:"STATIC_DIR"`
	Debug     bool   `env:"DEBUG" envDefault:"false"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	Mongo   MongoOptions
	Uploads UploadOptions
	Import  ImportOptions
	Auth    AuthOptions
	Log     LogOptions
}

type MongoOptions struct {
	URI      string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	Database string        `env:"MONGODB_DATABASE" envDefault:"pos"`
	Timeout  time.Duration `env:"MONGODB_TIMEOUT" envDefault:"10s"`
}

type UploadOptions struct {
	Dir      string        `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxBytes int64         `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
	// uploads still being imported are never swept, whatever their age
	SweepAge time.Duration `env:"UPLOAD_SWEEP_AGE" envDefault:"1h"`
}

type ImportOptions struct {
	DuplicatePolicy string `env:"IMPORT_DUPLICATE_POLICY" envDefault:"allow"`
}

type AuthOptions struct {
	// API is open when empty
	JWTSecret string `env:"AUTH_JWT_SECRET"`
}

type LogOptions struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info"`
	Format   string `env:"LOG_FORMAT" envDefault:"json"`
	Output   string `env:"LOG_OUTPUT" envDefault:"stdout"`
	FilePath string `env:"LOG_FILE_PATH"`
}

// LoadEnv loads the given dotenv files that exist and returns how many were
// loaded. Variables already set in the environment win.
func LoadEnv(files []string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if info, err := os.Stat(f); err == nil && !info.IsDir() {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads .env files and the environment into a validated Config
func Load() (*Config, error) {
	if _, err := LoadEnv([]string{".env", ".env.local"}); err != nil {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}
	return Parse()
}

// Parse reads the environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.Uploads.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.Uploads.MaxBytes))
	}
	if c.Uploads.SweepAge <= 0 {
		errs = append(errs, fmt.Errorf("UPLOAD_SWEEP_AGE must be positive, got %s", c.Uploads.SweepAge))
	}
	if c.Mongo.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("MONGODB_TIMEOUT must be positive, got %s", c.Mongo.Timeout))
	}
	if _, err := ingest.ParseDuplicatePolicy(c.Import.DuplicatePolicy); err != nil {
		errs = append(errs, fmt.Errorf("IMPORT_DUPLICATE_POLICY: %w", err))
	}
	return errors.Join(errs...)
}

// DuplicatePolicy returns the validated import duplicate policy
func (c *Config) DuplicatePolicy() ingest.DuplicatePolicy {
	p, _ := ingest.ParseDuplicatePolicy(c.Import.DuplicatePolicy)
	return p
}

// Logger returns the logger settings
func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:       c.Log.Level,
		Format:      c.Log.Format,
		Output:      c.Log.Output,
		FilePath:    c.Log.FilePath,
		Development: c.Debug,
	}
}

// Addr is the HTTP listen address
func (c *Config) Addr() string {
	return ":" + c.Port
}
