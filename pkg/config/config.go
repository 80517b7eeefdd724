package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Logging; an empty format picks text in development and json elsewhere
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Database (run history); empty disables persistence
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Runs older than RunRetention are pruned on RetentionSchedule; zero keeps them forever
	RunRetention      time.Duration `mapstructure:"RUN_RETENTION"`
	RetentionSchedule string        `mapstructure:"RETENTION_SCHEDULE"`

	// Redis (result cache); empty disables caching
	RedisURL       string        `mapstructure:"REDIS_URL"`
	ResultCacheTTL time.Duration `mapstructure:"RESULT_CACHE_TTL"`

	// Rate limiting of simulation requests per client IP; zero disables
	SimulateRateLimit float64 `mapstructure:"SIMULATE_RATE_LIMIT"`
	SimulateRateBurst int     `mapstructure:"SIMULATE_RATE_BURST"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Draft
	RosterSlots    int   `mapstructure:"ROSTER_SLOTS"`
	MaxUploadBytes int64 `mapstructure:"MAX_UPLOAD_BYTES"`

	// Projections
	ProjectionsFile string  `mapstructure:"PROJECTIONS_FILE"`
	DefaultStdDev   float64 `mapstructure:"DEFAULT_STDDEV"`

	// Simulation
	DefaultSimulations int   `mapstructure:"DEFAULT_SIMULATIONS"`
	MaxSimulations     int   `mapstructure:"MAX_SIMULATIONS"`
	SimulationWorkers  int   `mapstructure:"SIMULATION_WORKERS"`
	SimulationSeed     int64 `mapstructure:"SIMULATION_SEED"`
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	setDefaults(v)

	// Read from environment
	v.AutomaticEnv()

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := v.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8084")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("RUN_RETENTION", "720h")
	v.SetDefault("RETENTION_SCHEDULE", "@hourly")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RESULT_CACHE_TTL", "30m")
	v.SetDefault("SIMULATE_RATE_LIMIT", 1.0)
	v.SetDefault("SIMULATE_RATE_BURST", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("ROSTER_SLOTS", 6)
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("PROJECTIONS_FILE", "")
	v.SetDefault("DEFAULT_STDDEV", 6.0)
	v.SetDefault("DEFAULT_SIMULATIONS", 1000)
	v.SetDefault("MAX_SIMULATIONS", 100000)
	v.SetDefault("SIMULATION_WORKERS", 0) // 0 = one worker per CPU
	v.SetDefault("SIMULATION_SEED", 0)    // 0 = seed from the clock
}

// Validate rejects settings the simulator cannot run with.
func (c *Config) Validate() error {
	if c.RosterSlots < 1 {
		return fmt.Errorf("ROSTER_SLOTS must be positive, got %d", c.RosterSlots)
	}
	if c.DefaultStdDev < 0 {
		return fmt.Errorf("DEFAULT_STDDEV must not be negative, got %g", c.DefaultStdDev)
	}
	if c.MaxSimulations < 1 {
		return fmt.Errorf("MAX_SIMULATIONS must be positive, got %d", c.MaxSimulations)
	}
	if c.DefaultSimulations < 1 || c.DefaultSimulations > c.MaxSimulations {
		return fmt.Errorf("DEFAULT_SIMULATIONS must be in [1, %d], got %d", c.MaxSimulations, c.DefaultSimulations)
	}
	if c.SimulateRateLimit < 0 || c.SimulateRateBurst < 0 {
		return fmt.Errorf("SIMULATE_RATE_LIMIT and SIMULATE_RATE_BURST must not be negative")
	}
	if c.SimulateRateLimit > 0 && c.SimulateRateBurst < 1 {
		return fmt.Errorf("SIMULATE_RATE_BURST must be positive when rate limiting is enabled")
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	if c.SimulationWorkers < 0 {
		return fmt.Errorf("SIMULATION_WORKERS must not be negative, got %d", c.SimulationWorkers)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
