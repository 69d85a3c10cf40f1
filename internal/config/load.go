package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// identifierPattern matches the only table/column names Load accepts. The
// values are interpolated into SQL text (as identifiers, never as data), so
// anything beyond a plain identifier is refused at startup.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory, when present, fills in variables that
// are not already set in the environment; real environment variables always
// win. Returns a populated Config struct or an error if loading or validation
// fails.
func Load() (*Config, error) {
	// godotenv.Load never overrides variables already present in the
	// environment, matching the "local fallback only" intent of .env files.
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("TRENDFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	for name, value := range map[string]string{
		"query.table":       cfg.Query.Table,
		"query.date_column": cfg.Query.DateColumn,
	} {
		if !identifierPattern.MatchString(value) {
			return nil, fmt.Errorf("config validation failed: %s %q is not a valid SQL identifier", name, value)
		}
	}

	return &cfg, nil
}

// setDefaults registers every known key with viper. Registration matters
// beyond the default values themselves: AutomaticEnv only resolves keys viper
// has seen, so even keys whose default is empty are declared here.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.url", "")

	v.SetDefault("query.table", "events")
	v.SetDefault("query.date_column", "event_date")
	v.SetDefault("query.default_page_size", 50)
	v.SetDefault("query.max_page_size", 500)

	v.SetDefault("debug.keys", []string{})
	v.SetDefault("debug.max_rows", 50)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "ACLED/Trendfinder")
	v.SetDefault("metrics.service", "TrendfinderAPI")
	v.SetDefault("metrics.stage", "dev")
	v.SetDefault("metrics.function", "trendfinder-api")
}
