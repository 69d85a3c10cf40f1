package config

// Config holds all application configuration.
// It is constructed once at process start and treated as immutable afterwards;
// components receive the sub-struct they need rather than reading globals.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Query    QueryConfig    `mapstructure:"query" validate:"required"`
	Debug    DebugConfig    `mapstructure:"debug"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// QueryConfig describes the events table the service reads and the paging
// limits enforced on every request. Table and DateColumn are operator-supplied
// identifiers, never caller input; Load rejects values that are not plain
// SQL identifiers.
type QueryConfig struct {
	Table           string `mapstructure:"table" validate:"required"`
	DateColumn      string `mapstructure:"date_column" validate:"required"`
	DefaultPageSize int    `mapstructure:"default_page_size" validate:"required,min=1"`
	MaxPageSize     int    `mapstructure:"max_page_size" validate:"required,min=1,gtefield=DefaultPageSize"`
}

// DebugConfig controls the diagnostic response surface. Keys is the set of
// accepted X-Debug-Key values; an empty set disables debug responses
// entirely. MaxRows caps the data array whenever a debug response is served.
type DebugConfig struct {
	Keys    []string `mapstructure:"keys"`
	MaxRows int      `mapstructure:"max_rows" validate:"required,min=1"`
}

// MetricsConfig identifies this service to the metrics pipeline. The values
// become embedded-metric dimensions, so they should stay low-cardinality.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace" validate:"required"`
	Service   string `mapstructure:"service" validate:"required"`
	Stage     string `mapstructure:"stage" validate:"required"`
	Function  string `mapstructure:"function" validate:"required"`
}
