package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration
type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		Mode        string   `yaml:"mode"`
		BaseURL     string   `yaml:"base_url"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host"`
		Port            string `yaml:"port"`
		User            string `yaml:"user"`
		Password        string `yaml:"password"`
		DBName          string `yaml:"dbname"`
		SSLMode         string `yaml:"sslmode"`
		MinConns        int    `yaml:"min_conns"`
		MaxConns        int    `yaml:"max_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		MigrationsDir   string `yaml:"migrations_dir"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret"`
		AccessTokenExpiration string `yaml:"access_token_expiration"`
		Issuer                string `yaml:"issuer"`
	} `yaml:"jwt"`

	Auth struct {
		// SkipAuth lets every request through as the seeded admin. Development only.
		SkipAuth bool `yaml:"skip_auth"`
	} `yaml:"auth"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	SMTP struct {
		Host      string `yaml:"host"`
		Port      int    `yaml:"port"`
		Username  string `yaml:"username"`
		Password  string `yaml:"password"`
		FromName  string `yaml:"from_name"`
		FromEmail string `yaml:"from_email"`
		UseTLS    bool   `yaml:"use_tls"`
	} `yaml:"smtp"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email"`
		AdminPassword string `yaml:"admin_password"`
		// Classes are created as "<grade><letter>" for every grade up to Grades
		Grades          int `yaml:"grades"`
		ClassesPerGrade int `yaml:"classes_per_grade"`
	} `yaml:"seed"`

	Workflow struct {
		// StrictTransitions rejects status changes that skip or reverse the state machine.
		StrictTransitions    bool `yaml:"strict_transitions"`
		NotifyOnStatusChange bool `yaml:"notify_on_status_change"`
	} `yaml:"workflow"`
}

// envBindings maps config keys to the environment variables that override them
var envBindings = map[string]string{
	"server.port":         "SERVER_PORT",
	"server.mode":         "SERVER_MODE",
	"server.base_url":     "BACKEND_URL",
	"server.cors_origins": "CORS_ORIGINS",

	"database.host":              "DB_HOST",
	"database.port":              "DB_PORT",
	"database.user":              "DB_USER",
	"database.password":          "DB_PASSWORD",
	"database.dbname":            "DB_NAME",
	"database.sslmode":           "DB_SSLMODE",
	"database.min_conns":         "DB_MIN_CONNS",
	"database.max_conns":         "DB_MAX_CONNS",
	"database.conn_max_lifetime": "DB_CONN_MAX_LIFETIME",
	"database.migrations_dir":    "DB_MIGRATIONS_DIR",

	"jwt.secret":                  "JWT_SECRET",
	"jwt.access_token_expiration": "JWT_ACCESS_TOKEN_EXPIRATION",
	"jwt.issuer":                  "JWT_ISSUER",

	"auth.skip_auth": "SKIP_AUTH",

	"logging.level":  "LOG_LEVEL",
	"logging.format": "LOG_FORMAT",

	"smtp.host":       "SMTP_HOST",
	"smtp.port":       "SMTP_PORT",
	"smtp.username":   "SMTP_USERNAME",
	"smtp.password":   "SMTP_PASSWORD",
	"smtp.from_name":  "SMTP_FROM_NAME",
	"smtp.from_email": "SMTP_FROM_EMAIL",
	"smtp.use_tls":    "SMTP_USE_TLS",

	"seed.admin_email":       "SEED_ADMIN_EMAIL",
	"seed.admin_password":    "SEED_ADMIN_PASSWORD",
	"seed.grades":            "SEED_GRADES",
	"seed.classes_per_grade": "SEED_CLASSES_PER_GRADE",

	"workflow.strict_transitions":      "WORKFLOW_STRICT_TRANSITIONS",
	"workflow.notify_on_status_change": "WORKFLOW_NOTIFY_ON_STATUS_CHANGE",
}

// LoadConfig reads defaults, then the YAML file, then .env, then the environment
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := newViper()

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		values := map[string]interface{}{}
		if err := yaml.Unmarshal(file, &values); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if err := v.MergeConfigMap(values); err != nil {
			return nil, fmt.Errorf("failed to merge config: %w", err)
		}
	}

	config, err := decode(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	config := &Config{}
	err := v.Unmarshal(config, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.DecodeHookFuncType(splitList),
		)
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

// splitList turns "a, b" from the environment into []string{"a", "b"}
func splitList(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}
	parts := []string{}
	for _, p := range strings.Split(data.(string), ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "schoolhealth")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.migrations_dir", "migrations")

	v.SetDefault("jwt.access_token_expiration", "24h")
	v.SetDefault("jwt.issuer", "schoolhealth")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from_name", "School Health Office")
	v.SetDefault("smtp.use_tls", true)

	v.SetDefault("seed.admin_email", "admin@school.edu")
	v.SetDefault("seed.grades", 5)
	v.SetDefault("seed.classes_per_grade", 2)

	v.SetDefault("workflow.notify_on_status_change", true)
}

func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid connection max lifetime: %w", err)
	}

	if config.Database.MaxConns < config.Database.MinConns {
		return fmt.Errorf("database max_conns (%d) must not be below min_conns (%d)",
			config.Database.MaxConns, config.Database.MinConns)
	}

	return nil
}

// GetPostgresConnectionString returns the pgx connection URL
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in release mode
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "production"
}

// SMTPEnabled reports whether outgoing mail can be delivered
func (c *Config) SMTPEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.Username != "" && c.SMTP.Password != ""
}
