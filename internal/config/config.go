package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	GinMode       string
	AllowOrigins  string
	JWTSecret     string
	TokenTTLHours int
	AdminEmails   []string

	DBDriver   string // postgres, sqlite or memory
	DBDSN      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string
	DBLog      bool

	DefaultCurrency string
	TZDefault       string

	OpenAIKey      string
	OpenAIBaseURL  string
	OpenAILlmModel string
	ReqTimeoutSec  int

	LogLevel string
	LogJSON  bool
}

var defaults = map[string]any{
	"port":                    "8080",
	"gin_mode":                "release",
	"allow_origins":           "*",
	"jwt_secret":              "",
	"token_ttl_hours":         24,
	"admin_emails":            "",
	"db_driver":               "sqlite",
	"db_dsn":                  "",
	"db_host":                 "localhost",
	"db_port":                 "5432",
	"db_user":                 "postgres",
	"db_password":             "",
	"db_name":                 "expense_share",
	"db_sslmode":              "disable",
	"sqlite_path":             "./data/expense-share.db",
	"db_log":                  false,
	"default_currency":        "INR",
	"tz_default":              "Asia/Kolkata",
	"openai_api_key":          "",
	"openai_base_url":         "https://api.openai.com/v1",
	"openai_llm_model":        "gpt-4o-mini",
	"request_timeout_seconds": 30,
	"log_level":               "info",
	"log_json":                false,
}

// Load reads configuration from the environment, optionally layered over the
// file named by CONFIG_FILE (any format viper understands).
func Load() (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Config{
		Port:          v.GetString("port"),
		GinMode:       v.GetString("gin_mode"),
		AllowOrigins:  v.GetString("allow_origins"),
		JWTSecret:     v.GetString("jwt_secret"),
		TokenTTLHours: v.GetInt("token_ttl_hours"),
		AdminEmails:   splitList(v.GetString("admin_emails")),

		DBDriver:   strings.ToLower(v.GetString("db_driver")),
		DBDSN:      v.GetString("db_dsn"),
		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),
		DBSSLMode:  v.GetString("db_sslmode"),
		SQLitePath: v.GetString("sqlite_path"),
		DBLog:      v.GetBool("db_log"),

		DefaultCurrency: strings.ToUpper(v.GetString("default_currency")),
		TZDefault:       v.GetString("tz_default"),

		OpenAIKey:      v.GetString("openai_api_key"),
		OpenAIBaseURL:  strings.TrimRight(v.GetString("openai_base_url"), "/"),
		OpenAILlmModel: v.GetString("openai_llm_model"),
		ReqTimeoutSec:  v.GetInt("request_timeout_seconds"),

		LogLevel: v.GetString("log_level"),
		LogJSON:  v.GetBool("log_json"),
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.GinMode {
	case "", "debug", "release", "test":
	default:
		errs = append(errs, fmt.Sprintf("invalid gin mode '%s': must be one of [debug release test]", c.GinMode))
	}

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET cannot be empty")
	}
	if c.TokenTTLHours <= 0 {
		errs = append(errs, "TOKEN_TTL_HOURS must be positive")
	}

	switch c.DBDriver {
	case "postgres":
		if c.DBDSN == "" && (c.DBHost == "" || c.DBName == "") {
			errs = append(errs, "postgres needs DB_DSN or DB_HOST and DB_NAME")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, "SQLITE_PATH cannot be empty when using sqlite")
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("invalid db driver '%s': must be one of [postgres sqlite memory]", c.DBDriver))
	}

	if !currencyRe.MatchString(c.DefaultCurrency) {
		errs = append(errs, fmt.Sprintf("invalid default currency '%s': must be a 3-letter code", c.DefaultCurrency))
	}

	if u, err := url.Parse(c.OpenAIBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Sprintf("invalid OpenAI base URL '%s'", c.OpenAIBaseURL))
	}
	if c.ReqTimeoutSec <= 0 {
		errs = append(errs, "REQUEST_TIMEOUT_SECONDS must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// PostgresDSN returns DB_DSN or builds a URL from the DB_* parts.
func (c *Config) PostgresDSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword), c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range c.AdminEmails {
		if strings.ToLower(a) == email {
			return true
		}
	}
	return false
}
