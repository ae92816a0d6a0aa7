package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port int

	// StoreDriver selects the persistence backend: "file" (the users.json
	// flat file), "sqlite3" or "postgres".
	StoreDriver string
	StorePath   string
	StoreDSN    string

	// AllowedOrigin is the single deployed frontend URL permitted by CORS.
	AllowedOrigin string

	CookieSecret string

	LogLevel  string
	LogFormat string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load reads configuration from the environment (PAPOTE_ prefix) and an
// optional config.yaml, falling back to development defaults.
func Load() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("papote")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 5000)
	viper.SetDefault("store.driver", "file")
	viper.SetDefault("store.path", "users.json")
	viper.SetDefault("cors.allowed_origin", "https://papote-frontend.onrender.com")
	viper.SetDefault("cookie.secret", "papote-dev-secret-change-me")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return &Config{
		Port:          viper.GetInt("server.port"),
		StoreDriver:   viper.GetString("store.driver"),
		StorePath:     viper.GetString("store.path"),
		StoreDSN:      viper.GetString("store.dsn"),
		AllowedOrigin: viper.GetString("cors.allowed_origin"),
		CookieSecret:  viper.GetString("cookie.secret"),
		LogLevel:      viper.GetString("logging.level"),
		LogFormat:     viper.GetString("logging.format"),
		SMTPHost:      viper.GetString("smtp.host"),
		SMTPPort:      viper.GetString("smtp.port"),
		SMTPUsername:  viper.GetString("smtp.username"),
		SMTPPassword:  viper.GetString("smtp.password"),
		SMTPFrom:      viper.GetString("smtp.from"),
	}, nil
}
