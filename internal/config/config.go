package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Site holds the community-site registration policy knobs.
type Site struct {
	AllowRegister      bool     `mapstructure:"allow_register"`
	VerifyRegisterUser bool     `mapstructure:"verify_register_user"`
	AdminUserList      []string `mapstructure:"admin_user_list"` // membership checked case-insensitively
}

// DB holds sqlite settings.
type DB struct {
	Path string `mapstructure:"path"`
}

// Redis holds cache-store connection settings.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Config is the full application configuration loaded from configs/config.yml.
type Config struct {
	LogLevel     string `mapstructure:"log_level"`
	HasherPepper string `mapstructure:"hasher_pepper"`
	Site         Site   `mapstructure:"site"`
	DB           DB     `mapstructure:"db"`
	Redis        Redis  `mapstructure:"redis"`
}

// Load reads configs/config.yml relative to the working directory and
// unmarshals it. Defaults keep a fresh checkout runnable without a redis
// password or custom paths.
func Load() (*Config, error) {
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")

	viper.SetDefault("log_level", "info")
	viper.SetDefault("db.path", "club.db")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("site.allow_register", true)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.HasherPepper == "" {
		return nil, fmt.Errorf("hasher_pepper must be set")
	}
	return &cfg, nil
}
