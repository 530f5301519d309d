package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		BaseURL      string        `mapstructure:"base_url"`
		AuthPath     string        `mapstructure:"auth_path"`
		RealtimePort string        `mapstructure:"realtime_port"`
		RealtimePath string        `mapstructure:"realtime_path"`
		Timeout      time.Duration `mapstructure:"timeout"`
	}
	Session struct {
		Store string // memory | file | redis | postgres
		Key   string
		File  string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Database struct {
		DSN string
	}
	Channel struct {
		LogSize          int           `mapstructure:"log_size"`
		ReconnectRetries int           `mapstructure:"reconnect_retries"`
		ReconnectBase    time.Duration `mapstructure:"reconnect_base"`
		ReconnectMax     time.Duration `mapstructure:"reconnect_max"`
		PingPeriod       time.Duration `mapstructure:"ping_period"`
	}
	API struct {
		Listen string
	}
	Log struct {
		Level string
	}
}

var C Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.base_url", "http://localhost:3000")
	v.SetDefault("server.auth_path", "/api/whop/validate")
	v.SetDefault("server.realtime_port", "3001")
	v.SetDefault("server.realtime_path", "/ws")
	v.SetDefault("server.timeout", 10*time.Second)

	v.SetDefault("session.store", "file")
	v.SetDefault("session.key", "whop_token")
	v.SetDefault("session.file", ".ggpoker/session.json")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.dsn", "")

	v.SetDefault("channel.log_size", 200)
	v.SetDefault("channel.reconnect_retries", 5)
	v.SetDefault("channel.reconnect_base", 500*time.Millisecond)
	v.SetDefault("channel.reconnect_max", 10*time.Second)
	v.SetDefault("channel.ping_period", 54*time.Second)

	v.SetDefault("api.listen", "127.0.0.1:8088")
	v.SetDefault("log.level", "info")
}

// Load reads the YAML file at path into C. A missing path is allowed: defaults
// and GGPOKER_* environment variables still apply.
func Load(path string) error {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("GGPOKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return err
	}
	C = c
	return nil
}
