package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
	Core     CoreConfig     `mapstructure:"core"`
}

type ServerConfig struct {
	Port     int      `mapstructure:"port"`
	Debug    bool     `mapstructure:"debug"`
	AdminKey string   `mapstructure:"admin_key"`
	AdminIPs []string `mapstructure:"admin_ips"` // empty allows every caller
}

type DatabaseConfig struct {
	Mode        string        `mapstructure:"mode"` // sqlite | mysql | postgres
	SQLitePath  string        `mapstructure:"sqlite_path"`
	DSN         string        `mapstructure:"dsn"` // mysql / postgres
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLife     time.Duration `mapstructure:"max_life"`
	LogQueries  bool          `mapstructure:"log_queries"`
	AutoMigrate bool          `mapstructure:"auto_migrate"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	// Per authenticated user, applied on top of the per-IP limit.
	UserRateLimitRPS   float64 `mapstructure:"user_rate_limit_rps"`
	UserRateLimitBurst int     `mapstructure:"user_rate_limit_burst"`
}

// CoreConfig tunes the friendship, play-session and transaction services.
type CoreConfig struct {
	// LockTTL bounds how long a pair lock survives a crashed holder.
	LockTTL time.Duration `mapstructure:"lock_ttl"`
	// StaleSessionAge closes play sessions left open longer than this.
	StaleSessionAge time.Duration `mapstructure:"stale_session_age"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

// Load reads config from the given YAML file path. Values from a .env file in
// the working directory and ZENKI_* environment variables override the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("zenki")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.admin_key", "")
	v.SetDefault("server.admin_ips", []string{})
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/zenki.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open", 5)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.max_life", "1h")
	v.SetDefault("database.log_queries", false)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.jwt_ttl_h", "72h")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
	v.SetDefault("security.user_rate_limit_rps", 20)
	v.SetDefault("security.user_rate_limit_burst", 40)
	v.SetDefault("core.lock_ttl", "10s")
	v.SetDefault("core.stale_session_age", "12h")
	v.SetDefault("core.sweep_interval", "10m")
}
