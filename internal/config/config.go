// Package config は環境変数からアプリケーション設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DriverMySQL は MySQL をストレージとして使用します。
	DriverMySQL = "mysql"
	// DriverMemory はプロセス内メモリをストレージとして使用します（ローカル開発用）。
	DriverMemory = "memory"

	devJWTSecret = "development_only_jwt_secret"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable not set")

// Config はサーバーの実行時設定を保持します。
type Config struct {
	Env          string
	Port         string
	DBDriver     string
	DBUser       string
	DBPass       string
	DBHost       string
	DBPort       string
	DBName       string
	JWTSecret    string
	JWTExpiresIn time.Duration
	CORSOrigins  []string
	LogLevel     string
}

// LoadDefaults は開発用のデフォルト値を設定します。
func (c *Config) LoadDefaults() {
	c.Env = "development"
	c.Port = "8080"
	c.DBDriver = DriverMySQL
	c.DBHost = "127.0.0.1"
	c.DBPort = "3306"
	c.DBName = "todolist"
	c.JWTExpiresIn = 24 * time.Hour
	c.CORSOrigins = []string{"http://localhost:3000"}
	c.LogLevel = "info"
}

// Load は .env（存在する場合）と環境変数から Config を構築します。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env が無いのは正常（Docker では環境変数で渡す）
		log.Printf("config: no .env file loaded: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv は getenv から値を読み取り Config を返します。テストでは任意の関数を渡せます。
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	setString(&cfg.Env, getenv("APP_ENV"))
	setString(&cfg.Port, getenv("PORT"))
	setString(&cfg.DBDriver, strings.ToLower(getenv("DB_DRIVER")))
	setString(&cfg.DBUser, getenv("DB_USER"))
	setString(&cfg.DBPass, getenv("DB_PASS"))
	setString(&cfg.DBHost, getenv("DB_HOST"))
	setString(&cfg.DBPort, getenv("DB_PORT"))
	setString(&cfg.DBName, getenv("DB_NAME"))
	setString(&cfg.LogLevel, getenv("LOG_LEVEL"))

	if raw := strings.TrimSpace(getenv("JWT_EXPIRES_IN")); raw != "" {
		d, err := ParseExpiry(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
		}
		cfg.JWTExpiresIn = d
	}

	if raw := strings.TrimSpace(getenv("CORS_ORIGINS")); raw != "" {
		var origins []string
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}

	switch cfg.DBDriver {
	case DriverMySQL, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	cfg.JWTSecret = getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, ErrMissingJWTSecret
		}
		log.Println("WARNING: JWT_SECRET is not set, using the development fallback secret")
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

// IsDevelopment は開発環境かどうかを返します。
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "test"
}

// IsProduction は本番環境かどうかを返します。
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr は HTTP サーバーの待ち受けアドレスを返します。
func (c *Config) Addr() string {
	return ":" + c.Port
}

// DSN は MySQL 接続文字列を構築します。
// 例: user:pass@tcp(db:3306)/dbname?parseTime=true&loc=UTC
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// ParseExpiry は "24h" や "90m" のような Go の duration 形式に加え、"7d" のような日数指定を受け付けます。
func ParseExpiry(raw string) (time.Duration, error) {
	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid day count %q", raw)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiry must be positive, got %s", raw)
	}
	return d, nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
