package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "lenscraft"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	VNPay    VNPayConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LENSCRAFT_APP_ENV" required:"true"`
	Port         string `envconfig:"LENSCRAFT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"LENSCRAFT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LENSCRAFT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LENSCRAFT_DB_DSN"`
	Driver string `envconfig:"LENSCRAFT_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"LENSCRAFT_DB_HOST"`
	Port     int    `envconfig:"LENSCRAFT_DB_PORT" default:"5432"`
	User     string `envconfig:"LENSCRAFT_DB_USER"`
	Password string `envconfig:"LENSCRAFT_DB_PASSWORD"`
	Name     string `envconfig:"LENSCRAFT_DB_NAME"`
	SSLMode  string `envconfig:"LENSCRAFT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LENSCRAFT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LENSCRAFT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LENSCRAFT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LENSCRAFT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database DSN or host/user/name settings are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"LENSCRAFT_REDIS_URL"`
	Address      string        `envconfig:"LENSCRAFT_REDIS_ADDR"`
	Password     string        `envconfig:"LENSCRAFT_REDIS_PASSWORD"`
	DB           int           `envconfig:"LENSCRAFT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LENSCRAFT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LENSCRAFT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LENSCRAFT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LENSCRAFT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LENSCRAFT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LENSCRAFT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LENSCRAFT_JWT_ISSUER" default:"lenscraft"`
	ExpirationMinutes int    `envconfig:"LENSCRAFT_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LENSCRAFT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LENSCRAFT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LENSCRAFT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LENSCRAFT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LENSCRAFT_ARGON_KEY_LEN" default:"32"`
}

type VNPayConfig struct {
	TmnCode    string        `envconfig:"LENSCRAFT_VNPAY_TMN_CODE"`
	HashSecret string        `envconfig:"LENSCRAFT_VNPAY_HASH_SECRET"`
	PayURL     string        `envconfig:"LENSCRAFT_VNPAY_PAY_URL" default:"https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"`
	ReturnURL  string        `envconfig:"LENSCRAFT_VNPAY_RETURN_URL"`
	Expiry     time.Duration `envconfig:"LENSCRAFT_VNPAY_EXPIRY" default:"15m"`
}
