package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// minKeyBits is the lower bound for the JWT signing key. Keys of exactly
// 256 bits are rejected as well; the secret must exceed it.
const minKeyBits = 256

type Config struct {
	Env        string  `yaml:"env"`
	App        App     `yaml:"app"`
	JWT        JWT     `yaml:"jwt"`
	Storage    Storage `yaml:"storage"`
	HTTPServer `yaml:"http_server"`
	Postgres   `yaml:"postgres"`
}

// App holds link-building settings. BaseURL is the only source of the
// complete shortened URL; it is never derived from the incoming request.
type App struct {
	BaseURL         string `yaml:"base_url"`
	ShortCodeLength int    `yaml:"short_code_length"`
}

type JWT struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// Key decodes the configured secret into signing key bytes. The secret is
// interpreted as base64 when it decodes cleanly, otherwise as raw UTF-8.
func (j *JWT) Key() ([]byte, error) {
	const op = "config.JWT.Key"

	if j.Secret == "" {
		return nil, fmt.Errorf("%s: jwt secret is not configured", op)
	}

	key, err := base64.StdEncoding.DecodeString(j.Secret)
	if err != nil {
		key = []byte(j.Secret)
	}

	if len(key)*8 <= minKeyBits {
		return nil, fmt.Errorf("%s: jwt secret is too short: %d bits, must exceed %d bits", op, len(key)*8, minKeyBits)
	}

	return key, nil
}

type Storage struct {
	QRDir string `yaml:"qr_dir"`
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

// validate rejects configurations that must never reach request handling.
// Misconfiguration is a startup failure, not a request-time error.
func validate(cfg *Config) error {
	if cfg.App.BaseURL == "" {
		return fmt.Errorf("app.base_url must be provided")
	}
	if cfg.Storage.QRDir == "" {
		return fmt.Errorf("storage.qr_dir must be provided")
	}
	if _, err := cfg.JWT.Key(); err != nil {
		return err
	}
	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.App.ShortCodeLength = 7
	cfg.JWT.TokenTTL = 2 * time.Hour
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
}
