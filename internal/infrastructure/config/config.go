package config

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// Host is the listen address. The kiosk front end runs on the same
	// machine, so the API stays off the LAN unless configured otherwise.
	Host        string `env:"HOST,         default=127.0.0.1"`
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	JWTSecret   string `env:"JWT_SECRET"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	TerminalID  string `env:"TERMINAL_ID,  default=terminal-1"`
	CompanyName string `env:"COMPANY_NAME, default=My Company"`

	// ChipResolver selects where chip identifiers are resolved: "local" reads
	// the chip_mappings collection, "remote" asks HRworks.
	ChipResolver       string        `env:"CHIP_RESOLVER,        default=local"`
	ResolverCacheTTL   time.Duration `env:"RESOLVER_CACHE_TTL,   default=5m"`
	BookingDedupWindow time.Duration `env:"BOOKING_DEDUP_WINDOW, default=10s"`
	AuditWorkers       int           `env:"AUDIT_WORKERS,        default=4"`

	Admin   AdminConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	HRworks HRworksConfig
	Reader  ReaderConfig
}

// AdminConfig seeds the first admin operator when none exists yet.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Password string `env:"ADMIN_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=rfid_terminal"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,  default=2s"`
}

type HRworksConfig struct {
	APIURL         string        `env:"HRWORKS_API_URL,         default=https://api.hrworks.de/v2"`
	AccessKey      string        `env:"HRWORKS_ACCESS_KEY"`
	SecretKey      string        `env:"HRWORKS_SECRET_KEY"`
	ChipIDField    string        `env:"HRWORKS_CHIP_ID_FIELD,   default=TransponderID"`
	TokenValidity  time.Duration `env:"HRWORKS_TOKEN_VALIDITY,  default=14m"`
	RequestTimeout time.Duration `env:"HRWORKS_REQUEST_TIMEOUT, default=15s"`
	// ActionsFile points to a YAML action table; empty uses the built-in one.
	ActionsFile string `env:"HRWORKS_ACTIONS_FILE"`
}

type ReaderConfig struct {
	Type           string        `env:"READER_TYPE,            default=serial"`
	Device         string        `env:"READER_DEVICE,          default=/dev/serial0"`
	Baud           int           `env:"READER_BAUD,            default=9600"`
	ReadTimeout    time.Duration `env:"READER_READ_TIMEOUT,    default=1s"`
	Framing        string        `env:"READER_FRAMING,         default=stx_etx"`
	PayloadLen     int           `env:"READER_PAYLOAD_LEN,     default=0"`
	ChecksumLen    int           `env:"READER_CHECKSUM_LEN,    default=1"`
	VerifyChecksum bool          `env:"READER_VERIFY_CHECKSUM, default=true"`
	IDFormat       string        `env:"READER_ID_FORMAT,       default=decimal"`
	IDWidth        int           `env:"READER_ID_WIDTH,        default=10"`
	IDBytes        int           `env:"READER_ID_BYTES,        default=0"`
	Debounce       time.Duration `env:"READER_DEBOUNCE,        default=2s"`
	MaxScanAge     time.Duration `env:"READER_MAX_SCAN_AGE,    default=15s"`
	ScanTimeout    time.Duration `env:"SCAN_TIMEOUT,           default=30s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Addr is the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Development reports whether the process runs with ENV=development.
func (c *Config) Development() bool {
	return c.Env == "development"
}

func (c *Config) validate() error {
	switch c.ChipResolver {
	case "local", "remote":
	default:
		return fmt.Errorf("CHIP_RESOLVER must be local or remote, got %q", c.ChipResolver)
	}
	switch c.Reader.Type {
	case "serial", "keyboard", "browser":
	default:
		return fmt.Errorf("READER_TYPE must be serial, keyboard or browser, got %q", c.Reader.Type)
	}
	if c.HRworks.AccessKey == "" || c.HRworks.SecretKey == "" {
		return fmt.Errorf("HRWORKS_ACCESS_KEY and HRWORKS_SECRET_KEY are required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}
