package config // package config loads application configuration from environment variables

import (
	"fmt"     // fmt formats validation errors
	"os"      // os provides access to environment variables
	"strings" // strings trims and normalizes values
	"time"    // time parses durations such as RESERVATION_TIMEOUT

	"github.com/joho/godotenv" // godotenv loads a .env file into the environment
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Optional integrations (admin API, RabbitMQ,
// MySQL audit, Redis rate limiting) are disabled when their address is
// empty.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // TCP port of the command protocol

	ReservationTimeout time.Duration // how long a temporary hold survives
	SweepInterval      time.Duration // period of the expiry sweep
	MaxFrameBytes      int           // largest command frame read in one go
	IdleTimeout        time.Duration // close sessions idle this long; 0 disables

	NotifyEnabled      bool          // send UDP notices at all
	NotifyPortOffset   int           // notice port = peer port + offset
	NotifyWriteTimeout time.Duration // deadline for a single datagram

	BcryptCost int // 0 keeps passwords as opaque secrets

	AdminAddr string        // listen address of the admin HTTP API; empty disables
	JWTSecret string        // secret verifying admin bearer tokens
	AdminTTL  time.Duration // lifetime of tokens minted by the server at startup

	AMQPURL     string // broker URL for domain events; empty disables
	EventsQueue string // queue domain events are routed to

	DB DBConfig // audit journal; empty Host disables it

	Redis     RedisConfig     // backs the rate limiter
	RateLimit RateLimitConfig // per-session command throttling
}

// DBConfig locates the MySQL audit journal.
type DBConfig struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

// Load reads an optional .env file (a missing file is not an error) and then
// builds a Config from the environment.  Defaults follow the text
// protocol: 30 second holds swept every 5 seconds, notices on port + 1.
func Load(envFiles ...string) (Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return Config{}, err
	}
	amqpURL := envStr("AMQP_URL", "")
	if amqpURL == "" {
		amqpURL = envStr("RABBITMQ_URL", "")
	}
	cfg := Config{
		Env:  envStr("APP_ENV", "dev"),
		Port: envStr("APP_PORT", "8080"),

		ReservationTimeout: envDur("RESERVATION_TIMEOUT", 30*time.Second),
		SweepInterval:      envDur("SWEEP_INTERVAL", 5*time.Second),
		MaxFrameBytes:      envInt("MAX_FRAME_BYTES", 1023),
		IdleTimeout:        envDur("IDLE_TIMEOUT", 0),

		NotifyEnabled:      envBool("NOTIFY_ENABLED", true),
		NotifyPortOffset:   envInt("NOTIFY_PORT_OFFSET", 1),
		NotifyWriteTimeout: envDur("NOTIFY_WRITE_TIMEOUT", 500*time.Millisecond),

		BcryptCost: envInt("BCRYPT_COST", 0),

		AdminAddr: envStr("ADMIN_ADDR", ""),
		JWTSecret: os.Getenv("JWT_SECRET"),
		AdminTTL:  envDur("ADMIN_TOKEN_TTL", 12*time.Hour),

		AMQPURL:     amqpURL,
		EventsQueue: envStr("EVENTS_QUEUE", "reservation.events"),

		DB: DBConfig{
			User: envStr("DB_USER", ""),
			Pass: os.Getenv("DB_PASS"),
			Host: envStr("DB_HOST", ""),
			Port: envStr("DB_PORT", "3306"),
			Name: envStr("DB_NAME", ""),
		},

		Redis:     loadRedisConfig(),
		RateLimit: LoadRateLimitConfig(),
	}
	return cfg, cfg.Validate()
}

// Validate reports settings the server cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("config: APP_PORT is empty")
	}
	if c.ReservationTimeout <= 0 {
		return fmt.Errorf("config: RESERVATION_TIMEOUT must be positive, got %s", c.ReservationTimeout)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("config: SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.MaxFrameBytes < 16 {
		return fmt.Errorf("config: MAX_FRAME_BYTES too small: %d", c.MaxFrameBytes)
	}
	if c.BcryptCost != 0 && (c.BcryptCost < 4 || c.BcryptCost > 31) {
		return fmt.Errorf("config: BCRYPT_COST out of range: %d", c.BcryptCost)
	}
	if c.AdminAddr != "" && c.JWTSecret == "" {
		return fmt.Errorf("config: ADMIN_ADDR requires JWT_SECRET")
	}
	if c.DB.Host != "" && (c.DB.User == "" || c.DB.Name == "") {
		return fmt.Errorf("config: DB_HOST requires DB_USER and DB_NAME")
	}
	return nil
}

// AuditEnabled reports whether the MySQL audit journal is configured.
func (c Config) AuditEnabled() bool { return c.DB.Host != "" }

// loadDotEnv loads the given files, or ".env" when none are given.  Files
// that do not exist are skipped; variables already set in the process
// environment win over the file.
func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}
