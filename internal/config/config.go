package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"parcel-delivery/internal/domain"
)

// Config is the full runtime configuration of the API and worker processes.
type Config struct {
	Port     int
	LogLevel string
	DB       DB
	Redis    Redis
	Kafka    Kafka
	Queue    Queue
	Mail     Mail
	Delivery Delivery
}

// DB holds Postgres connection settings.
type DB struct {
	Host        string
	Port        string
	User        string
	Pass        string
	Name        string
	AutoMigrate bool
}

// DSN returns a pgx connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     d.Host + ":" + d.Port,
		Path:     d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Redis holds the queue broker connection when QUEUE_DRIVER=redis.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Kafka holds the queue broker connection when QUEUE_DRIVER=kafka.
type Kafka struct {
	Brokers     []string
	GroupID     string
	TopicPrefix string // falls back to Queue.Prefix when empty
}

// Queue configures the notification queue.
type Queue struct {
	Driver        string // redis, kafka or memory
	Prefix        string
	MaxAttempts   int
	Backoff       time.Duration
	MaxBackoff    time.Duration
	Concurrency   int
	StallInterval time.Duration
	StallTimeout  time.Duration
}

// Mail configures the SMTP transport. An empty Host logs mails instead of sending them.
type Mail struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Delivery configures lifecycle rules.
type Delivery struct {
	Timezone           string
	WindowStart        int
	WindowEnd          int
	DailyRetrieveLimit int
	OperationTimeout   time.Duration
}

// Policy builds the retrieval policy, resolving the configured timezone.
func (d Delivery) Policy() (domain.RetrievalPolicy, error) {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return domain.RetrievalPolicy{}, fmt.Errorf("load timezone %q: %w", d.Timezone, err)
	}
	return domain.RetrievalPolicy{
		Location:   loc,
		OpenHour:   d.WindowStart,
		CloseHour:  d.WindowEnd,
		DailyLimit: d.DailyRetrieveLimit,
	}, nil
}

// Queue drivers
const (
	DriverRedis  = "redis"
	DriverKafka  = "kafka"
	DriverMemory = "memory"
)

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	return LoadFrom(os.Args[1:])
}

// LoadFrom is Load with explicit command line arguments.
func LoadFrom(args []string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:     defaultPort,
		LogLevel: defaultLogLevel,
		DB:       DefaultDB(),
		Redis:    DefaultRedis(),
		Kafka:    DefaultKafka(),
		Queue:    DefaultQueue(),
		Mail:     DefaultMail(),
		Delivery: DefaultDelivery(),
	}

	e := &envReader{}
	e.integer("PORT", &cfg.Port)
	e.str("LOG_LEVEL", &cfg.LogLevel)

	e.str("POSTGRES_HOST", &cfg.DB.Host)
	e.str("POSTGRES_PORT", &cfg.DB.Port)
	e.str("POSTGRES_USER", &cfg.DB.User)
	e.str("POSTGRES_PASSWORD", &cfg.DB.Pass)
	e.str("POSTGRES_DB", &cfg.DB.Name)
	e.boolean("DB_AUTO_MIGRATE", &cfg.DB.AutoMigrate)

	e.str("REDIS_ADDR", &cfg.Redis.Addr)
	e.str("REDIS_PASSWORD", &cfg.Redis.Password)
	e.integer("REDIS_DB", &cfg.Redis.DB)

	e.list("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	e.str("KAFKA_GROUP_ID", &cfg.Kafka.GroupID)
	e.str("KAFKA_TOPIC_PREFIX", &cfg.Kafka.TopicPrefix)

	e.str("QUEUE_DRIVER", &cfg.Queue.Driver)
	e.str("QUEUE_PREFIX", &cfg.Queue.Prefix)
	e.integer("QUEUE_MAX_ATTEMPTS", &cfg.Queue.MaxAttempts)
	e.duration("QUEUE_BACKOFF", &cfg.Queue.Backoff)
	e.duration("QUEUE_MAX_BACKOFF", &cfg.Queue.MaxBackoff)
	e.integer("QUEUE_CONCURRENCY", &cfg.Queue.Concurrency)
	e.duration("QUEUE_STALL_INTERVAL", &cfg.Queue.StallInterval)
	e.duration("QUEUE_STALL_TIMEOUT", &cfg.Queue.StallTimeout)

	e.str("MAIL_HOST", &cfg.Mail.Host)
	e.integer("MAIL_PORT", &cfg.Mail.Port)
	e.str("MAIL_USER", &cfg.Mail.User)
	e.str("MAIL_PASS", &cfg.Mail.Pass)
	e.str("MAIL_FROM", &cfg.Mail.From)

	e.str("DELIVERY_TIMEZONE", &cfg.Delivery.Timezone)
	e.integer("DELIVERY_WINDOW_START", &cfg.Delivery.WindowStart)
	e.integer("DELIVERY_WINDOW_END", &cfg.Delivery.WindowEnd)
	e.integer("DELIVERY_DAILY_LIMIT", &cfg.Delivery.DailyRetrieveLimit)
	e.duration("DELIVERY_OPERATION_TIMEOUT", &cfg.Delivery.OperationTimeout)

	if e.err != nil {
		return nil, e.err
	}

	fs := pflag.NewFlagSet("parcel-delivery", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.Queue.Driver, "queue-driver", cfg.Queue.Driver, "queue broker: redis, kafka or memory")
	fs.BoolVar(&cfg.DB.AutoMigrate, "migrate", cfg.DB.AutoMigrate, "apply the embedded schema on startup")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.Queue.Driver {
	case DriverRedis, DriverKafka, DriverMemory:
	default:
		return fmt.Errorf("invalid queue driver: %q", c.Queue.Driver)
	}
	if c.Queue.Driver == DriverKafka && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka queue driver requires KAFKA_BROKERS")
	}
	if c.Queue.MaxAttempts < 1 {
		return fmt.Errorf("invalid queue max attempts: %d", c.Queue.MaxAttempts)
	}
	if c.Queue.Concurrency < 1 {
		return fmt.Errorf("invalid queue concurrency: %d", c.Queue.Concurrency)
	}
	d := c.Delivery
	if d.WindowStart < 0 || d.WindowEnd > 24 || d.WindowStart >= d.WindowEnd {
		return fmt.Errorf("invalid retrieval window: %d-%d", d.WindowStart, d.WindowEnd)
	}
	if d.DailyRetrieveLimit < 1 {
		return fmt.Errorf("invalid daily retrieve limit: %d", d.DailyRetrieveLimit)
	}
	if _, err := d.Policy(); err != nil {
		return err
	}
	return nil
}

// envReader reads typed environment values, keeping the first parse error.
// Empty values leave the default untouched.
type envReader struct{ err error }

func (e *envReader) lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != "" && e.err == nil
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) integer(key string, dst *int) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.err = fmt.Errorf("parse %s: %w", key, err)
		return
	}
	*dst = n
}

func (e *envReader) boolean(key string, dst *bool) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.err = fmt.Errorf("parse %s: %w", key, err)
		return
	}
	*dst = b
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.err = fmt.Errorf("parse %s: %w", key, err)
		return
	}
	*dst = d
}

func (e *envReader) list(key string, dst *[]string) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}
