package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	JWTSecret   string        `env:"JWT_SECRET,required=true"`
	JWTTokenTTL time.Duration `env:"JWT_TOKEN_TTL,default=24h"`

	StorageDriver                string `env:"STORAGE_DRIVER,default=mongo"`
	MongoURI                     string `env:"MONGO_URI"`
	MongoDatabase                string `env:"MONGO_DATABASE,default=socialsync"`
	MongoMessagesCollection      string `env:"MONGO_MESSAGES_COLLECTION,default=messages"`
	MongoNotificationsCollection string `env:"MONGO_NOTIFICATIONS_COLLECTION,default=notifications"`
	MongoUsersCollection         string `env:"MONGO_USERS_COLLECTION,default=users"`
	MongoPostsCollection         string `env:"MONGO_POSTS_COLLECTION,default=posts"`
	MongoFollowsCollection       string `env:"MONGO_FOLLOWS_COLLECTION,default=follows"`

	ValkeyAddr  string        `env:"VALKEY_ADDR"`
	LastSeenTTL time.Duration `env:"LAST_SEEN_TTL,default=720h"`

	AllowedOrigins string `env:"ALLOWED_ORIGINS,default=http://127.0.0.1:5173"`

	SendBufferSize   int           `env:"SEND_BUFFER_SIZE,default=256"`
	WriteWait        time.Duration `env:"WRITE_WAIT,default=10s"`
	PongWait         time.Duration `env:"PONG_WAIT,default=60s"`
	MaxMessageSize   int64         `env:"MAX_MESSAGE_SIZE,default=65536"`
	MaxMessageLength int           `env:"MAX_MESSAGE_LENGTH,default=4000"`

	StoreTimeout    time.Duration `env:"STORE_TIMEOUT,default=5s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=15s"`
}

// Load reads an optional .env file and then the process environment, which
// wins over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.StorageDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORAGE_DRIVER=%s", DriverMongo)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, c.StorageDriver)
	}
	if c.SendBufferSize <= 0 {
		return fmt.Errorf("SEND_BUFFER_SIZE must be positive, got %d", c.SendBufferSize)
	}
	if c.PongWait <= 0 || c.WriteWait <= 0 {
		return fmt.Errorf("PONG_WAIT and WRITE_WAIT must be positive")
	}
	if c.MaxMessageLength <= 0 {
		return fmt.Errorf("MAX_MESSAGE_LENGTH must be positive, got %d", c.MaxMessageLength)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
