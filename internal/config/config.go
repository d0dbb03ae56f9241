package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	MongoDB    MongoDBConfig    `yaml:"mongo"`
	Redis      RedisConfig      `yaml:"redis"`
	NATS       NATSConfig       `yaml:"nats"`
	Admin      AdminConfig      `yaml:"admin"`
	Logger     LoggerConfig     `yaml:"logger"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Static     StaticConfig     `yaml:"static"`
}

type HTTPServerConfig struct {
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8000"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	TimeoutGraceful time.Duration `yaml:"timeout_graceful_shutdown" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
	CORSOrigin      string        `yaml:"cors_origin" env:"CORS_ORIGIN" env-default:"*"`
}

type MongoDBConfig struct {
	URI            string        `yaml:"uri" env:"MONGO_URL" env-required:"true"`
	User           string        `yaml:"user" env:"MONGO_USER"`
	Password       string        `yaml:"password" env:"MONGO_PASSWORD"`
	Database       string        `yaml:"database" env:"DB_NAME" env-required:"true"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"MONGO_CONNECT_TIMEOUT" env-default:"10s"`
}

// Redis and NATS are optional collaborators: an empty address disables the
// listing cache / event publisher entirely.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type NATSConfig struct {
	URL            string        `yaml:"url" env:"NATS_URL"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"NATS_CONNECT_TIMEOUT" env-default:"5s"`
}

type AdminConfig struct {
	Password string `yaml:"password" env:"ADMIN_PASSWORD" env-required:"true"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT"`
}

// Metrics server is disabled when the port is empty.
type MetricsConfig struct {
	Port string `yaml:"port" env:"METRICS_PORT"`
}

type StaticConfig struct {
	Dir string `yaml:"dir" env:"STATIC_DIR" env-default:"web/static"`
}

func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		if _, ok := err.(*os.PathError); ok {
			log.Printf("Warning: Config file not found at %s, loading from environment variables only.", path)
			if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
				return nil, errEnv
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
