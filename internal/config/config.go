package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultRunAddress      = "localhost:8080"
	defaultAMQPExchange    = "splitledger.events"
	defaultEventWorkers    = 2
	defaultShutdownTimeout = 5 * time.Second
)

type Config struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	DatabaseDSN     string        `env:"DATABASE_URI"`
	AMQPURL         string        `env:"AMQP_URL"`
	AMQPExchange    string        `env:"AMQP_EXCHANGE"`
	EventWorkers    uint          `env:"EVENT_WORKERS"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
	LogLevel        string        `env:"LOG_LEVEL"`
}

// LoadConfig собирает конфигурацию из переменных окружения (в т.ч. из файла .env, если он есть) и флагов.
// Переменные окружения имеют приоритет над флагами.
func LoadConfig(args []string) (*Config, error) {
	var flagsConfig, envConfig Config

	// .env нужен только для локального запуска, его отсутствие не ошибка.
	_ = godotenv.Load()

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %w", envParseErr)
	}

	if flagsErr := loadFlags(&flagsConfig, args); flagsErr != nil {
		return nil, fmt.Errorf("parse flags: %w", flagsErr)
	}

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config, args []string) error {
	fs := flag.NewFlagSet("splitledger", flag.ContinueOnError)

	fs.StringVar(&flagConfig.RunAddress, "a", defaultRunAddress, "Run address in format host:port")
	fs.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	fs.StringVar(&flagConfig.AMQPURL, "q", "", "AMQP broker URL. Events are only logged when empty")
	fs.StringVar(&flagConfig.AMQPExchange, "e", defaultAMQPExchange, "AMQP exchange for ledger events")
	fs.UintVar(&flagConfig.EventWorkers, "w", defaultEventWorkers, "Number of event publishing workers")
	fs.DurationVar(&flagConfig.ShutdownTimeout, "t", defaultShutdownTimeout, "Graceful shutdown timeout")
	fs.StringVar(&flagConfig.LogLevel, "l", "", "Log level (debug, info, warn, error)")

	return fs.Parse(args) //nolint:wrapcheck
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:      defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:     defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		AMQPURL:         defaultIfBlank(envConfig.AMQPURL, flagsConfig.AMQPURL),
		AMQPExchange:    defaultIfBlank(envConfig.AMQPExchange, flagsConfig.AMQPExchange),
		EventWorkers:    defaultIfBlank(envConfig.EventWorkers, flagsConfig.EventWorkers),
		ShutdownTimeout: defaultIfBlank(envConfig.ShutdownTimeout, flagsConfig.ShutdownTimeout),
		LogLevel:        defaultIfBlank(envConfig.LogLevel, flagsConfig.LogLevel),
	}
}

func defaultIfBlank[T comparable](value T, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
