package config

import (
	env "github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config is parsed from the environment, with .env autoloaded in dev.
type Config struct {
	Env      string `env:"ENV" envDefault:"dev"`
	HTTPPort string `env:"HTTP_PORT" envDefault:"4030"`

	DBDriver string `env:"DB_DRIVER" envDefault:"postgres"`
	DBDSN    string `env:"DB_DSN" envDefault:"host=localhost user=taxonomy password=taxonomy dbname=taxonomy port=5432 sslmode=disable"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// KafkaBrokers empty means entry-change publishing is disabled.
	KafkaBrokers string `env:"KAFKA_BROKERS"`
	KafkaTopic   string `env:"KAFKA_TOPIC" envDefault:"taxonomy.entry.changes"`

	// Compression names the codec for stored entry bodies: "", "gzip",
	// "lz4" or "brotli".
	Compression string `env:"CONTENT_COMPRESSION"`

	CacheSyncCron string `env:"CACHE_SYNC_CRON" envDefault:"@every 1m"`
	StatsCron     string `env:"STATS_CRON" envDefault:"@every 10m"`
}

func LoadConfig() *Config {
	cnf := &Config{}
	if err := env.Parse(cnf); err != nil {
		logrus.Fatalf("parsing environment: %v", err)
	}

	return cnf
}

func GetDb(cnf *Config) *gorm.DB {
	var dialector gorm.Dialector
	switch cnf.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cnf.DBDSN)
	default:
		dialector = postgres.Open(cnf.DBDSN)
	}

	// TranslateError maps driver duplicate-key failures onto
	// gorm.ErrDuplicatedKey; the snapshot store depends on it.
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("connecting to database: %v", err)
	}

	return db
}
