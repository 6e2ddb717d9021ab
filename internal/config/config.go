package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	Database    Database

	Tebex Tebex `envPrefix:"TEBEX_"`
	Redis Redis `envPrefix:"REDIS_"`
	Store Store
}

type Tebex struct {
	BaseApiURL    string        `env:"BASE_API_URL" envDefault:"https://headless.tebex.io/api"`
	WebstoreToken string        `env:"WEBSTORE_TOKEN"`
	PrivateKey    string        `env:"PRIVATE_KEY"`
	PayHost       string        `env:"PAY_HOST" envDefault:"pay.tebex.io"`
	WebhookSecret string        `env:"WEBHOOK_SECRET"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Redis is optional, the package cache stays in memory when Addr is empty.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Store struct {
	PackagesCacheTTL  time.Duration `env:"PACKAGES_CACHE_TTL" envDefault:"5m"`
	BlogDir           string        `env:"BLOG_DIR" envDefault:"content/blog"`
	CheckoutRateLimit float64       `env:"CHECKOUT_RATE_LIMIT" envDefault:"2"`
}

type Database struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"` // sqlite | mysql
	URL    string `env:"DATABASE_URL" envDefault:"store.db"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
