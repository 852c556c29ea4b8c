package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"net/url"
	"time"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env      string         `env:"ENV" env-default:"dev"`
	Server   HTTPServer     `env-prefix:"SERVER_"`
	Postgres PostgresConfig `env-prefix:"PG_"`
	GitHub   GitHubConfig   `env-prefix:"GITHUB_"`
	Bot      BotConfig      `env-prefix:"BOT_"`
}

type HTTPServer struct {
	Port        string        `env:"PORT" env-default:"8080"`
	Timeout     time.Duration `env:"TIMEOUT" env-default:"30s"`
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" env-default:"60s"`
	CORSOrigins []string      `env:"CORS_ORIGINS" env-separator:"," env-default:"*"`
}

type PostgresConfig struct {
	Host     string `env:"HOST" env-default:"localhost"`
	Port     string `env:"PORT" env-default:"5432"`
	User     string `env:"USER" env-default:"postgres"`
	Password string `env:"PASSWORD" env-default:"postgres"`
	DbName   string `env:"DBNAME" env-default:"pollbot"`
	SslMode  string `env:"SSLMODE" env-default:"disable"`
}

type GitHubConfig struct {
	AccessToken   string `env:"ACCESS_TOKEN"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	BotLogin      string `env:"BOT_LOGIN" env-default:"rfcbot"`
	UserAgent     string `env:"USER_AGENT" env-default:"pollbot"`
	// Orgs and Repos select what the scraper replays; both empty disables it.
	Orgs  []string `env:"ORGS" env-separator:","`
	Repos []string `env:"REPOS" env-separator:","`
}

type BotConfig struct {
	Mention        string        `env:"MENTION" env-default:"@rfcbot"`
	PostComments   bool          `env:"POST_COMMENTS" env-default:"false"`
	NagInterval    time.Duration `env:"NAG_INTERVAL" env-default:"5m"`
	ScrapeInterval time.Duration `env:"SCRAPE_INTERVAL" env-default:"30m"`
	ScrapeLookback time.Duration `env:"SCRAPE_LOOKBACK" env-default:"24h"`
	TeamsFile      string        `env:"TEAMS_FILE"`
}

// DSN builds a pgx-compatible connection URL.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     c.DbName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SslMode),
	}
	return u.String()
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("failed to read config from environment: " + err.Error())
	}

	return cfg
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env is the normal case outside local development
	_ = godotenv.Load()

	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return &cfg, nil
}
