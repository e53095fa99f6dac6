package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"rssreader/internal/domain"
)

const (
	defaultAppName        = "RSS Kindle Reader"
	defaultConnectTimeout = 20
	defaultReadTimeout    = 15
	defaultWriteTimeout   = 60
	defaultHTTPPort       = 3000
	defaultUserAgent      = "rssreader/1.0 (+https://github.com/rssreader)"
	defaultFetchTopic     = "feed_fetch_events"
)

// DefaultFeeds — реестр лент, используемый, если в конфиге не задан свой.
var DefaultFeeds = []domain.FeedSource{
	{Name: "Daring Fireball", URL: "https://daringfireball.net/feeds/main"},
	{Name: "Raptitude", URL: "https://www.raptitude.com/feed/"},
	{Name: "The Verge (Articles)", URL: "https://www.theverge.com/rss/partner/subscriber-only-full-feed/rss.xml"},
	{Name: "Arun.is", URL: "https://arun.is/rss.xml"},
	{Name: "Stephango", URL: "https://stephango.com/feed.xml"},
	{Name: "Kottke.org", URL: "https://feeds.kottke.org/main"},
	{Name: "The Ringer", URL: "https://wp.theringer.com/feed/"},
	{Name: "Techmeme", URL: "https://www.techmeme.com/feed.xml"},
	{Name: "Seth's Blog", URL: "https://feeds.feedblitz.com/sethsblog"},
}

type AppConfig struct {
	Name           string              `yaml:"name"`
	ReadTimeout    int                 `yaml:"read_timeout"`
	WriteTimeout   int                 `yaml:"write_timeout"`
	ConnectTimeout int                 `yaml:"connect_timeout"`
	Debug          bool                `yaml:"debug"`
	UserAgent      string              `yaml:"user_agent"`
	FeedURLs       []domain.FeedSource `yaml:"feed_urls"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	UserName string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"db_name"`
	SSLMode  string `yaml:"sslmode"`
}

type KafkaTopics struct {
	FetchEvents string `yaml:"fetch_events"`
}

type KafkaConfig struct {
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

type Config struct {
	App     AppConfig     `yaml:"app"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
	DB      DBConfig      `yaml:"db"`
	Kafka   KafkaConfig   `yaml:"kafka"`
}

// Default возвращает конфигурацию, с которой сервис работает без файла настроек.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) GetAppName() string {
	return c.App.Name
}

func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.App.ConnectTimeout) * time.Second
}

func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.App.ReadTimeout) * time.Second
}

func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.App.WriteTimeout) * time.Second
}

func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// Feeds возвращает копию реестра, чтобы вызывающий код не мог его изменить.
func (c *Config) Feeds() []domain.FeedSource {
	feeds := make([]domain.FeedSource, len(c.App.FeedURLs))
	copy(feeds, c.App.FeedURLs)
	return feeds
}

func (c *Config) StorageEnabled() bool {
	return c.DB.Host != ""
}

func (c *Config) EventsEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.UserName, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.DBName, c.DB.SSLMode,
	)
}

// LogLevel переводит строковый уровень из конфига в slog.Level.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = defaultAppName
	}
	if c.App.ConnectTimeout <= 0 {
		c.App.ConnectTimeout = defaultConnectTimeout
	}
	if c.App.ReadTimeout <= 0 {
		c.App.ReadTimeout = defaultReadTimeout
	}
	if c.App.WriteTimeout <= 0 {
		c.App.WriteTimeout = defaultWriteTimeout
	}
	if c.App.UserAgent == "" {
		c.App.UserAgent = defaultUserAgent
	}
	if len(c.App.FeedURLs) == 0 {
		c.App.FeedURLs = append([]domain.FeedSource(nil), DefaultFeeds...)
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = defaultHTTPPort
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.DB.SSLMode == "" {
		c.DB.SSLMode = "disable"
	}
	if c.Kafka.Topics.FetchEvents == "" {
		c.Kafka.Topics.FetchEvents = defaultFetchTopic
	}
}

func (c *Config) validate() error {
	seen := make(map[string]struct{}, len(c.App.FeedURLs))
	for i, feed := range c.App.FeedURLs {
		if strings.TrimSpace(feed.Name) == "" {
			return fmt.Errorf("feed_urls[%d]: name is empty", i)
		}
		if strings.TrimSpace(feed.URL) == "" {
			return fmt.Errorf("feed_urls[%d] (%s): url is empty", i, feed.Name)
		}
		if _, ok := seen[feed.Name]; ok {
			return fmt.Errorf("feed_urls[%d]: duplicate feed name %q", i, feed.Name)
		}
		seen[feed.Name] = struct{}{}
	}
	return nil
}

func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		log.Println("Config file is empty")
		return nil, fmt.Errorf("config file is empty")
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		log.Print("failed to read config file")
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(raw)
}

// Parse разбирает YAML, подставляя переменные окружения вида ${NAME}.
func Parse(raw []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(raw))

	var cfg Config

	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		log.Println("Failed to parse config yaml")
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
