package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Feeds  []Feed `yaml:"feeds"`
	Mongo  Mongo  `yaml:"mongo"`
	OpenAI OpenAI `yaml:"openai"`
	Rabbit Rabbit `yaml:"rabbit"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type Mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type OpenAI struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type Rabbit struct {
	URI        string `yaml:"uri"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

// ConfigDir returns the XDG config directory for newswire.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "newswire")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/newswire/config.yaml > ./config.yaml.
// No file at all is not an error; the embedded defaults apply.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads the config file at path (or only the embedded defaults when
// path is empty) and applies environment overrides.
func Load(path string) (*Config, error) {
	data := DefaultConfigYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		data = b
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Mongo: Mongo{
			URI:      "mongodb://localhost:27017",
			Database: "newsdb",
		},
		OpenAI: OpenAI{
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Rabbit: Rabbit{
			Exchange:   "news.sync",
			RoutingKey: "article.stored",
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// applyEnv lets deployment environments override the file: RSS_FEEDS is a
// comma-separated feed URL list, MONGO_URI/DATABASE_URL point at the
// store, RABBIT_URI enables event publishing.
func (c *Config) applyEnv() {
	if raw := os.Getenv("RSS_FEEDS"); raw != "" {
		c.Feeds = nil
		for _, url := range strings.Split(raw, ",") {
			url = strings.TrimSpace(url)
			if url != "" {
				c.Feeds = append(c.Feeds, Feed{URL: url})
			}
		}
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		c.Mongo.URI = uri
	} else if uri := os.Getenv("DATABASE_URL"); uri != "" {
		c.Mongo.URI = uri
	}
	if uri := os.Getenv("RABBIT_URI"); uri != "" {
		c.Rabbit.URI = uri
	}
}

// FeedURLs returns just the URLs of the configured feeds.
func (c *Config) FeedURLs() []string {
	urls := make([]string, 0, len(c.Feeds))
	for _, f := range c.Feeds {
		urls = append(urls, f.URL)
	}
	return urls
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
