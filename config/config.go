package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/romangod6/route-sitemap/internal/generators"
	"github.com/romangod6/route-sitemap/internal/routing"
	"github.com/spf13/viper"
)

type RouteConfig struct {
	Name     string
	Path     string
	Defaults map[string]interface{}
}

type FeedConfig struct {
	URL       string
	Param     string
	UserAgent string `mapstructure:"user_agent"`
	Timeout   string
}

type Config struct {
	Server struct {
		Port int
	}
	Site struct {
		BaseURL string `mapstructure:"base_url"`
	}
	Database struct {
		Driver string
		URL    string
	}
	Export struct {
		Path     string
		Interval string
	}
	Log struct {
		Dir   string
		Debug bool
	}
	Generators struct {
		BatchSize int `mapstructure:"batch_size"`
		Static    map[string][]map[string]interface{}
		Feeds     map[string]FeedConfig
	}
	Routes []RouteConfig
}

// NewViper returns a viper instance with defaults and SITEMAP_ env overrides.
// An empty path searches config.yaml in . and ./config.
func NewViper(path string) *viper.Viper {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SITEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Default values
	v.SetDefault("server.port", 8080)
	v.SetDefault("site.base_url", "http://localhost:8080")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.url", "sitemap.db")
	v.SetDefault("export.path", "public/sitemap.xml")
	v.SetDefault("export.interval", "")
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.debug", false)
	v.SetDefault("generators.batch_size", generators.DefaultBatchSize)

	return v
}

func LoadConfig(path string) (*Config, error) {
	return Read(NewViper(path))
}

// Read loads the config file into v and decodes it.
func Read(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Decode unmarshals the current state of v and validates it.
func Decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Watch calls onChange with the re-decoded config each time the file changes.
func Watch(v *viper.Viper, onChange func(*Config, error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(Decode(v))
	})
	v.WatchConfig()
}

func (c *Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	seen := make(map[string]struct{}, len(c.Routes))
	for i, r := range c.Routes {
		if r.Name == "" {
			return fmt.Errorf("routes[%d]: name is required", i)
		}
		if r.Path == "" {
			return fmt.Errorf("route %q: path is required", r.Name)
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("route %q declared twice", r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}

// RouteCollection builds the route registry in declaration order.
func (c *Config) RouteCollection() *routing.Collection {
	routes := routing.NewCollection()
	for _, r := range c.Routes {
		routes.Add(routing.Route{Name: r.Name, Path: r.Path, Defaults: r.Defaults})
	}
	return routes
}

// Feeds converts the feed declarations, falling back to the default timeout
// when the configured one does not parse.
func (c *Config) Feeds() map[string]generators.Feed {
	feeds := make(map[string]generators.Feed, len(c.Generators.Feeds))
	for name, f := range c.Generators.Feeds {
		timeout, err := time.ParseDuration(f.Timeout)
		if err != nil {
			timeout = generators.DefaultFeedTimeout
		}
		feeds[name] = generators.Feed{
			URL:       f.URL,
			Param:     f.Param,
			UserAgent: f.UserAgent,
			Timeout:   timeout,
		}
	}
	return feeds
}

// GetExportInterval returns 0 when periodic export is disabled.
func (c *Config) GetExportInterval() time.Duration {
	duration, err := time.ParseDuration(c.Export.Interval)
	if err != nil || duration < 0 {
		return 0
	}
	return duration
}
