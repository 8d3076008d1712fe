package folio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eringen/folio/mail"
	"github.com/eringen/folio/social"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Folio")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/folio.db")

	AdminPassword string `yaml:"admin_password"` // Required: admin login password
	AdminEmail    string `yaml:"admin_email"`    // Receives submission notifications
	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	PostCacheTTL time.Duration `yaml:"post_cache_ttl"` // Post cache TTL (default 5min)

	Social   SocialConfig `yaml:"social"`
	RedisURL string       `yaml:"redis_url"` // Shared social cache; in-memory when empty

	Debug bool      `yaml:"debug"`
	Log   LogConfig `yaml:"log"`
}

// SocialConfig points the /social/ page at a JSON feed.
type SocialConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Token    string        `yaml:"token"`
	Limit    int           `yaml:"limit"`
	TTL      time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default info)
	Format string `yaml:"format"` // json or console (default json)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Folio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
		if c.Debug {
			c.Log.Format = "console"
		}
	}
}

func (c SiteConfig) validate() error {
	if c.AdminPassword == "" {
		return errors.New("folio: AdminPassword is required")
	}
	if c.SessionSecret == "" {
		return errors.New("folio: SessionSecret is required")
	}
	return nil
}

func (c SiteConfig) mailSite() mail.Site {
	return mail.Site{Name: c.Name, URL: c.URL, AdminEmail: c.AdminEmail}
}

func (c SiteConfig) socialConfig() social.Config {
	return social.Config{
		Endpoint: c.Social.Endpoint,
		Token:    c.Social.Token,
		Limit:    c.Social.Limit,
		TTL:      c.Social.TTL,
	}
}

// LoadConfig reads .env (when present), then the YAML file at path (when
// path is non-empty), then FOLIO_* environment variables, which win.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("folio: load .env: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("folio: read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("folio: parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() error {
	strs := map[string]*string{
		"FOLIO_NAME":            &c.Name,
		"FOLIO_URL":             &c.URL,
		"FOLIO_DESCRIPTION":     &c.Description,
		"FOLIO_AUTHOR":          &c.Author,
		"FOLIO_ADDR":            &c.Addr,
		"FOLIO_DATABASE_PATH":   &c.DatabasePath,
		"FOLIO_ADMIN_PASSWORD":  &c.AdminPassword,
		"FOLIO_ADMIN_EMAIL":     &c.AdminEmail,
		"FOLIO_SESSION_SECRET":  &c.SessionSecret,
		"FOLIO_SOCIAL_ENDPOINT": &c.Social.Endpoint,
		"FOLIO_SOCIAL_TOKEN":    &c.Social.Token,
		"FOLIO_REDIS_URL":       &c.RedisURL,
		"FOLIO_LOG_LEVEL":       &c.Log.Level,
		"FOLIO_LOG_FORMAT":      &c.Log.Format,
	}
	for key, dst := range strs {
		*dst = EnvOr(key, *dst)
	}
	bools := map[string]*bool{
		"FOLIO_COOKIE_SECURE": &c.CookieSecure,
		"FOLIO_DEBUG":         &c.Debug,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("folio: %s: %w", key, err)
			}
			*dst = b
		}
	}
	durations := map[string]*time.Duration{
		"FOLIO_POST_CACHE_TTL": &c.PostCacheTTL,
		"FOLIO_SOCIAL_TTL":     &c.Social.TTL,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("folio: %s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the logger built from SiteConfig.Log.
func WithLogger(log *zap.Logger) Option {
	return func(a *App) {
		a.Log = log
	}
}

// WithOutbox replaces the SQLite outbox that receives submission emails.
func WithOutbox(o mail.Outbox) Option {
	return func(a *App) {
		a.outbox = o
	}
}

// WithSocialCache replaces the cache used for the social feed.
func WithSocialCache(c social.Cache) Option {
	return func(a *App) {
		a.socialCache = c
	}
}
