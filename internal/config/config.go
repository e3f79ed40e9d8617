// Package config loads the bot's TOML configuration file.
package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the parsed configuration file.
type Config struct {
	// LogDir receives the run's log file and JSON snapshot.
	LogDir string `toml:"log_dir"`
	// Proxies are optional forwarding endpoints; each accepts the upstream
	// URL as a `url` query parameter. Empty means direct requests.
	Proxies []string `toml:"proxies"`
	// ProxyDelay is the per-proxy cool-down in seconds.
	ProxyDelay int `toml:"proxy_delay"`
	// RequestDelay is the minimum spacing between any two requests, seconds.
	RequestDelay int `toml:"request_delay"`
	// StatusAddr, when set, serves run progress on this address.
	StatusAddr string `toml:"status_addr"`

	Wiki WikiLanguages `toml:"wiki"`
}

// WikiLanguages holds the per-language wiki credentials. English is
// mandatory: it seeds the run and is the authoritative module shape.
type WikiLanguages struct {
	EN   *Wiki `toml:"en"`
	PtBR *Wiki `toml:"pt_br"`
}

// Wiki is the access configuration for one language's wiki.
type Wiki struct {
	APIPath  string `toml:"api_path"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

func defaults() Config {
	return Config{
		ProxyDelay:   12,
		RequestDelay: 1,
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg := defaults()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.LogDir == "" {
		return fmt.Errorf("missing required config: log_dir")
	}
	if c.ProxyDelay < 0 || c.RequestDelay < 0 {
		return fmt.Errorf("proxy_delay and request_delay must not be negative")
	}
	for _, p := range c.Proxies {
		if _, err := url.Parse(p); err != nil {
			return fmt.Errorf("invalid proxy %q: %w", p, err)
		}
	}

	if c.Wiki.EN == nil {
		return fmt.Errorf("missing required config: [wiki.en]")
	}
	if err := c.Wiki.EN.validate("wiki.en"); err != nil {
		return err
	}
	if c.Wiki.PtBR != nil {
		if err := c.Wiki.PtBR.validate("wiki.pt_br"); err != nil {
			return err
		}
	}
	return nil
}

func (w Wiki) validate(section string) error {
	if w.APIPath == "" {
		return fmt.Errorf("missing required config: %s.api_path", section)
	}
	if w.Username == "" || w.Password == "" {
		return fmt.Errorf("missing required config: %s credentials", section)
	}
	return nil
}
