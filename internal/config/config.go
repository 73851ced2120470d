// Package config loads and validates regwatch.yml. Validation is strict and
// happens once: a config that cannot describe a meaningful run aborts before
// any fetching starts.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mgillr/nextalent-regwatch/internal/classify"
	"github.com/mgillr/nextalent-regwatch/internal/discovery"
)

type Config struct {
	WindowHours    int `yaml:"window_hours"`
	MaxPerSection  int `yaml:"max_per_section"`
	StaleFallback  int `yaml:"stale_fallback"`
	Concurrency    int `yaml:"concurrency"`
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Sections fixes the sector priority order for keyword tie-breaking.
	Sections []string `yaml:"sections"`
	// Unhinted lists sectors whose sources carry no sector hint, so their
	// entries go through keyword classification.
	Unhinted []string `yaml:"unhinted"`

	Sources  map[string][]string `yaml:"sources"`
	Keywords map[string][]string `yaml:"keywords"`
	Hints    map[string]string   `yaml:"hints"`
}

func Default() Config {
	return Config{
		WindowHours:    36,
		MaxPerSection:  12,
		StaleFallback:  3,
		Concurrency:    6,
		TimeoutSeconds: 20,
		Sections:       []string{"aviation", "space", "pharma", "automotive", "crossIndustry"},
		Unhinted:       []string{"crossIndustry"},
		Hints:          classify.DefaultHints(),
	}
}

// Load reads the YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	// yaml.v3 merges into pre-filled maps instead of replacing them, so the
	// built-in hint table is applied only when the file brings none.
	cfg.Hints = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if len(cfg.Hints) == 0 {
		cfg.Hints = defaultHintsFor(cfg.Sections)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// defaultHintsFor restricts the built-in hint table to the configured
// sections, so narrowing sections below the defaults stays a legal config.
func defaultHintsFor(sections []string) map[string]string {
	known := make(map[string]bool, len(sections))
	for _, s := range sections {
		known[s] = true
	}
	hints := classify.DefaultHints()
	for frag, sector := range hints {
		if !known[sector] {
			delete(hints, frag)
		}
	}
	return hints
}

func (c Config) Validate() error {
	if c.WindowHours <= 0 {
		return fmt.Errorf("window_hours must be positive, got %d", c.WindowHours)
	}
	if c.MaxPerSection <= 0 {
		return fmt.Errorf("max_per_section must be positive, got %d", c.MaxPerSection)
	}
	if c.StaleFallback < 0 {
		return fmt.Errorf("stale_fallback must be >= 0, got %d", c.StaleFallback)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	if len(c.Sections) == 0 {
		return fmt.Errorf("sections must not be empty")
	}

	known := make(map[string]bool, len(c.Sections))
	for _, s := range c.Sections {
		if s == "" {
			return fmt.Errorf("sections contains an empty name")
		}
		if known[s] {
			return fmt.Errorf("duplicate section %q", s)
		}
		known[s] = true
	}

	total := 0
	for sector, urls := range c.Sources {
		if !known[sector] {
			return fmt.Errorf("sources references unknown section %q", sector)
		}
		for _, u := range urls {
			if u == "" {
				return fmt.Errorf("empty source url under section %q", sector)
			}
			total++
		}
	}
	if total == 0 {
		return fmt.Errorf("no sources configured")
	}

	for sector := range c.Keywords {
		if !known[sector] {
			return fmt.Errorf("keywords references unknown section %q", sector)
		}
	}
	for frag, sector := range c.Hints {
		if frag == "" {
			return fmt.Errorf("hints contains an empty host fragment")
		}
		if !known[sector] {
			return fmt.Errorf("hint %q references unknown section %q", frag, sector)
		}
	}
	for _, sector := range c.Unhinted {
		if !known[sector] {
			return fmt.Errorf("unhinted references unknown section %q", sector)
		}
	}
	return nil
}

func (c Config) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SourceList flattens the per-sector source map in section priority order.
func (c Config) SourceList() []discovery.Source {
	unhinted := make(map[string]bool, len(c.Unhinted))
	for _, s := range c.Unhinted {
		unhinted[s] = true
	}

	var out []discovery.Source
	for _, sector := range c.Sections {
		for _, u := range c.Sources[sector] {
			out = append(out, discovery.Source{
				Sector: sector,
				URL:    u,
				Hinted: !unhinted[sector],
			})
		}
	}
	return out
}
