// Package config loads uinav settings from a YAML file, a .env file and
// UINAV_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFilename is looked up in the working directory when no path is given.
const DefaultConfigFilename = "uinav.yaml"

// Config is the full uinav configuration.
type Config struct {
	Appliance  Appliance  `yaml:"appliance"`
	Browser    Browser    `yaml:"browser"`
	Navigation Navigation `yaml:"navigation"`
	AI         AI         `yaml:"ai"`
	Log        Log        `yaml:"log"`
}

// Appliance is the console under test.
type Appliance struct {
	URL         string `yaml:"url"`
	Version     string `yaml:"version"`
	ProductName string `yaml:"product_name"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
}

// Browser configures the Chromium instance.
type Browser struct {
	Headless       bool          `yaml:"headless"`
	Width          int           `yaml:"width"`
	Height         int           `yaml:"height"`
	Bin            string        `yaml:"bin"`
	Profile        string        `yaml:"profile"`
	ElementTimeout time.Duration `yaml:"element_timeout"`
}

// Navigation configures the resolver's retry budget.
type Navigation struct {
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	StepTimeout time.Duration `yaml:"step_timeout"`
	Graphs      []string      `yaml:"graphs"` // Scripted graph files
}

// AI configures step drafting.
type AI struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// Log configures logging.
type Log struct {
	Verbosity int `yaml:"verbosity"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Appliance: Appliance{
			ProductName: "ManageIQ",
			Username:    "admin",
		},
		Browser: Browser{
			Headless:       true,
			Width:          1280,
			Height:         720,
			ElementTimeout: 5 * time.Second,
		},
		Navigation: Navigation{
			MaxAttempts: 3,
			RetryDelay:  time.Second,
			StepTimeout: 30 * time.Second,
		},
		AI: AI{
			Provider: "claude",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path uses DefaultConfigFilename if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads files (default ".env") into the environment. Missing
// files are ignored and already set variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks value ranges. The appliance address is checked by the
// commands that need one.
func (c *Config) Validate() error {
	if c.Navigation.MaxAttempts < 1 {
		return fmt.Errorf("navigation.max_attempts must be at least 1, got %d", c.Navigation.MaxAttempts)
	}
	if c.Navigation.RetryDelay < 0 || c.Navigation.StepTimeout < 0 {
		return errors.New("navigation delays must not be negative")
	}
	if c.Browser.Width < 0 || c.Browser.Height < 0 {
		return errors.New("browser viewport must not be negative")
	}
	switch c.AI.Provider {
	case "claude", "openai":
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	return nil
}

// applyEnv overrides fields from the environment.
//
// Environment Variables:
//   - UINAV_URL, UINAV_VERSION, UINAV_PRODUCT
//   - UINAV_USERNAME, UINAV_PASSWORD
//   - UINAV_HEADLESS, UINAV_BROWSER_BIN, UINAV_PROFILE, UINAV_ELEMENT_TIMEOUT
//   - UINAV_NAV_MAX_ATTEMPTS, UINAV_NAV_RETRY_DELAY, UINAV_NAV_STEP_TIMEOUT
//   - UINAV_DEFAULT_PROVIDER, UINAV_MODEL
//   - UINAV_VERBOSITY
func (c *Config) applyEnv() {
	c.Appliance.URL = parseString("UINAV_URL", c.Appliance.URL)
	c.Appliance.Version = parseString("UINAV_VERSION", c.Appliance.Version)
	c.Appliance.ProductName = parseString("UINAV_PRODUCT", c.Appliance.ProductName)
	c.Appliance.Username = parseString("UINAV_USERNAME", c.Appliance.Username)
	c.Appliance.Password = parseString("UINAV_PASSWORD", c.Appliance.Password)

	c.Browser.Headless = parseBool("UINAV_HEADLESS", c.Browser.Headless)
	c.Browser.Bin = parseString("UINAV_BROWSER_BIN", c.Browser.Bin)
	c.Browser.Profile = parseString("UINAV_PROFILE", c.Browser.Profile)
	c.Browser.ElementTimeout = parseDuration("UINAV_ELEMENT_TIMEOUT", c.Browser.ElementTimeout)

	c.Navigation.MaxAttempts = parseInt("UINAV_NAV_MAX_ATTEMPTS", c.Navigation.MaxAttempts)
	c.Navigation.RetryDelay = parseDuration("UINAV_NAV_RETRY_DELAY", c.Navigation.RetryDelay)
	c.Navigation.StepTimeout = parseDuration("UINAV_NAV_STEP_TIMEOUT", c.Navigation.StepTimeout)

	c.AI.Provider = parseString("UINAV_DEFAULT_PROVIDER", c.AI.Provider)
	c.AI.Model = parseString("UINAV_MODEL", c.AI.Model)

	c.Log.Verbosity = parseInt("UINAV_VERBOSITY", c.Log.Verbosity)
}

func parseString(envVar, defaultVal string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultVal
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func parseBool(envVar string, defaultVal bool) bool {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
