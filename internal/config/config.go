// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values and validate

package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

// LaunchMode picks how the browser session is obtained
type LaunchMode string

const (
	//LaunchLocal starts a headful browser with a persistent profile (DEV)
	LaunchLocal LaunchMode = "local"
	//LaunchRemote connects to a managed browser over CDP
	LaunchRemote LaunchMode = "remote"
)

type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Selectors struct {
	RemoteToggle     string `yaml:"remote_toggle"`
	EmploymentType   string `yaml:"employment_type"`
	EmploymentOption string `yaml:"employment_option"`
	JobLinkPrefix    string `yaml:"job_link_prefix"`
	Badge            string `yaml:"badge"`
	FlagPrefix       string `yaml:"flag_prefix"`
	ReadinessMarker  string `yaml:"readiness_marker"`
	ContentContainer string `yaml:"content_container"`
	TimezoneToken    string `yaml:"timezone_token"`
}

type Settle struct {
	//Mode is "fixed" (sleep Delay) or "selector" (poll until Selector exists)
	Mode     string        `yaml:"mode"`
	Delay    time.Duration `yaml:"delay"`
	Selector string        `yaml:"selector"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Config struct {
	//Launch
	Dev            bool          `yaml:"-" env:"DEV"`
	AuthToken      string        `yaml:"-" env:"BRIGHT_DATA_AUTH"`
	RemoteHost     string        `yaml:"-" env:"BRIGHT_DATA_SBR_WS_ENDPOINT"`
	UserDataDir    string        `yaml:"user_data_dir"`
	Viewport       Viewport      `yaml:"viewport"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	//Target
	ListingURL string    `yaml:"listing_url"`
	Selectors  Selectors `yaml:"selectors"`
	Settle     Settle    `yaml:"settle"`

	//Timeouts
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	ReadinessTimeout  time.Duration `yaml:"readiness_timeout"`
	ControlTimeout    time.Duration `yaml:"control_timeout"`
	RunTimeout        time.Duration `yaml:"run_timeout"`

	//Detail workers
	Workers           int     `yaml:"workers" env:"WORKERS"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	//Output
	OutputPath       string `yaml:"output_path" env:"OUTPUT_PATH"`
	SanitizeContent  bool   `yaml:"sanitize_content"`
	DebugScreenshots bool   `yaml:"debug_screenshots"`
	ScreenshotsDir   string `yaml:"screenshots_dir"`

	//Optional run summary
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`
}

// Load reads .env, the YAML file at CONFIG_PATH (or DefaultPath) and env overrides.
// A missing YAML file is not an error, the defaults cover every field.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		log.Printf("ℹ️ No config file at %s, using defaults", path)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	//DEV only needs to be present, its value is ignored
	if os.Getenv("DEV") != "" {
		c.Dev = true
	}
	if v := os.Getenv("BRIGHT_DATA_AUTH"); v != "" {
		c.AuthToken = v
	}
	if v := os.Getenv("BRIGHT_DATA_SBR_WS_ENDPOINT"); v != "" {
		c.RemoteHost = v
	}
	if v := os.Getenv("OUTPUT_PATH"); v != "" {
		c.OutputPath = v
	}
	if v := os.Getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WORKERS: %w", err)
		}
		c.Workers = n
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		c.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.UserDataDir == "" {
		c.UserDataDir = "./user_data"
	}
	if c.Viewport.Width == 0 || c.Viewport.Height == 0 {
		c.Viewport = Viewport{Width: 1280, Height: 1373}
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 2 * time.Minute
	}
	if c.ListingURL == "" {
		c.ListingURL = "https://vuejobs.com/jobs"
	}

	s := &c.Selectors
	if s.RemoteToggle == "" {
		s.RemoteToggle = `button[role="switch"]`
	}
	if s.EmploymentType == "" {
		s.EmploymentType = ".n-base-selection-tags"
	}
	if s.EmploymentOption == "" {
		s.EmploymentOption = ".n-base-select-option"
	}
	if s.JobLinkPrefix == "" {
		s.JobLinkPrefix = "/jobs/"
	}
	if s.Badge == "" {
		s.Badge = "img.h-3"
	}
	if s.FlagPrefix == "" {
		s.FlagPrefix = "Flag of "
	}
	if s.ReadinessMarker == "" {
		s.ReadinessMarker = `button.u-btn.px-6.text-lg[type="submit"]`
	}
	if s.ContentContainer == "" {
		s.ContentContainer = `.order-2.lg\:order.lg\:col-span-5`
	}
	if s.TimezoneToken == "" {
		s.TimezoneToken = "timezone"
	}

	if c.Settle.Mode == "" {
		c.Settle.Mode = "fixed"
	}
	if c.Settle.Delay == 0 {
		c.Settle.Delay = 5 * time.Second
	}
	if c.Settle.Interval == 0 {
		c.Settle.Interval = 250 * time.Millisecond
	}
	if c.Settle.Timeout == 0 {
		c.Settle.Timeout = 30 * time.Second
	}

	if c.NavigationTimeout == 0 {
		c.NavigationTimeout = 120 * time.Second
	}
	if c.ReadinessTimeout == 0 {
		c.ReadinessTimeout = 30 * time.Second
	}
	if c.ControlTimeout == 0 {
		c.ControlTimeout = 30 * time.Second
	}
	if c.RunTimeout == 0 {
		c.RunTimeout = 15 * time.Minute
	}
	if c.Workers == 0 {
		c.Workers = 2
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 1
	}
	if c.OutputPath == "" {
		c.OutputPath = "jobs.json"
	}
	if c.ScreenshotsDir == "" {
		c.ScreenshotsDir = "logs/screenshots"
	}
}

// Validate checks the fields the run cannot start without
func (c *Config) Validate() error {
	if c.LaunchMode() == LaunchRemote {
		if c.AuthToken == "" {
			return fmt.Errorf("BRIGHT_DATA_AUTH is required when DEV is not set")
		}
		if c.RemoteHost == "" {
			return fmt.Errorf("BRIGHT_DATA_SBR_WS_ENDPOINT is required when DEV is not set")
		}
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be >= 0, got %v", c.RequestsPerSecond)
	}
	switch c.Settle.Mode {
	case "fixed":
	case "selector":
		if c.Settle.Selector == "" {
			return fmt.Errorf("settle.selector is required for settle mode %q", c.Settle.Mode)
		}
	default:
		return fmt.Errorf("unknown settle mode %q", c.Settle.Mode)
	}
	u, err := url.Parse(c.ListingURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("listing_url must be an absolute URL, got %q", c.ListingURL)
	}
	return nil
}

func (c *Config) LaunchMode() LaunchMode {
	if c.Dev {
		return LaunchLocal
	}
	return LaunchRemote
}

// RemoteEndpoint builds wss://<auth>@<host>
func (c *Config) RemoteEndpoint() string {
	return fmt.Sprintf("wss://%s@%s", c.AuthToken, c.RemoteHost)
}

// NotifyEnabled reports whether a Telegram summary should be sent
func (c *Config) NotifyEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
