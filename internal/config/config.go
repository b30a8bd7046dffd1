package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

// AuthType selects how requests are authenticated.
type AuthType string

const (
	AuthBasic AuthType = "Basic"
	AuthToken AuthType = "Token"
)

// ProxyOption toggles the http/https proxy settings.
type ProxyOption string

const (
	ProxyYes ProxyOption = "Yes"
	ProxyNo  ProxyOption = "No"
)

// Theme is the UI palette.
type Theme string

const (
	ThemeLight Theme = "Light"
	ThemeDark  Theme = "Dark"
)

// SafeMode is the serialized form of a zero ThreadCount.
const SafeMode = "safe_mode"

// ThreadCount is the search worker budget. Zero means safe mode, which
// defers to the governor's capacity.
type ThreadCount int

// ThreadCounts lists the explicit budgets a user may pick.
var ThreadCounts = []int{8, 12, 16, 20, 24, 28, 32}

// ParseThreadCount accepts "safe_mode" or one of ThreadCounts.
func ParseThreadCount(s string) (ThreadCount, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == SafeMode {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("thread count %q: want %s or one of %v", s, SafeMode, ThreadCounts)
	}
	for _, v := range ThreadCounts {
		if v == n {
			return ThreadCount(n), nil
		}
	}
	return 0, fmt.Errorf("thread count %d: want %s or one of %v", n, SafeMode, ThreadCounts)
}

func (tc ThreadCount) String() string {
	if tc == 0 {
		return SafeMode
	}
	return strconv.Itoa(int(tc))
}

func (tc ThreadCount) MarshalJSON() ([]byte, error) {
	if tc == 0 {
		return json.Marshal(SafeMode)
	}
	return json.Marshal(int(tc))
}

func (tc *ThreadCount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := ParseThreadCount(s)
		if err != nil {
			return err
		}
		*tc = v
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("thread_count: %w", err)
	}
	v, err := ParseThreadCount(strconv.Itoa(n))
	if err != nil {
		return err
	}
	*tc = v
	return nil
}

// Config is the single settings record. It is loaded once at startup and
// replaced wholesale on save.
type Config struct {
	Server      string      `json:"server"`
	AuthType    AuthType    `json:"auth_type"`
	Username    string      `json:"username,omitempty"`
	Password    string      `json:"password,omitempty"`
	Token       string      `json:"token,omitempty"`
	ProxyOption ProxyOption `json:"proxy_option"`
	HTTPProxy   string      `json:"http_proxy,omitempty"`
	HTTPSProxy  string      `json:"https_proxy,omitempty"`
	ThreadCount ThreadCount `json:"thread_count"`
	Theme       Theme       `json:"theme"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		AuthType:    AuthBasic,
		ProxyOption: ProxyNo,
		Theme:       ThemeDark,
	}
}

// SetAuthType switches the auth scheme and clears the credentials that
// belong to the other scheme.
func (c *Config) SetAuthType(t AuthType) {
	c.AuthType = t
	switch t {
	case AuthBasic:
		c.Token = ""
	case AuthToken:
		c.Username = ""
		c.Password = ""
	}
}

// UsesProxy reports whether the proxy fields apply.
func (c Config) UsesProxy() bool { return c.ProxyOption == ProxyYes }

// ThreadBudget resolves the configured thread count against the governor
// capacity. Safe mode uses the capacity itself.
func (c Config) ThreadBudget(capacity int) int {
	if c.ThreadCount == 0 {
		if capacity < 1 {
			return 1
		}
		return capacity
	}
	return int(c.ThreadCount)
}

// Set assigns one field by its document key. Used by `config set`.
func (c *Config) Set(key, value string) error {
	switch key {
	case "server":
		c.Server = strings.TrimRight(strings.TrimSpace(value), "/")
	case "auth_type":
		switch AuthType(value) {
		case AuthBasic, AuthToken:
			c.SetAuthType(AuthType(value))
		default:
			return fmt.Errorf("auth_type %q: want Basic or Token", value)
		}
	case "username":
		c.Username = value
	case "password":
		c.Password = value
	case "token":
		c.Token = value
	case "proxy_option":
		switch ProxyOption(value) {
		case ProxyYes, ProxyNo:
			c.ProxyOption = ProxyOption(value)
		default:
			return fmt.Errorf("proxy_option %q: want Yes or No", value)
		}
	case "http_proxy":
		c.HTTPProxy = value
	case "https_proxy":
		c.HTTPSProxy = value
	case "thread_count":
		tc, err := ParseThreadCount(value)
		if err != nil {
			return err
		}
		c.ThreadCount = tc
	case "theme":
		switch Theme(value) {
		case ThemeLight, ThemeDark:
			c.Theme = Theme(value)
		default:
			return fmt.Errorf("theme %q: want Light or Dark", value)
		}
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// DefaultPath returns $TICKETDECK_CONFIG or ~/.config/ticketdeck/config.json.
func DefaultPath() (string, error) {
	if p := os.Getenv("TICKETDECK_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ticketdeck", "config.json"), nil
}

// Parse decodes a config document. Comments and trailing commas are
// accepted so the file can be edited by hand.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	if cfg.AuthType == "" {
		cfg.AuthType = AuthBasic
	}
	if cfg.ProxyOption == "" {
		cfg.ProxyOption = ProxyNo
	}
	if cfg.Theme == "" {
		cfg.Theme = ThemeDark
	}
	return cfg, nil
}

// Load reads the config at path. A missing file yields Default() and no
// error. A corrupt file yields Default() and the parse error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save overwrites the config at path with cfg.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
