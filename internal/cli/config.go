package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const defaultServerURL = "http://localhost:8080"

// Config holds the settings of one CLI invocation.
// Environment variables win over ~/.scorekeeper/config, flags win over both.
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
	Verbose   bool
}

// DefaultConfig resolves defaults from the environment and the config file
func DefaultConfig() *Config {
	file := readConfigFile(filepath.Join(configDir(), "config"))
	lookup := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		if v := file[key]; v != "" {
			return v
		}
		return fallback
	}

	return &Config{
		ServerURL: lookup("SK_SERVER", defaultServerURL),
		Token:     lookup("SK_TOKEN", ""),
		TokenFile: lookup("SK_TOKEN_FILE", filepath.Join(configDir(), "token")),
		Output:    "text",
	}
}

// Validate rejects settings the client cannot work with
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL %q: want http(s)://host[:port]", c.ServerURL)
	}
	switch c.Output {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format %q: want text or json", c.Output)
	}
	return nil
}

// LoadToken reads the token file unless a token was already supplied.
// A missing file means "not logged in".
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}
	data, err := os.ReadFile(c.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}
	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken stores token for later invocations, readable only by the user
func (c *Config) SaveToken(token string) error {
	c.Token = token
	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	return os.WriteFile(c.TokenFile, []byte(token+"\n"), 0o600)
}

// ClearToken forgets the stored token
func (c *Config) ClearToken() error {
	c.Token = ""
	if err := os.Remove(c.TokenFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scorekeeper"
	}
	return filepath.Join(home, ".scorekeeper")
}

func readConfigFile(path string) map[string]string {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil
	}
	return values
}
