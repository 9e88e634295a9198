// Package config resolves the tool's configuration from, in order of
// precedence: command-line flags, environment variables (with .env loading),
// an optional orgmig.toml file, and finally an interactive prompt for
// missing tokens when attached to a terminal.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/term"

	"github.com/custodia-labs/orgmig-cli/internal/logger"
)

// Environment variables holding the organization credentials.
const (
	EnvSourceToken = "ORGMIG_SOURCE_TOKEN"
	EnvDestToken   = "ORGMIG_DEST_TOKEN"
)

// DefaultFile is the config file name looked up in the working directory.
const DefaultFile = "orgmig.toml"

// ErrMissingOrg indicates a required organization name was not provided.
var ErrMissingOrg = errors.New("config: organization name is required")

// Config is the resolved tool configuration.
type Config struct {
	SourceOrg string `toml:"source_org"`
	DestOrg   string `toml:"dest_org"`

	// Tokens are never read from the TOML file; only flags, environment and
	// the interactive prompt supply them.
	SourceToken string `toml:"-"`
	DestToken   string `toml:"-"`

	Output     string `toml:"output"`
	Overrides  string `toml:"overrides"`
	Capture    bool   `toml:"capture"`
	CaptureDir string `toml:"capture_dir"`
}

// Load reads the optional config file and merges environment variables on
// top. A missing file is not an error. path empty means DefaultFile.
func Load(path string) (*Config, error) {
	cfg := &Config{
		CaptureDir: "capture",
	}

	if path == "" {
		path = DefaultFile
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		logger.Debug("loaded config from %s", path)
	case os.IsNotExist(err):
		// Optional.
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	// .env is optional too; it feeds the same environment lookup below.
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env")
	}

	if v := os.Getenv(EnvSourceToken); v != "" {
		cfg.SourceToken = v
	}
	if v := os.Getenv(EnvDestToken); v != "" {
		cfg.DestToken = v
	}

	return cfg, nil
}

// ResolveTokens fills in missing tokens, prompting on the terminal when
// possible. It fails when a required token cannot be obtained.
func (c *Config) ResolveTokens(needSource, needDest bool) error {
	if needSource && c.SourceToken == "" {
		token, err := promptToken("source organization token (" + EnvSourceToken + "): ")
		if err != nil {
			return err
		}
		c.SourceToken = token
	}
	if needDest && c.DestToken == "" {
		token, err := promptToken("destination organization token (" + EnvDestToken + "): ")
		if err != nil {
			return err
		}
		c.DestToken = token
	}
	return nil
}

// promptToken reads a token without echo. Fails when stdin is not a terminal.
func promptToken(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("config: token not set and stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if len(raw) == 0 {
		return "", errors.New("config: empty token")
	}
	return string(raw), nil
}
