package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fieldops-io/autotask-client/internal/constants"
	"github.com/fieldops-io/autotask-client/pkg/atclient"
	"github.com/fieldops-io/autotask-client/pkg/autotask"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	NotAvailable = "N/A"
)

// CLIConfig is the shape persisted to ~/.autotask/config.yml by login.
type CLIConfig struct {
	Endpoint        string `yaml:"endpoint,omitempty"`
	Username        string `yaml:"username,omitempty"`
	IntegrationCode string `yaml:"integration_code,omitempty"`
	Secret          string `yaml:"secret,omitempty"`
}

// configFilePath returns the persisted config location, honoring the
// --config flag when set.
func configFilePath() (string, error) {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		return cfgFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}

	return filepath.Join(home, ".autotask", "config.yml"), nil
}

// saveConfig writes the CLI config to disk with owner-only permissions,
// since it carries API credentials.
func saveConfig(cfg *CLIConfig) (string, error) {
	path, err := configFilePath()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, constants.ConfigFilePerm); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}

	return path, nil
}

// apiConfig assembles the client configuration from flags, environment
// variables, and the persisted config file via viper.
func apiConfig() *autotask.Config {
	return &autotask.Config{
		IntegrationCode: viper.GetString("integration_code"),
		Username:        viper.GetString("username"),
		Secret:          viper.GetString("secret"),
		Endpoint:        viper.GetString("endpoint"),
	}
}

// CreateClient builds an Autotask API client for a command invocation.
// When no endpoint is configured the zone is discovered first.
func CreateClient(ctx context.Context) (autotask.Client, error) {
	cfg := apiConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w. Run 'autotask login' or set AUTOTASK_* environment variables", err)
	}

	client, err := atclient.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return client, nil
}

// StandardJSONRenderer encodes data as indented JSON to stdout.
func StandardJSONRenderer(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer encodes data as YAML to stdout.
func StandardYAMLRenderer(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)

	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

// formatDate renders an optional entity date for table output.
func formatDate(t *time.Time) string {
	if t == nil {
		return NotAvailable
	}

	return t.Format("2006-01-02")
}
