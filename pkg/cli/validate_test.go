package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/webmasterarbez/elaoms/pkg/cli"
)

func TestRun_ValidateCommand_DefaultTable(t *testing.T) {
	err := cli.Run(context.Background(), []string{"elaoms", "validate"}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")
	content := `
[salience]
high = ["account_id"]
medium = ["order-status"]
low = ["mood"]
`
	err := os.WriteFile(configPath, []byte(content), 0o600)
	gt.NoError(t, err).Required()

	err = cli.Run(context.Background(), []string{"elaoms", "validate", "--salience-config", configPath}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	// Invalid: same field in two tiers
	content := `
[salience]
high = ["account_id"]
low = ["account_id"]
`
	err := os.WriteFile(configPath, []byte(content), 0o600)
	gt.NoError(t, err).Required()

	err = cli.Run(context.Background(), []string{"elaoms", "validate", "--salience-config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_MissingConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nonexistent.toml")

	err := cli.Run(context.Background(), []string{"elaoms", "validate", "--salience-config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_InvalidLogLevel(t *testing.T) {
	err := cli.Run(context.Background(), []string{"elaoms", "--log-level", "verbose", "validate"}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_RootSentryFlags(t *testing.T) {
	err := cli.Run(context.Background(), []string{"elaoms", "--sentry-env", "test", "validate"}, "test")
	gt.NoError(t, err)
}
