package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/webmasterarbez/elaoms/pkg/cli/config"
	"github.com/webmasterarbez/elaoms/pkg/domain/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "valid configuration",
			content: `
[salience]
high = ["account_id", "Favorite-Color"]
medium = ["order_status"]
low = ["mood"]
`,
		},
		{
			name:    "empty file",
			content: ``,
		},
		{
			name: "field in two tiers",
			content: `
[salience]
high = ["account_id"]
low = ["account_id"]
`,
			wantErr: config.ErrDuplicateField,
		},
		{
			name: "duplicate after normalization",
			content: `
[salience]
medium = ["order-status", "Order Status"]
`,
			wantErr: config.ErrDuplicateField,
		},
		{
			name: "invalid key",
			content: `
[salience]
high = ["e-mail!"]
`,
			wantErr: config.ErrInvalidFieldKey,
		},
		{
			name:    "broken TOML",
			content: `[salience`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadAppConfiguration(writeConfig(t, tt.content))
			if tt.wantErr != nil {
				gt.Bool(t, errors.Is(err, tt.wantErr)).True()
				gt.Value(t, cfg).Nil()
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, cfg).NotNil()
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "nope.toml"))
		gt.Bool(t, errors.Is(err, config.ErrConfigNotFound)).True()
	})
}

func TestAppConfig_ToDomainSalienceTable(t *testing.T) {
	t.Run("extends defaults", func(t *testing.T) {
		cfg, err := config.LoadAppConfiguration(writeConfig(t, `
[salience]
high = ["account_id"]
low = ["topic"]
`))
		gt.NoError(t, err).Required()

		table := cfg.ToDomainSalienceTable()
		gt.Value(t, table.Tier("account_id")).Equal(types.SalienceHigh)
		gt.Value(t, table.Tier("topic")).Equal(types.SalienceLow)
		gt.Value(t, table.Tier("first_name")).Equal(types.SalienceHigh)
	})

	t.Run("replaces defaults", func(t *testing.T) {
		cfg, err := config.LoadAppConfiguration(writeConfig(t, `
[salience]
replace_defaults = true
medium = ["account-id"]
`))
		gt.NoError(t, err).Required()

		table := cfg.ToDomainSalienceTable()
		gt.Value(t, table.Tier("account_id")).Equal(types.SalienceMedium)
		gt.Value(t, table.Tier("first_name")).Equal(types.SalienceLow)
		gt.Value(t, len(table.Fields())).Equal(1)
	})
}

func TestSalience_Configure(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		table, err := config.NewSalienceForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, table.Tier("email")).Equal(types.SalienceHigh)
	})

	t.Run("loads file", func(t *testing.T) {
		path := writeConfig(t, "[salience]\nhigh = [\"loyalty_tier\"]\n")
		table, err := config.NewSalienceForTest(path).Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, table.Tier("loyalty_tier")).Equal(types.SalienceHigh)
	})

	t.Run("propagates load errors", func(t *testing.T) {
		_, err := config.NewSalienceForTest(filepath.Join(t.TempDir(), "nope.toml")).Configure()
		gt.Error(t, err)
	})
}

func TestSortedFields(t *testing.T) {
	cfg, err := config.LoadAppConfiguration(writeConfig(t, `
[salience]
replace_defaults = true
high = ["zip", "account_id"]
low = ["mood"]
`))
	gt.NoError(t, err).Required()

	sorted := config.SortedFields(cfg.ToDomainSalienceTable())
	gt.Value(t, sorted[types.SalienceHigh]).Equal([]string{"account_id", "zip"})
	gt.Value(t, sorted[types.SalienceLow]).Equal([]string{"mood"})
	gt.Array(t, sorted[types.SalienceMedium]).Length(0)
}
