package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/webmasterarbez/elaoms/pkg/cli/config"
	"github.com/webmasterarbez/elaoms/pkg/utils/logging"
)

func TestLogger_Configure(t *testing.T) {
	t.Run("writes json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()

		logging.Default().Info("hello", "caller", "+15551234567")
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).Contains(`"msg":"hello"`)
		gt.String(t, string(data)).Contains("+15551234567")
	})

	t.Run("redacts secret tagged fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		closer, err := config.NewLoggerForTest("info", "json", path).Configure()
		gt.NoError(t, err).Required()

		type credential struct {
			Name  string
			Value string `masq:"secret"`
		}
		logging.Default().Info("config", "credential", credential{Name: "post-call", Value: "wsec_should_not_leak"})
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.Bool(t, strings.Contains(string(data), "wsec_should_not_leak")).False()
		gt.String(t, string(data)).Contains("post-call")
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "json", "stdout").Configure()
		gt.Bool(t, errors.Is(err, config.ErrInvalidLogLevel)).True()
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Bool(t, errors.Is(err, config.ErrInvalidLogFormat)).True()
	})
}
