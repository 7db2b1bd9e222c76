package cli

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/webmasterarbez/elaoms/pkg/cli/config"
	"github.com/webmasterarbez/elaoms/pkg/utils/logging"
)

// Run executes the elaoms command line. Logging and error reporting are set
// up once at the root and shared by every subcommand.
func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closeLog, flushSentry func()

	flags := loggerCfg.Flags()
	flags = append(flags, sentryCfg.Flags()...)

	app := &cli.Command{
		Name:    "elaoms",
		Usage:   "Per-caller memory for voice AI phone agents",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closeLog = f

			flush, err := sentryCfg.Configure()
			if err != nil {
				return ctx, err
			}
			flushSentry = flush

			logging.Default().Info("Starting elaoms",
				"version", version,
				"logger", loggerCfg,
				"sentry", sentryCfg,
			)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// flush reports before the log output goes away
			if flushSentry != nil {
				flushSentry()
			}
			if closeLog != nil {
				closeLog()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(&sentryCfg),
			cmdValidate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
