package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/webmasterarbez/elaoms/pkg/cli/config"
	httpctrl "github.com/webmasterarbez/elaoms/pkg/controller/http"
	"github.com/webmasterarbez/elaoms/pkg/usecase"
	"github.com/webmasterarbez/elaoms/pkg/utils/logging"
)

func cmdServe(sentryCfg *config.Sentry) *cli.Command {
	var addr string
	var persona string
	var webhookCfg config.Webhook
	var memoryCfg config.Memory
	var salienceCfg config.Salience
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8000",
			Sources:     cli.EnvVars("ELAOMS_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "persona",
			Usage:       "Agent name used in templated greetings, e.g. \"Hello Stefan, it's Margaret\"",
			Sources:     cli.EnvVars("ELAOMS_PERSONA"),
			Destination: &persona,
		},
	}

	// Add shared config flags
	flags = append(flags, webhookCfg.Flags()...)
	flags = append(flags, memoryCfg.Flags()...)
	flags = append(flags, salienceCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the webhook server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Configuration loaded",
				"webhook", webhookCfg,
				"memory", memoryCfg,
				"salience", salienceCfg,
				"gemini", geminiCfg,
			)

			httpOpts, err := webhookCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure webhook authentication")
			}
			if !webhookCfg.SearchDataAuthenticated() {
				logger.Warn("search-data webhook is unauthenticated, set --search-data-key to protect it")
			}
			httpOpts = append(httpOpts, httpctrl.WithSentry(sentryCfg.Enabled()))

			table, err := salienceCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load salience configuration")
			}

			digestSvc, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure transcript digest")
			}
			if !geminiCfg.Enabled() {
				logger.Info("Gemini project not configured, using plain transcript digest")
			}

			// Initialize memory gateway based on backend type
			gateway, err := memoryCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize memory gateway")
			}
			defer func() {
				if err := gateway.Close(); err != nil {
					logger.Error("failed to close memory gateway", "error", err.Error())
				}
			}()

			uc := usecase.New(gateway,
				usecase.WithDigest(digestSvc),
				usecase.WithSalienceTable(table),
				usecase.WithPersona(persona),
				usecase.WithSearchLimit(memoryCfg.SearchLimit()),
			)

			httpHandler, err := httpctrl.New(uc.Call, httpOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// In-flight post-call handlers finish their memory writes here
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
