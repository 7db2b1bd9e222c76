package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	httpctrl "github.com/webmasterarbez/elaoms/pkg/controller/http"
)

// Webhook holds the shared secrets of the three call-stage webhooks
type Webhook struct {
	clientDataKey string
	postCallKey   string
	searchDataKey string
	tolerance     time.Duration
}

// Flags returns CLI flags for webhook authentication
func (x *Webhook) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "client-data-key",
			Category:    "Webhook",
			Usage:       "Shared key expected in X-Api-Key on /webhook/client-data",
			Sources:     cli.EnvVars("ELAOMS_CLIENT_DATA_KEY"),
			Destination: &x.clientDataKey,
		},
		&cli.StringFlag{
			Name:        "post-call-key",
			Category:    "Webhook",
			Usage:       "HMAC secret of the post-call webhook signature",
			Sources:     cli.EnvVars("ELAOMS_POST_CALL_KEY"),
			Destination: &x.postCallKey,
		},
		&cli.StringFlag{
			Name:        "search-data-key",
			Category:    "Webhook",
			Usage:       "Shared key for /webhook/search-data (unauthenticated when empty)",
			Sources:     cli.EnvVars("ELAOMS_SEARCH_DATA_KEY"),
			Destination: &x.searchDataKey,
		},
		&cli.DurationFlag{
			Name:        "signature-tolerance",
			Category:    "Webhook",
			Usage:       "Maximum age of a post-call signature timestamp",
			Value:       httpctrl.DefaultSignatureTolerance,
			Sources:     cli.EnvVars("ELAOMS_SIGNATURE_TOLERANCE"),
			Destination: &x.tolerance,
		},
	}
}

// LogValue implements slog.LogValuer. Secrets are logged by length only.
func (x Webhook) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("client_data_key.len", len(x.clientDataKey)),
		slog.Int("post_call_key.len", len(x.postCallKey)),
		slog.Int("search_data_key.len", len(x.searchDataKey)),
		slog.Duration("signature_tolerance", x.tolerance),
	)
}

// SearchDataAuthenticated reports whether the search webhook requires a key
func (x *Webhook) SearchDataAuthenticated() bool {
	return x.searchDataKey != ""
}

// Configure returns the HTTP server options carrying the webhook secrets
func (x *Webhook) Configure() ([]httpctrl.Options, error) {
	if x.clientDataKey == "" {
		return nil, goerr.Wrap(ErrMissingSecret, "client data key is required", goerr.V(FlagKey, "client-data-key"))
	}
	if x.postCallKey == "" {
		return nil, goerr.Wrap(ErrMissingSecret, "post-call key is required", goerr.V(FlagKey, "post-call-key"))
	}

	opts := []httpctrl.Options{
		httpctrl.WithClientDataKey(x.clientDataKey),
		httpctrl.WithPostCallSecret(x.postCallKey),
	}
	if x.searchDataKey != "" {
		opts = append(opts, httpctrl.WithSearchDataKey(x.searchDataKey))
	}
	if x.tolerance > 0 {
		opts = append(opts, httpctrl.WithSignatureTolerance(x.tolerance))
	}
	return opts, nil
}
