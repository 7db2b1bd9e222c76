package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/webmasterarbez/elaoms/pkg/domain/interfaces"
	"github.com/webmasterarbez/elaoms/pkg/repository/memory"
	"github.com/webmasterarbez/elaoms/pkg/repository/openmemory"
)

// Memory backends
const (
	BackendOpenMemory = "openmemory"
	BackendMemory     = "memory"
)

const defaultSearchLimit = 10

// Memory selects and configures the memory engine gateway
type Memory struct {
	backend     string
	url         string
	apiKey      string
	timeout     time.Duration
	searchLimit int
}

// Flags returns CLI flags for the memory engine
func (x *Memory) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "memory-backend",
			Category:    "Memory",
			Usage:       "Memory engine backend [openmemory|memory]",
			Value:       BackendOpenMemory,
			Sources:     cli.EnvVars("ELAOMS_MEMORY_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "openmemory-url",
			Category:    "Memory",
			Usage:       "Base URL of the OpenMemory API",
			Value:       "http://localhost:8080",
			Sources:     cli.EnvVars("ELAOMS_OPENMEMORY_URL"),
			Destination: &x.url,
		},
		&cli.StringFlag{
			Name:        "openmemory-key",
			Category:    "Memory",
			Usage:       "Bearer token of the OpenMemory API",
			Sources:     cli.EnvVars("ELAOMS_OPENMEMORY_KEY"),
			Destination: &x.apiKey,
		},
		&cli.DurationFlag{
			Name:        "memory-timeout",
			Category:    "Memory",
			Usage:       "Timeout of each memory engine call",
			Value:       openmemory.DefaultTimeout,
			Sources:     cli.EnvVars("ELAOMS_MEMORY_TIMEOUT"),
			Destination: &x.timeout,
		},
		&cli.IntFlag{
			Name:        "search-limit",
			Category:    "Memory",
			Usage:       "Maximum memories returned to a mid-call search",
			Value:       defaultSearchLimit,
			Sources:     cli.EnvVars("ELAOMS_SEARCH_LIMIT"),
			Destination: &x.searchLimit,
		},
	}
}

// LogValue implements slog.LogValuer
func (x Memory) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("url", x.url),
		slog.Int("api_key.len", len(x.apiKey)),
		slog.Duration("timeout", x.timeout),
		slog.Int("search_limit", x.searchLimit),
	)
}

// SearchLimit returns the configured mid-call search limit
func (x *Memory) SearchLimit() int {
	if x.searchLimit == 0 {
		return defaultSearchLimit
	}
	return x.searchLimit
}

// Configure creates the memory gateway of the selected backend
func (x *Memory) Configure() (interfaces.MemoryGateway, error) {
	if x.searchLimit < 0 {
		return nil, goerr.Wrap(ErrInvalidSearchLimit, "invalid search limit", goerr.V(ValueKey, x.searchLimit))
	}

	switch x.backend {
	case BackendOpenMemory, "":
		client, err := openmemory.New(x.url,
			openmemory.WithAPIKey(x.apiKey),
			openmemory.WithTimeout(x.timeout),
		)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidMemoryURL, "failed to create OpenMemory client",
				goerr.V(ValueKey, x.url), goerr.V("cause", err.Error()))
		}
		return client, nil

	case BackendMemory:
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "unsupported memory backend", goerr.V(ValueKey, x.backend))
	}
}
