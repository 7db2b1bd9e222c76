package http

import (
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/webmasterarbez/elaoms/pkg/utils/logging"
)

type Server struct {
	router        *chi.Mux
	callUC        CallUseCase
	clientDataKey string
	searchDataKey string
	postCallKey   string
	tolerance     time.Duration
	now           func() time.Time
	sentry        bool
}

type Options func(*Server)

// WithClientDataKey sets the shared key required on /webhook/client-data
func WithClientDataKey(key string) Options {
	return func(s *Server) {
		s.clientDataKey = key
	}
}

// WithSearchDataKey enables shared key authentication on /webhook/search-data
func WithSearchDataKey(key string) Options {
	return func(s *Server) {
		s.searchDataKey = key
	}
}

// WithPostCallSecret sets the HMAC secret of /webhook/post-call
func WithPostCallSecret(secret string) Options {
	return func(s *Server) {
		s.postCallKey = secret
	}
}

// WithSignatureTolerance overrides DefaultSignatureTolerance
func WithSignatureTolerance(d time.Duration) Options {
	return func(s *Server) {
		s.tolerance = d
	}
}

// WithClock replaces time.Now for signature checks
func WithClock(now func() time.Time) Options {
	return func(s *Server) {
		s.now = now
	}
}

// WithSentry reports panics in handlers to Sentry
func WithSentry(enabled bool) Options {
	return func(s *Server) {
		s.sentry = enabled
	}
}

func New(callUC CallUseCase, opts ...Options) (*Server, error) {
	if callUC == nil {
		return nil, goerr.New("call use case is required")
	}

	r := chi.NewRouter()

	s := &Server{
		router:    r,
		callUC:    callUC,
		tolerance: DefaultSignatureTolerance,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.clientDataKey == "" {
		return nil, goerr.New("client data key is required")
	}
	if s.postCallKey == "" {
		return nil, goerr.New("post-call secret is required")
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	if s.sentry {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}

	r.Get("/health", healthHandler)

	r.Route("/webhook", func(r chi.Router) {
		r.With(APIKeyMiddleware(s.clientDataKey)).
			Post("/client-data", clientDataHandler(s.callUC))

		if s.searchDataKey != "" {
			r.With(APIKeyMiddleware(s.searchDataKey)).
				Post("/search-data", searchDataHandler(s.callUC))
		} else {
			r.Post("/search-data", searchDataHandler(s.callUC))
		}

		r.With(PostCallSignatureMiddleware(s.postCallKey, s.tolerance, s.now)).
			Post("/post-call", postCallHandler(s.callUC))
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger embeds a logger carrying the request id into the context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.From(ctx).With("request_id", middleware.GetReqID(ctx))
		next.ServeHTTP(w, r.WithContext(logging.With(ctx, logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
