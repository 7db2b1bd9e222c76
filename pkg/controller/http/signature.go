package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/webmasterarbez/elaoms/pkg/utils/errutil"
	"github.com/webmasterarbez/elaoms/pkg/utils/logging"
	"github.com/webmasterarbez/elaoms/pkg/utils/safe"
)

// Authentication headers
const (
	APIKeyHeader            = "X-Api-Key"
	PostCallSignatureHeader = "elevenlabs-signature"
)

// DefaultSignatureTolerance is the accepted distance between a post-call
// signature timestamp and the local clock
const DefaultSignatureTolerance = 30 * time.Minute

// maxBodySize bounds webhook bodies read before verification
const maxBodySize = 10 << 20

// Rejection reasons. They are logged, never returned to the caller.
var (
	ErrAPIKeyMissing     = goerr.New("api key missing")
	ErrAPIKeyMismatch    = goerr.New("api key mismatch")
	ErrSignatureFormat   = goerr.New("malformed signature header")
	ErrSignatureMismatch = goerr.New("signature mismatch")
	ErrSignatureStale    = goerr.New("signature timestamp outside tolerance")
)

// verifyAPIKey compares a shared key in constant time
func verifyAPIKey(secret, presented string) error {
	if presented == "" {
		return goerr.Wrap(ErrAPIKeyMissing, "no api key presented")
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(presented)) != 1 {
		return goerr.Wrap(ErrAPIKeyMismatch, "api key does not match")
	}
	return nil
}

// verifyPostCallSignature checks a `t=<unix>,v0=<hex>` header against
// HMAC-SHA256(secret, "<t>.<body>") and the clock. It is a pure function.
func verifyPostCallSignature(secret, header string, body []byte, now time.Time, tolerance time.Duration) error {
	rawTS, ts, digest, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(rawTS))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(expected), []byte(digest)) != 1 {
		return goerr.Wrap(ErrSignatureMismatch, "post-call signature does not match body")
	}

	diff := now.Unix() - ts
	if diff < 0 {
		diff = -diff
	}
	if diff > int64(tolerance/time.Second) {
		return goerr.Wrap(ErrSignatureStale, "post-call signature is stale",
			goerr.V("timestamp", ts),
			goerr.V("now", now.Unix()),
		)
	}

	return nil
}

func parseSignatureHeader(header string) (string, int64, string, error) {
	parts := strings.Split(strings.TrimSpace(header), ",")
	if len(parts) != 2 {
		return "", 0, "", goerr.Wrap(ErrSignatureFormat, "expected two signature parts", goerr.V("parts", len(parts)))
	}

	rawTS, ok := strings.CutPrefix(strings.TrimSpace(parts[0]), "t=")
	if !ok {
		return "", 0, "", goerr.Wrap(ErrSignatureFormat, "timestamp part missing")
	}
	ts, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return "", 0, "", goerr.Wrap(ErrSignatureFormat, "timestamp is not an integer")
	}

	digest, ok := strings.CutPrefix(strings.TrimSpace(parts[1]), "v0=")
	if !ok || digest == "" {
		return "", 0, "", goerr.Wrap(ErrSignatureFormat, "v0 digest missing")
	}

	return rawTS, ts, digest, nil
}

// APIKeyMiddleware rejects requests whose X-Api-Key header does not match
// secret
func APIKeyMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := verifyAPIKey(secret, r.Header.Get(APIKeyHeader)); err != nil {
				reject(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PostCallSignatureMiddleware verifies the post-call HMAC signature over the
// raw body and restores the body for the next handler
func PostCallSignatureMiddleware(secret string, tolerance time.Duration, now func() time.Time) func(http.Handler) http.Handler {
	if tolerance <= 0 {
		tolerance = DefaultSignatureTolerance
	}
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := r.Body
			defer safe.Close(ctx, raw)

			body, err := io.ReadAll(io.LimitReader(raw, maxBodySize))
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}

			if err := verifyPostCallSignature(secret, r.Header.Get(PostCallSignatureHeader), body, now(), tolerance); err != nil {
				reject(w, r, err)
				return
			}

			r.Body = io.NopCloser(bytes.NewBuffer(body))
			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, err error) {
	logging.From(r.Context()).Warn("webhook authentication rejected",
		slog.String("path", r.URL.Path),
		slog.String("reason", rejectReason(err)),
		slog.String("remote", r.RemoteAddr),
	)
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrSignatureFormat):
		return "format"
	case errors.Is(err, ErrSignatureMismatch):
		return "signature"
	case errors.Is(err, ErrSignatureStale):
		return "stale"
	case errors.Is(err, ErrAPIKeyMissing):
		return "missing_key"
	case errors.Is(err, ErrAPIKeyMismatch):
		return "key_mismatch"
	default:
		return "unknown"
	}
}
