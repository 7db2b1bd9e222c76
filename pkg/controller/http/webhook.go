package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/webmasterarbez/elaoms/pkg/domain/model/elevenlabs"
	"github.com/webmasterarbez/elaoms/pkg/usecase"
	"github.com/webmasterarbez/elaoms/pkg/utils/errutil"
	"github.com/webmasterarbez/elaoms/pkg/utils/safe"
)

// CallUseCase handles the three call stages
type CallUseCase interface {
	HandleInitiation(ctx context.Context, req *elevenlabs.ClientDataRequest) (*elevenlabs.ClientDataResponse, error)
	HandleSearch(ctx context.Context, req *elevenlabs.SearchDataRequest) (*elevenlabs.SearchDataResponse, error)
	HandleCompletion(ctx context.Context, webhook *elevenlabs.PostCallWebhook) (*elevenlabs.PostCallResponse, error)
}

var _ CallUseCase = (*usecase.CallUseCase)(nil)

func clientDataHandler(uc CallUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req elevenlabs.ClientDataRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		resp, err := uc.HandleInitiation(r.Context(), &req)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}
		writeJSON(w, r, resp)
	}
}

func searchDataHandler(uc CallUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req elevenlabs.SearchDataRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		resp, err := uc.HandleSearch(r.Context(), &req)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}
		writeJSON(w, r, resp)
	}
}

func postCallHandler(uc CallUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var webhook elevenlabs.PostCallWebhook
		if !decodeJSON(w, r, &webhook) {
			return
		}

		resp, err := uc.HandleCompletion(r.Context(), &webhook)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}
		writeJSON(w, r, resp)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to decode request body"), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	safe.Write(r.Context(), w, data)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidPayload), errors.Is(err, usecase.ErrInvalidCaller):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
