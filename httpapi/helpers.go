package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	contentstore "github.com/MoonrakerAI/dt-exotics-las-vegas-sub003"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/kv"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/store_errors"
	"github.com/cespare/xxhash/v2"
)

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiError{Error: msg})
}

// writeStoreError maps the error taxonomy onto HTTP statuses. Backend
// failures are surfaced as retryable 503s; the server itself never
// retries.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store_errors.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store_errors.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store_errors.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, store_errors.ErrCountsDisabled):
		writeError(w, http.StatusServiceUnavailable, "counts backend not configured")
	case errors.Is(err, kv.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// pageFrom reads limit/offset from the query string. Bad values never fail
// the request; they fall back to the defaults.
func pageFrom(r *http.Request) contentstore.Page {
	page := contentstore.Page{Limit: contentstore.DefaultLimit}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		page.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		page.Offset = v
	}
	return page
}

// writeJSONCached adds a content-derived ETag and answers If-None-Match
// with 304. Used on the public list surfaces.
func writeJSONCached(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	etag := fmt.Sprintf("%q", strconv.FormatUint(xxhash.Sum64(body), 16))
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
	w.Write([]byte("\n"))
}

func decodeBody(r *http.Request, into any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(into)
}
