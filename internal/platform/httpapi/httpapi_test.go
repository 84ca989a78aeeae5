package httpapi_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	apperrors "fitlab/internal/platform/errors"
	"fitlab/internal/platform/httpapi"
	"fitlab/internal/platform/logging"
)

type echoRoutes struct{}

func (echoRoutes) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := httpapi.DecodeJSON(r, &body); err != nil {
			httpapi.ResponseError(w, err)
			return
		}
		httpapi.ResponseWithJSON(w, http.StatusOK, body)
	}).Methods(http.MethodPost)
}

func TestHealthAndRegisteredRoutes(t *testing.T) {
	t.Parallel()
	router := httpapi.NewRouter(logging.Nop(), echoRoutes{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("expected healthy response, got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"a":"b"}`)))
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || got["a"] != "b" {
		t.Fatalf("expected echo, got %s (%v)", rec.Body.String(), err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestEmptyChunkedBodyIsNotAnError(t *testing.T) {
	t.Parallel()
	router := httpapi.NewRouter(logging.Nop(), echoRoutes{})

	req := httptest.NewRequest(http.MethodPost, "/echo", nil)
	req.Body = io.NopCloser(strings.NewReader(""))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty body of unknown length, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", apperrors.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("wrap: %w", apperrors.ErrConflict), http.StatusConflict},
		{apperrors.ErrNoActiveAttempt, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := httpapi.StatusFor(tc.err); got != tc.want {
			t.Fatalf("expected %d for %v, got %d", tc.want, tc.err, got)
		}
	}
}
