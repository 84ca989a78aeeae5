package in_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	capturein "fitlab/internal/modules/capture/adapter/in"
	"fitlab/internal/modules/capture/domain"
	"fitlab/internal/modules/capture/dto"
	apperrors "fitlab/internal/platform/errors"
	"fitlab/internal/platform/httpapi"
	"fitlab/internal/platform/logging"
)

type fakeUsecase struct {
	running bool
	reps    int
}

func (f *fakeUsecase) Open(_ context.Context, in dto.OpenInput) (dto.AttemptOutput, error) {
	if in.TestID != "3" {
		return dto.AttemptOutput{}, apperrors.ErrNotFound
	}
	return dto.AttemptOutput{TestID: "3", TestName: "Push-ups", Phase: "ready"}, nil
}

func (f *fakeUsecase) Start(context.Context) (dto.AttemptOutput, error) {
	if f.running {
		return dto.AttemptOutput{Phase: "running"}, domain.ErrAlreadyRunning
	}
	f.running = true
	return dto.AttemptOutput{Phase: "running"}, nil
}

func (f *fakeUsecase) AddRepetition(_ context.Context, in dto.RepetitionInput) (dto.AttemptOutput, error) {
	f.reps += in.Count
	return dto.AttemptOutput{Phase: "running", Reps: f.reps}, nil
}

func (f *fakeUsecase) Stop(context.Context, dto.StopInput) (dto.StopOutput, error) {
	return dto.StopOutput{
		Attempt: dto.AttemptOutput{Phase: "completed", Reps: f.reps},
		Result:  dto.ResultOutput{ID: "r1", TestName: "Push-ups", Score: float64(f.reps), Unit: "reps", Percentile: 80, Elapsed: 12 * time.Second},
	}, nil
}

func (f *fakeUsecase) Reset(context.Context) (dto.AttemptOutput, error) {
	return dto.AttemptOutput{Phase: "ready"}, nil
}

func (f *fakeUsecase) Status(context.Context) (dto.AttemptOutput, error) {
	return dto.AttemptOutput{}, apperrors.ErrNoActiveAttempt
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	router.ServeHTTP(rec, req)
	return rec
}

func TestAssessmentFlow(t *testing.T) {
	t.Parallel()
	router := httpapi.NewRouter(logging.Nop(), capturein.NewHTTPHandler(&fakeUsecase{}))

	if rec := do(router, http.MethodPost, "/assessment/open", `{"test_id":"3"}`); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on open, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(router, http.MethodPost, "/assessment/open", `{"test_id":"99"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown test, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPost, "/assessment/start", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on start, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPost, "/assessment/start", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on double start, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPost, "/assessment/rep", ""); !strings.Contains(rec.Body.String(), `"reps":1`) {
		t.Fatalf("expected default count of one, got %s", rec.Body.String())
	}
	do(router, http.MethodPost, "/assessment/rep", `{"count":4}`)

	rec := do(router, http.MethodPost, "/assessment/stop", `{"athlete_id":"a1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on stop, got %d", rec.Code)
	}
	var body struct {
		Result struct {
			Score          float64 `json:"score"`
			ElapsedSeconds float64 `json:"elapsed_seconds"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode stop: %v", err)
	}
	if body.Result.Score != 5 || body.Result.ElapsedSeconds != 12 {
		t.Fatalf("unexpected stop body %s", rec.Body.String())
	}
	if rec := do(router, http.MethodGet, "/assessment/status", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 without an attempt, got %d", rec.Code)
	}
}
