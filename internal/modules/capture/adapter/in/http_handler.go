package in

import (
	"net/http"

	"github.com/gorilla/mux"

	"fitlab/internal/modules/capture/dto"
	capturein "fitlab/internal/modules/capture/port/in"
	"fitlab/internal/platform/httpapi"
)

type attemptJSON struct {
	AttemptID       string  `json:"attempt_id,omitempty"`
	TestID          string  `json:"test_id,omitempty"`
	TestName        string  `json:"test_name,omitempty"`
	Category        string  `json:"category,omitempty"`
	Phase           string  `json:"phase"`
	Unit            string  `json:"unit,omitempty"`
	RepetitionBased bool    `json:"repetition_based"`
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
	Reps            int     `json:"reps"`
	LastResultID    string  `json:"last_result_id,omitempty"`
}

type resultJSON struct {
	ID             string  `json:"id"`
	TestName       string  `json:"test_name"`
	Category       string  `json:"category"`
	Score          float64 `json:"score"`
	Unit           string  `json:"unit"`
	Date           string  `json:"date"`
	Percentile     int     `json:"percentile"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Reps           int     `json:"reps"`
	AthleteID      string  `json:"athlete_id,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	PersonalBest   bool    `json:"personal_best"`
}

func attemptBody(a dto.AttemptOutput) attemptJSON {
	return attemptJSON{
		AttemptID:       a.AttemptID,
		TestID:          a.TestID,
		TestName:        a.TestName,
		Category:        a.Category,
		Phase:           a.Phase,
		Unit:            a.Unit,
		RepetitionBased: a.RepetitionBased,
		ElapsedSeconds:  a.Elapsed.Seconds(),
		Reps:            a.Reps,
		LastResultID:    a.LastResultID,
	}
}

// HTTPHandler exposes the attempt lifecycle under /assessment for the
// mobile client.
type HTTPHandler struct {
	usecase capturein.Usecase
}

func NewHTTPHandler(usecase capturein.Usecase) *HTTPHandler {
	return &HTTPHandler{usecase: usecase}
}

func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/assessment/open", h.Open).Methods(http.MethodPost)
	router.HandleFunc("/assessment/start", h.Start).Methods(http.MethodPost)
	router.HandleFunc("/assessment/rep", h.Rep).Methods(http.MethodPost)
	router.HandleFunc("/assessment/stop", h.Stop).Methods(http.MethodPost)
	router.HandleFunc("/assessment/reset", h.Reset).Methods(http.MethodPost)
	router.HandleFunc("/assessment/status", h.Status).Methods(http.MethodGet)
}

func (h *HTTPHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TestID string `json:"test_id"`
	}
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	out, err := h.usecase.Open(r.Context(), dto.OpenInput{TestID: req.TestID})
	h.respondAttempt(w, out, err, http.StatusCreated)
}

func (h *HTTPHandler) Start(w http.ResponseWriter, r *http.Request) {
	out, err := h.usecase.Start(r.Context())
	h.respondAttempt(w, out, err, http.StatusOK)
}

func (h *HTTPHandler) Rep(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Count int `json:"count"`
	}{Count: 1}
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	out, err := h.usecase.AddRepetition(r.Context(), dto.RepetitionInput{Count: req.Count})
	h.respondAttempt(w, out, err, http.StatusOK)
}

func (h *HTTPHandler) Stop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AthleteID string `json:"athlete_id"`
		Notes     string `json:"notes"`
	}
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	out, err := h.usecase.Stop(r.Context(), dto.StopInput{AthleteID: req.AthleteID, Notes: req.Notes})
	if err != nil && out.Result.ID == "" {
		httpapi.ResponseError(w, err)
		return
	}
	body := map[string]any{
		"attempt": attemptBody(out.Attempt),
		"result": resultJSON{
			ID:             out.Result.ID,
			TestName:       out.Result.TestName,
			Category:       out.Result.Category,
			Score:          out.Result.Score,
			Unit:           out.Result.Unit,
			Date:           out.Result.Date,
			Percentile:     out.Result.Percentile,
			ElapsedSeconds: out.Result.Elapsed.Seconds(),
			Reps:           out.Result.Reps,
			AthleteID:      out.Result.AthleteID,
			Notes:          out.Result.Notes,
			PersonalBest:   out.Result.PersonalBest,
		},
	}
	if out.NotePath != "" {
		body["note_path"] = out.NotePath
	}
	if err != nil {
		body["error"] = err.Error()
		httpapi.ResponseWithJSON(w, httpapi.StatusFor(err), body)
		return
	}
	httpapi.ResponseWithJSON(w, http.StatusOK, body)
}

func (h *HTTPHandler) Reset(w http.ResponseWriter, r *http.Request) {
	out, err := h.usecase.Reset(r.Context())
	h.respondAttempt(w, out, err, http.StatusOK)
}

func (h *HTTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	out, err := h.usecase.Status(r.Context())
	h.respondAttempt(w, out, err, http.StatusOK)
}

func (h *HTTPHandler) respondAttempt(w http.ResponseWriter, out dto.AttemptOutput, err error, status int) {
	if err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	httpapi.ResponseWithJSON(w, status, attemptBody(out))
}
