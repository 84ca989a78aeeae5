package in

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"fitlab/internal/modules/results/dto"
	resultsin "fitlab/internal/modules/results/port/in"
	apperrors "fitlab/internal/platform/errors"
	"fitlab/internal/platform/httpapi"
)

type resultJSON struct {
	ID           string  `json:"id"`
	TestName     string  `json:"test_name"`
	Category     string  `json:"category"`
	Score        float64 `json:"score"`
	Unit         string  `json:"unit"`
	Date         string  `json:"date"`
	Percentile   int     `json:"percentile"`
	AthleteID    string  `json:"athlete_id,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	PersonalBest bool    `json:"personal_best"`
	VideoURL     string  `json:"video_url,omitempty"`
}

func toJSON(items []dto.TestResult) []resultJSON {
	out := make([]resultJSON, 0, len(items))
	for _, r := range items {
		out = append(out, resultJSON(r))
	}
	return out
}

type HTTPHandler struct {
	usecase resultsin.Usecase
}

func NewHTTPHandler(usecase resultsin.Usecase) *HTTPHandler {
	return &HTTPHandler{usecase: usecase}
}

func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/results/recent", h.Recent).Methods(http.MethodGet)
	router.HandleFunc("/results/bests", h.Bests).Methods(http.MethodGet)
	router.HandleFunc("/results/top", h.Top).Methods(http.MethodGet)
	router.HandleFunc("/results/category/{category}", h.ByCategory).Methods(http.MethodGet)
	router.HandleFunc("/results/{id}", h.Delete).Methods(http.MethodDelete)
}

func (h *HTTPHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	items, err := h.usecase.ListRecent(r.Context(), dto.ListRecentInput{Limit: limit})
	if err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	httpapi.ResponseWithJSON(w, http.StatusOK, map[string]any{"results": toJSON(items)})
}

func (h *HTTPHandler) Bests(w http.ResponseWriter, r *http.Request) {
	items, err := h.usecase.PersonalBests(r.Context(), dto.PersonalBestsInput{AthleteID: r.URL.Query().Get("athlete")})
	if err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	httpapi.ResponseWithJSON(w, http.StatusOK, map[string]any{"results": toJSON(items)})
}

func (h *HTTPHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	items, err := h.usecase.Top(r.Context(), dto.TopInput{TestName: r.URL.Query().Get("test"), Limit: limit})
	if err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	httpapi.ResponseWithJSON(w, http.StatusOK, map[string]any{"results": toJSON(items)})
}

func (h *HTTPHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	items, err := h.usecase.ByCategory(r.Context(), dto.ByCategoryInput{Category: mux.Vars(r)["category"], Limit: limit})
	if err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	httpapi.ResponseWithJSON(w, http.StatusOK, map[string]any{"results": toJSON(items)})
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.usecase.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", apperrors.ErrInvalidInput)
	}
	return limit, nil
}
