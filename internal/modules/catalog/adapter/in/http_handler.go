package in

import (
	"net/http"

	"github.com/gorilla/mux"

	"fitlab/internal/modules/catalog/dto"
	catalogin "fitlab/internal/modules/catalog/port/in"
	"fitlab/internal/platform/httpapi"
)

type testJSON struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Category        string   `json:"category"`
	Difficulty      string   `json:"difficulty"`
	DurationSeconds float64  `json:"duration_seconds"`
	Instructions    []string `json:"instructions,omitempty"`
}

type HTTPHandler struct {
	usecase catalogin.Usecase
}

func NewHTTPHandler(usecase catalogin.Usecase) *HTTPHandler {
	return &HTTPHandler{usecase: usecase}
}

func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/tests", h.List).Methods(http.MethodGet)
	router.HandleFunc("/tests/{id}", h.Get).Methods(http.MethodGet)
}

func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	tests, err := h.usecase.ListTests(r.Context(), dto.ListTestsInput{Category: r.URL.Query().Get("category")})
	if err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	out := make([]testJSON, 0, len(tests))
	for _, test := range tests {
		out = append(out, testJSON{
			ID:              test.ID,
			Name:            test.Name,
			Category:        test.Category,
			Difficulty:      test.Difficulty,
			DurationSeconds: test.Duration.Seconds(),
		})
	}
	httpapi.ResponseWithJSON(w, http.StatusOK, map[string]any{"tests": out})
}

func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	test, err := h.usecase.GetTest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpapi.ResponseError(w, err)
		return
	}
	httpapi.ResponseWithJSON(w, http.StatusOK, testJSON{
		ID:              test.ID,
		Name:            test.Name,
		Description:     test.Description,
		Category:        test.Category,
		Difficulty:      test.Difficulty,
		DurationSeconds: test.Duration.Seconds(),
		Instructions:    test.Instructions,
	})
}
