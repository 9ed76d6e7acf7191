package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"codepractice/internal/catalog"
	"codepractice/internal/model"
)

// ProblemHandler serves the read-only catalog
type ProblemHandler struct {
	catalog *catalog.Catalog
}

// NewProblemHandler creates a new problem handler
func NewProblemHandler(c *catalog.Catalog) *ProblemHandler {
	return &ProblemHandler{catalog: c}
}

// List handles GET /problems?difficulty=&topic=
func (h *ProblemHandler) List(w http.ResponseWriter, r *http.Request) {
	problems := h.catalog.All()

	if d := r.URL.Query().Get("difficulty"); d != "" {
		difficulty := model.Difficulty(d)
		if !difficulty.Valid() {
			writeError(w, http.StatusBadRequest, "invalid difficulty")
			return
		}
		problems = h.catalog.ByDifficulty(difficulty)
	}

	topic := r.URL.Query().Get("topic")
	summaries := make([]model.ProblemSummary, 0, len(problems))
	for i := range problems {
		if topic != "" && !problems[i].HasTopic(topic) {
			continue
		}
		summaries = append(summaries, problems[i].Summary())
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Get handles GET /problems/{id}
func (h *ProblemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid problem id")
		return
	}

	problem := h.catalog.Get(id)
	if problem == nil {
		writeError(w, http.StatusNotFound, "problem not found")
		return
	}
	writeJSON(w, http.StatusOK, problem)
}
