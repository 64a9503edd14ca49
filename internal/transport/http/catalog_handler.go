package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/soldier14/quizdrill/internal/app"
)

// CatalogHandler exposes the authoring surface. The router mounts it
// behind a role gate; students never reach these endpoints.
type CatalogHandler struct {
	catalog *app.CatalogService
}

func NewCatalogHandler(catalog *app.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Create handles POST /quizzes: a quiz with nested questions and options
// lands atomically or not at all.
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input app.CreateQuizInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed payload")
		return
	}

	quiz, err := h.catalog.CreateQuiz(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

// List handles GET /quizzes.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.catalog.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Retrieve handles GET /quizzes/{quizID} with the full authoring view.
func (h *CatalogHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.catalog.GetQuiz(r.Context(), mux.Vars(r)["quizID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

type renameQuizRequest struct {
	Name string `json:"name"`
}

// Rename handles PATCH /quizzes/{quizID}.
func (h *CatalogHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req renameQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeDetail(w, http.StatusBadRequest, "name is required")
		return
	}

	quiz, err := h.catalog.RenameQuiz(r.Context(), mux.Vars(r)["quizID"], req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

type addQuestionsRequest struct {
	Questions []app.QuestionInput `json:"questions"`
}

// AddQuestions handles POST /quizzes/{quizID}/questions.
func (h *CatalogHandler) AddQuestions(w http.ResponseWriter, r *http.Request) {
	var req addQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Questions) == 0 {
		writeDetail(w, http.StatusBadRequest, "questions are required")
		return
	}

	quiz, err := h.catalog.AddQuestions(r.Context(), mux.Vars(r)["quizID"], req.Questions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}
