package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the REST and websocket surfaces. Everything under /api
// and /ws requires a valid token; the authoring subtree additionally
// requires an admin or contributor role.
func NewRouter(auth *Authenticator, attempts *AttemptHandler, catalog *CatalogHandler, ws *WSHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware)

	api.HandleFunc("/attempts", attempts.Start).Methods(http.MethodPost)
	api.HandleFunc("/attempts/{attemptID}/answers/{questionID}", attempts.Answer).Methods(http.MethodPut)
	api.HandleFunc("/attempts/{attemptID}/finish", attempts.Finish).Methods(http.MethodPost)

	authoring := api.PathPrefix("/quizzes").Subrouter()
	authoring.Use(RequireRole(RoleAdmin, RoleContributor))
	authoring.HandleFunc("", catalog.Create).Methods(http.MethodPost)
	authoring.HandleFunc("", catalog.List).Methods(http.MethodGet)
	authoring.HandleFunc("/{quizID}", catalog.Retrieve).Methods(http.MethodGet)
	authoring.HandleFunc("/{quizID}", catalog.Rename).Methods(http.MethodPatch)
	authoring.HandleFunc("/{quizID}/questions", catalog.AddQuestions).Methods(http.MethodPost)

	wsRoute := r.PathPrefix("/ws").Subrouter()
	wsRoute.Use(auth.Middleware)
	wsRoute.HandleFunc("/attempts", ws.ServeWS).Methods(http.MethodGet)

	return r
}
