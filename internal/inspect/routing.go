package inspect

import (
	"net/http"

	"github.com/SystemBuilders/LineAuth/internal/session"
	"github.com/gorilla/mux"
)

// SetupRouting adds all the inspection routes on the http server.
func SetupRouting(sessions session.Table, r *mux.Router) *mux.Router {
	r.HandleFunc("/sessions", makeSessionsHandler(sessions)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", makeHealthzHandler()).Methods(http.MethodGet)
	return r
}

func makeSessionsHandler(sessions session.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listSessions(w, r, sessions)
	}
}

func makeHealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
