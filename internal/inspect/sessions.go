package inspect

import (
	"encoding/json"
	"net/http"

	"github.com/SystemBuilders/LineAuth/internal/session"
)

// SessionsResponse is the JSON body of the /sessions route. It exposes
// which connections hold a session, never the token values themselves.
type SessionsResponse struct {
	Count       int      `json:"Count"`
	Connections []string `json:"Connections"`
}

// listSessions wraps the session table and creates a clean HTTP service.
func listSessions(w http.ResponseWriter, r *http.Request, sessions session.Table) {
	conns := sessions.Connections()
	resp := SessionsResponse{
		Count:       len(conns),
		Connections: make([]string, 0, len(conns)),
	}
	for _, conn := range conns {
		resp.Connections = append(resp.Connections, string(conn))
	}

	byteData, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(byteData)
}
