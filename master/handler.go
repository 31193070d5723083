package master

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

type registerRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Version    string `json:"version"`
	Region     string `json:"region"`
}

type registerResponse struct {
	ID string `json:"id"`
}

type heartbeatRequest struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
}

const maxRequestBody = 1 << 16 // 64 KB

// NewMux wires the session list routes onto a fresh ServeMux.
func NewMux(reg *Registry, log *logrus.Entry) *http.ServeMux {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sessions", ListSessions(reg, log))
	mux.HandleFunc("POST /sessions/register", RegisterSession(reg, log))
	mux.HandleFunc("POST /sessions/heartbeat", Heartbeat(reg))
	mux.HandleFunc("GET /health", Health())
	return mux
}

func ListSessions(reg *Registry, log *logrus.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		sessions := reg.List()
		if err := json.NewEncoder(w).Encode(sessions); err != nil {
			log.WithError(err).Warn("list encode failed")
		}
	}
}

func RegisterSession(reg *Registry, log *logrus.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.Address == "" {
			http.Error(w, `{"error":"name and address required"}`, http.StatusBadRequest)
			return
		}

		id := reg.Register(SessionInfo{
			Name:       req.Name,
			Address:    req.Address,
			Players:    req.Players,
			MaxPlayers: req.MaxPlayers,
			Version:    req.Version,
			Region:     req.Region,
		})

		log.WithField("name", req.Name).
			WithField("address", req.Address).
			WithField("id", id).
			Info("session registered")

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(registerResponse{ID: id})
	}
}

func Heartbeat(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		var req heartbeatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
			return
		}

		if !reg.Heartbeat(req.ID, req.Players) {
			http.Error(w, `{"error":"unknown session"}`, http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
