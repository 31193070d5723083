// Package master implements the public session list: an HTTP service hosts
// register with and browsers query to find joinable games. It is entirely
// optional; a session is joinable by direct address whether or not it is
// listed here.
package master

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SessionInfo describes one advertised host session.
type SessionInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Version    string `json:"version"`
	Region     string `json:"region"`
}

type sessionRecord struct {
	SessionInfo
	LastSeen time.Time
}

// Registry is an in-memory store of advertised sessions with TTL expiry. A
// host that stops heartbeating falls off the list on the next sweep.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionRecord
	ttl      time.Duration
	log      *logrus.Entry
	stopCh   chan struct{}
}

func NewRegistry(ttl time.Duration, log *logrus.Entry) *Registry {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	r := &Registry{
		sessions: make(map[string]*sessionRecord),
		ttl:      ttl,
		log:      log,
		stopCh:   make(chan struct{}),
	}
	go r.cleanupLoop()
	return r
}

func (r *Registry) Stop() {
	close(r.stopCh)
}

// Register stores the session and returns its assigned ID.
func (r *Registry) Register(info SessionInfo) string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	id := fmt.Sprintf("%x", b)

	info.ID = id

	r.mu.Lock()
	r.sessions[id] = &sessionRecord{
		SessionInfo: info,
		LastSeen:    time.Now(),
	}
	r.mu.Unlock()

	return id
}

// Heartbeat refreshes a session's TTL and player count. Returns false for an
// unknown ID, telling the host to re-register.
func (r *Registry) Heartbeat(id string, players int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[id]
	if !ok {
		return false
	}
	rec.LastSeen = time.Now()
	rec.Players = players
	return true
}

// List returns every currently advertised session.
func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]SessionInfo, 0, len(r.sessions))
	for _, rec := range r.sessions {
		result = append(result, rec.SessionInfo)
	}
	return result
}

// expireStale removes sessions whose last heartbeat is older than the TTL.
func (r *Registry) expireStale(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rec := range r.sessions {
		if now.Sub(rec.LastSeen) >= r.ttl {
			r.log.WithField("name", rec.Name).
				WithField("id", id).
				Info("session expired from list")
			delete(r.sessions, id)
		}
	}
}

func (r *Registry) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.expireStale(time.Now())
		}
	}
}
