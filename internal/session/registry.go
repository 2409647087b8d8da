// Package session tracks in-flight tool invocations so operators can
// see what the engine is working on. The registry is owned by whichever
// front end dispatches tool calls.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hiturf/ow-oi-assistant/pkg/utils/logger"
)

// Session is one in-flight tool invocation.
type Session struct {
	ID        string    `json:"id"`
	Tool      string    `json:"tool"`
	StartedAt time.Time `json:"started_at"`
}

// Registry is a concurrency-safe set of active sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Begin records a new session for the named tool and returns its ID.
func (r *Registry) Begin(ctx context.Context, tool string) string {
	s := Session{
		ID:        uuid.New().String(),
		Tool:      tool,
		StartedAt: time.Now(),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	logger.Debug(ctx, "session started", zap.String("session_id", s.ID), zap.String("tool", tool))
	return s.ID
}

// End removes a session. Unknown IDs are ignored.
func (r *Registry) End(ctx context.Context, id string) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		logger.Debug(ctx, "session ended", zap.String("session_id", id))
	}
}

// Get looks up a session by ID.
func (r *Registry) Get(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Active returns a snapshot of all in-flight sessions.
func (r *Registry) Active() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
