package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type registryEntry struct {
	session  *Session
	lastUsed time.Time
}

// Registry owns the sessions of concurrent conversations, keyed by a
// client-supplied conversation id. Sessions idle for longer than the TTL are
// dropped by Evict.
type Registry struct {
	transport Transport
	persona   Persona
	idleTTL   time.Duration
	logger    *logrus.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*registryEntry
}

func NewRegistry(transport Transport, persona Persona, idleTTL time.Duration, logger *logrus.Logger) *Registry {
	return &Registry{
		transport: transport,
		persona:   persona,
		idleTTL:   idleTTL,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[string]*registryEntry),
	}
}

// Session returns the session for id, creating it on first use
func (r *Registry) Session(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		entry = &registryEntry{session: NewSession(r.transport, r.persona, r.logger)}
		r.sessions[id] = entry
	}
	entry.lastUsed = r.now()
	return entry.session
}

// Remove forgets the session for id
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict drops idle sessions and returns how many were removed
func (r *Registry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	evicted := 0
	for id, entry := range r.sessions {
		if entry.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run evicts idle sessions every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				r.logger.WithField("count", n).Debug("Evicted idle assistant sessions")
			}
		}
	}
}
