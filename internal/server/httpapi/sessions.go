package httpapi

import (
	"sync"

	"github.com/bkkdisplay/confeditor/internal/server/services"
	"github.com/google/uuid"
)

// clientSession pairs an editor session with a lock serializing the requests
// of one browser. Different sessions never contend with each other.
type clientSession struct {
	mu     sync.Mutex
	editor *services.EditorSession
}

// sessionRegistry maps cookie session IDs to live editor sessions. Sessions
// are created lazily on first request and dropped on logout; an unknown ID
// (server restart, forged cookie) simply gets a fresh session.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*clientSession
	newID    func() string
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*clientSession),
		newID:    uuid.NewString,
	}
}

func (r *sessionRegistry) get(id string) (*clientSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *sessionRegistry) create(editor *services.EditorSession) (string, *clientSession) {
	id := r.newID()
	s := &clientSession{editor: editor}
	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return id, s
}

func (r *sessionRegistry) drop(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
