package api

import (
	"net/http"
	"sync"
	"time"

	"beta-dashboard/dashboard"
	"beta-dashboard/search"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionCookie = "beta_session"

type session struct {
	state    *dashboard.State
	engine   search.SearchEngine
	lastSeen time.Time
}

// snapshot is what a single request works with.
type snapshot struct {
	id     string
	state  *dashboard.State
	engine search.SearchEngine
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session

	ttl        time.Duration
	now        func() time.Time
	newState   func() *dashboard.State
	engineKind string
	logger     *zap.Logger
}

func newSessionStore(ttl time.Duration, engineKind string, newState func() *dashboard.State, logger *zap.Logger) *sessionStore {
	return &sessionStore{
		sessions:   make(map[string]*session),
		ttl:        ttl,
		now:        time.Now,
		newState:   newState,
		engineKind: engineKind,
		logger:     logger,
	}
}

// load returns the caller's session, creating one (and setting the cookie) when the
// request carries no live session id.
func (s *sessionStore) load(w http.ResponseWriter, r *http.Request) (snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.sessions[c.Value]; ok && now.Sub(sess.lastSeen) <= s.ttl {
			sess.lastSeen = now
			return snapshot{id: c.Value, state: sess.state, engine: sess.engine}, nil
		}
	}

	s.sweep(now)

	state := s.newState()
	engine, err := search.NewEngine(s.engineKind, state.Banks())
	if err != nil {
		return snapshot{}, err
	}
	id := uuid.NewString()
	s.sessions[id] = &session{state: state, engine: engine, lastSeen: now}
	s.logger.Debug("session created", zap.String("session", id), zap.Int("banks", len(state.Banks())))

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
	return snapshot{id: id, state: state, engine: engine}, nil
}

// update replaces the session state with fn(state). When reindex is set the bank
// search engine is rebuilt from the new rows and the old one closed.
func (s *sessionStore) update(id string, reindex bool, fn func(*dashboard.State) *dashboard.State) (*dashboard.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, errSessionExpired
	}
	next := fn(sess.state)
	if reindex {
		engine, err := search.NewEngine(s.engineKind, next.Banks())
		if err != nil {
			return nil, err
		}
		if err := sess.engine.Close(); err != nil {
			s.logger.Warn("failed to close search engine", zap.String("session", id), zap.Error(err))
		}
		sess.engine = engine
	}
	sess.state = next
	sess.lastSeen = s.now()
	return next, nil
}

// sweep drops sessions idle for longer than the TTL. Callers hold mu.
func (s *sessionStore) sweep(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			if err := sess.engine.Close(); err != nil {
				s.logger.Warn("failed to close search engine", zap.String("session", id), zap.Error(err))
			}
			delete(s.sessions, id)
		}
	}
}

func (s *sessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// closeAll releases every session's engine.
func (s *sessionStore) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		_ = sess.engine.Close()
		delete(s.sessions, id)
	}
}
