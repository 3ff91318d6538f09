package services

import (
	"context"
	"sync"
)

// Searcher runs a single search
type Searcher interface {
	Search(ctx context.Context, params SearchParams) (*SearchOutcome, error)
}

// SearchSession serializes the searches of one user. Starting a search
// cancels the one in flight and clears the previous outcome; a search that
// completes after a newer one started is returned marked Stale and never
// replaces the session's latest outcome.
type SearchSession struct {
	searcher Searcher

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	latest     *SearchOutcome
}

// NewSearchSession creates a new search session
func NewSearchSession(searcher Searcher) *SearchSession {
	return &SearchSession{searcher: searcher}
}

// Search starts a new search, superseding any search in flight
func (s *SearchSession) Search(ctx context.Context, params SearchParams) (*SearchOutcome, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.latest = nil
	s.mu.Unlock()

	defer cancel()

	outcome, err := s.searcher.Search(ctx, params)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		if outcome != nil {
			outcome.Stale = true
		}
		return outcome, err
	}

	s.cancel = nil
	if err == nil {
		s.latest = outcome
	}
	return outcome, err
}

// Latest returns the outcome of the most recent completed search, or nil
// while a search is in flight.
func (s *SearchSession) Latest() *SearchOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Generation returns the number of searches started in this session
func (s *SearchSession) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// SessionRegistry routes each user's searches through one SearchSession.
// A session lives only while that user has a search in flight.
type SessionRegistry struct {
	searcher Searcher

	mu       sync.Mutex
	sessions map[string]*registeredSession
}

type registeredSession struct {
	session  *SearchSession
	inFlight int
}

// NewSessionRegistry creates a new session registry
func NewSessionRegistry(searcher Searcher) *SessionRegistry {
	return &SessionRegistry{
		searcher: searcher,
		sessions: make(map[string]*registeredSession),
	}
}

// Search runs params in userID's session, superseding that user's search
// in flight. The session is dropped once its last search returns.
func (r *SessionRegistry) Search(ctx context.Context, userID string, params SearchParams) (*SearchOutcome, error) {
	r.mu.Lock()
	entry, ok := r.sessions[userID]
	if !ok {
		entry = &registeredSession{session: NewSearchSession(r.searcher)}
		r.sessions[userID] = entry
	}
	entry.inFlight++
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		entry.inFlight--
		if entry.inFlight == 0 {
			delete(r.sessions, userID)
		}
		r.mu.Unlock()
	}()

	return entry.session.Search(ctx, params)
}

// Active returns the number of users with a search in flight
func (r *SessionRegistry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
