package services

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/ajramos/maildash/internal/mailbox"
)

// SearchServiceImpl implements SearchService
type SearchServiceImpl struct {
	api     SearchAPI
	mu      sync.RWMutex
	state   SearchState
	results []mailbox.Message
	// generation increases on every search and on deactivation; a response
	// is applied only if the generation it was issued under is still current.
	generation uint64
	logger     *log.Logger
}

// NewSearchService creates a new search service
func NewSearchService(api SearchAPI) *SearchServiceImpl {
	return &SearchServiceImpl{api: api}
}

// SetLogger sets the logger for debug output
func (s *SearchServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// ScopeFor returns the folder searched while active is displayed.
func ScopeFor(active mailbox.Folder) mailbox.Folder {
	if active == mailbox.Sent {
		return mailbox.Sent
	}
	return mailbox.Inbox
}

// Search runs query and, unless a newer search or a deactivation happened
// meanwhile, installs it with its results. A failed search leaves the
// previous overlay as it was. An empty query deactivates the overlay.
// The boolean reports whether the results were applied.
func (s *SearchServiceImpl) Search(ctx context.Context, query string, active mailbox.Folder) (bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		s.Deactivate()
		return true, nil
	}
	return s.run(ctx, query, ScopeFor(active))
}

// Rerun re-issues the active query so results reflect the latest folder state.
func (s *SearchServiceImpl) Rerun(ctx context.Context) (bool, error) {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()
	if !state.Active {
		return false, nil
	}
	return s.run(ctx, state.Query, state.Scope)
}

func (s *SearchServiceImpl) run(ctx context.Context, query string, scope mailbox.Folder) (bool, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	results, err := s.api.Search(ctx, query, scope)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		if s.logger != nil {
			s.logger.Printf("SearchService: dropped stale results for %q", query)
		}
		return false, nil
	}
	if err != nil {
		err = Classify("search", err)
		if s.logger != nil {
			s.logger.Printf("SearchService: %v", err)
		}
		return false, err
	}
	s.state = SearchState{Active: true, Query: query, Scope: scope}
	s.results = results
	if s.logger != nil {
		s.logger.Printf("SearchService: %q in %s returned %d results", query, scope, len(results))
	}
	return true, nil
}

// Deactivate reverts to normal folder display and ignores in-flight searches.
func (s *SearchServiceImpl) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = SearchState{}
	s.results = nil
}

// State returns the overlay state.
func (s *SearchServiceImpl) State() SearchState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Results returns the installed results.
func (s *SearchServiceImpl) Results() []mailbox.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMessages(s.results)
}
