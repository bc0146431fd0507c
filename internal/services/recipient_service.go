package services

import (
	"context"
	"log"
	"strings"
	"sync"
)

// MaxSuggestions caps the autocomplete list.
const MaxSuggestions = 8

// RecipientServiceImpl implements RecipientService
type RecipientServiceImpl struct {
	api        RecipientAPI
	mu         sync.Mutex
	recipients []string
	loaded     bool
	logger     *log.Logger
}

// NewRecipientService creates a new recipient service
func NewRecipientService(api RecipientAPI) *RecipientServiceImpl {
	return &RecipientServiceImpl{api: api}
}

// SetLogger sets the logger for debug output
func (s *RecipientServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Suggest returns known recipients containing query, case-insensitively,
// skipping the ones already in exclude. The source list is fetched on first
// use and kept until Reset.
func (s *RecipientServiceImpl) Suggest(ctx context.Context, query string, exclude []string) ([]string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[strings.ToLower(strings.TrimSpace(e))] = true
	}

	var out []string
	for _, r := range all {
		lower := strings.ToLower(r)
		if skip[lower] || !strings.Contains(lower, query) {
			continue
		}
		out = append(out, r)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out, nil
}

func (s *RecipientServiceImpl) load(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	if s.loaded {
		all := s.recipients
		s.mu.Unlock()
		return all, nil
	}
	s.mu.Unlock()

	all, err := s.api.Recipients(ctx)
	if err != nil {
		err = Classify("recipients", err)
		if s.logger != nil {
			s.logger.Printf("RecipientService: %v", err)
		}
		return nil, err
	}

	s.mu.Lock()
	s.recipients = all
	s.loaded = true
	s.mu.Unlock()
	return all, nil
}

// Reset drops the cached list.
func (s *RecipientServiceImpl) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients = nil
	s.loaded = false
}
