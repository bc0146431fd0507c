package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ajramos/maildash/internal/db"
	"github.com/ajramos/maildash/internal/mailbox"
)

// QueryServiceImpl implements QueryService
type QueryServiceImpl struct {
	store   *db.QueryStore
	account string
	logger  *log.Logger
}

// NewQueryService creates a new query service
func NewQueryService(store *db.QueryStore, account string) *QueryServiceImpl {
	return &QueryServiceImpl{store: store, account: account}
}

// SetLogger sets the logger for debug output
func (s *QueryServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

func (s *QueryServiceImpl) ready() error {
	if s.store == nil {
		return fmt.Errorf("saved searches not available")
	}
	if strings.TrimSpace(s.account) == "" {
		return fmt.Errorf("account not set")
	}
	return nil
}

// SaveQuery saves a new search or updates an existing one
func (s *QueryServiceImpl) SaveQuery(ctx context.Context, name, query string, folder mailbox.Folder) (*SavedQueryInfo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	name, query = strings.TrimSpace(name), strings.TrimSpace(query)
	if name == "" {
		return nil, fmt.Errorf("search name cannot be empty")
	}
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	folder = ScopeFor(folder)

	saved, err := s.store.SaveQuery(ctx, s.account, name, query, string(folder))
	if err != nil {
		return nil, fmt.Errorf("failed to save search: %w", err)
	}
	if s.logger != nil {
		s.logger.Printf("QueryService: saved %q (%s)", name, folder)
	}
	return toSavedQueryInfo(saved), nil
}

// GetQuery retrieves a saved search by name
func (s *QueryServiceImpl) GetQuery(ctx context.Context, name string) (*SavedQueryInfo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("search name cannot be empty")
	}
	saved, err := s.store.GetQueryByName(ctx, s.account, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("failed to get search: %w", err)
	}
	return toSavedQueryInfo(saved), nil
}

// ListQueries lists saved searches, optionally only those scoped to folder
func (s *QueryServiceImpl) ListQueries(ctx context.Context, folder mailbox.Folder) ([]*SavedQueryInfo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	saved, err := s.store.ListQueries(ctx, s.account, string(folder))
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	out := make([]*SavedQueryInfo, len(saved))
	for i, q := range saved {
		out[i] = toSavedQueryInfo(q)
	}
	return out, nil
}

// DeleteQuery removes a saved search by name
func (s *QueryServiceImpl) DeleteQuery(ctx context.Context, name string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.store.DeleteQueryByName(ctx, s.account, strings.TrimSpace(name)); err != nil {
		return fmt.Errorf("failed to delete search: %w", err)
	}
	return nil
}

// MarkUsed records that a saved search was run
func (s *QueryServiceImpl) MarkUsed(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.store.UpdateQueryUsage(ctx, s.account, id)
}

func toSavedQueryInfo(q *db.SavedQuery) *SavedQueryInfo {
	folder, ok := mailbox.ParseFolder(q.Folder)
	if !ok {
		folder = mailbox.Inbox
	}
	return &SavedQueryInfo{
		ID:        q.ID,
		Name:      q.Name,
		Query:     q.Query,
		Folder:    folder,
		UseCount:  q.UseCount,
		CreatedAt: time.Unix(q.CreatedAt, 0),
		LastUsed:  time.Unix(q.LastUsed, 0),
	}
}
