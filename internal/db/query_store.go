package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrQueryNotFound is returned when no saved search matches.
var ErrQueryNotFound = errors.New("saved search not found")

// SavedQuery is a named search remembered for an account
type SavedQuery struct {
	ID        int64  `json:"id"`
	Account   string `json:"account"`
	Name      string `json:"name"`
	Query     string `json:"query"`
	Folder    string `json:"folder"`
	CreatedAt int64  `json:"created_at"`
	LastUsed  int64  `json:"last_used"`
	UseCount  int    `json:"use_count"`
}

// QueryStore handles database operations for saved searches
type QueryStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewQueryStore creates a new query store
func NewQueryStore(store *Store) *QueryStore {
	return &QueryStore{db: store.DB(), now: time.Now}
}

const savedQueryColumns = `id, account, name, query, folder, created_at, last_used, use_count`

func scanSavedQuery(row interface{ Scan(...any) error }) (*SavedQuery, error) {
	q := &SavedQuery{}
	err := row.Scan(&q.ID, &q.Account, &q.Name, &q.Query, &q.Folder, &q.CreatedAt, &q.LastUsed, &q.UseCount)
	return q, err
}

// SaveQuery inserts a saved search or updates the one with the same name
func (s *QueryStore) SaveQuery(ctx context.Context, account, name, query, folder string) (*SavedQuery, error) {
	if strings.TrimSpace(account) == "" || strings.TrimSpace(name) == "" || strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("account, name, and query cannot be empty")
	}

	now := s.now().Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_searches (account, name, query, folder, created_at, last_used, use_count)
		VALUES (?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(account, name) DO UPDATE SET
			query = excluded.query,
			folder = excluded.folder,
			last_used = excluded.last_used`,
		account, name, query, folder, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save search: %w", err)
	}
	return s.GetQueryByName(ctx, account, name)
}

// GetQueryByName retrieves a saved search by name
func (s *QueryStore) GetQueryByName(ctx context.Context, account, name string) (*SavedQuery, error) {
	if strings.TrimSpace(account) == "" || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("account and name cannot be empty")
	}

	q, err := scanSavedQuery(s.db.QueryRowContext(ctx,
		`SELECT `+savedQueryColumns+` FROM saved_searches WHERE account = ? AND name = ?`,
		account, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQueryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get search: %w", err)
	}
	return q, nil
}

// ListQueries returns an account's saved searches, most recently used first.
// An empty folder lists every folder.
func (s *QueryStore) ListQueries(ctx context.Context, account, folder string) ([]*SavedQuery, error) {
	if strings.TrimSpace(account) == "" {
		return nil, fmt.Errorf("account cannot be empty")
	}

	query := `SELECT ` + savedQueryColumns + ` FROM saved_searches WHERE account = ?`
	args := []any{account}
	if folder != "" {
		query += ` AND folder = ?`
		args = append(args, folder)
	}
	query += ` ORDER BY last_used DESC, use_count DESC, name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	var out []*SavedQuery
	for rows.Next() {
		q, err := scanSavedQuery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// UpdateQueryUsage increments use count and updates last used timestamp
func (s *QueryStore) UpdateQueryUsage(ctx context.Context, account string, id int64) error {
	if strings.TrimSpace(account) == "" || id <= 0 {
		return fmt.Errorf("account cannot be empty and id must be positive")
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE saved_searches SET use_count = use_count + 1, last_used = ?
		WHERE account = ? AND id = ?`,
		s.now().Unix(), account, id)
	if err != nil {
		return fmt.Errorf("failed to update search usage: %w", err)
	}
	return expectOneRow(res)
}

// DeleteQueryByName removes a saved search
func (s *QueryStore) DeleteQueryByName(ctx context.Context, account, name string) error {
	if strings.TrimSpace(account) == "" || strings.TrimSpace(name) == "" {
		return fmt.Errorf("account and name cannot be empty")
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM saved_searches WHERE account = ? AND name = ?`, account, name)
	if err != nil {
		return fmt.Errorf("failed to delete search: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrQueryNotFound
	}
	return nil
}
