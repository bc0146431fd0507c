package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/google/uuid"
)

// UndoServiceImpl implements UndoService
type UndoServiceImpl struct {
	actions    ActionService
	lastAction *UndoableAction
	mu         sync.RWMutex
	logger     *log.Logger
}

// NewUndoService creates a new undo service
func NewUndoService(actions ActionService) *UndoServiceImpl {
	return &UndoServiceImpl{actions: actions}
}

// SetLogger sets the logger for debug output
func (s *UndoServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// RecordAction records an action for potential undo
func (s *UndoServiceImpl) RecordAction(action *UndoableAction) error {
	if action == nil {
		return fmt.Errorf("action cannot be nil")
	}
	switch action.Type {
	case UndoActionTrash, UndoActionMarkRead, UndoActionMarkUnread:
	default:
		return fmt.Errorf("unsupported undo action: %s", action.Type)
	}
	if action.ID == "" {
		action.ID = uuid.New().String()
	}
	if action.Timestamp.IsZero() {
		action.Timestamp = time.Now()
	}
	if action.Description == "" {
		action.Description = describeUndo(action)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Single level: the newest action replaces the previous one.
	s.lastAction = action
	return nil
}

func describeUndo(action *UndoableAction) string {
	subject := action.Message.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	switch action.Type {
	case UndoActionTrash:
		return fmt.Sprintf("Restore %q to %s", subject, action.Message.Folder)
	case UndoActionMarkRead:
		return fmt.Sprintf("Mark %q as unread", subject)
	case UndoActionMarkUnread:
		return fmt.Sprintf("Mark %q as read", subject)
	}
	return ""
}

// UndoLastAction reverses the last recorded action through the normal
// action path. The record is kept when the reversal fails.
func (s *UndoServiceImpl) UndoLastAction(ctx context.Context) (*UndoResult, error) {
	s.mu.RLock()
	action := s.lastAction
	s.mu.RUnlock()

	if action == nil {
		return nil, Validation("undo", ErrNothingToUndo)
	}

	var (
		res ActionResult
		err error
	)
	switch action.Type {
	case UndoActionTrash:
		trashed := action.Message
		trashed.OriginFolder = trashed.Folder
		trashed.Folder = mailbox.Trash
		res, err = s.actions.Restore(ctx, trashed)
	case UndoActionMarkRead:
		res, err = s.actions.MarkUnread(ctx, action.Message)
	case UndoActionMarkUnread:
		res, err = s.actions.MarkRead(ctx, action.Message)
	}
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("UndoService: undo %s failed: %v", action.Type, err)
		}
		return nil, err
	}

	s.mu.Lock()
	if s.lastAction != nil && s.lastAction.ID == action.ID {
		s.lastAction = nil
	}
	s.mu.Unlock()

	return &UndoResult{
		ActionType:  action.Type,
		Description: action.Description,
		Result:      res,
	}, nil
}

// HasUndoableAction checks if there's an action that can be undone
func (s *UndoServiceImpl) HasUndoableAction() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAction != nil
}

// GetUndoDescription returns a description of what will be undone
func (s *UndoServiceImpl) GetUndoDescription() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastAction == nil {
		return "No action to undo"
	}
	return s.lastAction.Description
}

// ClearUndoHistory clears the undo history
func (s *UndoServiceImpl) ClearUndoHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAction = nil
}
