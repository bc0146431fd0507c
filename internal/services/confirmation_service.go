package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ConfirmFunc runs the gated action. The Confirmation proves the user agreed.
type ConfirmFunc func(ctx context.Context, c Confirmation) error

// Confirmation is handed to a ConfirmFunc by ConfirmationService.Confirm.
// The zero value is not valid, so gated actions cannot be invoked directly.
type Confirmation struct {
	requestID string
}

// Valid reports whether c was issued by a confirm step.
func (c Confirmation) Valid() bool {
	return c.requestID != ""
}

// ConfirmationRequest is the outstanding question shown to the user.
type ConfirmationRequest struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`

	onConfirm ConfirmFunc
}

// ConfirmationServiceImpl implements ConfirmationService
type ConfirmationServiceImpl struct {
	mu      sync.Mutex
	pending *ConfirmationRequest
	logger  *log.Logger
}

// NewConfirmationService creates a new confirmation service
func NewConfirmationService() *ConfirmationServiceImpl {
	return &ConfirmationServiceImpl{}
}

// SetLogger sets the logger for debug output
func (s *ConfirmationServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Request replaces any outstanding request with a new one.
func (s *ConfirmationServiceImpl) Request(message string, onConfirm ConfirmFunc) ConfirmationRequest {
	req := &ConfirmationRequest{
		ID:        uuid.New().String(),
		Message:   message,
		CreatedAt: time.Now(),
		onConfirm: onConfirm,
	}

	s.mu.Lock()
	if s.pending != nil && s.logger != nil {
		s.logger.Printf("ConfirmationService: request %s replaced by %s", s.pending.ID, req.ID)
	}
	s.pending = req
	s.mu.Unlock()

	return *req
}

// Pending returns the outstanding request, if any.
func (s *ConfirmationServiceImpl) Pending() (ConfirmationRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return ConfirmationRequest{}, false
	}
	return *s.pending, true
}

// Confirm invokes the outstanding action and then clears the request. A
// request that replaced this one while the action ran is left in place.
func (s *ConfirmationServiceImpl) Confirm(ctx context.Context) error {
	s.mu.Lock()
	req := s.pending
	s.mu.Unlock()

	if req == nil {
		return Validation("confirm", ErrNoConfirmation)
	}

	var err error
	if req.onConfirm != nil {
		err = req.onConfirm(ctx, Confirmation{requestID: req.ID})
	}

	s.mu.Lock()
	if s.pending != nil && s.pending.ID == req.ID {
		s.pending = nil
	}
	s.mu.Unlock()

	return err
}

// Cancel clears the outstanding request without running it.
func (s *ConfirmationServiceImpl) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}
