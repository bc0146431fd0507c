package services

import (
	"context"
	"log"
	"sync"

	"github.com/ajramos/maildash/internal/mailbox"
)

// SelectionServiceImpl implements SelectionService
type SelectionServiceImpl struct {
	actions ActionService
	mu      sync.RWMutex
	open    mailbox.Identity
	checked map[mailbox.Identity]struct{}
	order   []mailbox.Identity
	logger  *log.Logger
}

// NewSelectionService creates a new selection service
func NewSelectionService(actions ActionService) *SelectionServiceImpl {
	return &SelectionServiceImpl{
		actions: actions,
		checked: make(map[mailbox.Identity]struct{}),
	}
}

// SetLogger sets the logger for debug output
func (s *SelectionServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Open records m as the open message. An unread message outside drafts and
// trash is marked read first; the open state is recorded once that call has
// returned, even if it failed, and the failure is returned.
func (s *SelectionServiceImpl) Open(ctx context.Context, m mailbox.Message, displayed []mailbox.Message) (mailbox.Identity, error) {
	id := m.Identity()
	if !mailbox.Contains(displayed, id) {
		return mailbox.Identity{}, OutOfScope("open")
	}

	var readErr error
	if m.IsUnread() && m.Folder != mailbox.Drafts && m.Folder != mailbox.Trash {
		if _, err := s.actions.MarkRead(ctx, m); err != nil {
			readErr = err
			if s.logger != nil {
				s.logger.Printf("SelectionService: read-on-open for %s failed: %v", id, err)
			}
		}
	}

	s.mu.Lock()
	s.open = id
	s.mu.Unlock()

	return id, readErr
}

// Close clears the open message.
func (s *SelectionServiceImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = mailbox.Identity{}
}

// OpenIdentity returns the identity of the open message.
func (s *SelectionServiceImpl) OpenIdentity() (mailbox.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open, !s.open.IsZero()
}

// Check adds m to the checked set. m must be in displayed.
func (s *SelectionServiceImpl) Check(m mailbox.Message, displayed []mailbox.Message) error {
	id := m.Identity()
	if !mailbox.Contains(displayed, id) {
		return OutOfScope("check")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(id)
	return nil
}

func (s *SelectionServiceImpl) add(id mailbox.Identity) {
	if _, ok := s.checked[id]; ok {
		return
	}
	s.checked[id] = struct{}{}
	s.order = append(s.order, id)
}

// Uncheck removes m from the checked set.
func (s *SelectionServiceImpl) Uncheck(m mailbox.Message) {
	id := m.Identity()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checked[id]; !ok {
		return
	}
	delete(s.checked, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// ToggleAll checks every displayed message, or clears the set when all of
// them are already checked.
func (s *SelectionServiceImpl) ToggleAll(displayed []mailbox.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := len(displayed) > 0
	for _, m := range displayed {
		if _, ok := s.checked[m.Identity()]; !ok {
			all = false
			break
		}
	}
	if all {
		s.clearLocked()
		return
	}
	for _, m := range displayed {
		s.add(m.Identity())
	}
}

// Clear empties the checked set.
func (s *SelectionServiceImpl) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *SelectionServiceImpl) clearLocked() {
	s.checked = make(map[mailbox.Identity]struct{})
	s.order = nil
}

// IsChecked reports whether id is in the checked set.
func (s *SelectionServiceImpl) IsChecked(id mailbox.Identity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.checked[id]
	return ok
}

// Checked returns the checked identities in the order they were checked.
func (s *SelectionServiceImpl) Checked() []mailbox.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]mailbox.Identity, len(s.order))
	copy(out, s.order)
	return out
}

// Selected resolves the checked set against displayed, in display order.
func (s *SelectionServiceImpl) Selected(displayed []mailbox.Message) []mailbox.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []mailbox.Message
	for _, m := range displayed {
		if _, ok := s.checked[m.Identity()]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Reconcile drops checked identities and the open message when they are no
// longer part of displayed.
func (s *SelectionServiceImpl) Reconcile(displayed []mailbox.Message) {
	present := make(map[mailbox.Identity]struct{}, len(displayed))
	for _, m := range displayed {
		present[m.Identity()] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open.IsZero() {
		if _, ok := present[s.open]; !ok {
			s.open = mailbox.Identity{}
		}
	}

	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := present[id]; ok {
			kept = append(kept, id)
		} else {
			delete(s.checked, id)
		}
	}
	s.order = kept
}
