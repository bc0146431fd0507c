package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// CompositionServiceImpl implements CompositionService
type CompositionServiceImpl struct {
	actions  ActionService
	uploader Uploader
	now      func() time.Time
	mu       sync.Mutex
	session  *Composition
	logger   *log.Logger
}

// NewCompositionService creates a new composition service
func NewCompositionService(actions ActionService, uploader Uploader) *CompositionServiceImpl {
	return &CompositionServiceImpl{
		actions:  actions,
		uploader: uploader,
		now:      time.Now,
	}
}

// SetLogger sets the logger for debug output
func (s *CompositionServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// SetClock replaces the time source used to resolve schedules.
func (s *CompositionServiceImpl) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *CompositionServiceImpl) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf("CompositionService: "+format, args...)
	}
}

// ComposeNew opens a blank session. An existing session must be resolved first.
func (s *CompositionServiceImpl) ComposeNew() (*Composition, error) {
	return s.open(nil)
}

// EditDraft opens a session populated from draft.
func (s *CompositionServiceImpl) EditDraft(draft mailbox.Message) (*Composition, error) {
	if draft.Folder != mailbox.Drafts {
		return nil, Validation("edit_draft", ErrWrongFolder)
	}
	return s.open(&draft)
}

func (s *CompositionServiceImpl) open(draft *mailbox.Message) (*Composition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return nil, Validation("compose", ErrSessionOpen)
	}

	now := s.now()
	c := &Composition{
		ID:         uuid.New().String(),
		State:      ComposeDrafting,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if draft != nil {
		d := *draft
		c.To = d.To
		c.Subject = d.Subject
		c.Body = d.Body
		c.Attachment = d.Attachment
		c.EditingDraft = &d
		s.logf("editing draft %s in session %s", d.Identity(), c.ID)
	} else {
		s.logf("new session %s", c.ID)
	}
	s.session = c
	return c.clone(), nil
}

// drafting returns the session if it can accept edits. Caller holds s.mu.
func (s *CompositionServiceImpl) drafting(op string) (*Composition, error) {
	if s.session == nil {
		return nil, Validation(op, ErrNoSession)
	}
	if s.session.State != ComposeDrafting {
		return nil, Validation(op, ErrSessionBusy)
	}
	return s.session, nil
}

// SetFields replaces recipient, subject and body.
func (s *CompositionServiceImpl) SetFields(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.drafting("edit")
	if err != nil {
		return err
	}
	c.To, c.Subject, c.Body = to, subject, body
	c.ModifiedAt = s.now()
	return nil
}

// ApplyTemplate overwrites subject and body with tpl.
func (s *CompositionServiceImpl) ApplyTemplate(tpl mailbox.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.drafting("apply_template")
	if err != nil {
		return err
	}
	c.Subject, c.Body = tpl.Subject, tpl.Body
	c.ModifiedAt = s.now()
	s.logf("applied template %q to session %s", tpl.Name, c.ID)
	return nil
}

// ChooseFile records a local file to upload. Nothing is sent yet.
func (s *CompositionServiceImpl) ChooseFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return Validation("choose_file", ErrNoPendingFile)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Validation("choose_file", fmt.Errorf("cannot attach %s: %w", path, err))
	}
	if !info.Mode().IsRegular() {
		return Validation("choose_file", fmt.Errorf("cannot attach %s: not a regular file", path))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.drafting("choose_file")
	if err != nil {
		return err
	}
	c.PendingFile = path
	return nil
}

// UploadPending uploads the chosen file and makes its reference the session attachment.
func (s *CompositionServiceImpl) UploadPending(ctx context.Context) (string, error) {
	s.mu.Lock()
	c, err := s.drafting("upload")
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	if c.PendingFile == "" {
		s.mu.Unlock()
		return "", Validation("upload", ErrNoPendingFile)
	}
	id, path := c.ID, c.PendingFile
	s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return "", Validation("upload", fmt.Errorf("cannot read %s: %w", path, err))
	}
	defer f.Close()

	url, err := s.uploader.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		err = Classify("upload", err)
		s.logf("%v", err)
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.session.ID != id {
		s.logf("upload of %s finished after session %s closed", path, id)
		return url, nil
	}
	s.session.Attachment = url
	if s.session.PendingFile == path {
		s.session.PendingFile = ""
	}
	s.session.ModifiedAt = s.now()
	return url, nil
}

// ClearAttachment drops the uploaded attachment and any pending file.
func (s *CompositionServiceImpl) ClearAttachment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.drafting("clear_attachment")
	if err != nil {
		return err
	}
	c.Attachment, c.PendingFile = "", ""
	return nil
}

// NormalizeRecipients parses a recipient list and returns the bare addresses
// joined by ", ".
func NormalizeRecipients(to string) (string, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return "", ErrEmptyRecipient
	}
	addrs, err := mail.ParseAddressList(to)
	if err != nil || len(addrs) == 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidRecipient, to)
	}
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.Address
	}
	return strings.Join(out, ", "), nil
}

// ResolveSchedule combines a local date (2006-01-02) and time (15:04) and
// requires the result to be strictly after now.
func ResolveSchedule(date, clock string, now time.Time) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, ErrInvalidSchedule
	}
	at, err := time.ParseInLocation("2006-01-02T15:04", date+"T"+clock, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	if !at.After(now) {
		return time.Time{}, ErrInvalidSchedule
	}
	return at, nil
}

// begin moves a drafting session into a transitional state and returns a copy.
func (s *CompositionServiceImpl) begin(op string, state ComposeState) (*Composition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.drafting(op)
	if err != nil {
		return nil, err
	}
	c.State = state
	return c.clone(), nil
}

// finish ends a transition: success returns the machine to Idle, failure
// puts the session back into Drafting untouched.
func (s *CompositionServiceImpl) finish(id string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.session.ID != id {
		return
	}
	if success {
		s.session = nil
		return
	}
	s.session.State = ComposeDrafting
}

// Send dispatches the session now. An edited draft is deleted afterwards.
func (s *CompositionServiceImpl) Send(ctx context.Context) (ActionResult, error) {
	c, err := s.current("send")
	if err != nil {
		return ActionResult{}, err
	}
	to, err := NormalizeRecipients(c.To)
	if err != nil {
		return ActionResult{}, Validation("send", err)
	}

	c, err = s.begin("send", ComposeSending)
	if err != nil {
		return ActionResult{}, err
	}
	out := c.Outgoing()
	out.To = to

	res, err := s.actions.Send(ctx, out, c.EditingDraft)
	s.finish(c.ID, err == nil)
	if err != nil {
		return ActionResult{}, err
	}
	s.logf("session %s sent", c.ID)
	return res, nil
}

// SaveDraft stores the session as a draft and closes it.
func (s *CompositionServiceImpl) SaveDraft(ctx context.Context) (ActionResult, error) {
	c, err := s.current("save_draft")
	if err != nil {
		return ActionResult{}, err
	}
	if strings.TrimSpace(c.To) == "" {
		return ActionResult{}, Validation("save_draft", ErrEmptyRecipient)
	}

	c, err = s.begin("save_draft", ComposeSavingDraft)
	if err != nil {
		return ActionResult{}, err
	}
	res, err := s.actions.SaveDraft(ctx, c.Outgoing(), c.EditingDraft)
	s.finish(c.ID, err == nil)
	if err != nil {
		return ActionResult{}, err
	}
	s.logf("session %s saved as draft", c.ID)
	return res, nil
}

// Schedule queues the session for the local date and time given.
func (s *CompositionServiceImpl) Schedule(ctx context.Context, date, clock string) (ActionResult, error) {
	c, err := s.current("schedule")
	if err != nil {
		return ActionResult{}, err
	}
	to, err := NormalizeRecipients(c.To)
	if err != nil {
		return ActionResult{}, Validation("schedule", err)
	}
	at, err := ResolveSchedule(date, clock, s.now())
	if err != nil {
		return ActionResult{}, Validation("schedule", err)
	}

	c, err = s.begin("schedule", ComposeScheduling)
	if err != nil {
		return ActionResult{}, err
	}
	out := c.Outgoing()
	out.To = to

	res, err := s.actions.Schedule(ctx, out, at, c.EditingDraft)
	s.finish(c.ID, err == nil)
	if err != nil {
		return ActionResult{}, err
	}
	s.logf("session %s scheduled for %s", c.ID, at.Format(time.RFC3339))
	return res, nil
}

// Discard closes the session without contacting the service.
func (s *CompositionServiceImpl) Discard() error {
	c, err := s.begin("discard", ComposeDiscarding)
	if err != nil {
		return err
	}
	s.finish(c.ID, true)
	s.logf("session %s discarded", c.ID)
	return nil
}

func (s *CompositionServiceImpl) current(op string) (*Composition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.drafting(op)
	if err != nil {
		return nil, err
	}
	return c.clone(), nil
}

// Current returns a copy of the open session.
func (s *CompositionServiceImpl) Current() (*Composition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, false
	}
	return s.session.clone(), true
}

// State returns the state machine position.
func (s *CompositionServiceImpl) State() ComposeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ComposeIdle
	}
	return s.session.State
}

func (c *Composition) clone() *Composition {
	cp := *c
	if c.EditingDraft != nil {
		d := *c.EditingDraft
		cp.EditingDraft = &d
	}
	return &cp
}
