package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ajramos/maildash/internal/mailbox"
)

// ActionServiceImpl implements ActionService
type ActionServiceImpl struct {
	api     ActionAPI
	folders FolderService
	now     func() time.Time
	logger  *log.Logger
}

// NewActionService creates a new action service
func NewActionService(api ActionAPI, folders FolderService) *ActionServiceImpl {
	return &ActionServiceImpl{
		api:     api,
		folders: folders,
		now:     time.Now,
	}
}

// SetLogger sets the logger for debug output
func (s *ActionServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// SetClock replaces the time source used to validate schedules.
func (s *ActionServiceImpl) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// RefreshSet returns the folders re-fetched after intent succeeds. folder is
// the folder the acted-on messages were displayed from; draftConsumed is set
// when a send or schedule replaced a draft.
func RefreshSet(intent Intent, folder mailbox.Folder, draftConsumed bool, bulk mailbox.BulkAction) []mailbox.Folder {
	switch intent {
	case IntentMarkRead, IntentMarkUnread:
		return []mailbox.Folder{folder}
	case IntentMoveToTrash:
		return []mailbox.Folder{folder, mailbox.Trash}
	case IntentRestore:
		return []mailbox.Folder{mailbox.Trash, mailbox.Inbox, mailbox.Sent}
	case IntentPermanentDelete:
		return []mailbox.Folder{mailbox.Trash}
	case IntentDeleteDraft, IntentSaveDraft:
		return []mailbox.Folder{mailbox.Drafts}
	case IntentDeleteScheduled:
		return []mailbox.Folder{mailbox.Scheduled}
	case IntentSend:
		if draftConsumed {
			return []mailbox.Folder{mailbox.Sent, mailbox.Drafts}
		}
		return []mailbox.Folder{mailbox.Sent}
	case IntentSchedule:
		if draftConsumed {
			return []mailbox.Folder{mailbox.Scheduled, mailbox.Drafts}
		}
		return []mailbox.Folder{mailbox.Scheduled}
	case IntentSaveTemplate:
		return []mailbox.Folder{mailbox.Templates}
	case IntentBulkAction:
		if bulk == mailbox.BulkRestore && folder == mailbox.Trash {
			return []mailbox.Folder{mailbox.Trash, mailbox.Inbox, mailbox.Sent}
		}
		return []mailbox.Folder{folder}
	}
	return nil
}

func (s *ActionServiceImpl) settle(ctx context.Context, intent Intent, refresh []mailbox.Folder) ActionResult {
	s.folders.Refresh(ctx, refresh...)
	if s.logger != nil {
		s.logger.Printf("ActionService: %s settled, refreshed %v", intent, refresh)
	}
	return ActionResult{Intent: intent, Refreshed: refresh}
}

func (s *ActionServiceImpl) fail(op string, err error) error {
	err = Classify(op, err)
	if s.logger != nil {
		s.logger.Printf("ActionService: %v", err)
	}
	return err
}

func canToggleRead(f mailbox.Folder) bool {
	return f == mailbox.Inbox || f == mailbox.Sent || f == mailbox.Scheduled
}

// MarkRead flips m to read and refreshes its folder.
func (s *ActionServiceImpl) MarkRead(ctx context.Context, m mailbox.Message) (ActionResult, error) {
	if !canToggleRead(m.Folder) {
		return ActionResult{}, Validation("mark_read", ErrWrongFolder)
	}
	if err := s.api.MarkRead(ctx, m, m.Folder); err != nil {
		return ActionResult{}, s.fail("mark_read", err)
	}
	return s.settle(ctx, IntentMarkRead, RefreshSet(IntentMarkRead, m.Folder, false, "")), nil
}

// MarkUnread flips m to unread and refreshes its folder.
func (s *ActionServiceImpl) MarkUnread(ctx context.Context, m mailbox.Message) (ActionResult, error) {
	if !canToggleRead(m.Folder) {
		return ActionResult{}, Validation("mark_unread", ErrWrongFolder)
	}
	if err := s.api.MarkUnread(ctx, m, m.Folder); err != nil {
		return ActionResult{}, s.fail("mark_unread", err)
	}
	return s.settle(ctx, IntentMarkUnread, RefreshSet(IntentMarkUnread, m.Folder, false, "")), nil
}

// MoveToTrash relocates m to trash.
func (s *ActionServiceImpl) MoveToTrash(ctx context.Context, m mailbox.Message) (ActionResult, error) {
	switch m.Folder {
	case mailbox.Inbox, mailbox.Sent, mailbox.Scheduled:
	default:
		return ActionResult{}, Validation("move_to_trash", ErrWrongFolder)
	}
	if err := s.api.DeleteMail(ctx, m, m.Folder); err != nil {
		return ActionResult{}, s.fail("move_to_trash", err)
	}
	return s.settle(ctx, IntentMoveToTrash, RefreshSet(IntentMoveToTrash, m.Folder, false, "")), nil
}

// Restore moves a trashed message back to the folder it came from.
func (s *ActionServiceImpl) Restore(ctx context.Context, m mailbox.Message) (ActionResult, error) {
	if m.Folder != mailbox.Trash {
		return ActionResult{}, Validation("restore", ErrWrongFolder)
	}
	if err := s.api.Restore(ctx, m); err != nil {
		return ActionResult{}, s.fail("restore", err)
	}
	return s.settle(ctx, IntentRestore, RefreshSet(IntentRestore, m.Folder, false, "")), nil
}

// PermanentDelete removes a trashed message. c must come from ConfirmationService.
func (s *ActionServiceImpl) PermanentDelete(ctx context.Context, m mailbox.Message, c Confirmation) (ActionResult, error) {
	if !c.Valid() {
		return ActionResult{}, Validation("permanent_delete", ErrNotConfirmed)
	}
	if m.Folder != mailbox.Trash {
		return ActionResult{}, Validation("permanent_delete", ErrWrongFolder)
	}
	if err := s.api.PermanentDelete(ctx, m); err != nil {
		return ActionResult{}, s.fail("permanent_delete", err)
	}
	return s.settle(ctx, IntentPermanentDelete, RefreshSet(IntentPermanentDelete, m.Folder, false, "")), nil
}

// DeleteDraft removes a draft.
func (s *ActionServiceImpl) DeleteDraft(ctx context.Context, draft mailbox.Message) (ActionResult, error) {
	if draft.Folder != mailbox.Drafts {
		return ActionResult{}, Validation("delete_draft", ErrWrongFolder)
	}
	if err := s.api.DeleteDraft(ctx, draft); err != nil {
		return ActionResult{}, s.fail("delete_draft", err)
	}
	return s.settle(ctx, IntentDeleteDraft, RefreshSet(IntentDeleteDraft, draft.Folder, false, "")), nil
}

// DeleteScheduled cancels a pending scheduled send.
func (s *ActionServiceImpl) DeleteScheduled(ctx context.Context, m mailbox.Message) (ActionResult, error) {
	if m.Folder != mailbox.Scheduled {
		return ActionResult{}, Validation("delete_scheduled", ErrWrongFolder)
	}
	if err := s.api.DeleteMail(ctx, m, mailbox.Scheduled); err != nil {
		return ActionResult{}, s.fail("delete_scheduled", err)
	}
	return s.settle(ctx, IntentDeleteScheduled, RefreshSet(IntentDeleteScheduled, m.Folder, false, "")), nil
}

// SaveDraft stores out as a draft. When replaces is set the older draft is
// removed once the new one is stored; a failed removal is reported as a warning.
func (s *ActionServiceImpl) SaveDraft(ctx context.Context, out mailbox.Outgoing, replaces *mailbox.Message) (ActionResult, error) {
	if strings.TrimSpace(out.To) == "" {
		return ActionResult{}, Validation("save_draft", ErrEmptyRecipient)
	}
	if err := s.api.SaveDraft(ctx, out); err != nil {
		return ActionResult{}, s.fail("save_draft", err)
	}
	warning := s.consumeDraft(ctx, replaces)
	res := s.settle(ctx, IntentSaveDraft, RefreshSet(IntentSaveDraft, mailbox.Drafts, false, ""))
	res.Warning = warning
	return res, nil
}

// Send dispatches out now. If consumed is set, that draft is deleted after
// the send succeeds; a failed deletion does not undo the send.
func (s *ActionServiceImpl) Send(ctx context.Context, out mailbox.Outgoing, consumed *mailbox.Message) (ActionResult, error) {
	if strings.TrimSpace(out.To) == "" {
		return ActionResult{}, Validation("send", ErrEmptyRecipient)
	}
	if err := s.api.Send(ctx, out); err != nil {
		return ActionResult{}, s.fail("send", err)
	}
	warning := s.consumeDraft(ctx, consumed)
	res := s.settle(ctx, IntentSend, RefreshSet(IntentSend, mailbox.Sent, consumed != nil, ""))
	res.Warning = warning
	return res, nil
}

// Schedule queues out for delivery at at, which must be strictly in the future.
func (s *ActionServiceImpl) Schedule(ctx context.Context, out mailbox.Outgoing, at time.Time, consumed *mailbox.Message) (ActionResult, error) {
	if strings.TrimSpace(out.To) == "" {
		return ActionResult{}, Validation("schedule", ErrEmptyRecipient)
	}
	if at.IsZero() || !at.After(s.now()) {
		return ActionResult{}, Validation("schedule", ErrInvalidSchedule)
	}
	if err := s.api.Schedule(ctx, out, at); err != nil {
		return ActionResult{}, s.fail("schedule", err)
	}
	warning := s.consumeDraft(ctx, consumed)
	res := s.settle(ctx, IntentSchedule, RefreshSet(IntentSchedule, mailbox.Scheduled, consumed != nil, ""))
	res.Warning = warning
	return res, nil
}

func (s *ActionServiceImpl) consumeDraft(ctx context.Context, draft *mailbox.Message) error {
	if draft == nil {
		return nil
	}
	if err := s.api.DeleteDraft(ctx, *draft); err != nil {
		err = Classify("delete_draft", err)
		if s.logger != nil {
			s.logger.Printf("ActionService: draft %s not removed: %v", draft.Identity(), err)
		}
		return err
	}
	return nil
}

// SaveTemplate stores a reusable subject and body.
func (s *ActionServiceImpl) SaveTemplate(ctx context.Context, tpl mailbox.Template) (ActionResult, error) {
	tpl.Name = strings.TrimSpace(tpl.Name)
	if tpl.Name == "" {
		return ActionResult{}, Validation("save_template", ErrEmptyTemplateName)
	}
	if err := s.api.SaveTemplate(ctx, tpl); err != nil {
		return ActionResult{}, s.fail("save_template", err)
	}
	return s.settle(ctx, IntentSaveTemplate, RefreshSet(IntentSaveTemplate, mailbox.Templates, false, "")), nil
}

// BulkAction applies action to every message in one call. The call is
// treated as all or nothing: any failure leaves every folder untouched.
func (s *ActionServiceImpl) BulkAction(ctx context.Context, action mailbox.BulkAction, msgs []mailbox.Message, folder mailbox.Folder) (ActionResult, error) {
	if len(msgs) == 0 {
		return ActionResult{}, Validation("bulk_action", ErrEmptySelection)
	}
	if !mailbox.AllowsBulk(folder, action) {
		return ActionResult{}, Validation("bulk_action", fmt.Errorf("%w: %s in %s", ErrBulkActionNotAllowed, action, folder))
	}
	if err := s.api.BulkAction(ctx, action, msgs, folder); err != nil {
		return ActionResult{}, s.fail("bulk_action", err)
	}
	return s.settle(ctx, IntentBulkAction, RefreshSet(IntentBulkAction, folder, false, action)), nil
}
