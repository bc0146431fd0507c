package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ajramos/maildash/internal/db"
	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/ajramos/maildash/internal/services"
	"github.com/ajramos/maildash/pkg/auth"
	"golang.org/x/sync/errgroup"
)

// ErrSavedSearchesDisabled is returned by the saved search operations when
// no query store was configured.
var ErrSavedSearchesDisabled = errors.New("saved searches are disabled")

// Options configures a Controller. Every field is optional.
type Options struct {
	Logger   *log.Logger
	Notifier services.Notifier
	// Queries enables saved searches.
	Queries *db.QueryStore
	Now     func() time.Time
}

// Controller coordinates the services behind the dashboard and owns the
// active folder cursor. Its methods are safe to call from several goroutines;
// remote calls run without holding any controller lock.
//
// Errors follow one policy: validation and out-of-scope failures are notified
// and returned, transport failures and remote rejections are logged, notified
// and swallowed, leaving state as it was.
type Controller struct {
	session auth.Session
	api     services.MailAPI

	folders    *services.FolderServiceImpl
	actions    *services.ActionServiceImpl
	selection  *services.SelectionServiceImpl
	search     *services.SearchServiceImpl
	compose    *services.CompositionServiceImpl
	confirm    *services.ConfirmationServiceImpl
	recipients *services.RecipientServiceImpl
	undo       *services.UndoServiceImpl
	queries    *services.QueryServiceImpl

	mu        sync.RWMutex
	active    mailbox.Folder
	stats     *mailbox.Stats
	storage   *mailbox.Storage
	listeners []func(Snapshot)

	notifier services.Notifier
	logger   *log.Logger
}

// New wires the services for sess on top of api.
func New(sess auth.Session, api services.MailAPI, opts Options) (*Controller, error) {
	if err := sess.Validate(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if api == nil {
		return nil, errors.New("dashboard: mail api is required")
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = services.NotifierFunc(func(services.NotifyKind, string) {})
	}

	folders := services.NewFolderService(api)
	actions := services.NewActionService(api, folders)
	compose := services.NewCompositionService(actions, api)
	if opts.Now != nil {
		actions.SetClock(opts.Now)
		compose.SetClock(opts.Now)
	}

	c := &Controller{
		session:    sess,
		api:        api,
		folders:    folders,
		actions:    actions,
		selection:  services.NewSelectionService(actions),
		search:     services.NewSearchService(api),
		compose:    compose,
		confirm:    services.NewConfirmationService(),
		recipients: services.NewRecipientService(api),
		undo:       services.NewUndoService(actions),
		active:     mailbox.Inbox,
		notifier:   notifier,
		logger:     opts.Logger,
	}
	if opts.Queries != nil {
		c.queries = services.NewQueryService(opts.Queries, sess.AccountID)
	}

	if opts.Logger != nil {
		c.folders.SetLogger(opts.Logger)
		c.actions.SetLogger(opts.Logger)
		c.selection.SetLogger(opts.Logger)
		c.search.SetLogger(opts.Logger)
		c.compose.SetLogger(opts.Logger)
		c.confirm.SetLogger(opts.Logger)
		c.recipients.SetLogger(opts.Logger)
		c.undo.SetLogger(opts.Logger)
		if c.queries != nil {
			c.queries.SetLogger(opts.Logger)
		}
	}
	return c, nil
}

func (c *Controller) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf("Dashboard: "+format, args...)
	}
}

// Account returns the account the controller was built for.
func (c *Controller) Account() string {
	return c.session.AccountID
}

// OnChange registers fn to receive a fresh snapshot after every state change.
func (c *Controller) OnChange(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) changed() {
	c.mu.RLock()
	listeners := make([]func(Snapshot), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()
	if len(listeners) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range listeners {
		fn(snap)
	}
}

// report applies the error policy and returns what the caller should see.
func (c *Controller) report(err error) error {
	if err == nil {
		return nil
	}
	if services.IsRemote(err) {
		c.logf("%v", err)
		c.notifier.Notify(services.NotifyError, services.UserMessage(err))
		return nil
	}
	c.logf("rejected: %v", err)
	c.notifier.Notify(services.NotifyWarning, services.UserMessage(err))
	return err
}

// settle runs the follow-up every successful action shares: the search
// overlay is re-issued, the selection is pruned to what is still displayed
// and listeners are told.
func (c *Controller) settle(ctx context.Context, res services.ActionResult, success string) {
	if _, err := c.search.Rerun(ctx); err != nil {
		c.logf("search rerun failed: %v", err)
	}
	c.selection.Reconcile(c.displayed())
	if res.Warning != nil {
		c.logf("%s: %v", res.Intent, res.Warning)
		c.notifier.Notify(services.NotifyWarning, services.UserMessage(res.Warning))
	}
	if success != "" {
		c.notifier.Notify(services.NotifySuccess, success)
	}
	c.changed()
}

// ActiveFolder returns the folder cursor.
func (c *Controller) ActiveFolder() mailbox.Folder {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// scope is the folder the displayed messages belong to.
func (c *Controller) scope() mailbox.Folder {
	if st := c.search.State(); st.Active {
		return st.Scope
	}
	return c.ActiveFolder()
}

func (c *Controller) displayed() []mailbox.Message {
	if c.search.State().Active {
		return c.search.Results()
	}
	return c.folders.Snapshot(c.ActiveFolder())
}

// Displayed returns the messages currently shown.
func (c *Controller) Displayed() []mailbox.Message {
	return c.displayed()
}

// resolve finds the displayed version of m so actions see its latest status.
func (c *Controller) resolve(op string, m mailbox.Message) (mailbox.Message, error) {
	cur, ok := mailbox.Find(c.displayed(), m.Identity())
	if !ok {
		return mailbox.Message{}, services.OutOfScope(op)
	}
	return cur, nil
}

// Start loads every folder and the templates in parallel.
func (c *Controller) Start(ctx context.Context) Snapshot {
	c.folders.Refresh(ctx, mailbox.Folders...)
	c.logf("started for account %s", c.session.AccountID)
	c.changed()
	return c.Snapshot()
}

// SwitchFolder moves the cursor to folder and reloads it. The search overlay,
// the checked set and the open message are all folder scoped and are reset.
func (c *Controller) SwitchFolder(ctx context.Context, folder mailbox.Folder) error {
	if _, ok := mailbox.ParseFolder(string(folder)); !ok {
		return c.report(services.Validation("switch_folder", fmt.Errorf("unknown folder %q", folder)))
	}

	c.mu.Lock()
	c.active = folder
	c.mu.Unlock()

	c.search.Deactivate()
	c.selection.Clear()
	c.selection.Close()
	c.folders.Load(ctx, folder)
	c.changed()
	return nil
}

// Refresh reloads the active folder on demand.
func (c *Controller) Refresh(ctx context.Context) {
	c.folders.Load(ctx, c.ActiveFolder())
	c.settle(ctx, services.ActionResult{}, "")
}

// Open makes m the open message, marking it read first when it is unread
// and outside drafts and trash.
func (c *Controller) Open(ctx context.Context, m mailbox.Message) error {
	cur, err := c.resolve("open", m)
	if err != nil {
		return c.report(err)
	}
	if _, err := c.selection.Open(ctx, cur, c.displayed()); err != nil {
		if services.IsValidation(err) {
			return c.report(err)
		}
		// the message is open even though the read flag did not stick
		c.report(err)
	}
	c.settle(ctx, services.ActionResult{}, "")
	return nil
}

// Close clears the open message.
func (c *Controller) Close() {
	c.selection.Close()
	c.changed()
}

// Check adds m to the checked set.
func (c *Controller) Check(m mailbox.Message) error {
	if err := c.selection.Check(m, c.displayed()); err != nil {
		return c.report(err)
	}
	c.changed()
	return nil
}

// Uncheck removes m from the checked set.
func (c *Controller) Uncheck(m mailbox.Message) {
	c.selection.Uncheck(m)
	c.changed()
}

// ToggleCheck flips m in the checked set.
func (c *Controller) ToggleCheck(m mailbox.Message) error {
	if c.selection.IsChecked(m.Identity()) {
		c.Uncheck(m)
		return nil
	}
	return c.Check(m)
}

// ToggleAll checks every displayed message, or clears the set.
func (c *Controller) ToggleAll() {
	c.selection.ToggleAll(c.displayed())
	c.changed()
}

// ClearSelection empties the checked set.
func (c *Controller) ClearSelection() {
	c.selection.Clear()
	c.changed()
}

// Search overlays results for query on the active folder. An empty query
// turns the overlay off.
func (c *Controller) Search(ctx context.Context, query string) error {
	applied, err := c.search.Search(ctx, query, c.ActiveFolder())
	if err != nil {
		return c.report(err)
	}
	if applied {
		c.selection.Clear()
		c.selection.Reconcile(c.displayed())
		c.changed()
	}
	return nil
}

// ClearSearch turns the overlay off.
func (c *Controller) ClearSearch() {
	c.search.Deactivate()
	c.selection.Clear()
	c.selection.Reconcile(c.displayed())
	c.changed()
}

func (c *Controller) recordUndo(kind services.UndoActionType, m mailbox.Message) {
	if err := c.undo.RecordAction(&services.UndoableAction{Type: kind, Message: m}); err != nil {
		c.logf("undo not recorded: %v", err)
	}
}

// MarkRead flips m to read.
func (c *Controller) MarkRead(ctx context.Context, m mailbox.Message) error {
	cur, err := c.resolve("mark_read", m)
	if err != nil {
		return c.report(err)
	}
	res, err := c.actions.MarkRead(ctx, cur)
	if err != nil {
		return c.report(err)
	}
	c.recordUndo(services.UndoActionMarkRead, cur)
	c.settle(ctx, res, "Marked as read")
	return nil
}

// MarkUnread flips m to unread.
func (c *Controller) MarkUnread(ctx context.Context, m mailbox.Message) error {
	cur, err := c.resolve("mark_unread", m)
	if err != nil {
		return c.report(err)
	}
	res, err := c.actions.MarkUnread(ctx, cur)
	if err != nil {
		return c.report(err)
	}
	c.recordUndo(services.UndoActionMarkUnread, cur)
	c.settle(ctx, res, "Marked as unread")
	return nil
}

// ToggleRead marks an unread message read and any other message unread.
func (c *Controller) ToggleRead(ctx context.Context, m mailbox.Message) error {
	cur, err := c.resolve("toggle_read", m)
	if err != nil {
		return c.report(err)
	}
	if cur.IsUnread() {
		return c.MarkRead(ctx, cur)
	}
	return c.MarkUnread(ctx, cur)
}

// MoveToTrash relocates m to trash.
func (c *Controller) MoveToTrash(ctx context.Context, m mailbox.Message) error {
	cur, err := c.resolve("move_to_trash", m)
	if err != nil {
		return c.report(err)
	}
	res, err := c.actions.MoveToTrash(ctx, cur)
	if err != nil {
		return c.report(err)
	}
	c.recordUndo(services.UndoActionTrash, cur)
	c.settle(ctx, res, "Moved to trash")
	return nil
}

// Delete does what the delete key means in m's folder: trash for received
// and sent mail, cancel for scheduled mail, delete for drafts and a
// confirmation request for trash.
func (c *Controller) Delete(ctx context.Context, m mailbox.Message) error {
	cur, err := c.resolve("delete", m)
	if err != nil {
		return c.report(err)
	}
	switch cur.Folder {
	case mailbox.Inbox, mailbox.Sent:
		return c.MoveToTrash(ctx, cur)
	case mailbox.Scheduled:
		return c.CancelScheduled(ctx, cur)
	case mailbox.Drafts:
		return c.DeleteDraft(ctx, cur)
	case mailbox.Trash:
		_, err := c.RequestPermanentDelete(cur)
		return err
	}
	return c.report(services.Validation("delete", services.ErrWrongFolder))
}

// CancelScheduled cancels a pending scheduled send.
func (c *Controller) CancelScheduled(ctx context.Context, m mailbox.Message) error {
	cur, err := c.resolve("delete_scheduled", m)
	if err != nil {
		return c.report(err)
	}
	res, err := c.actions.DeleteScheduled(ctx, cur)
	if err != nil {
		return c.report(err)
	}
	c.settle(ctx, res, "Scheduled message cancelled")
	return nil
}

// DeleteDraft removes a draft.
func (c *Controller) DeleteDraft(ctx context.Context, m mailbox.Message) error {
	cur, err := c.resolve("delete_draft", m)
	if err != nil {
		return c.report(err)
	}
	res, err := c.actions.DeleteDraft(ctx, cur)
	if err != nil {
		return c.report(err)
	}
	c.settle(ctx, res, "Draft deleted")
	return nil
}

// Restore moves a trashed message back where it came from.
func (c *Controller) Restore(ctx context.Context, m mailbox.Message) error {
	cur, err := c.resolve("restore", m)
	if err != nil {
		return c.report(err)
	}
	res, err := c.actions.Restore(ctx, cur)
	if err != nil {
		return c.report(err)
	}
	c.settle(ctx, res, fmt.Sprintf("Restored to %s", cur.Origin().Title()))
	return nil
}

// RequestPermanentDelete asks the user to confirm deleting a trashed message.
// Nothing is sent until Confirm.
func (c *Controller) RequestPermanentDelete(m mailbox.Message) (services.ConfirmationRequest, error) {
	cur, err := c.resolve("permanent_delete", m)
	if err != nil {
		return services.ConfirmationRequest{}, c.report(err)
	}
	if cur.Folder != mailbox.Trash {
		return services.ConfirmationRequest{}, c.report(services.Validation("permanent_delete", services.ErrWrongFolder))
	}

	subject := cur.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	req := c.confirm.Request(
		fmt.Sprintf("Permanently delete %q? This cannot be undone.", subject),
		func(ctx context.Context, conf services.Confirmation) error {
			res, err := c.actions.PermanentDelete(ctx, cur, conf)
			if err != nil {
				return err
			}
			c.settle(ctx, res, "Deleted permanently")
			return nil
		})
	c.changed()
	return req, nil
}

// Confirm runs the outstanding confirmation request.
func (c *Controller) Confirm(ctx context.Context) error {
	err := c.confirm.Confirm(ctx)
	c.changed()
	return c.report(err)
}

// Cancel drops the outstanding confirmation request.
func (c *Controller) Cancel() {
	c.confirm.Cancel()
	c.changed()
}

// Bulk applies action to every checked message in one call. On success the
// checked set is emptied.
func (c *Controller) Bulk(ctx context.Context, action mailbox.BulkAction) error {
	selected := c.selection.Selected(c.displayed())
	res, err := c.actions.BulkAction(ctx, action, selected, c.scope())
	if err != nil {
		return c.report(err)
	}
	c.selection.Clear()
	c.settle(ctx, res, fmt.Sprintf("Applied %s to %d messages", action, len(selected)))
	return nil
}

// ComposeNew opens a blank compose session.
func (c *Controller) ComposeNew() error {
	if _, err := c.compose.ComposeNew(); err != nil {
		return c.report(err)
	}
	c.changed()
	return nil
}

// EditDraft opens a compose session from a displayed draft.
func (c *Controller) EditDraft(m mailbox.Message) error {
	cur, err := c.resolve("edit_draft", m)
	if err != nil {
		return c.report(err)
	}
	if _, err := c.compose.EditDraft(cur); err != nil {
		return c.report(err)
	}
	c.changed()
	return nil
}

// UpdateCompose replaces the session's recipient, subject and body.
func (c *Controller) UpdateCompose(to, subject, body string) error {
	if err := c.compose.SetFields(to, subject, body); err != nil {
		return c.report(err)
	}
	c.changed()
	return nil
}

// ChooseAttachment records a local file for the next upload.
func (c *Controller) ChooseAttachment(path string) error {
	if err := c.compose.ChooseFile(path); err != nil {
		return c.report(err)
	}
	c.changed()
	return nil
}

// UploadAttachment uploads the chosen file and attaches its reference.
func (c *Controller) UploadAttachment(ctx context.Context) error {
	if _, err := c.compose.UploadPending(ctx); err != nil {
		return c.report(err)
	}
	c.notifier.Notify(services.NotifySuccess, "Attachment uploaded")
	c.changed()
	return nil
}

// ClearAttachment removes the session attachment.
func (c *Controller) ClearAttachment() error {
	if err := c.compose.ClearAttachment(); err != nil {
		return c.report(err)
	}
	c.changed()
	return nil
}

// ApplyTemplate overwrites the session subject and body with a stored template.
func (c *Controller) ApplyTemplate(name string) error {
	name = strings.TrimSpace(name)
	for _, tpl := range c.folders.Templates() {
		if tpl.Name == name {
			if err := c.compose.ApplyTemplate(tpl); err != nil {
				return c.report(err)
			}
			c.changed()
			return nil
		}
	}
	return c.report(services.Validation("apply_template", fmt.Errorf("%w: %s", services.ErrTemplateNotFound, name)))
}

// Send dispatches the compose session now.
func (c *Controller) Send(ctx context.Context) error {
	res, err := c.compose.Send(ctx)
	if err != nil {
		c.changed()
		return c.report(err)
	}
	c.settle(ctx, res, "Message sent")
	return nil
}

// SaveDraft stores the compose session as a draft.
func (c *Controller) SaveDraft(ctx context.Context) error {
	res, err := c.compose.SaveDraft(ctx)
	if err != nil {
		c.changed()
		return c.report(err)
	}
	c.settle(ctx, res, "Draft saved")
	return nil
}

// Schedule queues the compose session for a local date (2006-01-02) and
// time (15:04).
func (c *Controller) Schedule(ctx context.Context, date, clock string) error {
	res, err := c.compose.Schedule(ctx, date, clock)
	if err != nil {
		c.changed()
		return c.report(err)
	}
	c.settle(ctx, res, fmt.Sprintf("Scheduled for %s %s", date, clock))
	return nil
}

// DiscardCompose closes the compose session without saving.
func (c *Controller) DiscardCompose() error {
	if err := c.compose.Discard(); err != nil {
		return c.report(err)
	}
	c.changed()
	return nil
}

// SaveTemplate stores a reusable subject and body under name.
func (c *Controller) SaveTemplate(ctx context.Context, name, subject, body string) error {
	res, err := c.actions.SaveTemplate(ctx, mailbox.Template{Name: name, Subject: subject, Body: body})
	if err != nil {
		return c.report(err)
	}
	c.settle(ctx, res, fmt.Sprintf("Template %q saved", strings.TrimSpace(name)))
	return nil
}

// SuggestRecipients completes query against known recipients, skipping the
// addresses already in the compose session. A remote failure is logged and
// yields no suggestions rather than a notification.
func (c *Controller) SuggestRecipients(ctx context.Context, query string) ([]string, error) {
	var entered []string
	if comp, ok := c.compose.Current(); ok {
		for _, addr := range strings.Split(comp.To, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				entered = append(entered, addr)
			}
		}
	}
	out, err := c.recipients.Suggest(ctx, query, entered)
	if err != nil {
		if services.IsValidation(err) {
			return nil, c.report(err)
		}
		// runs per keystroke; a remote failure only empties the dropdown
		c.logf("recipient suggestions: %v", err)
		return nil, nil
	}
	return out, nil
}

// Undo reverses the last reversible action.
func (c *Controller) Undo(ctx context.Context) error {
	res, err := c.undo.UndoLastAction(ctx)
	if err != nil {
		return c.report(err)
	}
	c.settle(ctx, res.Result, "Undone: "+res.Description)
	return nil
}

// SaveSearch stores the active search query under name.
func (c *Controller) SaveSearch(ctx context.Context, name string) (*services.SavedQueryInfo, error) {
	if c.queries == nil {
		return nil, c.report(services.Validation("save_search", ErrSavedSearchesDisabled))
	}
	st := c.search.State()
	if !st.Active {
		return nil, c.report(services.Validation("save_search", errors.New("no active search to save")))
	}
	saved, err := c.queries.SaveQuery(ctx, name, st.Query, st.Scope)
	if err != nil {
		return nil, c.report(services.Validation("save_search", err))
	}
	c.notifier.Notify(services.NotifySuccess, fmt.Sprintf("Search %q saved", saved.Name))
	return saved, nil
}

// SavedSearches lists stored searches, most recently used first.
func (c *Controller) SavedSearches(ctx context.Context) ([]*services.SavedQueryInfo, error) {
	if c.queries == nil {
		return nil, c.report(services.Validation("list_searches", ErrSavedSearchesDisabled))
	}
	out, err := c.queries.ListQueries(ctx, "")
	if err != nil {
		return nil, c.report(services.Validation("list_searches", err))
	}
	return out, nil
}

// RunSavedSearch switches to the saved search's folder when needed and runs it.
func (c *Controller) RunSavedSearch(ctx context.Context, name string) error {
	if c.queries == nil {
		return c.report(services.Validation("run_search", ErrSavedSearchesDisabled))
	}
	q, err := c.queries.GetQuery(ctx, name)
	if err != nil {
		return c.report(services.Validation("run_search", err))
	}
	if services.ScopeFor(c.ActiveFolder()) != q.Folder {
		if err := c.SwitchFolder(ctx, q.Folder); err != nil {
			return err
		}
	}
	if err := c.Search(ctx, q.Query); err != nil {
		return err
	}
	if err := c.queries.MarkUsed(ctx, q.ID); err != nil {
		c.logf("saved search usage not recorded: %v", err)
	}
	return nil
}

// DeleteSavedSearch removes a stored search.
func (c *Controller) DeleteSavedSearch(ctx context.Context, name string) error {
	if c.queries == nil {
		return c.report(services.Validation("delete_search", ErrSavedSearchesDisabled))
	}
	if err := c.queries.DeleteQuery(ctx, name); err != nil {
		return c.report(services.Validation("delete_search", err))
	}
	return nil
}

// LoadStats fetches the account summary and the storage quota together.
func (c *Controller) LoadStats(ctx context.Context) error {
	var (
		stats   *mailbox.Stats
		storage *mailbox.Storage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = c.api.Stats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		storage, err = c.api.Storage(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return c.report(services.Classify("stats", err))
	}

	c.mu.Lock()
	c.stats, c.storage = stats, storage
	c.mu.Unlock()
	c.changed()
	return nil
}

// Logout ends the server session and drops every piece of local state.
// Local state is cleared even when the server call fails.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.api.Logout(ctx); err != nil {
		c.report(services.Classify("logout", err))
	}

	if c.compose.State() != services.ComposeIdle {
		if err := c.compose.Discard(); err != nil {
			c.logf("compose session not discarded: %v", err)
		}
	}
	c.confirm.Cancel()
	c.search.Deactivate()
	c.selection.Clear()
	c.selection.Close()
	c.recipients.Reset()
	c.undo.ClearUndoHistory()
	c.folders.Reset()

	c.mu.Lock()
	c.active = mailbox.Inbox
	c.stats, c.storage = nil, nil
	c.mu.Unlock()

	c.logf("logged out of %s", c.session.AccountID)
	c.changed()
	return nil
}

// Snapshot returns the current read-only view.
func (c *Controller) Snapshot() Snapshot {
	displayed := c.displayed()
	snap := Snapshot{
		ActiveFolder: c.ActiveFolder(),
		Messages:     displayed,
		Templates:    c.folders.Templates(),
		Search:       c.search.State(),
		Checked:      c.selection.Checked(),
		ComposeState: c.compose.State(),
		Counts:       c.folders.Counts(),
		Unread:       c.folders.UnreadCount(),
		CanUndo:      c.undo.HasUndoableAction(),
	}
	if snap.CanUndo {
		snap.UndoDescription = c.undo.GetUndoDescription()
	}
	if id, ok := c.selection.OpenIdentity(); ok {
		snap.OpenIdentity = id
		if m, ok := mailbox.Find(displayed, id); ok {
			snap.Open = &m
		}
	}
	if len(snap.Checked) > 0 {
		snap.BulkActions = mailbox.BulkActionsFor(snap.Scope())
	}
	if comp, ok := c.compose.Current(); ok {
		snap.Compose = comp
	}
	if req, ok := c.confirm.Pending(); ok {
		snap.Confirmation = &req
	}

	c.mu.RLock()
	if c.stats != nil {
		s := *c.stats
		snap.Stats = &s
	}
	if c.storage != nil {
		s := *c.storage
		snap.Storage = &s
	}
	c.mu.RUnlock()
	return snap
}
