package services

import (
	"context"
	"io"
	"time"

	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/stretchr/testify/mock"
)

// MockFolderAPI implements FolderAPI for testing
type MockFolderAPI struct {
	mock.Mock
}

func (m *MockFolderAPI) ListFolder(ctx context.Context, folder mailbox.Folder) ([]mailbox.Message, error) {
	args := m.Called(ctx, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mailbox.Message), args.Error(1)
}

func (m *MockFolderAPI) ListTemplates(ctx context.Context) ([]mailbox.Template, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mailbox.Template), args.Error(1)
}

// MockActionAPI implements ActionAPI for testing
type MockActionAPI struct {
	mock.Mock
}

func (m *MockActionAPI) MarkRead(ctx context.Context, msg mailbox.Message, tab mailbox.Folder) error {
	return m.Called(ctx, msg, tab).Error(0)
}

func (m *MockActionAPI) MarkUnread(ctx context.Context, msg mailbox.Message, tab mailbox.Folder) error {
	return m.Called(ctx, msg, tab).Error(0)
}

func (m *MockActionAPI) DeleteMail(ctx context.Context, msg mailbox.Message, tab mailbox.Folder) error {
	return m.Called(ctx, msg, tab).Error(0)
}

func (m *MockActionAPI) PermanentDelete(ctx context.Context, msg mailbox.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockActionAPI) Restore(ctx context.Context, msg mailbox.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockActionAPI) DeleteDraft(ctx context.Context, draft mailbox.Message) error {
	return m.Called(ctx, draft).Error(0)
}

func (m *MockActionAPI) SaveDraft(ctx context.Context, out mailbox.Outgoing) error {
	return m.Called(ctx, out).Error(0)
}

func (m *MockActionAPI) Send(ctx context.Context, out mailbox.Outgoing) error {
	return m.Called(ctx, out).Error(0)
}

func (m *MockActionAPI) Schedule(ctx context.Context, out mailbox.Outgoing, at time.Time) error {
	return m.Called(ctx, out, at).Error(0)
}

func (m *MockActionAPI) SaveTemplate(ctx context.Context, tpl mailbox.Template) error {
	return m.Called(ctx, tpl).Error(0)
}

func (m *MockActionAPI) BulkAction(ctx context.Context, action mailbox.BulkAction, msgs []mailbox.Message, folder mailbox.Folder) error {
	return m.Called(ctx, action, msgs, folder).Error(0)
}

// MockFolderService records refreshes issued by the action service
type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) Load(ctx context.Context, folder mailbox.Folder) []mailbox.Message {
	args := m.Called(ctx, folder)
	return args.Get(0).([]mailbox.Message)
}

func (m *MockFolderService) Refresh(ctx context.Context, folders ...mailbox.Folder) {
	m.Called(ctx, folders)
}

func (m *MockFolderService) Snapshot(folder mailbox.Folder) []mailbox.Message {
	return m.Called(folder).Get(0).([]mailbox.Message)
}

func (m *MockFolderService) Templates() []mailbox.Template {
	return m.Called().Get(0).([]mailbox.Template)
}

func (m *MockFolderService) Counts() map[mailbox.Folder]int {
	return m.Called().Get(0).(map[mailbox.Folder]int)
}

func (m *MockFolderService) UnreadCount() int {
	return m.Called().Int(0)
}

func (m *MockFolderService) Reset() {
	m.Called()
}

// MockActionService implements ActionService for testing
type MockActionService struct {
	mock.Mock
}

func (m *MockActionService) result(args mock.Arguments) (ActionResult, error) {
	res, _ := args.Get(0).(ActionResult)
	return res, args.Error(1)
}

func (m *MockActionService) MarkRead(ctx context.Context, msg mailbox.Message) (ActionResult, error) {
	return m.result(m.Called(ctx, msg))
}

func (m *MockActionService) MarkUnread(ctx context.Context, msg mailbox.Message) (ActionResult, error) {
	return m.result(m.Called(ctx, msg))
}

func (m *MockActionService) MoveToTrash(ctx context.Context, msg mailbox.Message) (ActionResult, error) {
	return m.result(m.Called(ctx, msg))
}

func (m *MockActionService) Restore(ctx context.Context, msg mailbox.Message) (ActionResult, error) {
	return m.result(m.Called(ctx, msg))
}

func (m *MockActionService) PermanentDelete(ctx context.Context, msg mailbox.Message, c Confirmation) (ActionResult, error) {
	return m.result(m.Called(ctx, msg, c))
}

func (m *MockActionService) DeleteDraft(ctx context.Context, draft mailbox.Message) (ActionResult, error) {
	return m.result(m.Called(ctx, draft))
}

func (m *MockActionService) DeleteScheduled(ctx context.Context, msg mailbox.Message) (ActionResult, error) {
	return m.result(m.Called(ctx, msg))
}

func (m *MockActionService) SaveDraft(ctx context.Context, out mailbox.Outgoing, replaces *mailbox.Message) (ActionResult, error) {
	return m.result(m.Called(ctx, out, replaces))
}

func (m *MockActionService) Send(ctx context.Context, out mailbox.Outgoing, consumed *mailbox.Message) (ActionResult, error) {
	return m.result(m.Called(ctx, out, consumed))
}

func (m *MockActionService) Schedule(ctx context.Context, out mailbox.Outgoing, at time.Time, consumed *mailbox.Message) (ActionResult, error) {
	return m.result(m.Called(ctx, out, at, consumed))
}

func (m *MockActionService) SaveTemplate(ctx context.Context, tpl mailbox.Template) (ActionResult, error) {
	return m.result(m.Called(ctx, tpl))
}

func (m *MockActionService) BulkAction(ctx context.Context, action mailbox.BulkAction, msgs []mailbox.Message, folder mailbox.Folder) (ActionResult, error) {
	return m.result(m.Called(ctx, action, msgs, folder))
}

// MockSearchAPI implements SearchAPI for testing
type MockSearchAPI struct {
	mock.Mock
}

func (m *MockSearchAPI) Search(ctx context.Context, query string, folder mailbox.Folder) ([]mailbox.Message, error) {
	args := m.Called(ctx, query, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mailbox.Message), args.Error(1)
}

// MockRecipientAPI implements RecipientAPI for testing
type MockRecipientAPI struct {
	mock.Mock
}

func (m *MockRecipientAPI) Recipients(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockUploader implements Uploader for testing
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, filename, string(data))
	return args.String(0), args.Error(1)
}

func inboxMessage(subject string, status mailbox.Status) mailbox.Message {
	return mailbox.Message{
		From:    "a@x.com",
		To:      "b@x.com",
		Subject: subject,
		Body:    "body of " + subject,
		Status:  status,
		Folder:  mailbox.Inbox,
		SentAt:  "2024-01-01T10:00:00Z",
	}
}
