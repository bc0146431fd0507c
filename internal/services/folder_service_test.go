package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFolderService_LoadFiltersDeleted(t *testing.T) {
	api := &MockFolderAPI{}
	live := inboxMessage("live", mailbox.StatusUnread)
	gone := inboxMessage("gone", mailbox.StatusDeleted)
	api.On("ListFolder", mock.Anything, mailbox.Inbox).Return([]mailbox.Message{live, gone}, nil)

	svc := NewFolderService(api)
	got := svc.Load(context.Background(), mailbox.Inbox)

	assert.Equal(t, []mailbox.Message{live}, got)
	assert.Equal(t, []mailbox.Message{live}, svc.Snapshot(mailbox.Inbox))
	assert.Equal(t, 1, svc.Counts()[mailbox.Inbox])
	assert.Equal(t, 1, svc.UnreadCount())
}

func TestFolderService_TrashKeepsDeleted(t *testing.T) {
	api := &MockFolderAPI{}
	trashed := mailbox.Message{Subject: "t", Status: mailbox.StatusDeleted, Folder: mailbox.Trash}
	api.On("ListFolder", mock.Anything, mailbox.Trash).Return([]mailbox.Message{trashed}, nil)

	svc := NewFolderService(api)
	assert.Len(t, svc.Load(context.Background(), mailbox.Trash), 1)
}

func TestFolderService_LoadFailureKeepsSnapshot(t *testing.T) {
	api := &MockFolderAPI{}
	first := inboxMessage("first", mailbox.StatusRead)
	api.On("ListFolder", mock.Anything, mailbox.Inbox).Return([]mailbox.Message{first}, nil).Once()
	api.On("ListFolder", mock.Anything, mailbox.Inbox).Return(nil, errors.New("connection refused")).Once()

	svc := NewFolderService(api)
	svc.Load(context.Background(), mailbox.Inbox)

	got := svc.Load(context.Background(), mailbox.Inbox)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, []mailbox.Message{first}, svc.Snapshot(mailbox.Inbox))
	api.AssertExpectations(t)
}

func TestFolderService_Templates(t *testing.T) {
	api := &MockFolderAPI{}
	tpls := []mailbox.Template{{Name: "weekly", Subject: "s", Body: "b"}}
	api.On("ListTemplates", mock.Anything).Return(tpls, nil)

	svc := NewFolderService(api)
	assert.Empty(t, svc.Load(context.Background(), mailbox.Templates))
	assert.Equal(t, tpls, svc.Templates())
	assert.Equal(t, 1, svc.Counts()[mailbox.Templates])
	api.AssertNotCalled(t, "ListFolder", mock.Anything, mock.Anything)
}

func TestFolderService_RefreshLoadsEachFolderOnce(t *testing.T) {
	api := &MockFolderAPI{}
	api.On("ListFolder", mock.Anything, mailbox.Trash).Return([]mailbox.Message{}, nil).Once()
	api.On("ListFolder", mock.Anything, mailbox.Inbox).Return([]mailbox.Message{}, nil).Once()
	api.On("ListFolder", mock.Anything, mailbox.Sent).Return([]mailbox.Message{}, nil).Once()

	svc := NewFolderService(api)
	svc.Refresh(context.Background(), mailbox.Trash, mailbox.Inbox, mailbox.Sent, mailbox.Inbox)

	api.AssertExpectations(t)
	api.AssertNumberOfCalls(t, "ListFolder", 3)
}

// orderedFolderAPI lets a test decide the order in which responses resolve.
type orderedFolderAPI struct {
	mu      sync.Mutex
	calls   int
	release []chan struct{}
	answers [][]mailbox.Message
}

func (f *orderedFolderAPI) ListFolder(ctx context.Context, folder mailbox.Folder) ([]mailbox.Message, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()
	<-f.release[i]
	return f.answers[i], nil
}

func (f *orderedFolderAPI) ListTemplates(ctx context.Context) ([]mailbox.Template, error) {
	return nil, nil
}

func TestFolderService_LastResponseWins(t *testing.T) {
	older := []mailbox.Message{inboxMessage("older", mailbox.StatusUnread)}
	newer := []mailbox.Message{inboxMessage("newer", mailbox.StatusRead)}
	api := &orderedFolderAPI{
		release: []chan struct{}{make(chan struct{}), make(chan struct{})},
		answers: [][]mailbox.Message{newer, older},
	}
	svc := NewFolderService(api)

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.Load(context.Background(), mailbox.Inbox) // call 0
	}()
	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.calls == 1
	}, time.Second, time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.Load(context.Background(), mailbox.Inbox) // call 1
		close(done)
	}()
	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.calls == 2
	}, time.Second, time.Millisecond)

	// The second request resolves first, the first one resolves last and wins.
	close(api.release[1])
	<-done
	close(api.release[0])
	wg.Wait()

	assert.Equal(t, newer, svc.Snapshot(mailbox.Inbox))
}

func TestFolderService_Reset(t *testing.T) {
	api := &MockFolderAPI{}
	api.On("ListFolder", mock.Anything, mailbox.Sent).Return([]mailbox.Message{{Subject: "x", Folder: mailbox.Sent}}, nil)

	svc := NewFolderService(api)
	svc.Load(context.Background(), mailbox.Sent)
	svc.Reset()
	assert.Empty(t, svc.Snapshot(mailbox.Sent))
}
