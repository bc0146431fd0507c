package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSelectionService_OpenMarksUnreadAsRead(t *testing.T) {
	actions := &MockActionService{}
	svc := NewSelectionService(actions)
	msg := inboxMessage("new", mailbox.StatusUnread)
	displayed := []mailbox.Message{msg}

	actions.On("MarkRead", mock.Anything, msg).Return(ActionResult{Intent: IntentMarkRead}, nil).Once()

	id, err := svc.Open(context.Background(), msg, displayed)
	require.NoError(t, err)
	assert.Equal(t, msg.Identity(), id)

	open, ok := svc.OpenIdentity()
	assert.True(t, ok)
	assert.Equal(t, id, open)
	actions.AssertExpectations(t)
}

func TestSelectionService_OpenWithoutReadOnOpen(t *testing.T) {
	tests := []struct {
		name string
		msg  mailbox.Message
	}{
		{"already read", inboxMessage("old", mailbox.StatusRead)},
		{"draft", mailbox.Message{Subject: "d", Folder: mailbox.Drafts, Status: mailbox.StatusUnread}},
		{"trash", mailbox.Message{Subject: "t", Folder: mailbox.Trash, Status: mailbox.StatusUnread}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions := &MockActionService{}
			svc := NewSelectionService(actions)

			_, err := svc.Open(context.Background(), tt.msg, []mailbox.Message{tt.msg})
			require.NoError(t, err)
			_, ok := svc.OpenIdentity()
			assert.True(t, ok)
			actions.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
		})
	}
}

func TestSelectionService_OpenRecordsEvenWhenReadFails(t *testing.T) {
	actions := &MockActionService{}
	svc := NewSelectionService(actions)
	msg := inboxMessage("new", mailbox.StatusUnread)

	readErr := Classify("mark_read", errors.New("offline"))
	actions.On("MarkRead", mock.Anything, msg).Return(ActionResult{}, readErr).Once()

	id, err := svc.Open(context.Background(), msg, []mailbox.Message{msg})
	assert.Equal(t, readErr, err)
	open, ok := svc.OpenIdentity()
	assert.True(t, ok)
	assert.Equal(t, id, open)
}

func TestSelectionService_OutOfScope(t *testing.T) {
	actions := &MockActionService{}
	svc := NewSelectionService(actions)
	shown := inboxMessage("shown", mailbox.StatusRead)
	hidden := inboxMessage("hidden", mailbox.StatusUnread)
	displayed := []mailbox.Message{shown}

	_, err := svc.Open(context.Background(), hidden, displayed)
	assert.Equal(t, SelectionOutOfScope, KindOf(err))
	_, ok := svc.OpenIdentity()
	assert.False(t, ok)

	err = svc.Check(hidden, displayed)
	assert.ErrorIs(t, err, ErrOutOfScope)
	assert.Empty(t, svc.Checked())
	actions.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
}

func TestSelectionService_CheckAndSelected(t *testing.T) {
	svc := NewSelectionService(&MockActionService{})
	a := inboxMessage("a", mailbox.StatusRead)
	b := inboxMessage("b", mailbox.StatusRead)
	c := inboxMessage("c", mailbox.StatusRead)
	displayed := []mailbox.Message{a, b, c}

	require.NoError(t, svc.Check(c, displayed))
	require.NoError(t, svc.Check(a, displayed))
	require.NoError(t, svc.Check(a, displayed))

	assert.Equal(t, []mailbox.Identity{c.Identity(), a.Identity()}, svc.Checked())
	assert.Equal(t, []mailbox.Message{a, c}, svc.Selected(displayed))
	assert.True(t, svc.IsChecked(a.Identity()))
	assert.False(t, svc.IsChecked(b.Identity()))

	svc.Uncheck(c)
	assert.Equal(t, []mailbox.Identity{a.Identity()}, svc.Checked())
}

func TestSelectionService_ToggleAll(t *testing.T) {
	svc := NewSelectionService(&MockActionService{})
	displayed := []mailbox.Message{inboxMessage("a", mailbox.StatusRead), inboxMessage("b", mailbox.StatusRead)}

	require.NoError(t, svc.Check(displayed[0], displayed))
	svc.ToggleAll(displayed)
	assert.Len(t, svc.Checked(), 2)

	svc.ToggleAll(displayed)
	assert.Empty(t, svc.Checked())

	svc.ToggleAll(nil)
	assert.Empty(t, svc.Checked())
}

func TestSelectionService_Reconcile(t *testing.T) {
	actions := &MockActionService{}
	svc := NewSelectionService(actions)
	a := inboxMessage("a", mailbox.StatusRead)
	b := inboxMessage("b", mailbox.StatusRead)
	displayed := []mailbox.Message{a, b}

	_, err := svc.Open(context.Background(), a, displayed)
	require.NoError(t, err)
	require.NoError(t, svc.Check(a, displayed))
	require.NoError(t, svc.Check(b, displayed))

	svc.Reconcile([]mailbox.Message{b})

	_, ok := svc.OpenIdentity()
	assert.False(t, ok)
	assert.Equal(t, []mailbox.Identity{b.Identity()}, svc.Checked())

	svc.Clear()
	assert.Empty(t, svc.Checked())
}
