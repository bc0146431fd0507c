package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ajramos/maildash/internal/mailapi"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"api error", &mailapi.APIError{Status: 400, Message: "bad"}, RemoteRejection},
		{"wrapped api error", fmt.Errorf("ctx: %w", &mailapi.APIError{Status: 500}), RemoteRejection},
		{"transport", fmt.Errorf("%w: dial", mailapi.ErrTransport), TransportFailure},
		{"deadline", context.DeadlineExceeded, TransportFailure},
		{"unknown", errors.New("boom"), TransportFailure},
		{"already classified", Validation("x", ErrEmptyRecipient), ValidationFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(Classify("op", tt.err)))
		})
	}
	assert.Nil(t, Classify("op", nil))
}

func TestErrorHelpers(t *testing.T) {
	v := Validation("send", ErrEmptyRecipient)
	assert.True(t, IsValidation(v))
	assert.False(t, IsRemote(v))
	assert.ErrorIs(t, v, ErrEmptyRecipient)
	assert.Equal(t, "send: recipient cannot be empty", v.Error())

	o := OutOfScope("check")
	assert.Equal(t, SelectionOutOfScope, KindOf(o))
	assert.True(t, IsValidation(o))
	assert.ErrorIs(t, o, ErrOutOfScope)

	r := Classify("send", &mailapi.APIError{Status: 400, Message: "Storage limit exceeded"})
	assert.True(t, IsRemote(r))
	assert.Equal(t, "Storage limit exceeded", UserMessage(r))

	tr := Classify("load", mailapi.ErrTransport)
	assert.Equal(t, "Could not reach the mail service", UserMessage(tr))
	assert.Equal(t, "recipient cannot be empty", UserMessage(v))

	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "remote rejection", RemoteRejection.String())
}
