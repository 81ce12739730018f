package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeHelpers(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", newError(401, &ErrorBody{Error: CodeInvalidCredentials}))

	assert.Equal(t, CodeInvalidCredentials, Code(wrapped))
	assert.True(t, IsCode(wrapped, CodeInvalidCredentials))
	assert.False(t, IsCode(wrapped, CodeIdentityExists))
	assert.Equal(t, 401, StatusOf(wrapped))

	plain := errors.New("dial tcp: refused")
	assert.Equal(t, "", Code(plain))
	assert.False(t, IsCode(nil, ""))
	assert.Nil(t, BodyOf(plain))
}

func TestMessage(t *testing.T) {
	withMessage := newError(400, &ErrorBody{Error: CodeInvalidRequest, Message: "Please retry"})
	assert.Equal(t, "Please retry", Message(withMessage, "Unexpected error"))

	withoutMessage := newError(400, &ErrorBody{Error: CodeInvalidRequest})
	assert.Equal(t, "Unexpected error", Message(withoutMessage, "Unexpected error"))

	assert.Equal(t, "Unexpected error", Message(errors.New("boom"), "Unexpected error"))
}

func TestNewCodeError(t *testing.T) {
	err := NewCodeError(CodeNoAvatarWithThisName)
	assert.True(t, IsCode(err, CodeNoAvatarWithThisName))
	assert.Equal(t, 0, err.Status)
}
