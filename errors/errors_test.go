package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCode(t *testing.T) {
	tts := map[string]struct {
		err  error
		code int
		msg  string
	}{
		"simple error": {
			err:  errors.New("simple error"),
			code: 404,
			msg:  "simple error",
		},
		"coded error is overridden": {
			err:  New("custom error", WithCode(200)),
			code: 501,
			msg:  "custom error",
		},
		"cause is kept": {
			err:  New("keep cause", WithCode(125), WithCause(errors.New("I am the cause"))),
			code: 305,
			msg:  "keep cause: I am the cause",
		},
	}

	for name, tt := range tts {
		err := WithCode(tt.code)(tt.err)
		assert.Equal(t, tt.code, Code(err), name)
		assert.Equal(t, tt.msg, err.Error(), name)
	}

	// nil input should give nil output
	assert.Nil(t, WithCode(305)(nil))
}

func TestWithCause(t *testing.T) {
	tts := map[string]struct {
		err   error
		cause error
		code  int
	}{
		"simple cause": {
			err:   errors.New("simple error"),
			cause: errors.New("I am the cause"),
			code:  DefaultCode,
		},
		"code is forwarded from the cause": {
			err:   errors.New("simple error"),
			cause: New("forward code", WithCode(120)),
			code:  120,
		},
		"code of the error is kept": {
			err:   New("custom error", WithCode(200)),
			cause: New("custom cause", WithCode(300)),
			code:  200,
		},
	}

	for name, tt := range tts {
		err := WithCause(tt.cause)(tt.err)
		assert.Equal(t, tt.code, Code(err), name)
		assert.True(t, Is(err, tt.cause), "%s - cause should be unwrapped", name)
	}

	assert.Nil(t, WithCause(errors.New("ignored"))(nil))
}

func TestCode(t *testing.T) {
	assert.Equal(t, 0, Code(nil))
	assert.Equal(t, DefaultCode, Code(errors.New("plain")))
	assert.Equal(t, http.StatusConflict, Code(New("conflict", Conflict())))

	wrapped := WithCause(New("inner", NotFound()))(errors.New("outer"))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(New("bad", BadRequest())))
}

func TestAssertCode(t *testing.T) {
	AssertCode(t, New("missing", NotFound()), http.StatusNotFound)
	AssertCode(t, errors.New("plain"), DefaultCode)
}
