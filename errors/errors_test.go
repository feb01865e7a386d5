package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("plant not found", NotFound())
	assert.Equal(t, "plant not found", err.Error())
	assert.Equal(t, http.StatusNotFound, CodeOf(err))
}

func TestNewDefaultCode(t *testing.T) {
	err := New("boom")
	assert.Equal(t, DefaultCode, CodeOf(err))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, DefaultCode, CodeOf(stderrors.New("plain")))
}

func TestBecause(t *testing.T) {
	sentinel := New("exchange failed", Unauthorized())
	cause := stderrors.New("connection refused")

	err := Because(sentinel, cause)
	assert.True(t, stderrors.Is(err, sentinel), "annotated error should still match the sentinel")
	assert.Equal(t, http.StatusUnauthorized, CodeOf(err))
	assert.Equal(t, "exchange failed: connection refused", err.Error())

	// The sentinel itself must be left untouched.
	assert.Equal(t, "exchange failed", sentinel.Error())
}

func TestBecauseNilCause(t *testing.T) {
	sentinel := New("nope", Forbidden())
	assert.Equal(t, sentinel, Because(sentinel, nil))
}
