package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOfFollowsWrapping(t *testing.T) {
	base := Schedulef("block %d overlaps", 3)
	wrapped := fmt.Errorf("loading file: %w", base)

	assert.True(t, IsType(wrapped, TypeSchedule))
	assert.Equal(t, TypeSchedule, TypeOf(wrapped))
	assert.Equal(t, TypeInternal, TypeOf(io.EOF))
	assert.False(t, IsType(io.EOF, TypeInput))
}

func TestErrorMessageAndCause(t *testing.T) {
	err := Storage("insert snapshot", io.ErrUnexpectedEOF)
	assert.Equal(t, "[STORAGE_ERROR] insert snapshot: unexpected EOF", err.Error())
	assert.True(t, Is(err, io.ErrUnexpectedEOF))

	var target *Error
	assert.True(t, As(fmt.Errorf("ctx: %w", err), &target))
	assert.Equal(t, TypeStorage, target.Type)
}

func TestWithContext(t *testing.T) {
	err := Inputf("%s must not be negative", "units").WithContext("units", -1.0)
	assert.Equal(t, "[INPUT_ERROR] units must not be negative", err.Error())
	assert.Equal(t, -1.0, err.Context["units"])
	assert.True(t, err.Is(TypeInput))
}

func TestNotFound(t *testing.T) {
	err := NotFound("snapshot", "abc")
	assert.Equal(t, "[NOT_FOUND] snapshot not found: abc", err.Error())
}
