package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{name: "validation passthrough", err: NewFieldError("status", "invalid status"), wantCode: CodeValidation, wantStatus: http.StatusBadRequest},
		{name: "wrapped domain error", err: fmt.Errorf("assign: %w", NewForbidden("nope")), wantCode: CodeForbidden, wantStatus: http.StatusForbidden},
		{name: "missing record", err: fmt.Errorf("get location: %w", ErrNoRecord), wantCode: CodeNotFound, wantStatus: http.StatusNotFound},
		{name: "duplicate record", err: ErrDuplicate, wantCode: CodeConflict, wantStatus: http.StatusConflict},
		{name: "unknown error", err: errors.New("connection reset"), wantCode: CodeInternal, wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.wantCode, de.Code)
			assert.Equal(t, tt.wantStatus, de.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestInternalErrorKeepsCause(t *testing.T) {
	cause := errors.New("tx aborted")
	err := NewInternalError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error: tx aborted", err.Error())
}

func TestForbiddenHasNoDetails(t *testing.T) {
	de := ToDomainError(NewForbidden("access denied"))
	assert.Empty(t, de.Details)
	assert.True(t, HasCode(de, CodeForbidden))
	assert.False(t, HasCode(de, CodeNotFound))
}
