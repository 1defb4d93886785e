package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "config",
			err:  NewConfigError("no default target configured"),
			want: "CONFIG: no default target configured",
		},
		{
			name: "parse with target",
			err:  NewParseError("/etc/hosts", errors.New("line 3: bad column count")),
			want: "PARSE: /etc/hosts: unparseable content: line 3: bad column count",
		},
		{
			name: "access with op",
			err:  NewAccessError("/etc/hosts", "write", errors.New("permission denied")),
			want: "ACCESS: write /etc/hosts: accessor failure: permission denied",
		},
		{
			name: "internal",
			err:  NewInternalError("parser returned no records for non-empty content", nil),
			want: "INTERNAL: parser returned no records for non-empty content",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("pass failed: %w", NewParseError("/etc/hosts", errors.New("bad")))
	assert.True(t, IsParseError(wrapped))
	assert.False(t, IsAccessError(wrapped))

	joined := errors.Join(
		NewAccessError("/a", "write", errors.New("x")),
		NewParseError("/b", errors.New("y")),
	)
	assert.True(t, IsAccessError(joined))
	assert.True(t, IsParseError(joined))

	// A join nested inside an fmt wrap, as a failed pass reports it.
	deep := fmt.Errorf("synchronization failed: %w", errors.Join(
		NewAccessError("/a", "write", errors.New("x")),
		NewInternalError("collaborator bug", nil),
	))
	assert.True(t, IsAccessError(deep))
	assert.True(t, IsInternalError(deep))
	assert.False(t, IsParseError(deep))

	assert.False(t, IsConfigError(errors.New("plain")))
	assert.False(t, IsConfigError(nil))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewAccessError("/etc/hosts", "write", cause)
	assert.ErrorIs(t, err, cause)
}
