package xerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeErrorAs(t *testing.T) {
	var target *CodeError
	err := error(New(UnsupportedType, "bad type"))
	require.ErrorAs(t, err, &target)
	assert.Equal(t, UnsupportedType, target.Code)
	assert.Equal(t, "bad type", target.Message)

	assert.False(t, errors.As(errors.New("plain"), &target))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"extraction error maps to 400", UnsupportedType, BadRequest},
		{"payload error maps to 400", PayloadTooLarge, BadRequest},
		{"embedding error maps to 500", EmbeddingFailed, InternalServerError},
		{"sync error maps to 500", SyncFailed, InternalServerError},
		{"plain http code passes through", NotFound, NotFound},
		{"unauthorized passes through", Unauthorized, Unauthorized},
		{"ok stays 200", OK, OK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}
