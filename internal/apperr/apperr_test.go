package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Validation("slug", "required"), http.StatusBadRequest},
		{Unauthorized("nope"), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{External("upstream", errors.New("boom")), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), "for %v", tt.err)
	}
}

func TestBodyCarriesFieldAndKind(t *testing.T) {
	body := Body(Validation("email", "must be valid"))
	assert.Equal(t, string(KindValidation), body["kind"])
	assert.Equal(t, "email", body["field"])
	assert.Equal(t, "must be valid", body["error"])
}

func TestWrapUnwraps(t *testing.T) {
	inner := errors.New("row not found")
	err := Wrap(KindNotFound, "movie missing", inner)
	assert.True(t, errors.Is(err, inner))
	assert.True(t, IsNotFound(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("whatever")))
}
