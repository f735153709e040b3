package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad %s", "name"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Forbidden("nope"), http.StatusForbidden},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Internal(errors.New("disk"), "boom"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Status(c.err), c.err.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("failed to create review: %w", Conflict("already reviewed").WithData(map[string]string{"reviewId": "r1"}))

	require.True(t, Is(err, KindConflict))
	require.Equal(t, http.StatusConflict, Status(err))

	var ae *Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, map[string]string{"reviewId": "r1"}, ae.Data)
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause, "failed to save")
	require.ErrorIs(t, err, cause)
	require.Equal(t, "failed to save: disk full", err.Error())
}
