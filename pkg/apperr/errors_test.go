package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type kindedErr struct{}

func (kindedErr) Error() string { return "kinded" }
func (kindedErr) Kind() Kind    { return KindInsufficientStock }

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindInternal},
		{"plain", errors.New("boom"), KindInternal},
		{"not found", NotFound("order %d not found", 7), KindNotFound},
		{"wrapped", fmt.Errorf("load: %w", InvalidArgument("bad")), KindInvalidArgument},
		{"self classified", fmt.Errorf("x: %w", kindedErr{}), KindInsufficientStock},
		{"conflict", Conflict("in use"), KindConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("get: %w", NotFound("product %d not found", 3))
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrInvalidArgument)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("unique violation")
	err := Wrap(KindConflict, cause, "product is referenced")
	require.ErrorIs(t, err, cause)
	require.Equal(t, "product is referenced: unique violation", err.Error())
	require.Nil(t, Wrap(KindConflict, nil, "x"))
}
