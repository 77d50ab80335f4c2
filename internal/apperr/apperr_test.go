package apperr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"fenrir/internal/apperr"
)

func TestKindOfDirectError(t *testing.T) {
	err := apperr.New(apperr.KindInsufficientResources, "need more cash")
	assert.Equal(t, apperr.KindInsufficientResources, apperr.KindOf(err))
}

func TestKindOfWrappedChain(t *testing.T) {
	inner := errors.New("sql: constraint failed")
	err := apperr.Wrap(apperr.KindDuplicate, inner, "duplicate ticker")
	assert.Equal(t, apperr.KindDuplicate, apperr.KindOf(err))
	assert.ErrorIs(t, err, inner)
}

func TestKindOfUnknownErrorDefaultsInternal(t *testing.T) {
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("boom")))
}
