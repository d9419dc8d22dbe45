package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"inventory/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperr.Kind(""), apperr.KindOf(nil))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(apperr.NotFound("product %s not found", "x")))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("boom")))

	wrapped := fmt.Errorf("create product: %w", apperr.Conflict("sku %q already exists", "W-1"))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(wrapped))
	assert.True(t, apperr.Is(wrapped, apperr.KindConflict))
}

func TestError_MessageAndUnwrap(t *testing.T) {
	err := apperr.Unavailable("store call timed out", context.DeadlineExceeded)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, err.Retryable())
	assert.Equal(t, "store call timed out: context deadline exceeded", err.Error())
}

func TestValidation_CarriesFields(t *testing.T) {
	err := apperr.Validation([]apperr.FieldError{
		{Path: "sku", Message: "is required"},
		{Path: "price", Message: "must be greater than or equal to 0"},
	})

	assert.False(t, err.Retryable())
	assert.Len(t, apperr.FieldsOf(err), 2)
	assert.Contains(t, err.Error(), "sku: is required")
	assert.Nil(t, apperr.FieldsOf(errors.New("plain")))
}
