package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnavailableError(t *testing.T) {
	t.Run("Should match ErrUnavailable and keep its cause", func(t *testing.T) {
		err := fmt.Errorf("borrow: %w", NewUnavailableError(ReasonPoolExhausted, context.DeadlineExceeded))

		assert.True(t, IsUnavailable(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, ReasonPoolExhausted, UnavailableReason(err))
		assert.Equal(t, "borrow: dependency unavailable (pool_exhausted): context deadline exceeded", err.Error())
	})

	t.Run("Should have no reason for other errors", func(t *testing.T) {
		assert.Empty(t, UnavailableReason(errors.New("boom")))
		assert.False(t, IsUnavailable(errors.New("boom")))
	})
}

func TestDomainError(t *testing.T) {
	t.Run("Should unwrap to its base", func(t *testing.T) {
		assert.True(t, IsNotFound(NewNotFoundError("User")))
		assert.True(t, IsValidationError(NewValidationError("email", "email is required")))
		assert.False(t, IsNotFound(NewValidationError("email", "email is required")))
	})

	t.Run("Should format the field when present", func(t *testing.T) {
		assert.Equal(t, "invalid input: email is required (field: email)",
			NewValidationError("email", "email is required").Error())
		assert.Equal(t, "resource not found: User", NewNotFoundError("User").Error())
	})
}
