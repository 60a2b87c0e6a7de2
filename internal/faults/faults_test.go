package faults

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.EqualError(t, Validation("amount must be greater than %d", 0), "amount must be greater than 0")
	assert.EqualError(t, NotFound("account %d not found", 9), "account 9 not found")
	assert.EqualError(t, Conflict("claim is already settled"), "claim is already settled")
}

func TestIsBusiness(t *testing.T) {
	assert.True(t, IsBusiness(Validation("bad")))
	assert.True(t, IsBusiness(NotFound("missing")))
	assert.True(t, IsBusiness(Conflict("nope")))
	assert.True(t, IsBusiness(fmt.Errorf("wrapped: %w", Conflict("nope"))))
	assert.False(t, IsBusiness(errors.New("disk on fire")))
	assert.False(t, IsBusiness(nil))
}
