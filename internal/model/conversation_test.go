package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConversationIDIsOrderIndependent(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	assert.Equal(t, ConversationID(a, b), ConversationID(b, a))
	assert.NotEqual(t, ConversationID(a, b), ConversationID(a, uuid.New()))
}

func TestSwapStatusTerminal(t *testing.T) {
	assert.True(t, SwapStatusAccepted.Terminal())
	assert.True(t, SwapStatusDeclined.Terminal())
	assert.False(t, SwapStatusPending.Terminal())
	assert.False(t, SwapStatusPendingManager.Terminal())
}

func TestPriorityValidation(t *testing.T) {
	assert.True(t, PriorityUrgent.Valid())
	assert.False(t, MessagePriority("asap").Valid())
}
