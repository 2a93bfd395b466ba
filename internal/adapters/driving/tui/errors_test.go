package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	all := map[error]string{
		ErrMissingChatService:       "chat service",
		ErrMissingConversationStore: "conversation store",
		ErrInvalidPorts:             "invalid ports",
		ErrNothingToCopy:            "no answer",
	}

	for err, fragment := range all {
		assert.Contains(t, err.Error(), fragment)
		assert.Contains(t, err.Error(), "tui: ")
		for other := range all {
			if other != err {
				assert.False(t, errors.Is(err, other))
			}
		}
	}
}
