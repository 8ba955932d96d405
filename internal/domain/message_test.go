package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParticipantsIdentify(t *testing.T) {
	p := Participants{Sender: "Alice", Recipient: "Bob"}

	assert.Equal(t, Sender, p.Identify("Alice: hi"))
	assert.Equal(t, Recipient, p.Identify("Bob: hello"))
	assert.Equal(t, Unknown, p.Identify("Carol: hey"))
	// Presence-based: a mention of the sender wins over the author prefix.
	assert.Equal(t, Sender, p.Identify("Bob: ask Alice"))
}

func TestParticipantsIdentifyEmptyName(t *testing.T) {
	p := Participants{Recipient: "Bob"}

	assert.Equal(t, Unknown, p.Identify("anything"))
	assert.Equal(t, Recipient, p.Identify("Bob: hi"))
}

func TestIdentityString(t *testing.T) {
	assert.Equal(t, "sender", Sender.String())
	assert.Equal(t, "recipient", Recipient.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "Unknown", Participants{Sender: "A"}.Name(Unknown))
}
