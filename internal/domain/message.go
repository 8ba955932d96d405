package domain

import (
	"strings"
	"time"
)

// Identity tells which participant wrote a message.
type Identity int

const (
	Unknown Identity = iota
	Sender
	Recipient
)

func (i Identity) String() string {
	switch i {
	case Sender:
		return "sender"
	case Recipient:
		return "recipient"
	default:
		return "unknown"
	}
}

// Message is one accepted transcript line.
type Message struct {
	Timestamp time.Time
	Content   string // Text after the "DD/MM/YYYY, HH:MM - " prefix, trimmed
	Identity  Identity
}

// Participants holds the display names of the two chat partners.
type Participants struct {
	Sender    string
	Recipient string
}

// Identify classifies content by display-name presence. The sender name is
// checked first, so content mentioning both names counts as Sender.
// An empty name never matches.
func (p Participants) Identify(content string) Identity {
	if p.Sender != "" && strings.Contains(content, p.Sender) {
		return Sender
	}
	if p.Recipient != "" && strings.Contains(content, p.Recipient) {
		return Recipient
	}
	return Unknown
}

// Name returns the display name for an identity, or "Unknown".
func (p Participants) Name(i Identity) string {
	switch i {
	case Sender:
		return p.Sender
	case Recipient:
		return p.Recipient
	default:
		return "Unknown"
	}
}
