// Package event models the inbound envelope posted by the messaging platform
// and the classification rules applied to it before dispatch.
package event

import (
	"encoding/json"
	"strings"
)

// Type discriminates the top-level envelope.
type Type string

const (
	TypeURLVerification Type = "url_verification"
	TypeEventCallback   Type = "event_callback"
	TypeOther           Type = "other"
)

// Envelope is the top-level payload of POST /events.
type Envelope struct {
	Type      string       `json:"type"`
	Challenge string       `json:"challenge"`
	EventID   string       `json:"event_id"`
	TeamID    string       `json:"team_id"`
	Event     MessageEvent `json:"event"`
}

// MessageEvent is the nested event object of an event_callback envelope.
type MessageEvent struct {
	Type    string `json:"type"` // "message", "app_mention"
	User    string `json:"user"`
	Channel string `json:"channel"`
	Text    string `json:"text"`
	BotID   string `json:"bot_id"` // non-empty if produced by a bot
}

// Parse decodes a raw request body. Empty or malformed bodies yield an empty
// envelope rather than an error: a garbled payload must never turn into a
// server-side failure on this path.
func Parse(body []byte) Envelope {
	var env Envelope
	if len(body) == 0 {
		return env
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}
	}
	return env
}

// Classify maps the envelope's type string onto the known set.
func (e Envelope) Classify() Type {
	switch e.Type {
	case string(TypeURLVerification):
		return TypeURLVerification
	case string(TypeEventCallback):
		return TypeEventCallback
	default:
		return TypeOther
	}
}

// FromBot reports whether the nested event carries a bot-origin marker.
// Bot-originated events never get replies; answering them would let two bots
// talk to each other forever.
func (m MessageEvent) FromBot() bool {
	return m.BotID != ""
}

// StripMention isolates the human-authored portion of a message. When the text
// contains a mention marker, everything up to and including the first ">" is
// dropped and the remainder trimmed. Text without a marker passes through
// unchanged.
func StripMention(text string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "<@") {
		return text
	}
	if _, rest, ok := strings.Cut(text, ">"); ok {
		return strings.TrimSpace(rest)
	}
	return text
}
