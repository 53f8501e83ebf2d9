package nats

import (
	"time"
)

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// Stream names.
const (
	StreamChat   = "TRADEMASTER_CHAT"
	StreamEvents = "TRADEMASTER_EVENTS"
)

// Subject constants.
const (
	SubjectInboundChat  = "trademaster.chat.inbound"
	SubjectOutboundChat = "trademaster.chat.outbound"
	SubjectBotEvent     = "trademaster.events.bot"
)

// InboundChat is published when a message arrives at the chat gateway.
type InboundChat struct {
	ID            string    `json:"id"`
	RequesterID   string    `json:"requester_id"`
	RequesterName string    `json:"requester_name"`
	ChannelID     string    `json:"channel_id"`
	ChannelName   string    `json:"channel_name"`
	Text          string    `json:"text"`
	Direct        bool      `json:"direct"`
	Groupchat     bool      `json:"groupchat"`
	ReceivedAt    time.Time `json:"received_at"`
}

// OutboundChat is published to deliver a bot reply back through the gateway.
type OutboundChat struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Text      string `json:"text"`
	InReplyTo string `json:"in_reply_to,omitempty"`
	Proactive bool   `json:"proactive"`
	Groupchat bool   `json:"groupchat"`
}

// BotEvent is published for pipeline lifecycle events.
type BotEvent struct {
	RequesterID string    `json:"requester_id"`
	ChannelID   string    `json:"channel_id"`
	EventType   string    `json:"event_type"` // e.g., "replied", "suppressed"
	Intent      string    `json:"intent,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
