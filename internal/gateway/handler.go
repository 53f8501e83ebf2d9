package gateway

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gosrc.io/xmpp"
	"gosrc.io/xmpp/stanza"

	inats "github.com/trademaster-labs/trademaster/internal/nats"
)

// Handler bridges incoming XMPP stanzas to NATS chat events.
type Handler struct {
	publisher *inats.Publisher
	botName   string
}

// NewHandler creates a new XMPP stanza handler. botName is the nick the
// bot answers to in group chats.
func NewHandler(publisher *inats.Publisher, botName string) *Handler {
	return &Handler{publisher: publisher, botName: strings.ToLower(botName)}
}

// HandleMessage converts <message> stanzas into inbound chat events.
func (h *Handler) HandleMessage(s xmpp.Sender, p stanza.Packet) {
	msg, ok := p.(stanza.Message)
	if !ok {
		return
	}

	if msg.Body == "" {
		return
	}

	slog.Debug("XMPP message received",
		"from", msg.From,
		"to", msg.To,
		"type", string(msg.Type),
	)

	inbound := h.toInbound(msg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.publisher.PublishInboundChat(ctx, inbound); err != nil {
		slog.Error("publishing inbound chat", "error", err, "from", msg.From)
		h.sendError(s, msg.From, msg.To, "Internal error processing your message")
	}
}

// toInbound maps a stanza to a chat event. One-to-one chats are direct;
// in group chats only a message mentioning the bot's nick counts as
// direct, everything else is ambient chatter.
func (h *Handler) toInbound(msg stanza.Message) inats.InboundChat {
	bare, resource := splitJID(msg.From)

	inbound := inats.InboundChat{
		ID:         uuid.New().String(),
		Text:       msg.Body,
		ReceivedAt: time.Now().UTC(),
	}

	if msg.Type == "groupchat" {
		inbound.ChannelID = bare
		inbound.ChannelName = localPart(bare)
		inbound.RequesterID = msg.From
		inbound.RequesterName = resource
		inbound.Direct = h.mentioned(msg.Body)
		inbound.Groupchat = true
	} else {
		inbound.ChannelID = bare
		inbound.ChannelName = resource
		inbound.RequesterID = bare
		inbound.RequesterName = localPart(bare)
		inbound.Direct = true
	}

	return inbound
}

func (h *Handler) mentioned(body string) bool {
	return h.botName != "" && strings.Contains(strings.ToLower(body), h.botName)
}

// HandlePresence auto-approves subscribe requests.
func (h *Handler) HandlePresence(s xmpp.Sender, p stanza.Packet) {
	pres, ok := p.(stanza.Presence)
	if !ok {
		return
	}

	slog.Debug("XMPP presence received",
		"from", pres.From,
		"to", pres.To,
		"type", string(pres.Type),
	)

	if pres.Type == "subscribe" {
		reply := stanza.Presence{
			Attrs: stanza.Attrs{
				From: pres.To,
				To:   pres.From,
				Type: "subscribed",
			},
		}
		if err := s.Send(reply); err != nil {
			slog.Error("sending presence subscribed reply", "error", err)
		}
	}
}

// HandleIQ logs incoming <iq> stanzas.
func (h *Handler) HandleIQ(_ xmpp.Sender, p stanza.Packet) {
	iq, ok := p.(*stanza.IQ)
	if !ok {
		return
	}
	slog.Debug("XMPP IQ received", "from", iq.From, "to", iq.To, "type", string(iq.Type))
}

// SendOutboundChat sends a reply stanza to the channel it belongs to.
func (h *Handler) SendOutboundChat(s xmpp.Sender, from string, outbound inats.OutboundChat) error {
	msgType := stanza.StanzaType("chat")
	if outbound.Groupchat {
		msgType = "groupchat"
	}

	msg := stanza.Message{
		Attrs: stanza.Attrs{
			From: from,
			To:   outbound.ChannelID,
			Type: msgType,
			Id:   outbound.ID,
		},
		Body: outbound.Text,
	}
	return s.Send(msg)
}

func (h *Handler) sendError(s xmpp.Sender, to, from, body string) {
	msg := stanza.Message{
		Attrs: stanza.Attrs{
			From: from,
			To:   to,
			Type: "chat",
		},
		Body: body,
	}
	if err := s.Send(msg); err != nil {
		slog.Error("sending error message", "error", err)
	}
}

// splitJID returns the bare JID and the resource part.
func splitJID(jid string) (bare, resource string) {
	bare = jid
	if idx := strings.Index(jid, "/"); idx >= 0 {
		bare = jid[:idx]
		resource = jid[idx+1:]
	}
	return bare, resource
}

// localPart returns the part of a bare JID before the @.
func localPart(bare string) string {
	if idx := strings.Index(bare, "@"); idx >= 0 {
		return bare[:idx]
	}
	return bare
}
