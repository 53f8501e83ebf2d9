package gateway

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
	"gosrc.io/xmpp"

	inats "github.com/trademaster-labs/trademaster/internal/nats"
)

// OutboundRelay consumes bot replies from NATS and sends them via XMPP.
type OutboundRelay struct {
	handler     *Handler
	sender      xmpp.Sender
	consumerMgr *inats.ConsumerManager
	fromJID     string
}

// NewOutboundRelay creates a new OutboundRelay. fromJID is the bot's
// own JID used as the stanza sender.
func NewOutboundRelay(handler *Handler, sender xmpp.Sender, consumerMgr *inats.ConsumerManager, fromJID string) *OutboundRelay {
	return &OutboundRelay{
		handler:     handler,
		sender:      sender,
		consumerMgr: consumerMgr,
		fromJID:     fromJID,
	}
}

// Start begins consuming replies and sending them via XMPP.
func (r *OutboundRelay) Start(ctx context.Context) error {
	consumer, err := r.consumerMgr.EnsureConsumer(ctx, inats.StreamChat, "outbound-relay", inats.SubjectOutboundChat)
	if err != nil {
		return err
	}

	slog.Info("outbound relay started", "consumer", "outbound-relay")

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("fetching outbound chat", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			var outbound inats.OutboundChat
			if err := json.Unmarshal(msg.Data(), &outbound); err != nil {
				slog.Error("unmarshaling outbound chat", "error", err)
				_ = msg.Nak()
				continue
			}

			if err := r.handler.SendOutboundChat(r.sender, r.fromJID, outbound); err != nil {
				slog.Error("sending outbound XMPP message", "error", err, "to", outbound.ChannelID)
				_ = msg.Nak()
				continue
			}

			slog.Debug("sent outbound XMPP message", "to", outbound.ChannelID, "proactive", outbound.Proactive)
			_ = msg.Ack()
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}
