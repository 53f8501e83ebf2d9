package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/trademaster-labs/trademaster/internal/config"
	"github.com/trademaster-labs/trademaster/internal/conversation"
	"github.com/trademaster-labs/trademaster/internal/handlers"
	"github.com/trademaster-labs/trademaster/internal/intent"
	"github.com/trademaster-labs/trademaster/internal/memory"
	"github.com/trademaster-labs/trademaster/internal/metrics"
	inats "github.com/trademaster-labs/trademaster/internal/nats"
)

// channelContextTurns is how many recent channel messages feed the
// system prompt on groupchat turns.
const channelContextTurns = 10

// Engine consumes inbound chat messages, runs the response pipeline and
// publishes replies.
type Engine struct {
	cfg         config.BotConfig
	publisher   *inats.Publisher
	consumerMgr *inats.ConsumerManager
	store       *conversation.Store
	mem         *memory.Service
	classifier  Classifier
	registry    *handlers.Registry
	gate        *Gate
	cooldown    *Cooldown
	synthesizer *Synthesizer
}

// Classifier is the intent classification dependency of the engine.
type Classifier interface {
	Classify(ctx context.Context, text string) intent.Result
}

// NewEngine wires the full pipeline.
func NewEngine(
	cfg config.BotConfig,
	publisher *inats.Publisher,
	consumerMgr *inats.ConsumerManager,
	store *conversation.Store,
	mem *memory.Service,
	classifier Classifier,
	registry *handlers.Registry,
	gate *Gate,
	cooldown *Cooldown,
	synthesizer *Synthesizer,
) *Engine {
	return &Engine{
		cfg:         cfg,
		publisher:   publisher,
		consumerMgr: consumerMgr,
		store:       store,
		mem:         mem,
		classifier:  classifier,
		registry:    registry,
		gate:        gate,
		cooldown:    cooldown,
		synthesizer: synthesizer,
	}
}

// Start begins the engine event loop.
func (e *Engine) Start(ctx context.Context) error {
	consumer, err := e.consumerMgr.EnsureConsumer(ctx, inats.StreamChat, "engine", inats.SubjectInboundChat)
	if err != nil {
		return err
	}

	slog.Info("engine started", "consumer", "engine")

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("fetching inbound chat", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			e.handleMessage(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (e *Engine) handleMessage(ctx context.Context, msg jetstream.Msg) {
	var inbound inats.InboundChat
	if err := json.Unmarshal(msg.Data(), &inbound); err != nil {
		slog.Error("unmarshaling inbound chat", "error", err)
		_ = msg.Nak()
		return
	}

	reply, respond, label := e.Process(ctx, inbound)
	if respond {
		outbound := inats.OutboundChat{
			ID:        uuid.New().String(),
			ChannelID: inbound.ChannelID,
			Text:      reply,
			InReplyTo: inbound.ID,
			Proactive: !inbound.Direct,
			Groupchat: inbound.Groupchat,
		}
		if err := e.publisher.PublishOutboundChat(ctx, outbound); err != nil {
			slog.Error("publishing outbound chat", "error", err)
		}
	}

	event := inats.BotEvent{
		RequesterID: inbound.RequesterID,
		ChannelID:   inbound.ChannelID,
		EventType:   "suppressed",
		Intent:      string(label),
		Timestamp:   time.Now().UTC(),
	}
	if respond {
		event.EventType = "replied"
	}
	if err := e.publisher.PublishBotEvent(ctx, event); err != nil {
		slog.Error("publishing bot event", "error", err)
	}

	_ = msg.Ack()
}

// Process runs one message through the pipeline and returns the reply
// text, whether it should be sent, and the classified intent (empty when
// the turn never reached classification). It never panics; a failure
// deep in a stage degrades to an apology on direct messages and silence
// on ambient ones.
func (e *Engine) Process(ctx context.Context, inbound inats.InboundChat) (reply string, respond bool, label intent.Intent) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("pipeline panicked",
				"requester_id", inbound.RequesterID,
				"channel_id", inbound.ChannelID,
				"panic", fmt.Sprint(rec),
			)
			metrics.TurnsTotal.WithLabelValues("error").Inc()
			if inbound.Direct {
				reply, respond = "Sorry, something went wrong on my end. Try that again?", true
			} else {
				reply, respond = "", false
			}
		}
	}()

	if _, err := e.mem.Touch(ctx, inbound.RequesterID, inbound.RequesterName); err != nil {
		slog.Warn("touching profile", "requester_id", inbound.RequesterID, "error", err)
	}
	e.mem.LogChannelMessage(ctx, inbound.ChannelID, inbound.RequesterID, inbound.RequesterName, inbound.Text)

	// Decide whether to respond at all.
	recentExchange := len(e.store.History(inbound.RequesterID)) > 1
	gateCtx, cancel := context.WithTimeout(ctx, e.cfg.StageTimeout)
	should := e.gate.ShouldRespond(gateCtx, inbound, recentExchange)
	cancel()
	if !should {
		metrics.TurnsTotal.WithLabelValues("suppressed").Inc()
		return "", false, ""
	}

	// Refresh the system message with persona plus current memory.
	system := e.cfg.Persona
	if summary, err := e.mem.Summary(ctx, inbound.RequesterID); err != nil {
		slog.Warn("building memory summary", "requester_id", inbound.RequesterID, "error", err)
	} else if summary != "" {
		system += "\n\nWhat you know about this user:\n" + summary
	}
	if inbound.Groupchat {
		if msgs, err := e.mem.ChannelContext(ctx, inbound.ChannelID, channelContextTurns); err != nil {
			slog.Warn("loading channel context", "channel_id", inbound.ChannelID, "error", err)
		} else if len(msgs) > 0 {
			var b strings.Builder
			b.WriteString("\n\nRecent channel messages:\n")
			for _, m := range msgs {
				fmt.Fprintf(&b, "%s: %s\n", m.Username, m.Content)
			}
			system += strings.TrimRight(b.String(), "\n")
		}
	}
	history := e.store.Refresh(inbound.RequesterID, system)

	// Classify and dispatch.
	stageCtx, cancel := context.WithTimeout(ctx, e.cfg.StageTimeout)
	res := e.classifier.Classify(stageCtx, inbound.Text)
	cancel()
	label = res.Intent

	requester := handlers.Requester{ID: inbound.RequesterID, Name: inbound.RequesterName}
	stageCtx, cancel = context.WithTimeout(ctx, e.cfg.StageTimeout)
	result := e.registry.Dispatch(stageCtx, res.Intent, inbound.Text, requester)
	cancel()

	// Synthesize the final reply.
	stageCtx, cancel = context.WithTimeout(ctx, e.cfg.StageTimeout)
	reply = e.synthesizer.Synthesize(stageCtx, history, inbound.Text, result)
	cancel()

	// The exchange always lands in the window and the transcript; the
	// cooldown below gates emission only.
	e.store.AppendExchange(inbound.RequesterID, inbound.Text, reply)
	e.mem.LogTurn(ctx, inbound.RequesterID, inbound.ChannelID, inbound.Text, reply)

	if !inbound.Direct {
		if !e.cooldown.Allow(inbound.ChannelID) {
			slog.Debug("proactive reply suppressed by cooldown", "channel_id", inbound.ChannelID)
			metrics.TurnsTotal.WithLabelValues("suppressed").Inc()
			return "", false, label
		}
		e.cooldown.Record(inbound.ChannelID)
	}

	metrics.TurnsTotal.WithLabelValues("replied").Inc()
	return reply, true, label
}

// ResetConversation clears the in-process window for a requester and
// reports whether any turns existed.
func (e *Engine) ResetConversation(requesterID string) bool {
	return e.store.Reset(requesterID)
}
