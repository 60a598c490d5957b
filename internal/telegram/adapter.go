// Package telegram bridges the Telegram Bot API to the gateway: long-polls
// for updates, answers bot commands locally, and forwards free text into the
// conversation loop. First contact subscribes the chat to the daily briefing.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/copilot/internal/gateway"
	"github.com/user/copilot/internal/grounding"
	"github.com/user/copilot/internal/record"
	"github.com/user/copilot/internal/state"
	"github.com/user/copilot/internal/types"
)

const maxTelegramMessage = 4096

const recipientPrefix = "telegram:"

// Adapter bridges Telegram to the gateway.
type Adapter struct {
	bot         *tgbotapi.BotAPI
	gateway     *gateway.Gateway
	subscribers *state.SubscriberStore
	record      types.RecordStore

	vehicle         string
	fallbackMileage int
	intervalKM      int
}

// New creates a Telegram adapter.
func New(token string, gw *gateway.Gateway, subs *state.SubscriberStore, store types.RecordStore, vehicle string, fallbackMileage, intervalKM int) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Adapter{
		bot:             bot,
		gateway:         gw,
		subscribers:     subs,
		record:          store,
		vehicle:         vehicle,
		fallbackMileage: fallbackMileage,
		intervalKM:      intervalKM,
	}, nil
}

// Start begins long-polling for Telegram updates.
func (a *Adapter) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			a.handleMessage(ctx, update.Message)
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return
		}
	}
}

func (a *Adapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	a.subscribe(msg.Chat.ID)

	if msg.IsCommand() {
		a.handleCommand(ctx, msg)
		return
	}

	chatID := msg.Chat.ID
	inbound := &types.InboundMessage{
		Source:    "telegram",
		UserID:    types.UserID(strconv.FormatInt(msg.From.ID, 10)),
		Recipient: buildRecipient(msg.Chat.ID),
		Text:      msg.Text,
	}

	err := a.gateway.HandleInbound(ctx, inbound, gateway.WithOnComplete(func(response string) {
		a.sendResponse(chatID, response)
	}))
	if err != nil {
		slog.Error("handle inbound failed", "chat_id", chatID, "error", err)
		a.sendResponse(chatID, gateway.Apology)
	}
}

// subscribe registers the chat for the daily briefing, once.
func (a *Adapter) subscribe(chatID int64) {
	added, err := a.subscribers.Add(buildRecipient(chatID))
	if err != nil {
		slog.Warn("subscribe failed", "chat_id", chatID, "error", err)
		return
	}
	if added {
		slog.Info("new briefing subscriber", "chat_id", chatID)
	}
}

func (a *Adapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		a.sendResponse(chatID, fmt.Sprintf(
			"Hi, I'm Alex, your co-pilot for the %s. Ask me about the car, tell me what work you've done on it, and I'll send you a briefing every morning.", a.vehicle))

	case "status":
		rec, err := a.record.Snapshot(ctx)
		if err != nil {
			slog.Error("status command failed", "error", err)
			a.sendResponse(chatID, "Error reading the service record.")
			return
		}
		a.sendResponse(chatID, grounding.OilSummary(rec, time.Now(), a.fallbackMileage, a.intervalKM))

	case "report":
		rec, err := a.record.Snapshot(ctx)
		if err != nil {
			slog.Error("report command failed", "error", err)
			a.sendResponse(chatID, "Error reading the service record.")
			return
		}
		a.sendResponse(chatID, record.RenderReport(a.vehicle, rec))

	default:
		a.sendResponse(chatID, "Unknown command. Available: /start, /status, /report")
	}
}

// SendTo delivers a message to a recipient of the form "telegram:<chatID>".
// This is the delivery-registry handler for the briefing fan-out.
func (a *Adapter) SendTo(recipient types.RecipientID, text string) error {
	raw := strings.TrimPrefix(string(recipient), recipientPrefix)
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("bad telegram recipient %q: %w", recipient, err)
	}
	a.sendResponse(chatID, text)
	return nil
}

func (a *Adapter) sendResponse(chatID int64, text string) {
	parts := splitMessage(text)
	for _, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		if _, err := a.bot.Send(msg); err != nil {
			slog.Error("send message failed", "chat_id", chatID, "error", err)
		}
	}
}

func splitMessage(text string) []string {
	if len(text) <= maxTelegramMessage {
		return []string{text}
	}
	var parts []string
	for len(text) > 0 {
		end := maxTelegramMessage
		if end > len(text) {
			end = len(text)
		}
		parts = append(parts, text[:end])
		text = text[end:]
	}
	return parts
}

func buildRecipient(chatID int64) types.RecipientID {
	return types.NewRecipientID("telegram", strconv.FormatInt(chatID, 10))
}
