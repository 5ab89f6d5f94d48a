// Package telegram bridges the chatbot to Telegram.
//
// Uses long polling — no public URL or webhook needed. Each Telegram user
// gets their own conversation history; messages for a single user are
// processed in the order Telegram delivers them.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/butcheralt/ariabot/internal/chat"
	"github.com/butcheralt/ariabot/internal/config"
	"github.com/butcheralt/ariabot/internal/provider"
)

// Bot is the Telegram front end for the chatbot.
type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      *config.Config
	provider provider.Provider
	sessions *chat.Sessions
}

// NewBot creates a Telegram bot from the configured token.
func NewBot(cfg *config.Config, p provider.Provider) (*Bot, error) {
	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("telegram_bot_token not set in %s", cfg.Path())
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("creating Telegram bot: %w", err)
	}

	log.Printf("Telegram bot authorized as @%s", api.Self.UserName)

	return &Bot{
		api:      api,
		cfg:      cfg,
		provider: p,
		sessions: chat.NewSessions(cfg.BotInstructions),
	}, nil
}

// Run starts the long-polling loop. Blocks until ctx is canceled.
// Updates are handled inline, so messages arrive at the provider in
// delivery order.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)

	log.Printf("Telegram bot listening for messages (%s/%s)...", b.provider.Name(), b.cfg.Model)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" || msg.From == nil {
		return
	}

	if strings.HasPrefix(text, "/") {
		b.handleCommand(msg, text)
		return
	}

	b.handleChatTurn(ctx, msg, text)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message, text string) {
	cmd := strings.ToLower(strings.Fields(text)[0])
	// Strip @botname suffix (e.g. /clear@mybot → /clear).
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}

	userID := userKey(msg.From.ID)

	switch cmd {
	case "/start":
		b.sessions.Get(userID) // initialize history for new users
		b.reply(msg, fmt.Sprintf(
			"👋 Hello %s! I'm %s.\n\n"+
				"💬 Just send me a message and I'll respond!\n\n"+
				"Commands:\n"+
				"/start - Show this welcome message\n"+
				"/clear - Clear conversation history\n"+
				"/help - Show help information\n"+
				"/info - Show bot configuration",
			msg.From.FirstName, b.cfg.BotName))
		log.Printf("Telegram: user %d (%s) started the bot", msg.From.ID, msg.From.FirstName)

	case "/help":
		b.reply(msg, fmt.Sprintf(
			"🤖 %s - Help\n\n"+
				"📝 How to use:\n"+
				"• Simply send me any message and I'll respond\n"+
				"• I maintain conversation context per user\n"+
				"• Use /clear to start fresh\n\n"+
				"⚙️ Commands:\n"+
				"/start - Restart and show welcome\n"+
				"/clear - Clear your chat history\n"+
				"/help - Show this help\n"+
				"/info - Bot configuration details",
			b.cfg.BotName))

	case "/info":
		b.reply(msg, fmt.Sprintf(
			"ℹ️ Bot Information\n\n"+
				"🤖 Name: %s\n"+
				"🌐 Provider: %s\n"+
				"🧠 Model: %s\n"+
				"🌡️ Temperature: %g\n"+
				"📊 Max Tokens: %d\n"+
				"💬 Messages in History: %d",
			b.cfg.BotName, b.provider.Name(), b.cfg.Model,
			b.cfg.Temperature, b.cfg.MaxTokens,
			b.sessions.Get(userID).Len()))

	case "/clear":
		b.sessions.Reset(userID)
		b.reply(msg, "✅ Conversation history cleared! Starting fresh. 🆕")
		log.Printf("Telegram: user %d cleared their conversation history", msg.From.ID)

	default:
		b.reply(msg, fmt.Sprintf("Unknown command %s. Try /help", cmd))
	}
}

// handleChatTurn runs one provider round trip for a regular message. On
// failure the user's message stays in history and the session continues.
func (b *Bot) handleChatTurn(ctx context.Context, msg *tgbotapi.Message, text string) {
	userID := userKey(msg.From.ID)
	conv := b.sessions.Get(userID)

	log.Printf("Telegram: user %d (%s): %s", msg.From.ID, msg.From.FirstName, truncate(text, 50))

	b.sendTyping(msg.Chat.ID)

	conv.AppendUser(text)
	reply, err := b.provider.Chat(ctx, conv.BuildRequest())
	if err != nil {
		log.Printf("Telegram: error processing message from user %d: %v", msg.From.ID, err)
		b.reply(msg, "❌ Sorry, I encountered an error. Please try again or use /clear to reset.")
		return
	}
	conv.AppendAssistant(reply)

	b.reply(msg, reply)
	log.Printf("Telegram: responded to user %d: %s", msg.From.ID, truncate(reply, 50))
}

func (b *Bot) sendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	b.api.Send(action)
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		log.Printf("Telegram: failed to send message: %v", err)
	}
}

func userKey(id int64) string { return fmt.Sprintf("%d", id) }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
