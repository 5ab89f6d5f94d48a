// Package slack bridges the chatbot to Slack using Socket Mode.
//
// Direct messages and app mentions become chat turns; each Slack user gets
// their own conversation history.
package slack

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/butcheralt/ariabot/internal/chat"
	"github.com/butcheralt/ariabot/internal/config"
	"github.com/butcheralt/ariabot/internal/provider"
)

// Bot is the Slack Socket Mode front end for the chatbot.
type Bot struct {
	api          *slack.Client
	socketClient *socketmode.Client
	cfg          *config.Config
	provider     provider.Provider
	sessions     *chat.Sessions
	selfID       string
}

// NewBot creates a Slack Socket Mode bot from the configured tokens.
func NewBot(cfg *config.Config, p provider.Provider) (*Bot, error) {
	if cfg.SlackBotToken == "" || cfg.SlackAppToken == "" {
		return nil, fmt.Errorf("slack_bot_token and slack_app_token must both be set in %s", cfg.Path())
	}

	api := slack.New(
		cfg.SlackBotToken,
		slack.OptionAppLevelToken(cfg.SlackAppToken),
	)

	auth, err := api.AuthTest()
	if err != nil {
		return nil, fmt.Errorf("authenticating with Slack: %w", err)
	}

	socketClient := socketmode.New(
		api,
		socketmode.OptionLog(log.New(log.Writer(), "slack-socketmode: ", log.LstdFlags)),
	)

	return &Bot{
		api:          api,
		socketClient: socketClient,
		cfg:          cfg,
		provider:     p,
		sessions:     chat.NewSessions(cfg.BotInstructions),
		selfID:       auth.UserID,
	}, nil
}

// Run connects via Socket Mode and processes events. Blocks until ctx is
// canceled.
func (b *Bot) Run(ctx context.Context) error {
	go b.eventLoop(ctx)
	log.Printf("Slack bot connecting via Socket Mode (%s/%s)...", b.provider.Name(), b.cfg.Model)
	return b.socketClient.RunContext(ctx)
}

func (b *Bot) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.socketClient.Events:
			if !ok {
				return
			}
			b.handleEvent(ctx, evt)
		}
	}
}

func (b *Bot) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		log.Println("Slack: connecting...")
	case socketmode.EventTypeConnected:
		log.Println("Slack: connected")
	case socketmode.EventTypeConnectionError:
		log.Println("Slack: connection error, will retry...")
	case socketmode.EventTypeEventsAPI:
		eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		b.socketClient.Ack(*evt.Request)

		if eventsAPIEvent.Type == slackevents.CallbackEvent {
			b.handleCallbackEvent(ctx, eventsAPIEvent.InnerEvent)
		}
	case socketmode.EventTypeInteractive:
		b.socketClient.Ack(*evt.Request)
	}
}

func (b *Bot) handleCallbackEvent(ctx context.Context, innerEvent slackevents.EventsAPIInnerEvent) {
	switch ev := innerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		text := stripMention(ev.Text)
		b.handleText(ctx, ev.Channel, ev.User, text)
	case *slackevents.MessageEvent:
		// Direct messages only; mentions in channels arrive as AppMentionEvent.
		if ev.ChannelType != "im" || ev.BotID != "" || ev.User == b.selfID || ev.SubType != "" {
			return
		}
		b.handleText(ctx, ev.Channel, ev.User, strings.TrimSpace(ev.Text))
	}
}

// handleText dispatches one inbound message: a couple of plain-word
// commands, otherwise a chat turn.
func (b *Bot) handleText(ctx context.Context, channel, userID, text string) {
	if text == "" || userID == "" {
		return
	}

	switch strings.ToLower(text) {
	case "clear":
		b.sessions.Reset(userID)
		b.post(channel, "✅ Conversation history cleared! Starting fresh.")
		log.Printf("Slack: user %s cleared their conversation history", userID)
		return
	case "help":
		b.post(channel, fmt.Sprintf(
			"🤖 *%s* — just send me a message and I'll respond.\n"+
				"I maintain conversation context per user.\n"+
				"Say `clear` to start fresh.",
			b.cfg.BotName))
		return
	}

	conv := b.sessions.Get(userID)
	log.Printf("Slack: user %s: %s", userID, truncate(text, 50))

	conv.AppendUser(text)
	reply, err := b.provider.Chat(ctx, conv.BuildRequest())
	if err != nil {
		log.Printf("Slack: error processing message from user %s: %v", userID, err)
		b.post(channel, "❌ Sorry, I encountered an error. Please try again or say `clear` to reset.")
		return
	}
	conv.AppendAssistant(reply)

	b.post(channel, reply)
}

func (b *Bot) post(channel, text string) {
	if _, _, err := b.api.PostMessage(channel, slack.MsgOptionText(text, false)); err != nil {
		log.Printf("Slack: failed to post message: %v", err)
	}
}

// stripMention removes the leading <@UXXXX> marker from an app mention.
func stripMention(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "<@") {
		if idx := strings.Index(text, ">"); idx >= 0 {
			text = strings.TrimSpace(text[idx+1:])
		}
	}
	return text
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
