package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/butcheralt/ariabot/internal/telegram"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Run the Telegram bridge",
	Long: `Connect the chatbot to Telegram via long polling.

Requires "telegram_bot_token" in the config file (get one from @BotFather).
Each Telegram user gets an independent conversation history.`,
	RunE: runTelegram,
}

func init() {
	rootCmd.AddCommand(telegramCmd)
}

func runTelegram(cmd *cobra.Command, args []string) error {
	cfg, p, err := loadConfigAndProvider()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Advisory only: the bridge keeps running even with warnings, but they
	// are worth seeing in the log before the first user message arrives.
	for _, issue := range append(cfg.Validate(), p.ValidateConfig(ctx)...) {
		log.Printf("config warning: %s", issue)
	}

	bot, err := telegram.NewBot(cfg, p)
	if err != nil {
		return err
	}

	fmt.Printf("🚀 %s - Telegram bot started (%s/%s). Press Ctrl+C to stop.\n",
		cfg.BotName, p.Name(), cfg.Model)
	return bot.Run(ctx)
}
