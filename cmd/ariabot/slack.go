package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/butcheralt/ariabot/internal/slack"
)

var slackCmd = &cobra.Command{
	Use:   "slack",
	Short: "Run the Slack bridge",
	Long: `Connect the chatbot to Slack via Socket Mode (no public URL needed).

Requires "slack_bot_token" (xoxb-...) and "slack_app_token" (xapp-...) in
the config file. DMs and app mentions become chat turns; each Slack user
gets an independent conversation history.`,
	RunE: runSlack,
}

func init() {
	rootCmd.AddCommand(slackCmd)
}

func runSlack(cmd *cobra.Command, args []string) error {
	cfg, p, err := loadConfigAndProvider()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for _, issue := range append(cfg.Validate(), p.ValidateConfig(ctx)...) {
		log.Printf("config warning: %s", issue)
	}

	bot, err := slack.NewBot(cfg, p)
	if err != nil {
		return err
	}

	fmt.Printf("🚀 %s - Slack bot started (%s/%s). Press Ctrl+C to stop.\n",
		cfg.BotName, p.Name(), cfg.Model)
	return bot.Run(ctx)
}
