// ariabot
//
// A portable AI chatbot. One config file, several hosted LLM providers,
// three front ends: an interactive terminal session, a Telegram bridge,
// and a Slack bridge.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/butcheralt/ariabot/internal/config"
	"github.com/butcheralt/ariabot/internal/provider"
)

var (
	version    = "dev"
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "ariabot",
	Short: "ariabot - Portable AI Chatbot",
	Long: `ariabot is a portable AI chatbot that talks to multiple LLM providers
(OpenAI, Anthropic, Cohere, Groq, Ollama) through one configuration file.

  ariabot setup                Configure the bot (first time)
  ariabot chat                 Start an interactive chat session
  ariabot telegram             Run the Telegram bridge
  ariabot slack                Run the Slack bridge
  ariabot config show          Show current configuration`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath,
		"config", envOr("ARIABOT_CONFIG", "config.json"), "path to the configuration file")
}

func main() {
	// A .env file next to the binary feeds the API-key fallback chain.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadConfigAndProvider loads the config file and constructs the configured
// provider. Both failure modes are fatal at startup.
func loadConfigAndProvider() (*config.Config, provider.Provider, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	p, err := provider.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, p, nil
}
