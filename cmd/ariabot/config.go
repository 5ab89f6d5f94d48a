package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/butcheralt/ariabot/internal/config"
	"github.com/butcheralt/ariabot/internal/provider"
)

// providerInfo describes one provider for the setup wizard.
type providerInfo struct {
	Name         string
	Display      string
	Models       []string
	DefaultModel string
	KeyHelp      string
	NeedsKey     bool
}

// wizardProviders lists every provider in display order.
var wizardProviders = []providerInfo{
	{
		Name:         "openai",
		Display:      "OpenAI",
		Models:       []string{"gpt-3.5-turbo", "gpt-4", "gpt-4-turbo-preview", "gpt-3.5-turbo-16k"},
		DefaultModel: "gpt-3.5-turbo",
		KeyHelp:      "Get your API key from: https://platform.openai.com/api-keys",
		NeedsKey:     true,
	},
	{
		Name:         "anthropic",
		Display:      "Anthropic (Claude)",
		Models:       []string{"claude-3-sonnet-20240229", "claude-3-opus-20240229", "claude-3-haiku-20240307"},
		DefaultModel: "claude-3-sonnet-20240229",
		KeyHelp:      "Get your API key from: https://console.anthropic.com/",
		NeedsKey:     true,
	},
	{
		Name:         "cohere",
		Display:      "Cohere",
		Models:       []string{"command", "command-light", "command-nightly"},
		DefaultModel: "command",
		KeyHelp:      "Get your API key from: https://dashboard.cohere.ai/api-keys",
		NeedsKey:     true,
	},
	{
		Name:    "groq",
		Display: "Groq (Ultra-Fast)",
		Models: []string{
			"groq/compound", "groq/compound-mini", "llama-3.3-70b-versatile",
			"llama-3.1-8b-instant", "gemma2-9b-it", "deepseek-r1-distill-llama-70b",
			"openai/gpt-oss-120b",
		},
		DefaultModel: "groq/compound",
		KeyHelp:      "Get your API key from: https://console.groq.com/keys",
		NeedsKey:     true,
	},
	{
		Name:         "ollama",
		Display:      "Ollama (Local)",
		Models:       []string{"llama2", "codellama", "mistral"},
		DefaultModel: "llama2",
		KeyHelp:      "No API key needed for local Ollama installation",
		NeedsKey:     false,
	},
}

// instructionPresets are the personality choices offered in step 1.
var instructionPresets = []string{
	"You are a helpful assistant. Be concise and friendly in your responses.",
	"You are a coding assistant. Help users with programming questions and provide clear code examples.",
	"You are a creative writing assistant. Help users brainstorm ideas and improve their writing.",
	"You are a customer service bot. Be polite, helpful, and professional in all interactions.",
}

// ---------------------------------------------------------------------------
// Cobra commands
// ---------------------------------------------------------------------------

var (
	setupNonInteractive bool
	setupProvider       string
	setupModel          string
	setupAPIKey         string
	setupBotName        string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Long: `Guided setup that walks you through configuring your chatbot step by
step: bot identity, provider and model, API key, and behavior settings.
Writes the config file (config.json by default).

Non-interactive mode for scripting:
  ariabot setup --non-interactive --provider=groq --api-key=gsk_xxx`,
	RunE: runSetup,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage chatbot configuration",
	Long: `Manage chatbot configuration.

  ariabot config show             Show current configuration
  ariabot config set KEY VALUE    Set a single config value (dotted keys OK)
  ariabot config path             Print config file path`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display all configured values. Secrets are masked.",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a config value",
	Long: `Set a single configuration value. Dotted keys reach nested settings:
  ariabot config set model llama-3.3-70b-versatile
  ariabot config set settings.show_token_usage true`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(configPath)
		return nil
	},
}

func init() {
	setupCmd.Flags().BoolVar(&setupNonInteractive, "non-interactive", false, "Run without prompts (requires --provider)")
	setupCmd.Flags().StringVar(&setupProvider, "provider", "", "Provider name (non-interactive mode)")
	setupCmd.Flags().StringVar(&setupModel, "model", "", "Model name (non-interactive mode)")
	setupCmd.Flags().StringVar(&setupAPIKey, "api-key", "", "API key (non-interactive mode)")
	setupCmd.Flags().StringVar(&setupBotName, "name", "Assistant", "Bot name (non-interactive mode)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(configCmd)
}

// ---------------------------------------------------------------------------
// Interactive helpers
// ---------------------------------------------------------------------------

// wizard holds shared state for the interactive setup.
type wizard struct {
	reader *bufio.Reader
	doc    map[string]any
}

func newWizard() *wizard {
	return &wizard{
		reader: bufio.NewReader(os.Stdin),
		doc:    make(map[string]any),
	}
}

// askString prompts for a value, returning def when the user presses Enter.
func (w *wizard) askString(prompt, def string) (string, error) {
	if def != "" {
		fmt.Printf("  %s [%s]: ", prompt, def)
	} else {
		fmt.Printf("  %s: ", prompt)
	}
	input, err := w.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return def, nil
	}
	return input, nil
}

// askYesNo asks a yes/no question and returns true for yes.
// defaultYes controls what happens when the user presses Enter.
func (w *wizard) askYesNo(prompt string, defaultYes bool) (bool, error) {
	hint := "[Y/n]"
	if !defaultYes {
		hint = "[y/N]"
	}
	fmt.Printf("  %s %s ", prompt, hint)
	input, err := w.reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultYes, nil
	}
	return input == "y" || input == "yes", nil
}

// askChoice presents a numbered menu. With allowCustom, any non-numeric
// input is accepted verbatim.
func (w *wizard) askChoice(prompt string, choices []string, def string, allowCustom bool) (string, error) {
	fmt.Printf("\n  %s\n", prompt)
	for i, choice := range choices {
		marker := ""
		if choice == def {
			marker = " (default)"
		}
		fmt.Printf("    %d. %s%s\n", i+1, choice, marker)
	}
	if allowCustom {
		fmt.Println("    Or type a custom value.")
	}

	for {
		fmt.Printf("  Enter choice [1-%d]: ", len(choices))
		input, err := w.reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		input = strings.TrimSpace(input)
		if input == "" && def != "" {
			return def, nil
		}
		if n, err := strconv.Atoi(input); err == nil {
			if n >= 1 && n <= len(choices) {
				return choices[n-1], nil
			}
			fmt.Printf("  Please enter a number between 1 and %d.\n", len(choices))
			continue
		}
		if allowCustom && input != "" {
			return input, nil
		}
		fmt.Println("  Please enter a valid number.")
	}
}

// askMultiline reads lines until two consecutive empty ones.
func (w *wizard) askMultiline(prompt string) (string, error) {
	fmt.Printf("  %s (press Enter twice when done):\n", prompt)
	var lines []string
	empty := 0
	for empty < 2 {
		line, err := w.reader.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			empty++
			continue
		}
		empty = 0
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// maskSecret masks a secret string, showing only the first 4 and last 4 characters.
func maskSecret(s string) string {
	if len(s) <= 12 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}

// ---------------------------------------------------------------------------
// Setup wizard (guided, multi-step)
// ---------------------------------------------------------------------------

func runSetup(cmd *cobra.Command, args []string) error {
	if setupNonInteractive {
		return runNonInteractiveSetup()
	}

	w := newWizard()

	fmt.Println()
	fmt.Println("  Portable AI Chatbot — Setup")
	fmt.Println("  ───────────────────────────")
	fmt.Println("  This wizard will walk you through configuring your chatbot.")
	fmt.Println("  Press Enter to accept the default shown in [brackets].")
	fmt.Println()

	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := w.askYesNo(fmt.Sprintf("%s already exists. Overwrite?", configPath), false)
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("  Setup cancelled.")
			return nil
		}
		fmt.Println()
	}

	// ── Step 1: Bot identity ─────────────────────────────────────────────
	fmt.Println("  Step 1 of 4 — Bot Identity")
	name, err := w.askString("What should your bot be called?", "Assistant")
	if err != nil {
		return err
	}
	w.doc["bot_name"] = name

	presets := append([]string{}, instructionPresets...)
	presets = append(presets, "Custom (enter your own instructions)")
	instructions, err := w.askChoice("Choose a personality preset:", presets, instructionPresets[0], false)
	if err != nil {
		return err
	}
	if instructions == presets[len(presets)-1] {
		instructions, err = w.askMultiline("Enter your custom instructions")
		if err != nil {
			return err
		}
		if instructions == "" {
			instructions = instructionPresets[0]
		}
	}
	w.doc["bot_instructions"] = instructions
	fmt.Println()

	// ── Step 2: Provider and model ───────────────────────────────────────
	fmt.Println("  Step 2 of 4 — AI Provider")
	displays := make([]string, len(wizardProviders))
	for i, info := range wizardProviders {
		displays[i] = info.Display
	}
	chosen, err := w.askChoice("Choose your AI provider:", displays, "Groq (Ultra-Fast)", false)
	if err != nil {
		return err
	}
	var info providerInfo
	for _, pi := range wizardProviders {
		if pi.Display == chosen {
			info = pi
			break
		}
	}
	w.doc["api_provider"] = info.Name

	model, err := w.askChoice(
		fmt.Sprintf("Choose a model for %s (or type your own):", info.Display),
		info.Models, info.DefaultModel, true)
	if err != nil {
		return err
	}
	w.doc["model"] = model
	fmt.Printf("  ✓ Model set to: %s\n", model)

	if info.NeedsKey {
		fmt.Printf("\n  %s\n", info.KeyHelp)
		key, err := w.askString(fmt.Sprintf("Enter your %s API key (or press Enter to set later)", info.Display), "")
		if err != nil {
			return err
		}
		w.doc["api_key"] = key
	} else {
		w.doc["api_key"] = ""
		ollamaURL, err := w.askString("Ollama server URL", "http://localhost:11434")
		if err != nil {
			return err
		}
		w.doc["ollama_url"] = ollamaURL
	}
	fmt.Println()

	// ── Step 3: Behavior settings ────────────────────────────────────────
	fmt.Println("  Step 3 of 4 — Behavior Settings")
	tempStr, err := w.askString("Temperature (0.0-2.0, higher = more creative)", "0.7")
	if err != nil {
		return err
	}
	temperature, err := strconv.ParseFloat(tempStr, 64)
	if err != nil {
		temperature = 0.7
	}
	w.doc["temperature"] = temperature

	tokensStr, err := w.askString("Maximum response length (tokens)", "150")
	if err != nil {
		return err
	}
	maxTokens, err := strconv.Atoi(tokensStr)
	if err != nil {
		maxTokens = 150
	}
	w.doc["max_tokens"] = maxTokens

	settings := make(map[string]any)
	saveConv, err := w.askYesNo("Save conversations to file?", true)
	if err != nil {
		return err
	}
	settings["save_conversation"] = saveConv
	if saveConv {
		convFile, err := w.askString("Conversation file name", "chat_history.txt")
		if err != nil {
			return err
		}
		settings["conversation_file"] = convFile
	}
	showTokens, err := w.askYesNo("Show token usage info?", false)
	if err != nil {
		return err
	}
	settings["show_token_usage"] = showTokens
	w.doc["settings"] = settings
	fmt.Println()

	// ── Step 4: Bridges (optional) ───────────────────────────────────────
	fmt.Println("  Step 4 of 4 — Messaging Bridges (optional)")
	doTelegram, err := w.askYesNo("Set up Telegram?", false)
	if err != nil {
		return err
	}
	if doTelegram {
		fmt.Println("  Get a bot token from @BotFather on Telegram.")
		token, err := w.askString("Telegram bot token", "")
		if err != nil {
			return err
		}
		if token != "" {
			w.doc["telegram_bot_token"] = token
		}
	}
	doSlack, err := w.askYesNo("Set up Slack?", false)
	if err != nil {
		return err
	}
	if doSlack {
		fmt.Println("  Requires a Slack app with Socket Mode enabled.")
		botToken, err := w.askString("Slack bot token (xoxb-...)", "")
		if err != nil {
			return err
		}
		appToken, err := w.askString("Slack app token (xapp-...)", "")
		if err != nil {
			return err
		}
		if botToken != "" {
			w.doc["slack_bot_token"] = botToken
		}
		if appToken != "" {
			w.doc["slack_app_token"] = appToken
		}
	}
	fmt.Println()

	// ── Summary and save ─────────────────────────────────────────────────
	fmt.Println("  Configuration Summary")
	fmt.Println("  ─────────────────────")
	fmt.Printf("  %-14s %s\n", "Bot Name", w.doc["bot_name"])
	fmt.Printf("  %-14s %s\n", "Provider", w.doc["api_provider"])
	fmt.Printf("  %-14s %s\n", "Model", w.doc["model"])
	fmt.Printf("  %-14s %g\n", "Temperature", w.doc["temperature"])
	fmt.Printf("  %-14s %d\n", "Max Tokens", w.doc["max_tokens"])
	fmt.Println()

	confirm, err := w.askYesNo("Save this configuration?", true)
	if err != nil {
		return err
	}
	if !confirm {
		fmt.Println("  Setup cancelled.")
		return nil
	}

	if err := writeConfigDoc(w.doc); err != nil {
		return err
	}

	fmt.Printf("\n  ✓ Configuration saved to %s\n", configPath)
	fmt.Println("\n  Ready to start! Run:")
	fmt.Println("    ariabot chat")
	fmt.Println()
	return nil
}

// runNonInteractiveSetup handles --non-interactive mode.
func runNonInteractiveSetup() error {
	if setupProvider == "" {
		return fmt.Errorf("--provider is required in non-interactive mode")
	}

	var info providerInfo
	found := false
	for _, pi := range wizardProviders {
		if pi.Name == strings.ToLower(setupProvider) {
			info = pi
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("unknown provider %q; valid: %s", setupProvider, strings.Join(provider.Names(), ", "))
	}

	model := setupModel
	if model == "" {
		model = info.DefaultModel
	}

	doc := map[string]any{
		"bot_name":         setupBotName,
		"bot_instructions": instructionPresets[0],
		"api_provider":     info.Name,
		"model":            model,
		"api_key":          setupAPIKey,
		"temperature":      0.7,
		"max_tokens":       150,
		"settings": map[string]any{
			"save_conversation": true,
			"conversation_file": "chat_history.txt",
			"show_token_usage":  false,
		},
	}
	if err := writeConfigDoc(doc); err != nil {
		return err
	}
	fmt.Printf("Config written to %s\n", configPath)
	return nil
}

// writeConfigDoc writes a fresh config document as indented JSON.
func writeConfigDoc(doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(configPath, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// config show / set
// ---------------------------------------------------------------------------

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	fmt.Printf("Config file: %s\n\n", cfg.Path())
	fmt.Printf("  %-20s %s\n", "bot_name", cfg.BotName)
	fmt.Printf("  %-20s %s\n", "api_provider", cfg.APIProvider)
	fmt.Printf("  %-20s %s\n", "model", cfg.Model)
	fmt.Printf("  %-20s %g\n", "temperature", cfg.Temperature)
	fmt.Printf("  %-20s %d\n", "max_tokens", cfg.MaxTokens)
	if cfg.APIKey != "" {
		fmt.Printf("  %-20s %s\n", "api_key", maskSecret(cfg.APIKey))
	}
	if cfg.APIProvider == "ollama" {
		fmt.Printf("  %-20s %s\n", "ollama_url", cfg.OllamaURL)
	}
	if cfg.TelegramBotToken != "" {
		fmt.Printf("  %-20s %s\n", "telegram_bot_token", maskSecret(cfg.TelegramBotToken))
	}
	if cfg.SlackBotToken != "" {
		fmt.Printf("  %-20s %s\n", "slack_bot_token", maskSecret(cfg.SlackBotToken))
	}
	if cfg.SlackAppToken != "" {
		fmt.Printf("  %-20s %s\n", "slack_app_token", maskSecret(cfg.SlackAppToken))
	}
	fmt.Printf("  %-20s %t\n", "save_conversation", cfg.Settings.SaveConversation)
	fmt.Printf("  %-20s %s\n", "conversation_file", cfg.Settings.ConversationFile)
	fmt.Printf("  %-20s %t\n", "show_token_usage", cfg.Settings.ShowTokenUsage)
	fmt.Printf("  %-20s %s\n", "bot_instructions", truncate(cfg.BotInstructions, 80))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	key, raw := args[0], args[1]

	// Interpret booleans and numbers; anything else stays a string.
	var value any = raw
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		switch parsed.(type) {
		case bool, float64:
			value = parsed
		}
	}

	cfg.Set(key, value)
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Set %s in %s\n", key, cfg.Path())
	return nil
}
