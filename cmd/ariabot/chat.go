package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/butcheralt/ariabot/internal/chat"
	"github.com/butcheralt/ariabot/internal/config"
	"github.com/butcheralt/ariabot/internal/provider"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive terminal session with the configured provider.

Commands inside the session:
  quit, exit, bye   End the conversation
  clear             Clear conversation history
  help              Show available commands
  config            Show current configuration
  history           Show conversation history
  save              Save conversation to file`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

var (
	cyan    = color.New(color.FgCyan)
	yellow  = color.New(color.FgYellow)
	green   = color.New(color.FgGreen)
	red     = color.New(color.FgRed)
	magenta = color.New(color.FgMagenta)
)

const banner = "============================================================"

func runChat(cmd *cobra.Command, args []string) error {
	cfg, p, err := loadConfigAndProvider()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Advisory issues are escalated to a fatal exit before the loop starts.
	issues := append(cfg.Validate(), p.ValidateConfig(ctx)...)
	if len(issues) > 0 {
		red.Println("Configuration issues found:")
		for _, issue := range issues {
			fmt.Printf("  • %s\n", issue)
		}
		return fmt.Errorf("please fix these issues and try again")
	}

	return newChatSession(cfg, p).run(ctx)
}

// chatSession holds the state of one interactive terminal conversation.
type chatSession struct {
	cfg        *config.Config
	provider   provider.Provider
	conv       *chat.Conversation
	transcript *chat.Transcript
}

func newChatSession(cfg *config.Config, p provider.Provider) *chatSession {
	return &chatSession{
		cfg:        cfg,
		provider:   p,
		conv:       chat.New(cfg.BotInstructions),
		transcript: chat.NewTranscript(cfg.Settings.ConversationFile, cfg.BotName, p.Name(), cfg.Model),
	}
}

func (s *chatSession) run(ctx context.Context) error {
	s.printWelcome()

	// Reading stdin blocks, so input arrives through a channel and the loop
	// can also notice Ctrl-C via ctx.
	inputCh := make(chan string)
	scanner := bufio.NewScanner(os.Stdin)
	go func() {
		defer close(inputCh)
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
	}()

	for {
		green.Print("You: ")

		select {
		case <-ctx.Done():
			fmt.Println()
			yellow.Println("\nChat interrupted. Goodbye!")
			s.autoSave()
			return nil
		case input, ok := <-inputCh:
			if !ok {
				yellow.Println("\nEnd of input. Goodbye!")
				s.autoSave()
				return scanner.Err()
			}
			if !s.handleInput(ctx, input) {
				return nil
			}
		}
	}
}

// handleInput dispatches one line. Returns false when the session should end.
func (s *chatSession) handleInput(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)

	switch strings.ToLower(input) {
	case "quit", "exit", "bye":
		s.autoSave()
		green.Printf("\nGoodbye! Thanks for chatting with %s!\n", s.cfg.BotName)
		return false
	case "clear":
		s.conv.Clear()
		green.Println("Conversation history cleared.")
		return true
	case "help":
		s.printHelp()
		return true
	case "config":
		s.printConfig()
		return true
	case "history":
		s.printHistory()
		return true
	case "save":
		s.save()
		return true
	case "":
		return true
	}

	s.chatTurn(ctx, input)
	return true
}

// chatTurn runs one provider round trip. On failure the user's message
// stays in history and the session continues.
func (s *chatSession) chatTurn(ctx context.Context, input string) {
	s.conv.AppendUser(input)

	yellow.Print("Thinking...")
	reply, err := s.provider.Chat(ctx, s.conv.BuildRequest())
	fmt.Print("\r\033[K")
	if err != nil {
		red.Printf("Error: %v\n", err)
		fmt.Println("Please try again or check your configuration.")
		return
	}
	s.conv.AppendAssistant(reply)

	green.Printf("%s:", s.cfg.BotName)
	fmt.Printf(" %s\n\n", reply)

	if s.cfg.Settings.ShowTokenUsage {
		total := 0
		for _, msg := range s.conv.BuildRequest() {
			total += len(msg.Content)
		}
		cyan.Printf("(Estimated tokens used: ~%d)\n", total/4)
	}
}

func (s *chatSession) printWelcome() {
	cyan.Println("\n" + banner)
	cyan.Printf("  %s - Portable AI Chatbot\n", s.cfg.BotName)
	cyan.Println(banner)
	fmt.Print("Provider: ")
	yellow.Println(s.provider.Name())
	fmt.Print("Model: ")
	yellow.Println(s.cfg.Model)
	fmt.Print("Temperature: ")
	yellow.Println(s.cfg.Temperature)
	green.Println("\nType 'quit', 'exit', or 'bye' to end the conversation.")
	green.Println("Type 'clear' to clear conversation history.")
	green.Println("Type 'help' for more commands.")
	fmt.Println()
}

func (s *chatSession) printHelp() {
	magenta.Println("\nAvailable commands:")
	fmt.Println("  quit, exit, bye - End the conversation")
	fmt.Println("  clear - Clear conversation history")
	fmt.Println("  help - Show this help message")
	fmt.Println("  config - Show current configuration")
	fmt.Println("  history - Show conversation history")
	fmt.Println("  save - Save conversation to file")
	fmt.Println()
}

func (s *chatSession) printConfig() {
	cyan.Println("\nCurrent Configuration:")
	fmt.Printf("  Bot Name: %s\n", s.cfg.BotName)
	fmt.Printf("  Provider: %s\n", s.cfg.APIProvider)
	fmt.Printf("  Model: %s\n", s.cfg.Model)
	fmt.Printf("  Temperature: %g\n", s.cfg.Temperature)
	fmt.Printf("  Max Tokens: %d\n", s.cfg.MaxTokens)
	fmt.Printf("  Instructions: %s\n\n", truncate(s.cfg.BotInstructions, 100))
}

func (s *chatSession) printHistory() {
	history := s.conv.History()
	if len(history) == 0 {
		yellow.Println("No conversation history.")
		return
	}
	magenta.Println("\nConversation History:")
	for i, msg := range history {
		role := strings.ToUpper(msg.Role[:1]) + msg.Role[1:]
		fmt.Printf("%d. %s: %s\n", i+1, role, truncate(msg.Content, 100))
	}
	fmt.Println()
}

func (s *chatSession) save() {
	if s.conv.Len() == 0 {
		yellow.Println("No conversation to save.")
		return
	}
	if err := s.transcript.Append(s.conv.History()); err != nil {
		red.Printf("Error saving conversation: %v\n", err)
		return
	}
	green.Printf("Conversation saved to %s\n", s.transcript.Path())
}

// autoSave writes the transcript on exit when enabled and non-empty.
func (s *chatSession) autoSave() {
	if s.cfg.Settings.SaveConversation && s.conv.Len() > 0 {
		s.save()
	}
}

func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n] + "..."
}
