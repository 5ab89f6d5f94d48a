package chat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/butcheralt/ariabot/internal/provider"
)

func TestTranscriptAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.txt")
	tr := NewTranscript(path, "TestBot", "groq", "groq/compound")
	tr.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	}

	history := []provider.Message{
		{Role: provider.RoleUser, Content: "hi"},
		{Role: provider.RoleAssistant, Content: "hello"},
	}
	if err := tr.Append(history); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading transcript: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"Conversation saved on 2024-03-15 10:30:00",
		"Session: " + tr.SessionID(),
		"Bot: TestBot (groq/groq/compound)",
		"User: hi",
		"Assistant: hello",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("transcript missing %q:\n%s", want, text)
		}
	}
}

func TestTranscriptAppendAccumulates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.txt")
	tr := NewTranscript(path, "B", "openai", "gpt-4")

	history := []provider.Message{{Role: provider.RoleUser, Content: "once"}}
	if err := tr.Append(history); err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if err := tr.Append(history); err != nil {
		t.Fatalf("second Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading transcript: %v", err)
	}
	if got := strings.Count(string(data), "Conversation saved on"); got != 2 {
		t.Errorf("header blocks = %d, want 2 (appends must not truncate)", got)
	}
	// Both blocks carry the same session ID.
	if got := strings.Count(string(data), "Session: "+tr.SessionID()); got != 2 {
		t.Errorf("session ID appears %d times, want 2", got)
	}
}

func TestTranscriptSessionIDsUnique(t *testing.T) {
	dir := t.TempDir()
	a := NewTranscript(filepath.Join(dir, "a.txt"), "B", "openai", "gpt-4")
	b := NewTranscript(filepath.Join(dir, "b.txt"), "B", "openai", "gpt-4")
	if a.SessionID() == b.SessionID() {
		t.Error("two transcripts share a session ID")
	}
	if a.SessionID() == "" {
		t.Error("empty session ID")
	}
}
