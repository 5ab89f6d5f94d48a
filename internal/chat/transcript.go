package chat

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/butcheralt/ariabot/internal/provider"
)

const transcriptRule = "============================================================"

// Transcript appends conversation snapshots to a plain-text log file, one
// timestamped header block per save.
type Transcript struct {
	path      string
	sessionID string
	botName   string
	provider  string
	model     string
	now       func() time.Time
}

// NewTranscript creates a transcript writer for one session. The session ID
// is minted once and repeated in every header this writer produces.
func NewTranscript(path, botName, providerName, model string) *Transcript {
	return &Transcript{
		path:      path,
		sessionID: uuid.NewString(),
		botName:   botName,
		provider:  providerName,
		model:     model,
		now:       time.Now,
	}
}

// SessionID returns the ID stamped on this transcript's header blocks.
func (t *Transcript) SessionID() string { return t.sessionID }

// Path returns the transcript file location.
func (t *Transcript) Path() string { return t.path }

// Append writes the history to the transcript file as one header block
// followed by one "Role: content" line per message.
func (t *Transcript) Append(history []provider.Message) error {
	f, err := os.OpenFile(t.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening transcript %s: %w", t.path, err)
	}
	defer f.Close()

	var b strings.Builder
	b.WriteString("\n" + transcriptRule + "\n")
	fmt.Fprintf(&b, "Conversation saved on %s\n", t.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Session: %s\n", t.sessionID)
	fmt.Fprintf(&b, "Bot: %s (%s/%s)\n", t.botName, t.provider, t.model)
	b.WriteString(transcriptRule + "\n")
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", titleRole(msg.Role), msg.Content)
	}
	b.WriteString(transcriptRule + "\n\n")

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("writing transcript %s: %w", t.path, err)
	}
	return nil
}

func titleRole(role string) string {
	if role == "" {
		return ""
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
