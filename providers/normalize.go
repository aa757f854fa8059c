package providers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FallbackContent is returned when a backend produced no usable text at all.
const FallbackContent = "No response generated."

// cutoffs are literal markers of a hallucinated transcript continuation.
// Free-text models sometimes keep writing the next "User:" turn; everything
// from the first marker onward is dropped.
var cutoffs = []string{"User:", "System:", "\nUser", "\nSystem"}

// ExtractText normalizes the divergent response shapes the backends produce
// into plain text. Strategies are tried in order and the first non-empty text
// wins:
//
//	raw string, generated_text, response, output, [0].generated_text,
//	choices[0].message.content, content
//
// A body matching none of them is re-serialized wholesale so the caller
// always receives some text.
func ExtractText(body []byte) string {
	// Raw JSON string
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return strings.TrimSpace(s)
	}

	// Flat object fields, in precedence order
	var obj struct {
		GeneratedText string `json:"generated_text"`
		Response      string `json:"response"`
		Output        string `json:"output"`
		Content       string `json:"content"`
		Choices       []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &obj); err == nil {
		switch {
		case strings.TrimSpace(obj.GeneratedText) != "":
			return strings.TrimSpace(obj.GeneratedText)
		case strings.TrimSpace(obj.Response) != "":
			return strings.TrimSpace(obj.Response)
		case strings.TrimSpace(obj.Output) != "":
			return strings.TrimSpace(obj.Output)
		case len(obj.Choices) > 0 && strings.TrimSpace(obj.Choices[0].Message.Content) != "":
			return strings.TrimSpace(obj.Choices[0].Message.Content)
		case strings.TrimSpace(obj.Content) != "":
			return strings.TrimSpace(obj.Content)
		}
	}

	// Array wrapping: [{"generated_text": "..."}]
	var arr []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(body, &arr); err == nil && len(arr) > 0 {
		if text := strings.TrimSpace(arr[0].GeneratedText); text != "" {
			return text
		}
	}

	// Nothing matched: dump the body rather than discard it
	return string(body)
}

// StripCutoffs truncates text at the first cutoff marker found at a non-zero
// offset. Offset 0 is not a cutoff: a model that immediately echoes a role
// label would otherwise be truncated to nothing.
func StripCutoffs(text string) string {
	for _, cutoff := range cutoffs {
		if idx := strings.Index(text, cutoff); idx > 0 {
			text = strings.TrimSpace(text[:idx])
		}
	}
	return text
}

// responseID extracts the upstream response ID when the body carries one,
// otherwise mints a chatcmpl-style ID.
func responseID(body []byte) string {
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &obj); err == nil && obj.ID != "" {
		return obj.ID
	}
	if id, err := uuid.NewRandom(); err == nil {
		return "chatcmpl-" + id.String()
	}
	return "chatcmpl-" + time.Now().Format("20060102150405")
}

// FlattenMessages assembles a single prompt string from a message history:
// one "<RoleLabel>: <content>" line per message, in order, followed by a
// trailing "Assistant:" cue.
func FlattenMessages(messages []Message) string {
	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case "system":
			b.WriteString("System: " + m.Content)
		case "user":
			b.WriteString("User: " + m.Content)
		case "assistant":
			b.WriteString("Assistant: " + m.Content)
		default:
			b.WriteString(m.Content)
		}
		b.WriteString("\n")
	}
	b.WriteString("Assistant:")
	return b.String()
}
