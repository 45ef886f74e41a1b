package chat

import (
	"encoding/json"
	"fmt"

	"github.com/lantern-study/lantern/store"
)

// Summarization overrides: a low fixed temperature and a shorter output
// bound bias the model toward a compact, stable digest.
const (
	summaryTemperature = 0.3
	summaryNumPredict  = 1024
)

const summaryPromptTemplate = `Please provide a concise summary of the following conversation between a user and an AI assistant.
Focus on the key topics discussed, important questions asked, and main points from the responses.
The summary should be brief but comprehensive enough to provide context for continuing the conversation.

CONVERSATION:
---
%s
---

SUMMARY:`

// Summarizer reduces a message range into a short text digest via the
// external model.
type Summarizer struct {
	client ModelClient
}

// NewSummarizer returns a summarizer backed by client
func NewSummarizer(client ModelClient) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize produces a digest of messages. Empty input yields an empty
// digest with no model call. A model failure yields a digest that embeds the
// error description; summarization never blocks the caller with an error.
func (s *Summarizer) Summarize(model string, params store.ModelParams, messages []store.Message) string {
	if len(messages) == 0 {
		return ""
	}

	type turn struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	turns := make([]turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, turn{Role: m.Role, Content: m.Content})
	}
	serialized, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error generating summary: %v", err)
	}

	params.Temperature = summaryTemperature
	params.NumPredict = summaryNumPredict

	prompt := fmt.Sprintf(summaryPromptTemplate, serialized)
	digest, err := s.client.Chat(model, []store.Message{{Role: store.RoleUser, Content: prompt}}, params)
	if err != nil {
		return fmt.Sprintf("Error generating summary: %v", err)
	}
	return digest
}
