package chat

import "github.com/lantern-study/lantern/store"

// ModelClient is the external language-model collaborator. Both normal
// conversation turns and summarization go through it.
type ModelClient interface {
	// Chat issues one request over the ordered message sequence and returns
	// the model's reply text.
	Chat(model string, messages []store.Message, params store.ModelParams) (string, error)
}
