package store

import "time"

// Message roles. Assistant-authored messages additionally carry the model
// identity and a snapshot of the parameters that produced them.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ModelParams is the sampling-parameter set attached to a lecture, session
// or assistant message.
type ModelParams struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

// DefaultModelParams returns the out-of-the-box sampling parameters
func DefaultModelParams() ModelParams {
	return ModelParams{
		Temperature: 0.7,
		TopP:        0.9,
		NumPredict:  3072,
	}
}

// Message is one conversation turn. Messages are strictly append-ordered
// within a session; their index in the record is the only identity they have.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// LectureRef links a turn to the lecture it discussed
	LectureRef string `json:"lecture_ref,omitempty"`

	// Model and ModelParams are set only on assistant messages
	Model       string       `json:"model,omitempty"`
	ModelParams *ModelParams `json:"model_params,omitempty"`
}

// Summary is a digest of the message range [StartIndex, EndIndex] (inclusive
// on both ends). Summaries are appended and never rewritten.
type Summary struct {
	Summary    string    `json:"summary"`
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
	Timestamp  time.Time `json:"timestamp"`
}

// MergeInfo records how a merged session was produced
type MergeInfo struct {
	MergeID          string    `json:"merge_id"`
	OriginalSessions []string  `json:"original_sessions"`
	TotalMessages    int       `json:"total_messages"`
	MergedAt         time.Time `json:"merged_at"`
	EstimatedSizeMB  float64   `json:"estimated_size_mb"`
}

// SessionRecord is the full persisted state of one conversation thread,
// stored as a single JSON file under the lecture's sessions directory.
type SessionRecord struct {
	Name               string      `json:"name"`
	Lecture            string      `json:"lecture"`
	CreatedAt          time.Time   `json:"created_at"`
	Model              string      `json:"model"`
	ModelParams        ModelParams `json:"model_params"`
	Messages           []Message   `json:"messages"`
	Documents          []string    `json:"documents"`
	LecturesReferenced []string    `json:"lectures_referenced"`
	Summaries          []Summary   `json:"summaries"`
	MergeInfo          *MergeInfo  `json:"merge_info,omitempty"`
}

// LectureInfo is the persisted state of one lecture. The Sessions list is a
// cached index recomputed from the sessions directory, not a source of truth.
type LectureInfo struct {
	Name         string      `json:"name"`
	CreatedAt    time.Time   `json:"created_at"`
	Documents    []string    `json:"documents"`
	Sessions     []string    `json:"sessions"`
	CurrentModel string      `json:"current_model"`
	ModelParams  ModelParams `json:"model_params"`
}

// SessionStatus summarizes one session for status reporting
type SessionStatus struct {
	Name               string    `json:"name"`
	CreatedAt          time.Time `json:"created_at"`
	Model              string    `json:"model"`
	MessageCount       int       `json:"message_count"`
	EstimatedTokens    int       `json:"estimated_tokens"`
	Documents          []string  `json:"documents"`
	LecturesReferenced []string  `json:"lectures_referenced"`
	SummaryCount       int       `json:"summary_count"`
}

// LectureStatus summarizes one lecture and its sessions
type LectureStatus struct {
	Name            string          `json:"name"`
	CreatedAt       time.Time       `json:"created_at"`
	Documents       []string        `json:"documents"`
	Sessions        []SessionStatus `json:"sessions"`
	SessionCount    int             `json:"session_count"`
	EstimatedTokens int             `json:"estimated_tokens"`
}
