package chat

import (
	"time"

	"github.com/lantern-study/lantern/log"
	"github.com/lantern-study/lantern/store"
)

// Assembler builds the bounded message list sent to the model from a
// session's full history, folding everything before the most recent
// Threshold messages into a single synthetic summary message.
type Assembler struct {
	store      *store.Store
	summarizer *Summarizer

	// Threshold is the message count above which earlier history is
	// summarized
	Threshold int
}

// NewAssembler returns an assembler over st with the given context threshold
func NewAssembler(st *store.Store, summarizer *Summarizer, threshold int) *Assembler {
	return &Assembler{
		store:      st,
		summarizer: summarizer,
		Threshold:  threshold,
	}
}

// BuildContext returns the context window for the session: the full history
// when it fits the threshold, otherwise a synthetic system message digesting
// the earlier prefix followed by the most recent Threshold messages. The
// digest is persisted as a Summary over the folded range for audit; the same
// prefix is re-summarized on each call once over threshold.
func (a *Assembler) BuildContext(lecture, session string) []store.Message {
	history := a.store.ReadMessages(lecture, session, 0, -1)
	if len(history) <= a.Threshold {
		return history
	}

	split := len(history) - a.Threshold
	earlier := history[:split]
	recent := history[split:]

	rec := readParams(a.store, lecture, session)
	digest := a.summarizer.Summarize(rec.Model, rec.ModelParams, earlier)

	if err := a.store.AppendSummary(lecture, session, digest, 0, len(earlier)-1); err != nil {
		log.Warn().Err(err).Str("lecture", lecture).Str("session", session).Msg("summary persist failed")
	}

	context := make([]store.Message, 0, 1+len(recent))
	context = append(context, store.Message{
		Role:      store.RoleSystem,
		Content:   "Earlier in this conversation: " + digest,
		Timestamp: time.Now(),
	})
	return append(context, recent...)
}

// readParams loads the session's model and parameters, falling back to the
// store defaults when the record is unavailable.
func readParams(st *store.Store, lecture, session string) *store.SessionRecord {
	rec, err := st.GetSession(lecture, session)
	if err != nil {
		return &store.SessionRecord{
			Model:       st.DefaultModel(),
			ModelParams: store.DefaultModelParams(),
		}
	}
	return rec
}
