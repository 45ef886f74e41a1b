package chat

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lantern-study/lantern/extract"
	"github.com/lantern-study/lantern/log"
	"github.com/lantern-study/lantern/merge"
	"github.com/lantern-study/lantern/store"
)

// ErrNoDocuments is returned when an analysis finds nothing to read
var ErrNoDocuments = errors.New("no documents found for analysis")

const systemInstruction = "You are an advanced learning assistant specializing in computer science. " +
	"You have access to lecture materials and can help with any computer science topic. " +
	"Provide detailed, accurate explanations without limitations."

// maxContextChars bounds the combined document text fed into an analysis
// prompt
const maxContextChars = 12000

const analyzePromptTemplate = `I'm analyzing lecture documents for my computer science studies.

LECTURE CONTENT:
---
%s
---

MY QUESTION:
%s

Please provide a comprehensive analysis that includes:
1. Direct answer to my question
2. Explanation of relevant concepts
3. Connection to broader computer science topics
4. Any examples or applications mentioned

Be thorough and detailed in your response.`

const allSessionsQuestionsTemplate = `Based on the following comprehensive lecture content, generate 5-10 thoughtful questions that would help a student test their understanding of the key concepts. The questions should cover different difficulty levels and aspects of the material.

LECTURE CONTENT:
---
%s
---

Generate questions that:
1. Test basic understanding of definitions and concepts
2. Require application of knowledge to solve problems
3. Encourage critical thinking about the material
4. Connect different parts of the lecture together

Format each question clearly and provide a brief explanation of what the question tests.`

const sessionQuestionsTemplate = `Based on the following session content, generate 3-5 focused questions that would help a student review and test their understanding of the specific topics discussed in this session.

SESSION CONTENT:
---
%s
---

Generate questions that:
1. Focus on the key concepts discussed in this session
2. Test understanding of the specific examples and explanations given
3. Encourage deeper thinking about the session's main points

Format each question clearly and provide a brief explanation of what the question tests.`

// Engine drives conversation turns, lecture analysis and question
// generation against the external model, persisting every exchanged turn.
type Engine struct {
	store      *store.Store
	dispatcher *extract.Dispatcher
	client     ModelClient
	summarizer *Summarizer
	assembler  *Assembler
	merger     *merge.Engine
}

// NewEngine wires the conversation engine. threshold is the context-window
// message limit.
func NewEngine(st *store.Store, dispatcher *extract.Dispatcher, client ModelClient, merger *merge.Engine, threshold int) *Engine {
	summarizer := NewSummarizer(client)
	return &Engine{
		store:      st,
		dispatcher: dispatcher,
		client:     client,
		summarizer: summarizer,
		assembler:  NewAssembler(st, summarizer, threshold),
		merger:     merger,
	}
}

// Assembler exposes the context assembler
func (e *Engine) Assembler() *Assembler {
	return e.assembler
}

// Summarizer exposes the summarizer
func (e *Engine) Summarizer() *Summarizer {
	return e.summarizer
}

// Chat runs one conversation turn: assembled context plus the new user
// message, prefixed by the fixed system instruction. Both the user turn and
// the model's reply are persisted on success; a model failure comes back as
// an error-bearing reply string with nothing persisted.
func (e *Engine) Chat(lecture, session, text string) (string, error) {
	rec, err := e.store.GetSession(lecture, session)
	if err != nil {
		return "", err
	}

	context := e.assembler.BuildContext(lecture, session)

	messages := make([]store.Message, 0, len(context)+2)
	messages = append(messages, store.Message{Role: store.RoleSystem, Content: systemInstruction})
	messages = append(messages, context...)
	messages = append(messages, store.Message{Role: store.RoleUser, Content: text})

	reply, err := e.client.Chat(rec.Model, messages, rec.ModelParams)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}

	e.persistTurn(lecture, session, rec, text, reply, "")
	return reply, nil
}

// AnalyzeLecture extracts the session's private documents and the lecture's
// shared documents, feeds them with the question into an analysis prompt,
// and persists both turns tagged with the lecture reference. Per-document
// extraction failures are reported inline in the content rather than
// aborting the analysis.
func (e *Engine) AnalyzeLecture(lecture, session, question string) (string, error) {
	rec, err := e.store.GetSession(lecture, session)
	if err != nil {
		return "", err
	}

	docs := e.collectDocuments(lecture, rec)
	if len(docs) == 0 {
		return "", ErrNoDocuments
	}

	var b strings.Builder
	for _, docPath := range docs {
		name := filepath.Base(docPath)
		text, err := e.dispatcher.Extract(docPath)
		if err != nil {
			fmt.Fprintf(&b, "\n--- Error processing document: %s ---\n%v\n", name, err)
			continue
		}
		fmt.Fprintf(&b, "\n--- Document: %s ---\n%s\n", name, text)
	}

	content := truncate(b.String(), maxContextChars)

	prompt := fmt.Sprintf(analyzePromptTemplate, content, question)
	reply, err := e.client.Chat(rec.Model, []store.Message{{Role: store.RoleUser, Content: prompt}}, rec.ModelParams)
	if err != nil {
		return fmt.Sprintf("Error getting response: %v", err), nil
	}

	userNote := fmt.Sprintf("Analyzed lecture: %s\nQuestion: %s", lecture, question)
	e.persistTurn(lecture, session, rec, userNote, reply, lecture)
	return reply, nil
}

// GenerateQuestions produces study questions. Scope "all" questions the
// lecture's merged session, merging first when none exists; scope "session"
// questions one named session.
func (e *Engine) GenerateQuestions(lecture, session, scope, sourceSession string) (string, error) {
	rec, err := e.store.GetSession(lecture, session)
	if err != nil {
		return "", err
	}

	var prompt string
	switch scope {
	case "all":
		merged := merge.DestinationName(lecture)
		if !e.store.SessionExists(lecture, merged) {
			if _, err := e.merger.MergeAll(lecture, merge.Options{}); err != nil {
				return "", fmt.Errorf("merge for question generation: %w", err)
			}
		}
		content := joinContents(e.store.ReadMessages(lecture, merged, 0, -1), 6000)
		prompt = fmt.Sprintf(allSessionsQuestionsTemplate, content)

	case "session":
		if !e.store.SessionExists(lecture, sourceSession) {
			return "", fmt.Errorf("%w: %s in lecture %s", store.ErrSessionNotFound, sourceSession, lecture)
		}
		content := joinContents(e.store.ReadMessages(lecture, sourceSession, 0, -1), 4000)
		prompt = fmt.Sprintf(sessionQuestionsTemplate, content)

	default:
		return "", fmt.Errorf("unknown question scope: %s", scope)
	}

	reply, err := e.client.Chat(rec.Model, []store.Message{{Role: store.RoleUser, Content: prompt}}, rec.ModelParams)
	if err != nil {
		return fmt.Sprintf("Error generating questions: %v", err), nil
	}

	userNote := fmt.Sprintf("Generated questions from %s scope", scope)
	e.persistTurn(lecture, session, rec, userNote, reply, lecture)
	return reply, nil
}

// SummarizeHistory digests the session's entire history on demand and
// persists the result as a Summary over the full range.
func (e *Engine) SummarizeHistory(lecture, session string) (string, error) {
	rec, err := e.store.GetSession(lecture, session)
	if err != nil {
		return "", err
	}
	if len(rec.Messages) == 0 {
		return "", nil
	}

	digest := e.summarizer.Summarize(rec.Model, rec.ModelParams, rec.Messages)
	if err := e.store.AppendSummary(lecture, session, digest, 0, len(rec.Messages)-1); err != nil {
		return "", err
	}
	return digest, nil
}

// collectDocuments lists the absolute paths of the session's private
// documents followed by the lecture's shared ones.
func (e *Engine) collectDocuments(lecture string, rec *store.SessionRecord) []string {
	var docs []string
	for _, name := range rec.Documents {
		docs = append(docs, filepath.Join(e.store.SessionDocsDir(lecture, rec.Name), name))
	}
	if info, err := e.store.GetLecture(lecture); err == nil {
		for _, name := range info.Documents {
			docs = append(docs, filepath.Join(e.store.LectureDocsDir(lecture), name))
		}
	}
	return docs
}

// persistTurn saves the user turn and the assistant's reply, stamping the
// assistant message with the model identity and parameter snapshot.
func (e *Engine) persistTurn(lecture, session string, rec *store.SessionRecord, userText, reply, lectureRef string) {
	now := time.Now()
	if err := e.store.AppendMessage(lecture, session, store.Message{
		Role:       store.RoleUser,
		Content:    userText,
		Timestamp:  now,
		LectureRef: lectureRef,
	}); err != nil {
		log.Error().Err(err).Str("session", session).Msg("user message persist failed")
	}

	params := rec.ModelParams
	if err := e.store.AppendMessage(lecture, session, store.Message{
		Role:        store.RoleAssistant,
		Content:     reply,
		Timestamp:   now,
		LectureRef:  lectureRef,
		Model:       rec.Model,
		ModelParams: &params,
	}); err != nil {
		log.Error().Err(err).Str("session", session).Msg("assistant message persist failed")
	}
}

func joinContents(messages []store.Message, limit int) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	return truncate(strings.Join(parts, "\n"), limit)
}

// truncate bounds s to at most limit bytes without splitting a rune
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
