package quiz

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quizmith/mathquiz/internal/oracle"
)

// Archiver persists terminal sessions and lifecycle events so reports and
// recovery keep working after a session leaves memory. Optional; the
// engine works without one.
type Archiver interface {
	SaveTerminal(ctx context.Context, s Session) error
	Load(ctx context.Context, id string) (Session, error)
	AppendEvent(ctx context.Context, typ, key string, data any) error
}

// Engine orchestrates the start → answer loop → completion flow for quiz
// sessions.
type Engine struct {
	store   Store
	oracle  oracle.Oracle
	archive Archiver // may be nil
	total   int      // questions per quiz
}

func NewEngine(store Store, o oracle.Oracle, archive Archiver, totalQuestions int) *Engine {
	if totalQuestions <= 0 {
		totalQuestions = TotalQuestions
	}
	return &Engine{store: store, oracle: o, archive: archive, total: totalQuestions}
}

// StartResult is the payload for a freshly started session.
type StartResult struct {
	SessionID string
	Question  oracle.Question
	Level     int
}

// Start validates the request, builds the concept plan, fetches the first
// question at level 1, and registers the session.
func (e *Engine) Start(ctx context.Context, username, topic string) (StartResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return StartResult{}, fmt.Errorf("%w: username is required", ErrInvalidRequest)
	}
	if !ValidTopic(topic) {
		return StartResult{}, fmt.Errorf("%w: unknown topic %q", ErrInvalidRequest, topic)
	}

	concepts, err := e.oracle.Concepts(ctx, topic)
	if err != nil {
		// The quiz can start on the built-in syllabus.
		log.Printf("quiz: concept generation failed for topic %q, using fallback: %v", topic, err)
		concepts = oracle.FallbackConcepts(topic)
	}

	q, err := e.oracle.NextQuestion(ctx, oracle.QuestionRequest{
		Topic:   topic,
		Concept: concepts[0].Name,
		Level:   MinLevel,
	})
	if err != nil {
		return StartResult{}, err
	}

	now := time.Now()
	s := Session{
		ID:           uuid.NewString(),
		Username:     username,
		Topic:        topic,
		Status:       StatusActive,
		Level:        MinLevel,
		Current:      q,
		Concepts:     concepts,
		Asked:        []string{q.Text},
		StartedAt:    now,
		LastActivity: now,
	}
	if err := e.store.Create(&s); err != nil {
		return StartResult{}, err
	}

	e.event(ctx, "SessionStarted", s.ID, map[string]any{"username": username, "topic": topic})
	log.Printf("quiz: session %s started for %q on %q", s.ID, username, topic)

	return StartResult{SessionID: s.ID, Question: q, Level: s.Level}, nil
}

// SubmitRequest carries one answer submission. Question and CorrectAnswer
// echo the client's view of the active question and are checked against
// the session to reject stale or replayed state.
type SubmitRequest struct {
	SessionID     string
	Question      string
	CorrectAnswer string
	UserAnswer    string
	Skill         string
}

// SubmitResult reports the judgment and, unless the quiz completed, the
// next question.
type SubmitResult struct {
	Correct     bool
	Judgment    string
	Explanation string

	Score    int
	Level    int
	Progress int // answered count after this submission

	Complete bool
	Next     *oracle.Question
}

// SubmitAnswer judges the answer, adapts difficulty, appends history, and
// either completes the quiz or serves the next question. The state
// transition commits atomically: on any error nothing is applied.
func (e *Engine) SubmitAnswer(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if strings.TrimSpace(req.UserAnswer) == "" {
		return SubmitResult{}, fmt.Errorf("%w: user_answer is required", ErrInvalidRequest)
	}

	snap, err := e.store.Snapshot(req.SessionID)
	if err != nil {
		return SubmitResult{}, err
	}
	if snap.Status.Terminal() {
		return SubmitResult{}, ErrSessionTerminal
	}
	if req.Question != snap.Current.Text || req.CorrectAnswer != snap.Current.Answer {
		return SubmitResult{}, fmt.Errorf("%w: submitted question does not match the active question", ErrInvalidRequest)
	}

	// Judging happens outside the session's critical section: oracle
	// calls are slow and must not block heartbeats.
	judgment, err := e.oracle.Judge(ctx, snap.Current.Text, snap.Current.Answer, req.UserAnswer)
	if err != nil {
		return SubmitResult{}, err
	}

	newLevel := NextLevel(snap.Level, judgment.Correct)
	complete := snap.Answered()+1 >= e.total

	var next oracle.Question
	if !complete {
		idx := nextConceptIdx(snap.ConceptIdx, len(snap.Concepts))
		concept := snap.Current.Skill
		if idx >= 0 {
			concept = snap.Concepts[idx].Name
		}
		next, err = e.oracle.NextQuestion(ctx, oracle.QuestionRequest{
			Topic:   snap.Topic,
			Concept: concept,
			Level:   newLevel,
			Recent:  snap.Asked,
		})
		if err != nil {
			// Never strand the client mid-quiz over a generation failure.
			log.Printf("quiz: session %s question generation failed, serving fallback: %v", snap.ID, err)
			next = oracle.FallbackQuestion(snap.Topic, concept, newLevel)
		}
	}

	now := time.Now()
	entry := HistoryEntry{
		Question:      snap.Current.Text,
		UserAnswer:    req.UserAnswer,
		CorrectAnswer: snap.Current.Answer,
		Skill:         snap.Current.Skill,
		Correct:       judgment.Correct,
		Level:         snap.Level,
		Judgment:      judgment.Reason,
		Explanation:   judgment.Explanation,
		AnsweredAt:    now,
	}

	var result SubmitResult
	err = e.store.Update(req.SessionID, func(s *Session) error {
		// Revalidate under the lock: the session may have been expired
		// or mutated while the oracle was judging.
		if s.Status.Terminal() {
			return ErrSessionTerminal
		}
		if s.Current.Text != snap.Current.Text || s.Answered() != snap.Answered() {
			return fmt.Errorf("%w: submitted question does not match the active question", ErrInvalidRequest)
		}

		s.History = append(s.History, entry)
		if judgment.Correct {
			s.Score += ScorePerCorrect
		}
		s.Level = newLevel
		s.LastActivity = now

		if complete {
			s.Status = StatusCompleted
			s.EndedAt = now
			s.FinalPercent = float64(s.Score) / float64(e.total) * 100
		} else {
			s.Current = next
			s.ConceptIdx = nextConceptIdx(s.ConceptIdx, len(s.Concepts))
			s.Asked = append(s.Asked, next.Text)
		}

		result = SubmitResult{
			Correct:     judgment.Correct,
			Judgment:    judgment.Reason,
			Explanation: judgment.Explanation,
			Score:       s.Score,
			Level:       s.Level,
			Progress:    s.Answered(),
			Complete:    complete,
		}
		if !complete {
			q := next
			result.Next = &q
		}
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	log.Printf("quiz: session %s answered Q%d correct=%t level=%d score=%d",
		req.SessionID, result.Progress, result.Correct, result.Level, result.Score)

	if complete {
		if saved, err := e.store.Snapshot(req.SessionID); err == nil {
			e.archiveTerminal(ctx, saved)
		}
		e.event(ctx, "SessionCompleted", req.SessionID, map[string]any{"score": result.Score})
	} else {
		e.event(ctx, "AnswerSubmitted", req.SessionID, map[string]any{"correct": result.Correct, "level": result.Level})
	}

	return result, nil
}

// Heartbeat extends the session's activity window without touching any
// other state.
func (e *Engine) Heartbeat(id string) error {
	return e.store.Touch(id, time.Now())
}

// Session returns a session by ID, falling back to the archive for
// sessions that already left memory.
func (e *Engine) Session(ctx context.Context, id string) (Session, error) {
	s, err := e.store.Snapshot(id)
	if err == nil {
		return s, nil
	}
	if e.archive == nil {
		return Session{}, err
	}
	return e.archive.Load(ctx, id)
}

// RecoverResult is the snapshot served to a reloaded client.
type RecoverResult struct {
	Username     string
	Topic        string
	Status       Status
	Progress     int
	Score        int
	Level        int
	FinalPercent float64
}

// Recover returns enough session state for a client to resume or to jump
// straight to the report.
func (e *Engine) Recover(ctx context.Context, id string) (RecoverResult, error) {
	s, err := e.Session(ctx, id)
	if err != nil {
		return RecoverResult{}, err
	}
	return RecoverResult{
		Username:     s.Username,
		Topic:        s.Topic,
		Status:       s.Status,
		Progress:     s.Answered(),
		Score:        s.Score,
		Level:        s.Level,
		FinalPercent: s.FinalPercent,
	}, nil
}

// FinalPercent recomputes the percentage when /report is called against a
// session that never reached completion (e.g. expired mid-quiz).
func FinalPercent(s Session) float64 {
	if s.FinalPercent > 0 {
		return s.FinalPercent
	}
	if len(s.History) == 0 {
		return 0
	}
	correct := 0
	for _, h := range s.History {
		if h.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(s.History)) * 100
}

// archiveTerminal persists a terminal session, best effort.
func (e *Engine) archiveTerminal(ctx context.Context, s Session) {
	if e.archive == nil {
		return
	}
	if err := e.archive.SaveTerminal(ctx, s); err != nil {
		log.Printf("quiz: archiving session %s failed: %v", s.ID, err)
	}
}

func (e *Engine) event(ctx context.Context, typ, key string, data any) {
	if e.archive == nil {
		return
	}
	if err := e.archive.AppendEvent(ctx, typ, key, data); err != nil {
		log.Printf("quiz: appending %s event for %s failed: %v", typ, key, err)
	}
}

func nextConceptIdx(current, n int) int {
	if n == 0 {
		return -1
	}
	return (current + 1) % n
}
