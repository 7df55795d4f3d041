// Package quiz implements the adaptive quiz session engine: session
// lifecycle, the difficulty policy, the session store, and background
// expiry. Question content and answer judging are delegated to the
// oracle package.
package quiz

import (
	"time"

	"github.com/quizmith/mathquiz/internal/oracle"
)

// TotalQuestions is the default quiz length.
const TotalQuestions = 10

// ScorePerCorrect is the fixed score increment for a correct answer.
const ScorePerCorrect = 1

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// Terminal reports whether the session accepts no further answers.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusExpired
}

// Topics is the fixed topic set the client offers.
var Topics = []string{"Algebra", "Calculus", "Geometry", "Statistics", "Basic Arithmetic"}

func ValidTopic(t string) bool {
	for _, k := range Topics {
		if t == k {
			return true
		}
	}
	return false
}

// HistoryEntry records one answered question. History is append-only and
// drives the report.
type HistoryEntry struct {
	Question      string    `json:"question"`
	UserAnswer    string    `json:"user_answer"`
	CorrectAnswer string    `json:"correct_answer"`
	Skill         string    `json:"skill"`
	Correct       bool      `json:"is_correct"`
	Level         int       `json:"level"` // difficulty at the time of the question
	Judgment      string    `json:"judgment"`
	Explanation   string    `json:"explanation"`
	AnsweredAt    time.Time `json:"answered_at"`
}

// Session is one user's quiz attempt from start to completion or expiry.
type Session struct {
	ID       string
	Username string
	Topic    string
	Status   Status

	Level int // current difficulty, 1..5
	Score int // raw correct count

	// Current is the active, not-yet-answered question.
	Current oracle.Question

	// Concepts is the syllabus questions rotate through; ConceptIdx is
	// the index of the concept behind Current.
	Concepts   []oracle.Concept
	ConceptIdx int

	// Asked holds every question text served, in order, for dedup.
	Asked []string

	History []HistoryEntry

	// FinalPercent is set when the session completes.
	FinalPercent float64

	StartedAt    time.Time
	LastActivity time.Time
	EndedAt      time.Time
}

// Answered is the number of submitted answers. Always equals len(History).
func (s *Session) Answered() int { return len(s.History) }

// clone deep-copies the session so store snapshots never alias live state.
func (s *Session) clone() Session {
	out := *s
	out.Concepts = append([]oracle.Concept(nil), s.Concepts...)
	out.Asked = append([]string(nil), s.Asked...)
	out.History = append([]HistoryEntry(nil), s.History...)
	return out
}
