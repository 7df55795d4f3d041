package oracle

import (
	"context"
	"fmt"
	"strconv"
)

// Static is a deterministic Oracle with no AI backend. It serves templated
// arithmetic questions and judges with the local equivalence check. Used
// for offline development and as the test double for the engine.
type Static struct{}

func NewStatic() *Static { return &Static{} }

func (Static) Concepts(_ context.Context, topic string) ([]Concept, error) {
	return FallbackConcepts(topic), nil
}

func (Static) NextQuestion(_ context.Context, req QuestionRequest) (Question, error) {
	// Derive operands from level and progress so consecutive questions
	// never collide with the asked set.
	n := len(req.Recent)
	a := 3 + 2*req.Level + 5*n
	b := 2 + req.Level + 3*n
	return Question{
		Text:        fmt.Sprintf("What is %d + %d?", a, b),
		Answer:      strconv.Itoa(a + b),
		Explanation: fmt.Sprintf("Add the two numbers: %d + %d = %d.", a, b, a+b),
		Skill:       req.Concept,
		Difficulty:  req.Level,
	}, nil
}

func (Static) Judge(_ context.Context, _, correctAnswer, userAnswer string) (Judgment, error) {
	if equivalent(correctAnswer, userAnswer) {
		return Judgment{
			Correct:     true,
			Reason:      "Correct: equivalent solution",
			Explanation: fmt.Sprintf("Your answer %q matches the correct answer %q.", userAnswer, correctAnswer),
		}, nil
	}
	return Judgment{
		Correct:     false,
		Reason:      "Incorrect",
		Explanation: fmt.Sprintf("Your answer %q does not match the correct answer %q. Re-check your calculation.", userAnswer, correctAnswer),
	}, nil
}

func (Static) Insights(_ context.Context, username, topic string, performance []SkillStat) (Insights, error) {
	correct, total := 0, 0
	weakest := ""
	low := 101.0
	for _, p := range performance {
		correct += p.Correct
		total += p.Total
		if p.Total > 0 && p.Percent < low {
			low = p.Percent
			weakest = p.Skill
		}
	}

	summary := fmt.Sprintf("%s answered %d of %d questions correctly on %s.", username, correct, total, topic)
	recs := "Keep practicing all areas of " + topic + " to improve."
	if weakest != "" && low < 60 {
		recs = fmt.Sprintf("Focus your practice on %s, the weakest area in this session.", weakest)
	}
	return Insights{Summary: summary, Recommendations: recs}, nil
}
