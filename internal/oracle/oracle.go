// Package oracle is the content oracle for the quiz engine: it generates
// questions, judges free-text answers, and produces report commentary by
// delegating to an AI provider. The engine never grades math itself;
// equivalence of answer forms (1/2 vs 0.5) is entirely this package's
// problem.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Concept is one skill within a topic's syllabus.
type Concept struct {
	Name           string `json:"concept_name"`
	Description    string `json:"description"`
	BaseDifficulty int    `json:"base_difficulty"`
}

// Question is a generated quiz question with its canonical answer.
type Question struct {
	Text        string `json:"question"`
	Answer      string `json:"correct_answer"`
	Explanation string `json:"explanation"`
	Skill       string `json:"skill"`
	Difficulty  int    `json:"difficulty"`
}

// QuestionRequest asks for a fresh question.
type QuestionRequest struct {
	Topic   string
	Concept string
	Level   int
	// Recent holds question texts already served, used for dedup.
	Recent []string
}

// Judgment is the oracle's verdict on a user's answer.
type Judgment struct {
	Correct     bool   `json:"is_correct"`
	Reason      string `json:"judgment_reason"`
	Explanation string `json:"explanation"`
}

// SkillStat summarizes per-skill performance, input to Insights.
type SkillStat struct {
	Skill   string
	Correct int
	Total   int
	Percent float64
}

// Insights is AI commentary for the end-of-session report.
type Insights struct {
	Summary         string `json:"summary"`
	Recommendations string `json:"recommendations"`
}

// Oracle is the content oracle contract the quiz engine consumes.
type Oracle interface {
	// Concepts returns a syllabus of skills for a topic, ordered by
	// increasing base difficulty.
	Concepts(ctx context.Context, topic string) ([]Concept, error)

	// NextQuestion generates a question for the given concept and level,
	// avoiding the recently asked set.
	NextQuestion(ctx context.Context, req QuestionRequest) (Question, error)

	// Judge decides whether userAnswer is equivalent to correctAnswer and
	// explains the solution.
	Judge(ctx context.Context, question, correctAnswer, userAnswer string) (Judgment, error)

	// Insights produces a performance summary and study recommendations.
	Insights(ctx context.Context, username, topic string, performance []SkillStat) (Insights, error)
}

// questionAttempts is how many times a generation that produced a duplicate
// or unusable question is retried before giving up. Transport-level retries
// are the provider decorator's job.
const questionAttempts = 3

// AI is the provider-backed Oracle implementation.
type AI struct {
	provider Provider
	timeout  time.Duration
}

func NewAI(p Provider, timeout time.Duration) *AI {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &AI{provider: p, timeout: timeout}
}

func (o *AI) Concepts(ctx context.Context, topic string) ([]Concept, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.provider.Generate(ctx, Request{
		System:    conceptsSystem,
		Prompt:    conceptsPrompt(topic),
		Schema:    conceptsSchema,
		MaxTokens: 2048,
	})
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Concepts []Concept `json:"concepts"`
	}
	if err := json.Unmarshal(resp.Content, &wrapper); err != nil {
		return nil, &ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if len(wrapper.Concepts) == 0 {
		return nil, &ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("empty concept list")}
	}
	return wrapper.Concepts, nil
}

func (o *AI) NextQuestion(ctx context.Context, req QuestionRequest) (Question, error) {
	asked := make(map[string]struct{}, len(req.Recent))
	for _, q := range req.Recent {
		asked[q] = struct{}{}
	}

	var lastErr error
	for attempt := 0; attempt < questionAttempts; attempt++ {
		q, err := o.generateQuestion(ctx, req)
		if err != nil {
			lastErr = err
			if IsUnavailable(err) {
				return Question{}, err
			}
			continue
		}
		if _, dup := asked[q.Text]; dup {
			lastErr = &ErrInvalidResponse{Err: fmt.Errorf("duplicate question: %q", q.Text)}
			continue
		}
		return q, nil
	}
	return Question{}, lastErr
}

func (o *AI) generateQuestion(ctx context.Context, req QuestionRequest) (Question, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.provider.Generate(ctx, Request{
		System:      questionSystem,
		Prompt:      questionPrompt(req),
		Schema:      questionSchema,
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		return Question{}, err
	}

	var raw struct {
		Question    string `json:"question"`
		Answer      string `json:"answer"`
		Explanation string `json:"explanation"`
		Skill       string `json:"skill"`
		Difficulty  int    `json:"difficulty"`
	}
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return Question{}, &ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if strings.TrimSpace(raw.Question) == "" || strings.TrimSpace(raw.Answer) == "" {
		return Question{}, &ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("empty question or answer")}
	}

	q := Question{
		Text:        raw.Question,
		Answer:      raw.Answer,
		Explanation: raw.Explanation,
		Skill:       raw.Skill,
		Difficulty:  raw.Difficulty,
	}
	// The model occasionally renames the skill; the session's concept plan
	// is authoritative.
	if q.Skill != req.Concept {
		q.Skill = req.Concept
	}
	if q.Difficulty < 1 || q.Difficulty > 5 {
		q.Difficulty = req.Level
	}
	return q, nil
}

func (o *AI) Judge(ctx context.Context, question, correctAnswer, userAnswer string) (Judgment, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.provider.Generate(ctx, Request{
		System:    judgeSystem,
		Prompt:    judgePrompt(question, correctAnswer, userAnswer),
		Schema:    judgeSchema,
		MaxTokens: 2048,
	})
	if err != nil {
		return Judgment{}, err
	}

	var j Judgment
	if err := json.Unmarshal(resp.Content, &j); err != nil {
		return Judgment{}, &ErrInvalidResponse{Content: resp.Content, Err: err}
	}

	// A judgment without a usable explanation is worse than a canned one.
	if len(strings.TrimSpace(j.Explanation)) < 30 {
		if j.Correct {
			j.Explanation = fmt.Sprintf("Your answer %q is correct. The step-by-step solution confirms your result.", userAnswer)
		} else {
			j.Explanation = fmt.Sprintf("Your answer %q is incorrect. The correct answer is %q. Review the solution steps for this problem and re-check your calculation.", userAnswer, correctAnswer)
		}
	}
	if strings.TrimSpace(j.Reason) == "" {
		if j.Correct {
			j.Reason = "Correct"
		} else {
			j.Reason = "Incorrect"
		}
	}
	return j, nil
}

func (o *AI) Insights(ctx context.Context, username, topic string, performance []SkillStat) (Insights, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.provider.Generate(ctx, Request{
		System:    insightsSystem,
		Prompt:    insightsPrompt(username, topic, performance),
		Schema:    insightsSchema,
		MaxTokens: 1024,
	})
	if err != nil {
		return Insights{}, err
	}

	var in Insights
	if err := json.Unmarshal(resp.Content, &in); err != nil {
		return Insights{}, &ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if strings.TrimSpace(in.Summary) == "" || strings.TrimSpace(in.Recommendations) == "" {
		return Insights{}, &ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("empty summary or recommendations")}
	}
	return in, nil
}
