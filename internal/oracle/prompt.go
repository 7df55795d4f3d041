package oracle

import (
	"fmt"
	"strings"
)

const conceptsSystem = "You are a math education assistant."

func conceptsPrompt(topic string) string {
	return fmt.Sprintf(`For the math topic %q, produce 5 distinct math concepts or skills, ordered by increasing difficulty.

For each concept provide:
- concept_name: a concise name, e.g. "Solving Linear Equations"
- description: a brief explanation of what the concept entails
- base_difficulty: an integer from 1 to 5 for its inherent difficulty within the topic`, topic)
}

var conceptsSchema = &Schema{
	Name:        "math-concepts",
	Description: "Ordered syllabus of concepts for a math topic",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"concepts"},
		"properties": map[string]any{
			"concepts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"concept_name", "description", "base_difficulty"},
					"properties": map[string]any{
						"concept_name":    map[string]any{"type": "string"},
						"description":     map[string]any{"type": "string"},
						"base_difficulty": map[string]any{"type": "integer"},
					},
				},
			},
		},
	},
}

const questionSystem = "You are a strict math quiz generator. Output only the requested JSON."

func questionPrompt(req QuestionRequest) string {
	recent := "No questions asked yet."
	if len(req.Recent) > 0 {
		// Only the tail is worth sending; old questions waste tokens.
		tail := req.Recent
		if len(tail) > 5 {
			tail = tail[len(tail)-5:]
		}
		recent = strings.Join(tail, "; ")
	}

	return fmt.Sprintf(`Generate a new and varied math question.

Topic: %s
Concept: %s
Difficulty: %d (scale 1-5)

Do NOT repeat any of these already-asked questions: %s

Provide:
- question: the question text
- answer: the correct answer
- explanation: a brief step-by-step explanation
- skill: %q
- difficulty: %d`, req.Topic, req.Concept, req.Level, recent, req.Concept, req.Level)
}

var questionSchema = &Schema{
	Name:        "math-question",
	Description: "A single math quiz question with its canonical answer",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"question", "answer", "explanation", "skill", "difficulty"},
		"properties": map[string]any{
			"question":    map[string]any{"type": "string"},
			"answer":      map[string]any{"type": "string"},
			"explanation": map[string]any{"type": "string"},
			"skill":       map[string]any{"type": "string"},
			"difficulty":  map[string]any{"type": "integer"},
		},
	},
}

const judgeSystem = "You are a math answer evaluator. Decide mathematical equivalence against the provided correct answer; never re-derive your own."

func judgePrompt(question, correct, userAnswer string) string {
	return fmt.Sprintf(`Question: %s
Provided correct answer: %s
User's answer: %s

Rules:
1. Judge whether the user's answer is mathematically equivalent to the provided correct answer.
2. For equations, accept "x=VALUE" or just "VALUE".
3. Accept decimal equivalents for fractions and vice versa.
4. Ignore spacing, non-meaningful parentheses, leading/trailing zeros, and case.
5. Trust the provided correct answer as the ultimate correct value; base judgment and explanation solely on it.
6. If the provided correct answer implies a precision, compare at that precision.

Provide:
- is_correct: true or false
- judgment_reason: a concise reason, e.g. "Correct: equivalent solution" or "Incorrect: error in constant term"
- explanation: a full step-by-step explanation of how to reach the provided correct answer; if the user's answer is wrong, state explicitly why by comparing it to the provided correct answer`, question, correct, userAnswer)
}

var judgeSchema = &Schema{
	Name:        "answer-judgment",
	Description: "Verdict on a user's free-text math answer",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"is_correct", "judgment_reason", "explanation"},
		"properties": map[string]any{
			"is_correct":      map[string]any{"type": "boolean"},
			"judgment_reason": map[string]any{"type": "string"},
			"explanation":     map[string]any{"type": "string"},
		},
	},
}

const insightsSystem = "You are an AI tutor providing personalized feedback to a student."

func insightsPrompt(username, topic string, performance []SkillStat) string {
	var b strings.Builder
	for _, p := range performance {
		fmt.Fprintf(&b, "- %s: %d out of %d correct (%.1f%%)\n", p.Skill, p.Correct, p.Total, p.Percent)
	}

	return fmt.Sprintf(`Analyze %s's performance in a math quiz on the topic of %s.

Performance breakdown by skill:
%s
Provide:
- summary: a concise, encouraging summary of strengths and weaknesses, pinpointing specific areas of struggle if any
- recommendations: 2-3 actionable study strategies or resource types for the weak areas, or general advice for continued learning if there are none`, username, topic, b.String())
}

var insightsSchema = &Schema{
	Name:        "performance-insights",
	Description: "Summary and study recommendations for a completed quiz",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"summary", "recommendations"},
		"properties": map[string]any{
			"summary":         map[string]any{"type": "string"},
			"recommendations": map[string]any{"type": "string"},
		},
	},
}
