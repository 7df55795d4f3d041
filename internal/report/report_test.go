package report

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizmith/mathquiz/internal/oracle"
	"github.com/quizmith/mathquiz/internal/quiz"
	"github.com/quizmith/mathquiz/internal/storage"
)

type noInsightsOracle struct {
	oracle.Oracle
}

func (noInsightsOracle) Insights(context.Context, string, string, []oracle.SkillStat) (oracle.Insights, error) {
	return oracle.Insights{}, &oracle.ErrUnavailable{Err: errors.New("down")}
}

type recordingIndex struct {
	sessionID, key, summary, recs string
}

func (r *recordingIndex) SaveReport(_ context.Context, sessionID, key, summary, recs string) error {
	r.sessionID, r.key, r.summary, r.recs = sessionID, key, summary, recs
	return nil
}

func finishedSession() quiz.Session {
	now := time.Now()
	return quiz.Session{
		ID:           "s1",
		Username:     "Ada Lovelace",
		Topic:        "Algebra",
		Status:       quiz.StatusCompleted,
		Level:        4,
		Score:        3,
		FinalPercent: 75,
		History: []quiz.HistoryEntry{
			{Question: "Solve 2x=6", UserAnswer: "3", CorrectAnswer: "3", Skill: "Linear Equations", Correct: true, Level: 1, Judgment: "Correct", Explanation: "Divide by 2.", AnsweredAt: now},
			{Question: "Solve 3x=9", UserAnswer: "3", CorrectAnswer: "3", Skill: "Linear Equations", Correct: true, Level: 2, Judgment: "Correct", Explanation: "Divide by 3.", AnsweredAt: now},
			{Question: "Factor x^2-1", UserAnswer: "(x-1)(x+1)", CorrectAnswer: "(x-1)(x+1)", Skill: "Factoring", Correct: true, Level: 3, Judgment: "Correct", Explanation: "Difference of squares.", AnsweredAt: now},
			{Question: "Factor x^2+2x+1", UserAnswer: "(x+2)(x+1)", CorrectAnswer: "(x+1)^2", Skill: "Factoring", Correct: false, Level: 4, Judgment: "Incorrect", Explanation: "Perfect square trinomial.", AnsweredAt: now},
		},
		StartedAt: now.Add(-10 * time.Minute),
		EndedAt:   now,
	}
}

func TestGenerateWritesArtifactAndIndexesIt(t *testing.T) {
	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)

	idx := &recordingIndex{}
	g := NewGenerator(oracle.NewStatic(), bs, idx)

	res, err := g.Generate(context.Background(), finishedSession())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.ArtifactKey, "reports/"), "key = %s", res.ArtifactKey)
	assert.True(t, strings.HasSuffix(res.ArtifactKey, ".html"), "key = %s", res.ArtifactKey)
	assert.NotEmpty(t, res.Summary)
	assert.NotEmpty(t, res.Recommendations)

	rc, err := bs.Get(res.ArtifactKey)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)

	html := string(body)
	assert.Contains(t, html, "Ada Lovelace")
	assert.Contains(t, html, "Linear Equations")
	assert.Contains(t, html, "Factoring")
	assert.Contains(t, html, "75.0%")
	assert.Contains(t, html, "Solve 2x=6")

	assert.Equal(t, "s1", idx.sessionID)
	assert.Equal(t, res.ArtifactKey, idx.key)
	assert.Equal(t, res.Summary, idx.summary)
}

func TestGenerateSurvivesInsightsFailure(t *testing.T) {
	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)

	g := NewGenerator(noInsightsOracle{Oracle: oracle.NewStatic()}, bs, nil)

	res, err := g.Generate(context.Background(), finishedSession())
	require.NoError(t, err)
	assert.Contains(t, res.Summary, "unavailable")
	assert.Contains(t, res.Recommendations, "unavailable")

	rc, err := bs.Get(res.ArtifactKey)
	require.NoError(t, err)
	rc.Close()
}

func TestAggregate(t *testing.T) {
	stats := Aggregate(finishedSession().History)
	require.Len(t, stats, 2)

	// Weakest skill first.
	assert.Equal(t, "Factoring", stats[0].Skill)
	assert.Equal(t, 1, stats[0].Correct)
	assert.Equal(t, 2, stats[0].Total)
	assert.InDelta(t, 50.0, stats[0].Percent, 0.001)

	assert.Equal(t, "Linear Equations", stats[1].Skill)
	assert.InDelta(t, 100.0, stats[1].Percent, 0.001)
}

func TestAggregateLabelsMissingSkills(t *testing.T) {
	stats := Aggregate([]quiz.HistoryEntry{{Question: "q", Correct: true}})
	require.Len(t, stats, 1)
	assert.Equal(t, "Unknown Skill", stats[0].Skill)
}

func TestAggregateEmptyHistory(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}

func TestArtifactKeySanitizesUsername(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	key := artifactKey("Ada Lovelace", at)
	assert.Equal(t, "reports/Ada_Lovelace_quiz_report_20260301_093000.html", key)

	key = artifactKey("../../etc/passwd", at)
	assert.Equal(t, "reports/etcpasswd_quiz_report_20260301_093000.html", key)

	key = artifactKey("日本語", at)
	assert.Equal(t, "reports/student_quiz_report_20260301_093000.html", key)
}
