// Package report assembles end-of-session reports: per-skill performance,
// AI commentary, and a persisted artifact. AI failures degrade to explicit
// "unavailable" text instead of failing the report.
package report

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/quizmith/mathquiz/internal/oracle"
	"github.com/quizmith/mathquiz/internal/quiz"
	"github.com/quizmith/mathquiz/internal/storage"
)

// Result references the persisted artifact plus the AI commentary.
type Result struct {
	ArtifactKey     string
	Summary         string
	Recommendations string
}

// Index records report metadata for later lookup. Optional.
type Index interface {
	SaveReport(ctx context.Context, sessionID, artifactKey, summary, recommendations string) error
}

// Generator builds and persists reports for terminal sessions.
type Generator struct {
	oracle   oracle.Oracle
	blob     storage.BlobStore
	renderer Renderer
	index    Index // may be nil
}

func NewGenerator(o oracle.Oracle, blob storage.BlobStore, index Index) *Generator {
	return &Generator{oracle: o, blob: blob, renderer: htmlRenderer{}, index: index}
}

// WithRenderer swaps the artifact renderer (e.g. an external PDF service).
func (g *Generator) WithRenderer(r Renderer) *Generator {
	g.renderer = r
	return g
}

// Generate aggregates the session's history, asks the oracle for
// commentary, renders the artifact, and stores it. Only the artifact
// write can fail the call; missing AI commentary never does.
func (g *Generator) Generate(ctx context.Context, s quiz.Session) (Result, error) {
	stats := Aggregate(s.History)

	insights, err := g.oracle.Insights(ctx, s.Username, s.Topic, stats)
	if err != nil {
		log.Printf("report: AI insights failed for session %s: %v", s.ID, err)
		insights = oracle.Insights{
			Summary:         "AI summary unavailable for this session. Your results are recorded below.",
			Recommendations: "AI recommendations unavailable. Keep practicing all areas of " + s.Topic + " to improve.",
		}
	}

	data := Data{
		Username:     s.Username,
		Topic:        s.Topic,
		GeneratedAt:  time.Now(),
		Total:        len(s.History),
		FinalPercent: quiz.FinalPercent(s),
		Skills:       stats,
		Summary:      insights.Summary,
		Recs:         insights.Recommendations,
		History:      s.History,
	}
	for _, h := range s.History {
		if h.Correct {
			data.Correct++
		}
	}

	var buf bytes.Buffer
	if err := g.renderer.Render(&buf, data); err != nil {
		return Result{}, fmt.Errorf("render report: %w", err)
	}

	key := artifactKey(s.Username, data.GeneratedAt)
	if _, err := g.blob.Put(key, &buf); err != nil {
		return Result{}, fmt.Errorf("store report artifact: %w", err)
	}

	if g.index != nil {
		if err := g.index.SaveReport(ctx, s.ID, key, insights.Summary, insights.Recommendations); err != nil {
			log.Printf("report: indexing report for session %s failed: %v", s.ID, err)
		}
	}

	log.Printf("report: generated %s for session %s", key, s.ID)
	return Result{ArtifactKey: key, Summary: insights.Summary, Recommendations: insights.Recommendations}, nil
}

// Aggregate computes per-skill stats from history, sorted weakest first.
func Aggregate(history []quiz.HistoryEntry) []oracle.SkillStat {
	byName := map[string]*oracle.SkillStat{}
	var order []string
	for _, h := range history {
		skill := h.Skill
		if skill == "" {
			skill = "Unknown Skill"
		}
		st, ok := byName[skill]
		if !ok {
			st = &oracle.SkillStat{Skill: skill}
			byName[skill] = st
			order = append(order, skill)
		}
		st.Total++
		if h.Correct {
			st.Correct++
		}
	}

	out := make([]oracle.SkillStat, 0, len(order))
	for _, name := range order {
		st := byName[name]
		st.Percent = float64(st.Correct) / float64(st.Total) * 100
		out = append(out, *st)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percent < out[j].Percent })
	return out
}

// artifactKey builds a stable, filesystem-safe artifact name.
func artifactKey(username string, at time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, username)
	if safe == "" {
		safe = "student"
	}
	return fmt.Sprintf("reports/%s_quiz_report_%s.html", safe, at.Format("20060102_150405"))
}
