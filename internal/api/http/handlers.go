// Package http exposes the quiz engine over the JSON contract the browser
// client consumes.
package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizmith/mathquiz/internal/quiz"
	"github.com/quizmith/mathquiz/internal/report"
	"github.com/quizmith/mathquiz/internal/storage"
)

// ReportCache returns a previously generated report, if any. Implemented
// by the SQL archive; nil disables caching.
type ReportCache interface {
	LoadReport(ctx context.Context, sessionID string) (artifactKey, summary, recommendations string, err error)
}

func StartHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Topic    string `json:"topic"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Topic and username are required"})
			return
		}

		res, err := engine.Start(r.Context(), req.Username, req.Topic)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"session_id":     res.SessionID,
			"question":       res.Question.Text,
			"correct_answer": res.Question.Answer,
			"skill":          res.Question.Skill,
			// The session's level is authoritative, not whatever difficulty
			// the generator claimed for the question.
			"difficulty": res.Level,
		})
	}
}

func AnswerHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID     string `json:"session_id"`
			Question      string `json:"question"`
			CorrectAnswer string `json:"correct_answer"`
			UserAnswer    string `json:"user_answer"`
			Skill         string `json:"skill"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No data provided"})
			return
		}
		if req.SessionID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Session ID required"})
			return
		}

		res, err := engine.SubmitAnswer(r.Context(), quiz.SubmitRequest{
			SessionID:     req.SessionID,
			Question:      req.Question,
			CorrectAnswer: req.CorrectAnswer,
			UserAnswer:    req.UserAnswer,
			Skill:         req.Skill,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		out := map[string]any{
			"is_correct":       res.Correct,
			"judgment_text":    res.Judgment,
			"explanation_text": res.Explanation,
			"score":            res.Score,
			"level":            res.Level,
			"progress":         res.Progress,
			"quiz_complete":    res.Complete,
		}
		if res.Next != nil {
			out["question"] = res.Next.Text
			out["correct_answer"] = res.Next.Answer
			out["skill"] = res.Next.Skill
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ReportHandler serves report generation. publicURL, when set, is the
// externally reachable base prepended to report_path; empty means
// same-origin paths.
func ReportHandler(engine *quiz.Engine, gen *report.Generator, cache ReportCache, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Session ID required"})
			return
		}

		if cache != nil {
			if key, summary, recs, err := cache.LoadReport(r.Context(), req.SessionID); err == nil {
				writeReport(w, publicURL, key, summary, recs)
				return
			}
		}

		s, err := engine.Session(r.Context(), req.SessionID)
		if err != nil {
			writeError(w, err)
			return
		}

		res, err := gen.Generate(r.Context(), s)
		if err != nil {
			writeError(w, err)
			return
		}
		writeReport(w, publicURL, res.ArtifactKey, res.Summary, res.Recommendations)
	}
}

func writeReport(w http.ResponseWriter, publicURL, artifactKey, summary, recommendations string) {
	path := "/" + strings.TrimPrefix(artifactKey, "/")
	if publicURL != "" {
		path = strings.TrimSuffix(publicURL, "/") + path
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"report_path":        path,
		"ai_summary":         summary,
		"ai_recommendations": recommendations,
	})
}

func HeartbeatHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Session ID required"})
			return
		}

		if err := engine.Heartbeat(req.SessionID); err != nil {
			// Heartbeats against missing or ended sessions are routine,
			// not errors worth alerting on.
			writeJSON(w, http.StatusNotFound, map[string]string{"status": "inactive"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
	}
}

func RecoverHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Session ID required"})
			return
		}

		res, err := engine.Recover(r.Context(), req.SessionID)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Session not recoverable"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":                 "recovered",
			"progress":               res.Progress,
			"score":                  res.Score,
			"final_percentage_score": res.FinalPercent,
			"level":                  res.Level,
			"username":               res.Username,
			"topic":                  res.Topic,
		})
	}
}

// ReportFileHandler serves persisted report artifacts.
func ReportFileHandler(bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		rc, err := bs.Get("reports/" + name)
		if err != nil {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.Copy(w, rc)
	}
}
