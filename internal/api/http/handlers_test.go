package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/quizmith/mathquiz/internal/api/http"
	"github.com/quizmith/mathquiz/internal/oracle"
	"github.com/quizmith/mathquiz/internal/quiz"
	"github.com/quizmith/mathquiz/internal/report"
	"github.com/quizmith/mathquiz/internal/storage"
)

func newTestRouter(t *testing.T) chi.Router {
	return newRouterWith(t, oracle.NewStatic(), "")
}

func newRouterWith(t *testing.T, orc oracle.Oracle, publicURL string) chi.Router {
	t.Helper()

	engine := quiz.NewEngine(quiz.NewMemoryStore(), orc, nil, quiz.TotalQuestions)

	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	gen := report.NewGenerator(orc, bs, nil)

	r := chi.NewRouter()
	r.Post("/start", api.StartHandler(engine))
	r.Post("/answer", api.AnswerHandler(engine))
	r.Post("/report", api.ReportHandler(engine, gen, nil, publicURL))
	r.Route("/session", func(sr chi.Router) {
		sr.Post("/heartbeat", api.HeartbeatHandler(engine))
		sr.Post("/recover", api.RecoverHandler(engine))
	})
	r.Get("/reports/{name}", api.ReportFileHandler(bs))
	return r
}

// inflatedDifficultyOracle claims an in-range difficulty on every question
// regardless of the requested level.
type inflatedDifficultyOracle struct {
	oracle.Oracle
}

func (o inflatedDifficultyOracle) NextQuestion(ctx context.Context, req oracle.QuestionRequest) (oracle.Question, error) {
	q, err := o.Oracle.NextQuestion(ctx, req)
	q.Difficulty = 3
	return q, err
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	}
	return w.Code, out
}

func TestFullQuizOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	code, body := doJSON(t, r, "POST", "/start", map[string]string{
		"username": "ada", "topic": "Algebra",
	})
	require.Equal(t, http.StatusOK, code, "start body: %v", body)

	sessionID, _ := body["session_id"].(string)
	require.NotEmpty(t, sessionID)
	require.NotEmpty(t, body["question"])
	require.NotEmpty(t, body["correct_answer"])
	assert.EqualValues(t, 1, body["difficulty"])

	question := body["question"].(string)
	answer := body["correct_answer"].(string)

	for i := 1; i <= quiz.TotalQuestions; i++ {
		code, body = doJSON(t, r, "POST", "/answer", map[string]string{
			"session_id":     sessionID,
			"question":       question,
			"correct_answer": answer,
			"user_answer":    answer,
		})
		require.Equal(t, http.StatusOK, code, "answer #%d body: %v", i, body)

		assert.Equal(t, true, body["is_correct"], "answer #%d", i)
		assert.EqualValues(t, i, body["score"])
		assert.EqualValues(t, i, body["progress"])

		if i < quiz.TotalQuestions {
			assert.Equal(t, false, body["quiz_complete"])
			question = body["question"].(string)
			answer = body["correct_answer"].(string)
		} else {
			assert.Equal(t, true, body["quiz_complete"])
			assert.Nil(t, body["question"])
		}
	}

	// Completed sessions accept no more answers.
	code, body = doJSON(t, r, "POST", "/answer", map[string]string{
		"session_id":     sessionID,
		"question":       question,
		"correct_answer": answer,
		"user_answer":    answer,
	})
	assert.Equal(t, http.StatusGone, code)
	assert.Contains(t, body["error"], "ended")

	// The report references a fetchable artifact.
	code, body = doJSON(t, r, "POST", "/report", map[string]string{"session_id": sessionID})
	require.Equal(t, http.StatusOK, code, "report body: %v", body)

	path, _ := body["report_path"].(string)
	require.NotEmpty(t, path)
	assert.NotEmpty(t, body["ai_summary"])
	assert.NotEmpty(t, body["ai_recommendations"])

	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "ada")
}

func TestStartEchoesSessionLevelNotGeneratorDifficulty(t *testing.T) {
	r := newRouterWith(t, inflatedDifficultyOracle{Oracle: oracle.NewStatic()}, "")

	code, body := doJSON(t, r, "POST", "/start", map[string]string{
		"username": "ada", "topic": "Algebra",
	})
	require.Equal(t, http.StatusOK, code, "start body: %v", body)
	assert.EqualValues(t, 1, body["difficulty"], "a fresh session always starts at level 1")
}

func TestReportPathUsesPublicURL(t *testing.T) {
	r := newRouterWith(t, oracle.NewStatic(), "https://quiz.example.com/")

	_, start := doJSON(t, r, "POST", "/start", map[string]string{"username": "ada", "topic": "Algebra"})
	sessionID := start["session_id"].(string)

	question := start["question"].(string)
	answer := start["correct_answer"].(string)
	for i := 0; i < quiz.TotalQuestions; i++ {
		_, body := doJSON(t, r, "POST", "/answer", map[string]string{
			"session_id": sessionID, "question": question, "correct_answer": answer, "user_answer": answer,
		})
		if next, ok := body["question"].(string); ok {
			question = next
			answer = body["correct_answer"].(string)
		}
	}

	code, body := doJSON(t, r, "POST", "/report", map[string]string{"session_id": sessionID})
	require.Equal(t, http.StatusOK, code, "report body: %v", body)

	path := body["report_path"].(string)
	assert.True(t, strings.HasPrefix(path, "https://quiz.example.com/reports/"), "report_path = %s", path)
	assert.NotContains(t, path, "com//", "base and key joined with a double slash")
}

func TestStartRejectsBadInput(t *testing.T) {
	r := newTestRouter(t)

	code, body := doJSON(t, r, "POST", "/start", map[string]string{"username": "", "topic": "Algebra"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["error"])

	code, _ = doJSON(t, r, "POST", "/start", map[string]string{"username": "ada", "topic": "Underwater Basket Weaving"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAnswerValidation(t *testing.T) {
	r := newTestRouter(t)

	code, _ := doJSON(t, r, "POST", "/answer", map[string]string{"question": "q", "user_answer": "1"})
	assert.Equal(t, http.StatusBadRequest, code, "missing session id")

	code, body := doJSON(t, r, "POST", "/answer", map[string]string{
		"session_id": "no-such-session", "question": "q", "correct_answer": "1", "user_answer": "1",
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body["error"], "restart")
}

func TestAnswerRejectsStaleQuestionEcho(t *testing.T) {
	r := newTestRouter(t)

	_, start := doJSON(t, r, "POST", "/start", map[string]string{"username": "ada", "topic": "Geometry"})
	sessionID := start["session_id"].(string)

	code, body := doJSON(t, r, "POST", "/answer", map[string]string{
		"session_id":     sessionID,
		"question":       "a stale question from an earlier round",
		"correct_answer": start["correct_answer"].(string),
		"user_answer":    "42",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["error"])
}

func TestHeartbeat(t *testing.T) {
	r := newTestRouter(t)

	_, start := doJSON(t, r, "POST", "/start", map[string]string{"username": "ada", "topic": "Statistics"})
	sessionID := start["session_id"].(string)

	code, body := doJSON(t, r, "POST", "/session/heartbeat", map[string]string{"session_id": sessionID})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "active", body["status"])

	code, body = doJSON(t, r, "POST", "/session/heartbeat", map[string]string{"session_id": "unknown"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "inactive", body["status"])

	code, _ = doJSON(t, r, "POST", "/session/heartbeat", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRecover(t *testing.T) {
	r := newTestRouter(t)

	_, start := doJSON(t, r, "POST", "/start", map[string]string{"username": "ada", "topic": "Calculus"})
	sessionID := start["session_id"].(string)

	code, body := doJSON(t, r, "POST", "/session/recover", map[string]string{"session_id": sessionID})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "recovered", body["status"])
	assert.Equal(t, "ada", body["username"])
	assert.Equal(t, "Calculus", body["topic"])
	assert.EqualValues(t, 0, body["progress"])

	code, _ = doJSON(t, r, "POST", "/session/recover", map[string]string{"session_id": "unknown"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestReportRequiresKnownSession(t *testing.T) {
	r := newTestRouter(t)

	code, _ := doJSON(t, r, "POST", "/report", map[string]string{"session_id": "unknown"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doJSON(t, r, "POST", "/report", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestReportFileRejectsTraversal(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest("GET", "/reports/%2e%2e%2fsecrets.html", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
