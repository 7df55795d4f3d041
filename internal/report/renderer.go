package report

import (
	"html/template"
	"io"
	"time"

	"github.com/quizmith/mathquiz/internal/oracle"
	"github.com/quizmith/mathquiz/internal/quiz"
)

// Data is everything a renderer needs to produce the artifact.
type Data struct {
	Username     string
	Topic        string
	GeneratedAt  time.Time
	Total        int
	Correct      int
	FinalPercent float64
	Skills       []oracle.SkillStat
	Summary      string
	Recs         string
	History      []quiz.HistoryEntry
}

// Renderer turns report data into a persisted artifact. The built-in
// renderer emits a self-contained HTML document; swapping in an external
// document service (e.g. PDF) happens here.
type Renderer interface {
	Render(w io.Writer, data Data) error
}

type htmlRenderer struct{}

func (htmlRenderer) Render(w io.Writer, data Data) error {
	return reportTmpl.Execute(w, data)
}

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"add1": func(i int) int { return i + 1 },
}).Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Math Quiz Performance Report</title>
<style>
 body { font-family: Helvetica, Arial, sans-serif; margin: 2rem auto; max-width: 48rem; color: #222; }
 h1 { color: #6c5ce7; text-align: center; }
 h2 { border-bottom: 1px solid #ddd; padding-bottom: .3rem; }
 table { border-collapse: collapse; width: 100%; }
 th, td { border: 1px solid #ddd; padding: .4rem .6rem; text-align: left; }
 .correct { color: #00b894; }
 .incorrect { color: #d63031; }
 .qa { margin-bottom: 1.2rem; }
</style>
</head>
<body>
<h1>Math Quiz Performance Report</h1>

<p>
Student: {{.Username}}<br>
Topic: {{.Topic}}<br>
Date: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}<br>
Total Questions: {{.Total}}<br>
Correct Answers: {{.Correct}}<br>
Final Score: {{printf "%.1f" .FinalPercent}}%
</p>

<h2>AI Insights &amp; Recommendations</h2>
<p><b>Summary:</b> {{.Summary}}</p>
<p><b>Recommendations:</b> {{.Recs}}</p>

<h2>Performance by Skill</h2>
<table>
<tr><th>Skill</th><th>Correct</th><th>Total</th><th>Score</th></tr>
{{range .Skills}}<tr><td>{{.Skill}}</td><td>{{.Correct}}</td><td>{{.Total}}</td><td>{{printf "%.1f" .Percent}}%</td></tr>
{{end}}</table>

<h2>Detailed Questions &amp; Answers</h2>
{{range $i, $h := .History}}<div class="qa">
<p><b>Q{{add1 $i}}</b> (Level {{$h.Level}}, Skill: {{$h.Skill}}): {{$h.Question}}</p>
<p>Your Answer: {{$h.UserAnswer}}<br>
Correct Answer: {{$h.CorrectAnswer}}<br>
Result: {{if $h.Correct}}<span class="correct">{{$h.Judgment}}</span>{{else}}<span class="incorrect">{{$h.Judgment}}</span>{{end}}<br>
Explanation: {{$h.Explanation}}</p>
</div>
{{end}}
</body>
</html>
`))
