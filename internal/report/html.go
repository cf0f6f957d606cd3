package report

import (
	"fmt"
	"html/template"
	"io"
	"time"
)

const htmlTemplate = `<!DOCTYPE html>
<html>
<head><title>bytescribe-fuzz report</title></head>
<body>
  <h1>Fuzzing report</h1>
  <p>Generated {{formatTime .GeneratedAt}}</p>
  <ul>
    <li>Iterations: {{.Iterations}}</li>
    <li>Corpus size: {{.CorpusSize}}</li>
    <li>Covered edges: {{.CoveredEdges}}</li>
    <li>Duration: {{.Duration}}</li>
  </ul>
  <h2>Crashes ({{len .Crashes}} distinct, {{.CrashClusters}} cluster(s))</h2>
  <table border="1">
    <tr><th>Type</th><th>Inputs</th><th>Message</th><th>Discovered</th></tr>
    {{range .Crashes}}
    <tr>
      <td>{{.ErrorType}}</td>
      <td>{{.InputValues}}</td>
      <td>{{truncate .ErrorMessage 200}}</td>
      <td>{{formatTime .DiscoveredAt}}</td>
    </tr>
    {{end}}
  </table>
</body>
</html>
`

// HTMLGenerator renders a Report as a standalone HTML page.
type HTMLGenerator struct {
	template *template.Template
}

// NewHTMLGenerator builds an HTMLGenerator with its template
// compiled once.
func NewHTMLGenerator() *HTMLGenerator {
	tmpl := template.Must(template.New("report").Funcs(template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04:05")
		},
		"truncate": func(s string, n int) string {
			if len(s) <= n {
				return s
			}
			return s[:n] + "..."
		},
	}).Parse(htmlTemplate))
	return &HTMLGenerator{template: tmpl}
}

// Generate writes r as HTML to w.
func (g *HTMLGenerator) Generate(r Report, w io.Writer) error {
	if err := g.template.Execute(w, r); err != nil {
		return fmt.Errorf("report: rendering HTML: %w", err)
	}
	return nil
}
