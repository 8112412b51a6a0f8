// Package reporttemplate is the default implementation of
// report.Renderer, the external templating collaborator spec.md §1
// lists as out of scope for the core and §6 specifies only to the
// depth the report generator needs. No third-party templating engine
// appears anywhere in the example pack's dependency closure, so this
// uses the standard library's html/template and text/template
// directly rather than inventing a dependency the corpus never shows.
package reporttemplate

import (
	"html/template"
	"os"
	texttemplate "text/template"

	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/internal/services/analyzer"
)

var (
	indexTmpl = template.Must(template.New("index").Parse(indexHTML))
	fullTmpl  = template.Must(template.New("full").Parse(fullHTML))
	downTmpl  = template.Must(template.New("downloads").Parse(downloadsHTML))
	mdTmpl    = texttemplate.Must(texttemplate.New("markdown").Parse(markdownTpl))
)

// Renderer implements report.Renderer with the four fixed views the
// report worker always produces.
type Renderer struct{}

func New() *Renderer { return &Renderer{} }

type viewData struct {
	Experiment experiment.Experiment
	Report     analyzer.Report
}

func (r *Renderer) RenderIndexHTML(w *os.File, rep analyzer.Report, exp experiment.Experiment) error {
	return indexTmpl.Execute(w, viewData{Experiment: exp, Report: rep})
}

func (r *Renderer) RenderFullHTML(w *os.File, rep analyzer.Report, exp experiment.Experiment) error {
	return fullTmpl.Execute(w, viewData{Experiment: exp, Report: rep})
}

func (r *Renderer) RenderDownloadsHTML(w *os.File, exp experiment.Experiment) error {
	return downTmpl.Execute(w, exp)
}

func (r *Renderer) RenderMarkdown(w *os.File, rep analyzer.Report, exp experiment.Experiment) error {
	return mdTmpl.Execute(w, viewData{Experiment: exp, Report: rep})
}

const indexHTML = `<!DOCTYPE html>
<html><head><title>{{.Experiment.Name}} - report</title></head>
<body>
<h1>{{.Experiment.Name}}</h1>
<p>{{.Experiment.Toolchains}} | mode {{.Experiment.Mode}}</p>
<ul>
{{range $class, $crates := .Report.ByClassification}}<li>{{$class}}: {{len $crates}}</li>
{{end}}
</ul>
<p><a href="full.html">full report</a> | <a href="downloads.html">downloads</a></p>
</body></html>
`

const fullHTML = `<!DOCTYPE html>
<html><head><title>{{.Experiment.Name}} - full report</title></head>
<body>
<h1>{{.Experiment.Name}} - all categories</h1>
{{range $class, $crates := .Report.ByClassification}}
<h2>{{$class}}</h2>
<ul>{{range $crates}}<li>{{.Package}}</li>{{end}}</ul>
{{end}}
</body></html>
`

const downloadsHTML = `<!DOCTYPE html>
<html><head><title>{{.Name}} - downloads</title></head>
<body>
<h1>{{.Name}} - downloads</h1>
<ul>
<li><a href="results.json">results.json</a></li>
<li><a href="config.json">config.json</a></li>
<li><a href="shas.json">shas.json</a></li>
<li><a href="logs-archives/all.tar.zst">all logs</a></li>
</ul>
</body></html>
`

const markdownTpl = `# {{.Experiment.Name}}

Toolchains: {{.Experiment.Toolchains}}
Mode: {{.Experiment.Mode}}

{{range $class, $crates := .Report.ByClassification}}
## {{$class}} ({{len $crates}})
{{range $crates}}- {{.Package}}
{{end}}
{{end}}
`
