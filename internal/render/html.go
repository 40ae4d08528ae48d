package render

import (
	"html/template"
	"io"
	"strings"

	"github.com/raysh454/rawdata/internal/model"
)

type htmlView struct {
	ID       string
	Result   *model.ScanResult
	Scanned  string
	MainText string
	Tables   []model.Table
	Groups   []ElementGroup
	GitHub   *model.GitHubData
	Explorer *model.ExplorerData
	Solscan  *model.SolscanData
}

// HTML writes the browsable view of r served at /scan/{id}.
func HTML(w io.Writer, r *model.ScanResult, scanID string) error {
	v := htmlView{
		ID:      scanID,
		Result:  r,
		Scanned: Timestamp(r.Meta.Timestamp),
		Groups:  GroupElements(r.UIElements, maxPerGroup),
	}
	if r.Page != nil {
		v.MainText = clip(r.Page.MainText, htmlMainText)
		v.Tables = tables(r.Page.Tables)
	}
	if r.DeepData != nil {
		switch d := r.DeepData.Data.(type) {
		case *model.GitHubData:
			v.GitHub = d
		case *model.ExplorerData:
			v.Explorer = d
		case *model.SolscanData:
			v.Solscan = d
		}
	}
	return scanPage.Execute(w, v)
}

// NotFoundHTML writes the page served for an unknown or expired scan.
func NotFoundHTML(w io.Writer, scanID string, expired bool) error {
	return missingPage.Execute(w, struct {
		ID      string
		Expired bool
	}{scanID, expired})
}

var funcs = template.FuncMap{
	"inc":     func(i int) int { return i + 1 },
	"upper":   func(t model.ElementType) string { return strings.ToUpper(string(t)) },
	"repeat":  strings.Repeat,
	"deref":   deref,
	"files":   func(f []model.RepoFile) []model.RepoFile { return f[:min(len(f), maxRepoFiles)] },
	"pages":   pageCount,
	"enabled": func(s model.State) bool { return s == "" || s == model.StateEnabled },
}

var scanPage = template.Must(template.New("scan").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>raw.data Scan - {{with .Result.Meta.Title}}{{.}}{{else}}Untitled{{end}}</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: 'IBM Plex Mono', 'Consolas', 'Monaco', monospace; background: #0a0a0a; color: #e0e0e0; padding: 20px; line-height: 1.6; }
.container { max-width: 1200px; margin: 0 auto; }
.header { border-bottom: 2px solid #00ff88; padding-bottom: 20px; margin-bottom: 30px; }
.header h1 { color: #00ff88; font-size: 28px; margin-bottom: 10px; }
.meta { display: grid; grid-template-columns: auto 1fr; gap: 10px; font-size: 14px; color: #888; }
.meta-label { color: #00ff88; }
.section { background: #111; border: 1px solid #333; border-radius: 8px; padding: 20px; margin-bottom: 20px; }
.section h2 { color: #00ff88; font-size: 20px; margin-bottom: 15px; border-bottom: 1px solid #333; padding-bottom: 10px; }
.section h3 { color: #66ffaa; font-size: 16px; margin: 15px 0 10px 0; }
.element { background: #0a0a0a; border-left: 3px solid #00ff88; padding: 10px; margin: 10px 0; font-size: 13px; }
.element-id { color: #00ff88; font-weight: bold; font-size: 12px; }
.element-type { background: #00ff88; color: #000; padding: 2px 6px; border-radius: 3px; font-size: 11px; font-weight: bold; margin-right: 8px; }
table { width: 100%; border-collapse: collapse; margin: 10px 0; font-size: 13px; }
th, td { border: 1px solid #333; padding: 8px; text-align: left; }
th { background: #00ff88; color: #000; font-weight: bold; }
.badge { background: #333; padding: 4px 8px; border-radius: 4px; font-size: 12px; display: inline-block; margin: 2px; }
.badge a { color: #00ff88; text-decoration: none; }
.footer { text-align: center; margin-top: 40px; padding-top: 20px; border-top: 1px solid #333; color: #666; font-size: 12px; }
.code-block { background: #0a0a0a; border: 1px solid #333; padding: 15px; border-radius: 4px; overflow-x: auto; font-size: 12px; }
pre { white-space: pre-wrap; word-wrap: break-word; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>raw.data</h1>
<div class="meta">
<span class="meta-label">URL:</span><span>{{with .Result.Meta.URL}}{{.}}{{else}}Unknown{{end}}</span>
<span class="meta-label">Title:</span><span>{{with .Result.Meta.Title}}{{.}}{{else}}Untitled{{end}}</span>
<span class="meta-label">Scan Type:</span><span>{{with .Result.Meta.ScanType}}{{.}}{{else}}unknown{{end}}</span>
<span class="meta-label">Scanned:</span><span>{{.Scanned}}</span>
{{- if .ID}}
<span class="meta-label">Scan ID:</span><span>{{.ID}}</span>
{{- end}}
</div>
</div>
{{- with .Result.DeepData}}
<div class="section">
<h2>Deep Scan Data: {{.Source}}</h2>
{{- with $.GitHub}}
<h3>Repository Information</h3>
<div class="element">
<div><strong>Repository:</strong> {{deref .Repo "Unknown"}}</div>
<div><strong>Stars:</strong> {{.Metrics.Stars}} <strong>Forks:</strong> {{.Metrics.Forks}}</div>
<div><strong>Files:</strong> {{len .Files}}</div>
<div><strong>Boilerplate score:</strong> {{.CodePatterns.BoilerplateScore}}%</div>
{{- range .CodePatterns.SuspiciousPatterns}}
<div><strong>Warning:</strong> {{.}}</div>
{{- end}}
</div>
{{- if .Files}}
<h3>Files</h3>
<table><thead><tr><th>Name</th><th>Path</th></tr></thead><tbody>
{{- range files .Files}}
<tr><td>{{.Name}}</td><td>{{.Path}}</td></tr>
{{- end}}
</tbody></table>
{{- end}}
{{- end}}
{{- with $.Explorer}}
<h3>Blockchain Address</h3>
<div class="element">
<div><strong>Type:</strong> {{.Type}}</div>
<div><strong>Address:</strong> {{deref .Address "Unknown"}}</div>
<div><strong>Balance:</strong> {{deref .Balance "Unknown"}}</div>
{{- with .ContractName}}
<div><strong>Contract:</strong> {{.}}</div>
{{- end}}
<div><strong>Verified:</strong> {{.Verified}}</div>
</div>
{{- end}}
{{- with $.Solscan}}
<h3>Solana Account</h3>
<div class="element">
<div><strong>Type:</strong> {{.Type}}</div>
<div><strong>Address:</strong> {{deref .Address "Unknown"}}</div>
<div><strong>Balance:</strong> {{deref .Balance "Unknown"}}</div>
</div>
{{- end}}
</div>
{{- end}}
{{- with .Result.PDF}}
<div class="section">
<h2>PDF Document</h2>
{{- if .Failed}}
<div class="element"><strong>Error:</strong> {{.Error}}<br>{{.Note}}</div>
{{- else}}
<div class="meta" style="margin-bottom: 15px;">
<span class="meta-label">Word Count:</span><span>{{.WordCount}}</span>
<span class="meta-label">Extraction:</span><span>{{.Method}}</span>
<span class="meta-label">Pages:</span><span>{{pages .}}</span>
</div>
<h3>Full Text</h3>
<div class="code-block"><pre>{{.Text}}</pre></div>
{{- end}}
</div>
{{- end}}
{{- with .Result.Page}}
<div class="section">
<h2>Page Content</h2>
{{- if .Headings}}
<h3>Headings</h3>
{{- range .Headings}}
<div class="element">{{repeat "#" .Level}} {{.Text}}</div>
{{- end}}
{{- end}}
{{- if $.MainText}}
<h3>Main Text</h3>
<div class="code-block"><pre>{{$.MainText}}</pre></div>
{{- end}}
{{- if $.Tables}}
<h3>Tables</h3>
{{- range $i, $t := $.Tables}}
<strong>Table {{inc $i}}</strong>
<table><thead><tr>{{range $t.Headers}}<th>{{.}}</th>{{end}}</tr></thead><tbody>
{{- range $t.Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody></table>
{{- end}}
{{- end}}
{{- if .CodeBlocks}}
<h3>Code Blocks</h3>
{{- range .CodeBlocks}}
<div class="code-block"><pre>{{.}}</pre></div>
{{- end}}
{{- end}}
{{- if .DisplayedData}}
<h3>Displayed Data</h3>
{{- range $k, $v := .DisplayedData}}
<div class="element"><span class="element-type">{{$k}}</span>{{range $v}}<span class="badge">{{.}}</span>{{end}}</div>
{{- end}}
{{- end}}
</div>
{{- end}}
{{- if .Groups}}
<div class="section">
<h2>Interactive Elements ({{len .Result.UIElements}})</h2>
{{- range .Groups}}
<h3>{{upper .Type}} ({{.Total}})</h3>
{{- range .Elements}}
<div class="element"><span class="element-type">{{.Type}}</span><span class="element-id">{{.ID}}</span>
{{- with .Text}} "{{.}}"{{end}}
{{- with .Href}} → {{.}}{{end}}
{{- with .Placeholder}} placeholder: "{{.}}"{{end}}
{{- if not (enabled .State)}} ({{.State}}){{end}}</div>
{{- end}}
{{- end}}
</div>
{{- end}}
{{- if .ID}}
<div class="section">
<h2>Raw Data</h2>
<p style="margin-bottom: 10px;">Alternative formats:</p>
<div>
<span class="badge"><a href="/scan/{{.ID}}/json">JSON Format</a></span>
<span class="badge"><a href="/scan/{{.ID}}/ai">AI-Readable Text</a></span>
</div>
</div>
{{- end}}
<div class="footer">
<p>Generated by raw.data</p>
<p>Scan expires in 30 minutes from creation</p>
</div>
</div>
</body>
</html>
`))

var missingPage = template.Must(template.New("missing").Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{if .Expired}}Scan Expired{{else}}Scan Not Found{{end}}</title></head>
<body style="font-family: monospace; padding: 40px; background: #1a1a1a; color: #fff;">
{{- if .Expired}}
<h1>Scan Expired</h1>
<p>This scan was created more than 30 minutes ago and has been removed.</p>
{{- else}}
<h1>404 - Scan Not Found</h1>
<p>ID: {{.ID}}</p>
<p>This scan may have expired (TTL: 30 minutes) or doesn't exist.</p>
{{- end}}
</body></html>
`))
