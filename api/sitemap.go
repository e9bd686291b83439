package api

import (
	"bytes"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/coreybb/starwars-api/webutil"
)

// paramRegexp matches a chi parameter with an inline pattern, e.g. {id:[0-9]+}.
var paramRegexp = regexp.MustCompile(`\{([^}:]+):[^}]*\}`)

var sitemapTemplate = template.Must(template.New("sitemap").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>API sitemap</title>
</head>
<body>
<h1>API sitemap</h1>
<p>Endpoints you can open directly:</p>
<ul>
{{- range .Links}}
<li><a href="{{.Path}}">{{.Path}}</a></li>
{{- end}}
</ul>
<h2>All routes</h2>
<table>
<tr><th>Method</th><th>Path</th><th>Description</th></tr>
{{- range .Routes}}
<tr><td>{{.Method}}</td><td>{{.Path}}</td><td>{{.Name}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

// SitemapEntry is one route as shown to clients.
type SitemapEntry struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Name   string `json:"name"`
}

// Sitemap renders the route table it holds. Routes must be set before the
// first request is served.
type Sitemap struct {
	Routes []Route
}

// Entries returns the routes with parameter patterns reduced to {name}.
func (s *Sitemap) Entries() []SitemapEntry {
	entries := make([]SitemapEntry, 0, len(s.Routes))
	for _, route := range s.Routes {
		entries = append(entries, SitemapEntry{
			Method: route.Method,
			Path:   displayPath(route.Pattern),
			Name:   route.Name,
		})
	}
	return entries
}

// Links returns the GET routes without path parameters.
func (s *Sitemap) Links() []SitemapEntry {
	var links []SitemapEntry
	for _, e := range s.Entries() {
		if e.Method == http.MethodGet && !strings.Contains(e.Path, "{") {
			links = append(links, e)
		}
	}
	return links
}

// Handle serves the sitemap as JSON when the client prefers it, HTML otherwise.
func (s *Sitemap) Handle(w http.ResponseWriter, r *http.Request) error {
	if wantsJSON(r) {
		webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"routes": s.Entries()})
		return nil
	}

	var buf bytes.Buffer
	err := sitemapTemplate.Execute(&buf, map[string]any{
		"Links":  s.Links(),
		"Routes": s.Entries(),
	})
	if err != nil {
		return fmt.Errorf("failed to render sitemap: %w", err)
	}
	webutil.RespondWithHTML(w, http.StatusOK, buf.Bytes())
	return nil
}

func displayPath(pattern string) string {
	return paramRegexp.ReplaceAllString(pattern, "{$1}")
}

// wantsJSON reports whether ?format=json is set or the Accept header ranks
// application/json above text/html. Wildcards do not count; ties go to HTML.
func wantsJSON(r *http.Request) bool {
	if format := r.URL.Query().Get("format"); format != "" {
		return strings.EqualFold(format, "json")
	}

	var jsonQ, htmlQ float64
	for _, part := range strings.Split(r.Header.Get(webutil.HeaderAccept), ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if v, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				q = parsed
			}
		}
		switch mediaType {
		case webutil.ContentTypeJSON:
			jsonQ = max(jsonQ, q)
		case "text/html":
			htmlQ = max(htmlQ, q)
		}
	}
	return jsonQ > htmlQ
}
