package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/net/html"
)

const articleTemplate = `{{ .Title | upper }}
{{ .Published | date "02 Jan 2006" }}
{{ repeat 40 "-" }}
{{ .Body | trim | wrap 80 }}
`

const gameworldTemplate = `{{ .Name }}{{ with .Subtitle }} - {{ . }}{{ end }}
Start:    {{ .Start }}{{ with .Zone }} ({{ . }}){{ end }}
{{- if .Speed }}
Speed:    {{ .Speed }}x
{{- end }}
{{- if .Tribes }}
Tribes:   {{ join ", " .Tribes }}
{{- end }}
{{- if .Tags }}
Tags:     {{ join ", " .Tags }}
{{- end }}
{{- if .Indeterminate }}
Details:  not announced yet
{{- end }}
Action:   {{ .Action | default "none" }}
{{- with .URL }}
URL:      {{ . }}
{{- end }}
`

var templates = template.Must(
	template.Must(template.New("article").Funcs(sprig.TxtFuncMap()).Parse(articleTemplate)).
		New("gameworld").Parse(gameworldTemplate),
)

// RenderTemplate executes one of the detail templates ("article" or
// "gameworld") with data.
func RenderTemplate(w io.Writer, name string, data any) error {
	if templates.Lookup(name) == nil {
		return fmt.Errorf("unknown template %q", name)
	}
	return templates.ExecuteTemplate(w, name, data)
}

// HTMLToText extracts the readable text of an HTML fragment. Block elements
// become line breaks; script and style content is dropped.
func HTMLToText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return
			case "br":
				sb.WriteString("\n")
			case "li":
				sb.WriteString("\n- ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "h1", "h2", "h3", "h4", "ul", "ol":
				sb.WriteString("\n\n")
			}
		}
	}
	walk(doc)

	lines := strings.Split(sb.String(), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
