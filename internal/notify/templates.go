package notify

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

type view struct {
	Name     string
	Project  string
	Headline string
	Body     string
	Link     string
}

const textBody = `Hi {{.Name}},

{{.Headline}}
{{if .Body}}
{{.Body}}
{{end}}
{{if .Link}}Open it: {{.Link}}
{{end}}
You are receiving this because you are a member of {{if .Project}}{{.Project}}{{else}}a TickBug project{{end}}.
`

const htmlBody = `<p>Hi {{.Name}},</p>
<p><strong>{{.Headline}}</strong></p>
{{if .Body}}<p>{{.Body}}</p>{{end}}
{{if .Link}}<p><a href="{{.Link}}">Open in TickBug</a></p>{{end}}
<p style="color:#6b7280;font-size:12px">You are receiving this because you are a member of {{if .Project}}{{.Project}}{{else}}a TickBug project{{end}}.</p>
`

var (
	textTmpl = texttemplate.Must(texttemplate.New("text").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(htmlBody))
)

func render(v view) (html, text string, err error) {
	var hb, tb bytes.Buffer
	if err := htmlTmpl.Execute(&hb, v); err != nil {
		return "", "", err
	}
	if err := textTmpl.Execute(&tb, v); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
