package reflector

import (
	"io"
	"text/template"
)

var viewTemplate = template.Must(template.New("view").Parse(
	`{{- if eq .State.String "loading" -}}
Loading...
{{- else if eq .State.String "error" -}}
Error: {{ .Err }}
{{- else if eq .State.String "anonymous" -}}
Not signed in.
Log in: {{ .LoginURL }}
{{- else -}}
Welcome, {{ .Identity.DisplayName }}
{{- with .Identity.Email }}
{{ . }}{{ end }}
{{- with .Identity.AvatarURL }}
avatar: {{ . }}{{ end }}
{{- end }}
`))

// Render writes a plain-text rendering of v.
func (v View) Render(w io.Writer) error {
	return viewTemplate.Execute(w, v)
}
