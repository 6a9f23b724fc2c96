// Package template fills the named document templates used by the pipeline.
package template

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"
)

// Built-in document templates. Each produces a metadata header followed
// by a free-text body, the intake document format.
var documents = map[string]string{
	"work_item": `type: {{.type}}
status: {{.status}}
priority: {{or .priority "normal"}}
created: {{if .created}}{{.created}}{{else}}{{now}}{{end}}

{{.body}}
`,
	"approval_request": `type: approval_request
work_item: {{.work_item_id}}
capability: {{.capability}}
deadline: {{.deadline}}
created: {{if .created}}{{.created}}{{else}}{{now}}{{end}}

Approval requested for {{.capability}} on work item {{.work_item_id}}.
Move this file to the approved or rejected folder to decide.

{{.body}}
`,
	"plan_summary": `type: plan
task_type: {{.task_type}}
{{if .complexity}}complexity: {{.complexity}}
{{end}}created: {{if .created}}{{.created}}{{else}}{{now}}{{end}}

{{.body}}

{{range .steps}}{{.Index}}. [{{.Capability}}]{{if .RequiresApproval}} (approval required){{end}}
{{end}}`,
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"now": func() string {
			return time.Now().UTC().Format(time.RFC3339)
		},
	}
}

// Render fills the named built-in template with the supplied variables.
func Render(name string, data map[string]any) (string, error) {
	raw, ok := documents[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q, have %s", name, strings.Join(Names(), ", "))
	}

	return RenderString(raw, data)
}

// RenderString fills an arbitrary template string.
func RenderString(templateStr string, data map[string]any) (string, error) {
	tmpl, err := template.New("document").Funcs(funcs()).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// Names returns the available built-in template names, sorted.
func Names() []string {
	names := make([]string, 0, len(documents))
	for name := range documents {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
