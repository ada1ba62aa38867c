package hara

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompt/extract_functions.md
var extractFunctionsPromptTmpl string

//go:embed prompt/hazop.md
var hazopPromptTmpl string

//go:embed prompt/exposure.md
var exposurePromptTmpl string

//go:embed prompt/controllability.md
var controllabilityPromptTmpl string

//go:embed prompt/goals.md
var goalsPromptTmpl string

var (
	extractFunctionsPrompt = template.Must(template.New("extract_functions").Parse(extractFunctionsPromptTmpl))
	hazopPrompt            = template.Must(template.New("hazop").Parse(hazopPromptTmpl))
	exposurePrompt         = template.Must(template.New("exposure").Parse(exposurePromptTmpl))
	controllabilityPrompt  = template.Must(template.New("controllability").Parse(controllabilityPromptTmpl))
	goalsPrompt            = template.Must(template.New("goals").Parse(goalsPromptTmpl))
)

func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt", goerr.V("template", tmpl.Name()))
	}
	return buf.String(), nil
}
