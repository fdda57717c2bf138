package prompt

import (
	_ "embed"
	"strings"
	"text/template"

	"github.com/dmorgan81/tryonbot/internal/garment"
)

//go:embed assets/instruction.tmpl
var instructionTmpl string

var tmpl = template.Must(template.New("instruction").Parse(instructionTmpl))

type params struct {
	Category   garment.Category
	StyleNotes string
}

// Build renders the instruction sent to the model alongside the person and
// garment images. Non-empty notes are inserted exactly as given.
func Build(category garment.Category, styleNotes string) string {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, params{Category: category, StyleNotes: styleNotes}); err != nil {
		// writes to a strings.Builder cannot fail
		panic(err)
	}
	return sb.String()
}
