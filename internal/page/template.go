package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/dmorgan81/tryonbot/internal/garment"
	"github.com/go-logr/logr"
	"github.com/samber/do"
)

//go:embed assets/index.html
var indexTmpl string

// DownloadName is the file name offered for the generated image.
const DownloadName = "ai_clothing_replacement.png"

type Params struct {
	Categories   []garment.Category
	Category     garment.Category
	StyleNotes   string
	PersonImage  template.URL
	GarmentImage template.URL
	ResultImage  template.URL
	DownloadName string
	Texts        []string
	NoResult     bool
	Warning      string
	Error        string
}

// NewParams returns the parameters of an empty form.
func NewParams() Params {
	return Params{
		Categories:   garment.All(),
		Category:     garment.Default,
		DownloadName: DownloadName,
	}
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func NewTemplator(*do.Injector) (*Templator, error) {
	return &Templator{}, nil
}

func (g *Templator) Template(ctx context.Context, params Params) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("index").Parse(indexTmpl))
	})

	log := logr.FromContextOrDiscard(ctx).WithName("templator")
	log.Info("generating page", "hasResult", params.ResultImage != "")

	var data bytes.Buffer
	if err := g.tmpl.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
