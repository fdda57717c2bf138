package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/dmorgan81/tryonbot/internal/asset"
	"github.com/dmorgan81/tryonbot/internal/garment"
	"github.com/dmorgan81/tryonbot/internal/image"
	"github.com/dmorgan81/tryonbot/internal/log"
	"github.com/dmorgan81/tryonbot/internal/metrics"
	"github.com/dmorgan81/tryonbot/internal/prompt"
	"github.com/samber/do"
)

type Input struct {
	Category   garment.Category
	StyleNotes string
	Person     *asset.Asset
	Garment    *asset.Asset
}

func (i Input) toRequest(maxEdge int) *image.Request {
	return image.NewRequest(
		prompt.Build(i.Category, i.StyleNotes),
		i.Person.Fit(maxEdge),
		i.Garment.Fit(maxEdge),
	)
}

// Output carries the PNG download alongside the result when an image came back.
type Output struct {
	Instruction string
	Result      image.Result
	PNG         []byte
}

type Handler struct {
	generator image.Generator
	metrics   *metrics.Metrics
	maxEdge   int
	now       func() time.Time
}

func New(generator image.Generator, m *metrics.Metrics, maxEdge int) *Handler {
	return &Handler{generator: generator, metrics: m, maxEdge: maxEdge, now: time.Now}
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return New(
		do.MustInvoke[image.Generator](i),
		do.MustInvoke[*metrics.Metrics](i),
		do.MustInvokeNamed[int](i, "max_image_edge"),
	), nil
}

func (h *Handler) Handle(ctx context.Context, input Input) Output {
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler").With(
		"category", input.Category,
		"styleNotes", len(input.StyleNotes),
		"person", fmt.Sprintf("%dx%d", input.Person.Width(), input.Person.Height()),
		"garment", fmt.Sprintf("%dx%d", input.Garment.Width(), input.Garment.Height()),
	)
	log.Info("handling try-on")

	req := input.toRequest(h.maxEdge)
	start := h.now()
	result := h.generator.Generate(ctx, req)
	elapsed := h.now().Sub(start)

	out := Output{Instruction: req.Instruction(), Result: result}
	if result.OK() {
		data, err := result.Image.PNG()
		if err != nil {
			out.Result = image.Result{
				Outcome: image.OutcomeFailed,
				Texts:   result.Texts,
				Err:     fmt.Errorf("preparing download: %w", err),
			}
		}
		out.PNG = data
	}

	h.metrics.Observe(out.Result.Outcome.String(), elapsed)
	log.Info("try-on finished", "outcome", out.Result.Outcome.String(), "pngSize", len(out.PNG))
	return out
}
