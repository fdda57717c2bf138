package image

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmorgan81/tryonbot/internal/asset"
	"github.com/dmorgan81/tryonbot/internal/log"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash-image-preview"

var errNoContent = errors.New("response has no candidate content")

// ContentGenerator is the slice of the genai client used here; *genai.Models
// satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiGenerator struct {
	Client ContentGenerator
	Model  string
}

func NewGeminiGenerator(client ContentGenerator, model string) *GeminiGenerator {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGenerator{Client: client, Model: model}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req *Request) Result {
	logger := log.FromContextOrDiscard(ctx).WithGroup("gemini").With("model", g.Model)
	logger.Info("generating image", "instructionLength", len(req.Instruction()))
	start := time.Now()

	result := g.generate(ctx, req)

	attrs := []any{"outcome", result.Outcome.String(), "texts", len(result.Texts), "elapsed", time.Since(start)}
	if result.Err != nil {
		logger.Error("image generation failed", append(attrs, "error", result.Err)...)
	} else {
		logger.Info("image generation finished", attrs...)
	}
	return result
}

func (g *GeminiGenerator) generate(ctx context.Context, req *Request) Result {
	contents, err := buildContents(req)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	resp, err := g.Client.GenerateContent(ctx, g.Model, contents, nil)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("generating content: %w", err)}
	}
	return interpret(ctx, resp)
}

func buildContents(req *Request) ([]*genai.Content, error) {
	person, err := req.Person().PNG()
	if err != nil {
		return nil, fmt.Errorf("person image: %w", err)
	}
	garment, err := req.Garment().PNG()
	if err != nil {
		return nil, fmt.Errorf("garment image: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(req.Instruction()),
		genai.NewPartFromBytes(person, "image/png"),
		genai.NewPartFromBytes(garment, "image/png"),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}

// interpret walks the first candidate's parts in order. Text is collected;
// the first image blob ends the walk.
func interpret(ctx context.Context, resp *genai.GenerateContentResponse) Result {
	logger := log.FromContextOrDiscard(ctx).WithGroup("gemini")

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return Result{Outcome: OutcomeFailed, Err: errNoContent}
	}

	var texts []string
	for i, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			logger.Debug("model text", "index", i, "text", part.Text)
			texts = append(texts, part.Text)
			continue
		}
		if part.InlineData == nil || !isImage(part.InlineData.MIMEType) {
			continue
		}

		img, err := asset.DecodeBytes(part.InlineData.Data)
		if err != nil {
			return Result{Outcome: OutcomeFailed, Texts: texts, Err: fmt.Errorf("part %d: %w", i, err)}
		}
		logger.Debug("model image", "index", i, "mimeType", part.InlineData.MIMEType, "size", len(part.InlineData.Data))
		return Result{Outcome: OutcomeImage, Image: img, Texts: texts}
	}
	return Result{Outcome: OutcomeNoImage, Texts: texts}
}

func isImage(mimeType string) bool {
	return mimeType == "" || strings.HasPrefix(mimeType, "image/")
}
