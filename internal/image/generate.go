package image

import (
	"context"

	"github.com/dmorgan81/tryonbot/internal/asset"
)

// Request is built once per user action and only read afterwards.
type Request struct {
	instruction string
	person      *asset.Asset
	garment     *asset.Asset
}

func NewRequest(instruction string, person, garment *asset.Asset) *Request {
	return &Request{instruction: instruction, person: person, garment: garment}
}

func (r *Request) Instruction() string   { return r.instruction }
func (r *Request) Person() *asset.Asset  { return r.person }
func (r *Request) Garment() *asset.Asset { return r.garment }

type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeNoImage
	OutcomeImage
)

func (o Outcome) String() string {
	switch o {
	case OutcomeImage:
		return "image"
	case OutcomeNoImage:
		return "no_image"
	default:
		return "failed"
	}
}

// Result is what a single generation produced. Texts holds every text part
// seen before the outcome was decided, in response order.
type Result struct {
	Outcome Outcome
	Image   *asset.Asset
	Texts   []string
	Err     error
}

func (r Result) OK() bool { return r.Outcome == OutcomeImage }

// Message is the user-facing description of a failed result, empty otherwise.
func (r Result) Message() string {
	if r.Outcome != OutcomeFailed {
		return ""
	}
	if r.Err == nil {
		return "Error generating image"
	}
	return "Error generating image: " + r.Err.Error()
}

// Generator never returns an error: failures are reported through Result.
type Generator interface {
	Generate(context.Context, *Request) Result
}
