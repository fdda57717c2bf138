package image

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/dmorgan81/tryonbot/internal/asset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeClient struct {
	generateContent func(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (f *fakeClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content,
	config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return f.generateContent(ctx, model, contents, config)
}

func respondWith(parts ...*genai.Part) *fakeClient {
	return &fakeClient{
		generateContent: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts, Role: "model"}}},
			}, nil
		},
	}
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func imagePart(t *testing.T, w, h int) *genai.Part {
	return &genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: pngOf(t, w, h)}}
}

func testRequest(t *testing.T) *Request {
	t.Helper()
	person, err := asset.DecodeBytes(pngOf(t, 3, 4))
	require.NoError(t, err)
	garment, err := asset.DecodeBytes(pngOf(t, 2, 2))
	require.NoError(t, err)
	return NewRequest("dress the person", person, garment)
}

func TestGenerateTextThenImage(t *testing.T) {
	g := NewGeminiGenerator(respondWith(genai.NewPartFromText("here you go"), imagePart(t, 6, 5)), "")

	result := g.Generate(context.Background(), testRequest(t))

	assert.Equal(t, OutcomeImage, result.Outcome)
	assert.True(t, result.OK())
	require.NotNil(t, result.Image)
	assert.Equal(t, 6, result.Image.Width())
	assert.Equal(t, []string{"here you go"}, result.Texts)
	assert.NoError(t, result.Err)
	assert.Empty(t, result.Message())
}

func TestGenerateTextsOnly(t *testing.T) {
	g := NewGeminiGenerator(respondWith(genai.NewPartFromText("one"), genai.NewPartFromText("two")), "")

	result := g.Generate(context.Background(), testRequest(t))

	assert.Equal(t, OutcomeNoImage, result.Outcome)
	assert.Nil(t, result.Image)
	assert.Equal(t, []string{"one", "two"}, result.Texts)
	assert.NoError(t, result.Err)
	assert.Empty(t, result.Message())
}

func TestGenerateFirstImageWins(t *testing.T) {
	g := NewGeminiGenerator(respondWith(imagePart(t, 7, 7), genai.NewPartFromText("late"), imagePart(t, 9, 9)), "")

	result := g.Generate(context.Background(), testRequest(t))

	require.Equal(t, OutcomeImage, result.Outcome)
	assert.Equal(t, 7, result.Image.Width())
	assert.Empty(t, result.Texts)
}

func TestGenerateSkipsNonImageBlobs(t *testing.T) {
	g := NewGeminiGenerator(respondWith(
		&genai.Part{InlineData: &genai.Blob{MIMEType: "application/json", Data: []byte("{}")}},
		imagePart(t, 3, 3),
	), "")

	result := g.Generate(context.Background(), testRequest(t))

	require.Equal(t, OutcomeImage, result.Outcome)
	assert.Equal(t, 3, result.Image.Width())
}

func TestGenerateTransportFailure(t *testing.T) {
	g := NewGeminiGenerator(&fakeClient{
		generateContent: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("connection reset")
		},
	}, "")

	var result Result
	require.NotPanics(t, func() {
		result = g.Generate(context.Background(), testRequest(t))
	})

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Nil(t, result.Image)
	require.Error(t, result.Err)
	assert.NotEmpty(t, result.Message())
	assert.Contains(t, result.Message(), "Error generating image")
	assert.Contains(t, result.Message(), "connection reset")
}

func TestGenerateNoCandidates(t *testing.T) {
	g := NewGeminiGenerator(&fakeClient{
		generateContent: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		},
	}, "")

	result := g.Generate(context.Background(), testRequest(t))

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, errNoContent)
}

func TestGenerateUndecodableImage(t *testing.T) {
	g := NewGeminiGenerator(respondWith(
		genai.NewPartFromText("before"),
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("garbage")}},
	), "")

	result := g.Generate(context.Background(), testRequest(t))

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, []string{"before"}, result.Texts)
	assert.Error(t, result.Err)
}

func TestGenerateOversizedImage(t *testing.T) {
	data := pngOf(t, 1, 1)
	binary.BigEndian.PutUint32(data[16:20], 60000)
	binary.BigEndian.PutUint32(data[20:24], 60000)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	g := NewGeminiGenerator(respondWith(&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: data}}), "")

	result := g.Generate(context.Background(), testRequest(t))

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, asset.ErrTooLarge)
	assert.Nil(t, result.Image)
}

func TestGenerateSendsInstructionAndImages(t *testing.T) {
	var (
		gotModel    string
		gotContents []*genai.Content
	)
	client := &fakeClient{
		generateContent: func(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotModel = model
			gotContents = contents
			return respondWith().generateContent(context.Background(), "", nil, nil)
		},
	}

	NewGeminiGenerator(client, "custom-model").Generate(context.Background(), testRequest(t))

	assert.Equal(t, "custom-model", gotModel)
	require.Len(t, gotContents, 1)
	assert.EqualValues(t, genai.RoleUser, gotContents[0].Role)

	parts := gotContents[0].Parts
	require.Len(t, parts, 3)
	assert.Equal(t, "dress the person", parts[0].Text)
	for i, want := range []int{3, 2} {
		blob := parts[i+1].InlineData
		require.NotNil(t, blob)
		assert.Equal(t, "image/png", blob.MIMEType)
		a, err := asset.DecodeBytes(blob.Data)
		require.NoError(t, err)
		assert.Equal(t, want, a.Width())
	}
}

func TestNewGeminiGeneratorDefaultModel(t *testing.T) {
	assert.Equal(t, DefaultGeminiModel, NewGeminiGenerator(nil, "").Model)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "image", OutcomeImage.String())
	assert.Equal(t, "no_image", OutcomeNoImage.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
}

func TestRequestAccessors(t *testing.T) {
	req := testRequest(t)
	assert.Equal(t, "dress the person", req.Instruction())
	assert.Equal(t, 3, req.Person().Width())
	assert.Equal(t, 2, req.Garment().Width())
}
