package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-studio-ai-bot/internal/preset"
	"photo-studio-ai-bot/internal/studio"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Options{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
}

func imageResponse(t *testing.T, w http.ResponseWriter, data, mimeType string) {
	t.Helper()
	resp := generateContentResponse{Candidates: []candidate{{
		Content: content{Parts: []part{
			{Text: "here you go"},
			{InlineData: &blob{Data: data, MimeType: mimeType}},
		}},
	}}}
	w.Header().Set("content-type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func textResponse(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	resp := generateContentResponse{Candidates: []candidate{{
		Content: content{Parts: []part{{Text: text}}},
	}}}
	w.Header().Set("content-type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestGenerateCompositeExtractsInlineImage(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateContentRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		imageResponse(t, w, "b64-composite", "image/png")
	})

	camera := preset.CameraPresets()
	opts := preset.CompositeOptions{
		Camera:       preset.Toggle(camera, preset.Defaults(camera), "low_angle_hero"),
		Lighting:     preset.Defaults(preset.LightingPresets()),
		Manipulation: preset.Defaults(preset.ManipulationPresets()),
		Mockup:       preset.MockupPresets()[0],
	}

	img, err := c.GenerateComposite(context.Background(), studio.Image{Base64: "b64-product", MimeType: "image/jpeg"}, nil, true, opts)
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "b64-composite", img.Base64)
	assert.Equal(t, "image/png", img.MimeType)

	assert.Equal(t, "/v1beta/models/"+modelImage+":generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)

	require.Len(t, gotReq.Contents, 1)
	parts := gotReq.Contents[0].Parts
	require.Len(t, parts, 2, "prompt plus the product image")
	assert.Contains(t, parts[0].Text, "product composite")
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "b64-product", parts[1].InlineData.Data)
	assert.Equal(t, []string{"IMAGE", "TEXT"}, gotReq.GenerationConfig.ResponseModalities)
}

func TestGenerateCompositeNoImageMeansNilNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		textResponse(t, w, "sorry, no image this time")
	})

	img, err := c.GenerateComposite(context.Background(), studio.Image{Base64: "x"}, nil, false, preset.CompositeOptions{})
	require.NoError(t, err)
	assert.Nil(t, img)
}

func TestGenerateContentErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	})

	img, err := c.GenerateComposite(context.Background(), studio.Image{Base64: "x"}, nil, false, preset.CompositeOptions{})
	require.Error(t, err)
	assert.Nil(t, img)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestAnalyzeForSuggestionsParsesCategoryMap(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		textResponse(t, w, `{"camera":["low_angle_hero"],"lighting":["golden_hour","neon_glow"]}`)
	})

	out, err := c.AnalyzeForSuggestions(context.Background(), studio.Image{Base64: "p"}, studio.Image{Base64: "r"})
	require.NoError(t, err)
	assert.Equal(t, []string{"low_angle_hero"}, out[preset.CategoryCamera])
	assert.Equal(t, []string{"golden_hour", "neon_glow"}, out[preset.CategoryLighting])
}

func TestAnalyzeForSuggestionsStripsCodeFence(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		textResponse(t, w, "```json\n{\"camera\":[\"macro_detail\"]}\n```")
	})

	out, err := c.AnalyzeForSuggestions(context.Background(), studio.Image{Base64: "p"}, studio.Image{Base64: "r"})
	require.NoError(t, err)
	assert.Equal(t, []string{"macro_detail"}, out[preset.CategoryCamera])
}

func TestSuggestPromptsDropsBlankIdeas(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		textResponse(t, w, `["bold hero shot", "  ", "moody closeup"]`)
	})

	ideas, err := c.SuggestIllustrationPrompts(context.Background(), studio.Image{Base64: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bold hero shot", "moody closeup"}, ideas)
}

func TestGenerateJSONRetriesWithoutResponseMimeType(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.GenerationConfig.ResponseMIMEType != "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`Unknown name "responseMimeType": Cannot find field.`))
			return
		}
		textResponse(t, w, `["fallback idea"]`)
	})

	ideas, err := c.SuggestIllustrationPrompts(context.Background(), studio.Image{Base64: "x"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"fallback idea"}, ideas)
}

func TestVectorizeImageRequiresSVGMarkup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		textResponse(t, w, "I could not trace that image.")
	})

	svg, err := c.VectorizeImage(context.Background(), studio.Image{Base64: "x"})
	require.NoError(t, err)
	assert.Empty(t, svg)
}

func TestVectorizeImageStripsFence(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		textResponse(t, w, "```xml\n<svg xmlns=\"http://www.w3.org/2000/svg\"></svg>\n```")
	})

	svg, err := c.VectorizeImage(context.Background(), studio.Image{Base64: "x"})
	require.NoError(t, err)
	assert.Equal(t, `<svg xmlns="http://www.w3.org/2000/svg"></svg>`, svg)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
	assert.Equal(t, "plain", stripCodeFence("  plain  "))
}
