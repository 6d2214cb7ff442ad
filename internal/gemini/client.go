package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"photo-studio-ai-bot/internal/preset"
	"photo-studio-ai-bot/internal/studio"
)

const (
	modelText  = "gemini-3-pro-preview"
	modelImage = "gemini-2.5-flash-image"
)

const systemInstruction = `You are the generation engine of an AI photo studio.
You compose commercial product photos, redraw photos as illustrations and
retouch portraits. Follow the task instructions exactly, never invent branding,
and return images as inlineData whenever the task asks for an image.`

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		httpClient: opts.HTTPClient,
		logger:     logger,
	}
}

var _ studio.Service = (*Client)(nil)

func (c *Client) GenerateComposite(ctx context.Context, product studio.Image, reference *studio.Image, magic bool, opts preset.CompositeOptions) (*studio.Image, error) {
	opts.MagicComposite = magic
	opts.HasReference = reference != nil

	images := []studio.Image{product}
	if reference != nil {
		images = append(images, *reference)
	}
	return c.generateImage(ctx, preset.BuildCompositePrompt(opts), images)
}

func (c *Client) GenerateIllustration(ctx context.Context, source studio.Image, styleReference *studio.Image, opts preset.IllustrationOptions) (*studio.Image, error) {
	opts.HasReference = styleReference != nil

	images := []studio.Image{source}
	if styleReference != nil {
		images = append(images, *styleReference)
	}
	return c.generateImage(ctx, preset.BuildIllustrationPrompt(opts), images)
}

func (c *Client) PerformSmartRetouch(ctx context.Context, portrait studio.Image, opts preset.RetouchOptions) (*studio.Image, error) {
	return c.generateImage(ctx, preset.BuildSmartRetouchPrompt(opts), []studio.Image{portrait})
}

func (c *Client) GenerateEnvironment(ctx context.Context, portrait studio.Image, environment preset.Preset, opts preset.RetouchOptions) (*studio.Image, error) {
	return c.generateImage(ctx, preset.BuildEnvironmentPrompt(environment, opts), []studio.Image{portrait})
}

func (c *Client) UpscaleImage(ctx context.Context, image studio.Image, target studio.UpscaleTarget) (*studio.Image, error) {
	resolution := "high definition (1920px on the long edge)"
	if target == studio.Upscale4K {
		resolution = "4K (3840px on the long edge)"
	}

	prompt := "TASK: Upscale the attached image to " + resolution + ".\n" +
		"- Reconstruct fine detail and texture faithfully; do not change composition, colors or content.\n" +
		"- Return exactly 1 image. Image only, no text."
	return c.generateImage(ctx, prompt, []studio.Image{image})
}

// VectorizeImage asks the text model for standalone SVG markup tracing the
// attached illustration. An empty string means no usable vector came back.
func (c *Client) VectorizeImage(ctx context.Context, image studio.Image) (string, error) {
	prompt := "Trace the attached illustration as a standalone SVG document.\n" +
		"- Use clean paths and a small palette matching the source.\n" +
		"- Respond with the raw SVG markup only: no markdown, no code fences, no commentary."

	req := generateContentRequest{
		Contents:          []content{userContent(prompt, []studio.Image{image})},
		SystemInstruction: &content{Role: "user", Parts: []part{{Text: systemInstruction}}},
		GenerationConfig:  generationConfig{Temperature: 0.2},
	}

	resp, err := c.generateContent(ctx, modelText, req)
	if err != nil {
		return "", err
	}

	svg := stripCodeFence(resp.Text)
	if !strings.Contains(svg, "<svg") {
		return "", nil
	}
	return svg, nil
}

// AnalyzeForSuggestions inspects a product and a reference image and maps
// each preset category to the preset ids that would best recreate the
// reference mood. Categories the model has no opinion on come back empty.
func (c *Client) AnalyzeForSuggestions(ctx context.Context, product, reference studio.Image) (map[preset.Category][]string, error) {
	var b strings.Builder
	b.WriteString("Image 1 is a product photo, image 2 is a style reference.\n")
	b.WriteString("Suggest the preset ids per category that would make the product shot match the reference mood.\n")
	b.WriteString("Only use ids from these lists, skip a category when nothing fits:\n")
	for _, cat := range []preset.Category{
		preset.CategoryCamera, preset.CategoryLighting, preset.CategoryManipulation,
		preset.CategoryRetouch, preset.CategoryPeopleRetouch,
	} {
		ids := make([]string, 0, 8)
		for _, p := range preset.Catalog(cat) {
			if p.IsNone() {
				continue
			}
			ids = append(ids, p.ID)
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", cat, strings.Join(ids, ", ")))
	}
	b.WriteString("Respond with a JSON object mapping category name to an array of ids.")

	var raw map[string][]string
	if err := c.generateJSON(ctx, b.String(), []studio.Image{product, reference}, &raw); err != nil {
		return nil, err
	}

	out := make(map[preset.Category][]string, len(raw))
	for cat, ids := range raw {
		out[preset.Category(strings.TrimSpace(cat))] = ids
	}
	return out, nil
}

func (c *Client) SuggestDesignKitPrompts(ctx context.Context, product studio.Image, reference *studio.Image) ([]string, error) {
	prompt := "Image 1 is a product photo."
	images := []studio.Image{product}
	if reference != nil {
		prompt += " Image 2 is a style reference."
		images = append(images, *reference)
	}
	prompt += "\nSuggest 4 short creative direction prompts for a premium commercial shot of this product.\n" +
		"Respond with a JSON array of strings, strongest idea first."

	return c.suggestPrompts(ctx, prompt, images)
}

func (c *Client) SuggestIllustrationPrompts(ctx context.Context, source studio.Image) ([]string, error) {
	prompt := "The attached photo will be redrawn as an illustration.\n" +
		"Suggest 4 short prompts describing interesting illustration treatments of it.\n" +
		"Respond with a JSON array of strings, strongest idea first."

	return c.suggestPrompts(ctx, prompt, []studio.Image{source})
}

func (c *Client) SuggestRetouchPrompts(ctx context.Context, portrait studio.Image) ([]string, error) {
	prompt := "The attached photo is a portrait to retouch.\n" +
		"Suggest 4 short retouch direction prompts tailored to this specific portrait.\n" +
		"Respond with a JSON array of strings, strongest idea first."

	return c.suggestPrompts(ctx, prompt, []studio.Image{portrait})
}

func (c *Client) suggestPrompts(ctx context.Context, prompt string, images []studio.Image) ([]string, error) {
	var ideas []string
	if err := c.generateJSON(ctx, prompt, images, &ideas); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		if idea = strings.TrimSpace(idea); idea != "" {
			out = append(out, idea)
		}
	}
	return out, nil
}

// generateImage runs one image-generation call and returns the first image of
// the response, or nil when the model produced none.
func (c *Client) generateImage(ctx context.Context, prompt string, images []studio.Image) (*studio.Image, error) {
	req := generateContentRequest{
		Contents:          []content{userContent(prompt, images)},
		SystemInstruction: &content{Role: "user", Parts: []part{{Text: systemInstruction}}},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}

	resp, err := c.generateContent(ctx, modelImage, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Images) == 0 {
		return nil, nil
	}

	img := resp.Images[0]
	return &img, nil
}

func (c *Client) generateJSON(ctx context.Context, prompt string, images []studio.Image, target any) error {
	req := generateContentRequest{
		Contents:          []content{userContent(prompt, images)},
		SystemInstruction: &content{Role: "user", Parts: []part{{Text: systemInstruction}}},
		GenerationConfig: generationConfig{
			Temperature:      0.4,
			ResponseMIMEType: "application/json",
		},
	}

	resp, err := c.generateContent(ctx, modelText, req)
	if err != nil && isUnknownFieldError(err, "responseMimeType") {
		req.GenerationConfig.ResponseMIMEType = ""
		resp, err = c.generateContent(ctx, modelText, req)
	}
	if err != nil {
		return err
	}

	raw := stripCodeFence(resp.Text)
	if raw == "" {
		return errors.New("empty model response")
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("decode model json: %w", err)
	}
	return nil
}

func userContent(prompt string, images []studio.Image) content {
	parts := []part{{Text: prompt}}
	for _, img := range images {
		parts = append(parts, part{InlineData: &blob{
			Data:     img.Base64,
			MimeType: img.MimeType,
		}})
	}
	return content{Role: "user", Parts: parts}
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentRequest) (Response, error) {
	if c.httpClient == nil {
		return Response{}, errors.New("http client is nil")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return Response{}, fmt.Errorf("gemini API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}

	return extractParts(decoded), nil
}

func extractParts(resp generateContentResponse) Response {
	if len(resp.Candidates) == 0 {
		return Response{}
	}

	var textBuilder strings.Builder
	var images []studio.Image

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			textBuilder.WriteString(p.Text)
		}
		if p.InlineData != nil && p.InlineData.Data != "" && p.InlineData.MimeType != "" {
			images = append(images, studio.Image{
				Base64:   p.InlineData.Data,
				MimeType: p.InlineData.MimeType,
			})
		}
	}

	return Response{
		Text:   strings.TrimSpace(textBuilder.String()),
		Images: images,
	}
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func isUnknownFieldError(err error, field string) bool {
	message := err.Error()
	return strings.Contains(message, "Unknown name") && strings.Contains(message, field)
}
