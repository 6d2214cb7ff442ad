package studio

import (
	"context"

	"photo-studio-ai-bot/internal/preset"
)

type UpscaleTarget string

const (
	UpscaleHD UpscaleTarget = "hd"
	Upscale4K UpscaleTarget = "4k"
)

func (t UpscaleTarget) Label() string {
	if t == Upscale4K {
		return "Upscaled to 4K"
	}
	return "Upscaled to HD"
}

// Service is the external generation boundary. Every call is invoked at most
// once per pipeline run, may return (nil, nil) when the model produced no
// usable artifact, and returns an error on transport or model failure.
type Service interface {
	GenerateComposite(ctx context.Context, product Image, reference *Image, magic bool, opts preset.CompositeOptions) (*Image, error)
	AnalyzeForSuggestions(ctx context.Context, product, reference Image) (map[preset.Category][]string, error)
	GenerateIllustration(ctx context.Context, source Image, styleReference *Image, opts preset.IllustrationOptions) (*Image, error)
	PerformSmartRetouch(ctx context.Context, portrait Image, opts preset.RetouchOptions) (*Image, error)
	GenerateEnvironment(ctx context.Context, portrait Image, environment preset.Preset, opts preset.RetouchOptions) (*Image, error)
	UpscaleImage(ctx context.Context, image Image, target UpscaleTarget) (*Image, error)
	VectorizeImage(ctx context.Context, image Image) (string, error)
	SuggestDesignKitPrompts(ctx context.Context, product Image, reference *Image) ([]string, error)
	SuggestIllustrationPrompts(ctx context.Context, source Image) ([]string, error)
	SuggestRetouchPrompts(ctx context.Context, portrait Image) ([]string, error)
}
