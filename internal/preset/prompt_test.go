package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildIllustrationPromptFidelityTiers(t *testing.T) {
	style := IllustrationStyles()[0]

	low := BuildIllustrationPrompt(IllustrationOptions{Style: style, DetailFidelity: 10})
	assert.Contains(t, low, "Loose interpretation")

	mid := BuildIllustrationPrompt(IllustrationOptions{Style: style, DetailFidelity: 50})
	assert.Contains(t, mid, "Balanced interpretation")

	high := BuildIllustrationPrompt(IllustrationOptions{Style: style, DetailFidelity: 90})
	assert.Contains(t, high, "Faithful trace")
}

func TestBuildIllustrationPromptClampsFidelity(t *testing.T) {
	style := IllustrationStyles()[0]

	out := BuildIllustrationPrompt(IllustrationOptions{Style: style, DetailFidelity: 150})
	assert.Contains(t, out, "100/100")

	out = BuildIllustrationPrompt(IllustrationOptions{Style: style, DetailFidelity: -5})
	assert.Contains(t, out, "0/100")
}

func TestBuildCompositePromptIncludesSelections(t *testing.T) {
	camera := CameraPresets()
	lighting := LightingPresets()

	opts := CompositeOptions{
		Camera:   Toggle(camera, Defaults(camera), "low_angle_hero"),
		Lighting: Toggle(lighting, Defaults(lighting), "golden_hour"),
		Custom:   "soft pastel palette",
	}

	out := BuildCompositePrompt(opts)
	assert.Contains(t, out, opts.Camera[0].Prompt)
	assert.Contains(t, out, opts.Lighting[0].Prompt)
	assert.Contains(t, out, "soft pastel palette")
}

func TestBuildSmartRetouchPromptSkipsEmptySections(t *testing.T) {
	opts := RetouchOptions{
		PeopleRetouch: Defaults(PeopleRetouchPresets()),
		Retouch:       Defaults(RetouchPresets()),
	}

	out := BuildSmartRetouchPrompt(opts)
	assert.NotContains(t, out, "PEOPLE RETOUCH:")
	assert.NotContains(t, out, "GLOBAL RETOUCH:")
	assert.Contains(t, out, "IDENTITY LOCK")
}

func TestBuildEnvironmentPromptUsesPresetScene(t *testing.T) {
	env, ok := Find(EnvironmentPresets(), "city_dusk")
	if !ok {
		t.Fatal("city_dusk preset missing")
	}

	out := BuildEnvironmentPrompt(env, RetouchOptions{})
	assert.Contains(t, out, env.Prompt)
}
