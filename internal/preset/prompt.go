package preset

import (
	"fmt"
	"strings"
)

type CompositeOptions struct {
	Camera         Selection
	Lighting       Selection
	Manipulation   Selection
	Mockup         Preset
	MagicComposite bool
	HasReference   bool
	Custom         string
}

type IllustrationOptions struct {
	Style          Preset
	DetailFidelity int // 0..100
	HasReference   bool
	Custom         string
}

type RetouchOptions struct {
	PeopleRetouch Selection
	Retouch       Selection
	Custom        string
}

// BuildCompositePrompt assembles the generation instruction for a product
// composite from the active selections.
func BuildCompositePrompt(opts CompositeOptions) string {
	var b strings.Builder
	b.Grow(2048)

	b.WriteString("TASK: Premium commercial product composite.\n\n")

	b.WriteString("PRODUCT IMAGE (IDENTITY LOCK): The first attached photo contains the real product. Treat this as an image-edit/compositing task.\n")
	b.WriteString("- The product in the output MUST be the exact same object from the product photo.\n")
	b.WriteString("- Preserve shape, proportions, materials, colors, and all physical details exactly.\n")
	b.WriteString("- Branding/text rule: if the product has text/logo/label, keep it exactly; if it has none, do NOT add any.\n")
	b.WriteString("- You may remove background and re-light; never redesign the product or add new parts.\n")
	b.WriteString("- Do NOT add captions/watermarks/text overlays.\n\n")

	if opts.HasReference {
		b.WriteString("REFERENCE IMAGE (MOOD LOCK): The second attached photo sets mood, palette and environment.\n")
		b.WriteString("- Match its lighting, contrast and color palette; avoid off-palette backgrounds or effects.\n")
		b.WriteString("- Borrow atmosphere only; do not copy objects from the reference into the output.\n\n")
	}

	if opts.MagicComposite {
		b.WriteString("MAGIC COMPOSITE: You may freely re-stage the scene for the strongest possible commercial shot, within the identity lock above.\n\n")
	}

	writePresetSection(&b, "CAMERA", opts.Camera.Prompts())
	writePresetSection(&b, "LIGHTING", opts.Lighting.Prompts())
	writePresetSection(&b, "SCENE MANIPULATION", opts.Manipulation.Prompts())

	if !opts.Mockup.IsNone() && opts.Mockup.Prompt != "" {
		b.WriteString("MOCKUP PLACEMENT:\n- " + opts.Mockup.Prompt + "\n\n")
	}

	if custom := strings.TrimSpace(opts.Custom); custom != "" {
		b.WriteString("ADDITIONAL NOTES:\n- " + custom + "\n\n")
	}

	b.WriteString("NEGATIVE PROMPT (avoid):\n")
	for _, line := range []string{
		"distorted product", "product substitution", "invented branding", "misspelled label text",
		"extra text overlays", "watermark", "low resolution", "blurry",
		"letterbox", "border", "frame", "margin", "padding", "empty edge",
	} {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString("\n")

	b.WriteString("OUTPUT RULES:\n")
	b.WriteString("- Return exactly 1 image.\n")
	b.WriteString("- Image only. No text, no JSON.\n")

	return strings.TrimSpace(b.String())
}

// BuildIllustrationPrompt assembles the instruction for turning a photo into
// an illustration. DetailFidelity 0 means a loose interpretation, 100 means a
// faithful trace of the source.
func BuildIllustrationPrompt(opts IllustrationOptions) string {
	fidelity := opts.DetailFidelity
	if fidelity < 0 {
		fidelity = 0
	}
	if fidelity > 100 {
		fidelity = 100
	}

	var b strings.Builder
	b.Grow(1024)

	b.WriteString("TASK: Redraw the attached photo as an illustration.\n\n")

	b.WriteString("STYLE:\n- " + opts.Style.Prompt + "\n\n")

	b.WriteString("DETAIL FIDELITY:\n")
	b.WriteString(fmt.Sprintf("- %d/100. ", fidelity))
	switch {
	case fidelity <= 33:
		b.WriteString("Loose interpretation: keep only the main subject and overall silhouette, simplify everything else.\n\n")
	case fidelity <= 66:
		b.WriteString("Balanced interpretation: keep subject, pose and key props, simplify backgrounds and textures.\n\n")
	default:
		b.WriteString("Faithful trace: keep composition, proportions and recognizable detail of the source.\n\n")
	}

	if opts.HasReference {
		b.WriteString("STYLE REFERENCE: The second attached image shows the target drawing style; match its line weight and palette.\n\n")
	}

	if custom := strings.TrimSpace(opts.Custom); custom != "" {
		b.WriteString("ADDITIONAL NOTES:\n- " + custom + "\n\n")
	}

	b.WriteString("OUTPUT RULES:\n")
	b.WriteString("- Return exactly 1 image.\n")
	b.WriteString("- Image only. No text, no JSON.\n")

	return strings.TrimSpace(b.String())
}

// BuildSmartRetouchPrompt assembles the instruction for a portrait retouch
// pass from the active retouch selections.
func BuildSmartRetouchPrompt(opts RetouchOptions) string {
	var b strings.Builder
	b.Grow(1024)

	b.WriteString("TASK: Professional portrait retouch of the attached photo.\n\n")

	b.WriteString("IDENTITY LOCK:\n")
	b.WriteString("- Same person, same expression, same pose. Never reshape facial structure or body.\n")
	b.WriteString("- Keep permanent features: moles, scars, freckles.\n\n")

	writePresetSection(&b, "PEOPLE RETOUCH", opts.PeopleRetouch.Prompts())
	writePresetSection(&b, "GLOBAL RETOUCH", opts.Retouch.Prompts())

	if custom := strings.TrimSpace(opts.Custom); custom != "" {
		b.WriteString("ADDITIONAL NOTES:\n- " + custom + "\n\n")
	}

	b.WriteString("OUTPUT RULES:\n")
	b.WriteString("- Return exactly 1 image.\n")
	b.WriteString("- Image only. No text, no JSON.\n")

	return strings.TrimSpace(b.String())
}

// BuildEnvironmentPrompt assembles the instruction for relocating a portrait
// subject into a preset environment, on top of the retouch selections.
func BuildEnvironmentPrompt(env Preset, opts RetouchOptions) string {
	var b strings.Builder
	b.Grow(1024)

	b.WriteString("TASK: Place the person from the attached photo into a new environment.\n\n")

	b.WriteString("IDENTITY LOCK:\n")
	b.WriteString("- Same person, same expression, same pose. Never reshape facial structure or body.\n\n")

	if env.Prompt != "" {
		b.WriteString("ENVIRONMENT:\n- " + env.Prompt + "\n")
		b.WriteString("- Match the subject's lighting, shadows and color balance to the new scene.\n\n")
	} else {
		b.WriteString("ENVIRONMENT:\n- Keep the original backdrop; only harmonize lighting and color.\n\n")
	}

	writePresetSection(&b, "PEOPLE RETOUCH", opts.PeopleRetouch.Prompts())
	writePresetSection(&b, "GLOBAL RETOUCH", opts.Retouch.Prompts())

	if custom := strings.TrimSpace(opts.Custom); custom != "" {
		b.WriteString("ADDITIONAL NOTES:\n- " + custom + "\n\n")
	}

	b.WriteString("OUTPUT RULES:\n")
	b.WriteString("- Return exactly 1 image.\n")
	b.WriteString("- Image only. No text, no JSON.\n")

	return strings.TrimSpace(b.String())
}

func writePresetSection(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString(title + ":\n")
	for _, line := range lines {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString("\n")
}
