package preset

func none(desc string) Preset {
	return Preset{ID: NoneID, Name: "None", Description: desc}
}

var cameraPresets = []Preset{
	none("Let the model pick the framing"),
	{
		ID:          "low_angle_hero",
		Name:        "Low-Angle Hero",
		Description: "Product towers over the viewer",
		Prompt:      "Shot from a low angle so the product looks monumental, slight perspective distortion, confident hero framing",
	},
	{
		ID:          "top_down_flatlay",
		Name:        "Top-Down Flat Lay",
		Description: "Orthographic overhead arrangement",
		Prompt:      "Perfect top-down flat lay, orthographic overhead view, deliberate geometric arrangement of the product and props",
	},
	{
		ID:          "macro_detail",
		Name:        "Macro Detail",
		Description: "Extreme close-up on texture",
		Prompt:      "Extreme macro close-up revealing surface texture and material grain, shallow depth of field, clinical sharpness in the focus plane",
	},
	{
		ID:          "dutch_tilt",
		Name:        "Dutch Tilt",
		Description: "Dynamic diagonal framing",
		Prompt:      "Dynamic dutch tilt with a strong diagonal composition, energetic editorial framing",
	},
	{
		ID:          "eye_level_35mm",
		Name:        "Eye-Level 35mm",
		Description: "Natural documentary look",
		Prompt:      "Eye-level 35mm perspective, natural field of view, honest documentary product framing",
	},
}

var lightingPresets = []Preset{
	none("Let the model pick the light"),
	{
		ID:          "softbox_studio",
		Name:        "Softbox Studio",
		Description: "Clean diffused key light",
		Prompt:      "Large softbox key light with gentle wraparound falloff, clean studio lighting, soft controlled shadows",
	},
	{
		ID:          "golden_hour",
		Name:        "Golden Hour",
		Description: "Warm low sun",
		Prompt:      "Warm golden-hour sunlight raking across the scene, long soft shadows, amber highlights",
	},
	{
		ID:          "hard_rim",
		Name:        "Hard Rim Light",
		Description: "Dramatic edge separation",
		Prompt:      "Hard rim light carving the product edge out of a dark background, dramatic contrast, controlled specular highlights",
	},
	{
		ID:          "neon_glow",
		Name:        "Neon Glow",
		Description: "Saturated color gels",
		Prompt:      "Saturated neon gel lighting in two complementary colors, glossy reflections, moody night-studio atmosphere",
	},
	{
		ID:          "high_key",
		Name:        "High Key",
		Description: "Bright and shadowless",
		Prompt:      "High-key lighting on a seamless white background, near shadowless, airy and clean",
	},
}

var manipulationPresets = []Preset{
	none("No scene manipulation"),
	{
		ID:          "levitation",
		Name:        "Levitation",
		Description: "Product floats mid-air",
		Prompt:      "The product levitates weightlessly above the surface, supporting elements suspended mid-air, subtle contact shadow below",
	},
	{
		ID:          "splash_freeze",
		Name:        "Splash Freeze",
		Description: "Frozen liquid motion",
		Prompt:      "High-speed frozen splash interacting with the product, crisp droplets, frozen-motion photography aesthetic",
	},
	{
		ID:          "particle_burst",
		Name:        "Particle Burst",
		Description: "Powder and light streaks",
		Prompt:      "Particle cloud and powder burst surrounding the untouched product, controlled chaos matching the product palette",
	},
	{
		ID:          "miniature_world",
		Name:        "Miniature World",
		Description: "Tiny figures at work",
		Prompt:      "Tiny miniature figures interacting with the oversized product, playful gulliver scale contrast",
	},
	{
		ID:          "double_exposure",
		Name:        "Double Exposure",
		Description: "Blended silhouettes",
		Prompt:      "Double exposure blending the product silhouette with a thematically matching texture or landscape",
	},
}

var peopleRetouchPresets = []Preset{
	none("Leave people untouched"),
	{
		ID:          "skin_smoothing",
		Name:        "Skin Smoothing",
		Description: "Natural texture preserved",
		Prompt:      "Subtle skin smoothing that preserves natural pore texture, no plastic look",
	},
	{
		ID:          "blemish_removal",
		Name:        "Blemish Removal",
		Description: "Temporary marks only",
		Prompt:      "Remove temporary blemishes and stray hairs while keeping permanent features like moles and scars",
	},
	{
		ID:          "teeth_whitening",
		Name:        "Teeth Whitening",
		Description: "One believable step",
		Prompt:      "Whiten teeth by a single believable step, keep natural enamel translucency",
	},
	{
		ID:          "eye_enhance",
		Name:        "Eye Enhance",
		Description: "Brighten and sharpen eyes",
		Prompt:      "Gently brighten the sclera, deepen iris color and sharpen catchlights",
	},
}

var retouchPresets = []Preset{
	none("No global retouch"),
	{
		ID:          "color_grade_film",
		Name:        "Filmic Color Grade",
		Description: "Cinematic tones",
		Prompt:      "Cinematic film emulation color grade, lifted blacks, gentle halation",
	},
	{
		ID:          "dust_removal",
		Name:        "Dust Removal",
		Description: "Clean sensor spots and dust",
		Prompt:      "Remove dust, sensor spots and scratches across the frame",
	},
	{
		ID:          "background_cleanup",
		Name:        "Background Cleanup",
		Description: "Remove distractions",
		Prompt:      "Clean distracting elements out of the background while keeping its character",
	},
	{
		ID:          "sharpen_output",
		Name:        "Output Sharpen",
		Description: "Crisp final detail",
		Prompt:      "Apply restrained output sharpening tuned for screen display",
	},
}

// Mockup catalogs are single-select: index 0 is the default, no sentinel.
var mockupPresets = []Preset{
	{
		ID:          "plain_studio",
		Name:        "Plain Studio",
		Description: "Seamless backdrop, no mockup",
		Prompt:      "Present the product on a seamless studio backdrop",
	},
	{
		ID:          "billboard",
		Name:        "Billboard",
		Description: "Urban billboard placement",
		Prompt:      "Place the finished shot on a large urban billboard at dusk, realistic perspective and grain",
	},
	{
		ID:          "magazine_spread",
		Name:        "Magazine Spread",
		Description: "Printed editorial page",
		Prompt:      "Lay the shot into a printed magazine spread with visible paper texture and binding curve",
	},
	{
		ID:          "phone_screen",
		Name:        "Phone Screen",
		Description: "In-feed social mockup",
		Prompt:      "Show the shot inside a social feed on a phone screen held in hand, soft café bokeh behind",
	},
	{
		ID:          "storefront_poster",
		Name:        "Storefront Poster",
		Description: "Retail window poster",
		Prompt:      "Mount the shot as a backlit poster in a retail storefront window with glass reflections",
	},
}

var illustrationStyles = []Preset{
	{
		ID:          "line_art",
		Name:        "Line Art",
		Description: "Clean single-weight lines",
		Prompt:      "Clean single-weight vector line art, minimal detail, white background",
	},
	{
		ID:          "flat_vector",
		Name:        "Flat Vector",
		Description: "Flat shapes, limited palette",
		Prompt:      "Flat vector illustration with a limited palette, crisp geometric shapes, no gradients",
	},
	{
		ID:          "watercolor",
		Name:        "Watercolor",
		Description: "Soft washes and blooms",
		Prompt:      "Loose watercolor illustration with soft washes, blooms and visible paper texture",
	},
	{
		ID:          "isometric",
		Name:        "Isometric",
		Description: "30-degree technical view",
		Prompt:      "Isometric technical illustration at a 30-degree projection, tidy exploded detail",
	},
	{
		ID:          "retro_print",
		Name:        "Retro Print",
		Description: "Halftone and misregistration",
		Prompt:      "Retro screenprint style with halftone dots, slight ink misregistration, two spot colors",
	},
}

var environmentPresets = []Preset{
	{
		ID:          "keep_original",
		Name:        "Keep Original",
		Description: "Leave the backdrop as shot",
		Prompt:      "",
	},
	{
		ID:          "loft_office",
		Name:        "Loft Office",
		Description: "Bright industrial interior",
		Prompt:      "Relight and place the subject in a bright loft office, large windows, soft daylight",
	},
	{
		ID:          "city_dusk",
		Name:        "City at Dusk",
		Description: "Bokeh skyline behind",
		Prompt:      "Place the subject against a dusk city skyline with warm bokeh lights, matching rim light",
	},
	{
		ID:          "forest_path",
		Name:        "Forest Path",
		Description: "Dappled natural light",
		Prompt:      "Place the subject on a forest path with dappled sunlight filtering through leaves",
	},
	{
		ID:          "studio_gray",
		Name:        "Studio Gray",
		Description: "Neutral seamless paper",
		Prompt:      "Place the subject on a neutral mid-gray seamless paper background with classic portrait lighting",
	},
}

func CameraPresets() []Preset        { return clone(cameraPresets) }
func LightingPresets() []Preset      { return clone(lightingPresets) }
func ManipulationPresets() []Preset  { return clone(manipulationPresets) }
func PeopleRetouchPresets() []Preset { return clone(peopleRetouchPresets) }
func RetouchPresets() []Preset       { return clone(retouchPresets) }
func MockupPresets() []Preset        { return clone(mockupPresets) }
func IllustrationStyles() []Preset   { return clone(illustrationStyles) }
func EnvironmentPresets() []Preset   { return clone(environmentPresets) }

// Catalog resolves a category to its preset list.
func Catalog(cat Category) []Preset {
	switch cat {
	case CategoryCamera:
		return CameraPresets()
	case CategoryLighting:
		return LightingPresets()
	case CategoryManipulation:
		return ManipulationPresets()
	case CategoryPeopleRetouch:
		return PeopleRetouchPresets()
	case CategoryRetouch:
		return RetouchPresets()
	case CategoryMockup:
		return MockupPresets()
	case CategoryIllustration:
		return IllustrationStyles()
	case CategoryEnvironment:
		return EnvironmentPresets()
	default:
		return nil
	}
}

func clone(in []Preset) []Preset {
	out := make([]Preset, len(in))
	copy(out, in)
	return out
}
