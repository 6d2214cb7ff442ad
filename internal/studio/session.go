package studio

import (
	"photo-studio-ai-bot/internal/preset"
)

// Image is a decoded picture moving through the studio: base64 payload plus
// its mime type. Generated images use the same shape and are never mutated.
type Image struct {
	Base64   string
	MimeType string
}

// SuggestionMap holds the raw category to preset-id suggestions returned by
// the analysis pass, kept around so the UI can highlight them.
type SuggestionMap map[preset.Category][]string

// Session is the full working state of one user's studio. Every mode keeps
// its own images, selections, results and prompt text so switching modes never
// loses work; each pipeline owns an isolated Slot.
type Session struct {
	Mode           ModeState
	Online         bool
	MagicComposite bool

	// Design kit.
	ProductImage    *Image
	ReferenceImage  *Image
	Camera          preset.Selection
	Lighting        preset.Selection
	Manipulation    preset.Selection
	Mockup          preset.Preset
	CompositePrompt string
	CompositeResult *Image
	Suggestions     SuggestionMap
	DesignKitIdeas  []string

	// Creative studio: illustrate.
	IllustrationSource *Image
	StyleReference     *Image
	IllustrationStyle  preset.Preset
	DetailFidelity     int
	IllustrationPrompt string
	IllustrationResult *Image
	VectorResult       string
	IllustrationIdeas  []string

	// Creative studio: retouch.
	PortraitImage     *Image
	PeopleRetouch     preset.Selection
	Retouch           preset.Selection
	Environment       preset.Preset
	RetouchPrompt     string
	RetouchResult     *Image
	EnvironmentResult *Image
	RetouchIdeas      []string

	// Pipeline slots.
	Composite         Slot
	Analysis          Slot
	Illustration      Slot
	SmartRetouch      Slot
	EnvironmentGen    Slot
	Upscaling         Slot
	Vectorizing       Slot
	DesignKitPrompts  Slot
	IllustratePrompts Slot
	RetouchPromptsGen Slot

	History []HistoryItem
}

func newSession() *Session {
	return &Session{
		Mode:              DesignKit(),
		Online:            true,
		MagicComposite:    true,
		Camera:            preset.Defaults(preset.CameraPresets()),
		Lighting:          preset.Defaults(preset.LightingPresets()),
		Manipulation:      preset.Defaults(preset.ManipulationPresets()),
		Mockup:            preset.MockupPresets()[0],
		PeopleRetouch:     preset.Defaults(preset.PeopleRetouchPresets()),
		Retouch:           preset.Defaults(preset.RetouchPresets()),
		IllustrationStyle: preset.IllustrationStyles()[0],
		Environment:       preset.EnvironmentPresets()[0],
		DetailFidelity:    50,
	}
}

func (s *Session) slots() []*Slot {
	return []*Slot{
		&s.Composite, &s.Analysis, &s.Illustration, &s.SmartRetouch,
		&s.EnvironmentGen, &s.Upscaling, &s.Vectorizing,
		&s.DesignKitPrompts, &s.IllustratePrompts, &s.RetouchPromptsGen,
	}
}

func (s *Session) clearErrors() {
	for _, slot := range s.slots() {
		slot.Err = ""
	}
}

// clone returns a snapshot safe to hand outside the store lock.
func (s *Session) clone() Session {
	out := *s

	out.Camera = append(preset.Selection(nil), s.Camera...)
	out.Lighting = append(preset.Selection(nil), s.Lighting...)
	out.Manipulation = append(preset.Selection(nil), s.Manipulation...)
	out.PeopleRetouch = append(preset.Selection(nil), s.PeopleRetouch...)
	out.Retouch = append(preset.Selection(nil), s.Retouch...)

	out.ProductImage = cloneImage(s.ProductImage)
	out.ReferenceImage = cloneImage(s.ReferenceImage)
	out.CompositeResult = cloneImage(s.CompositeResult)
	out.IllustrationSource = cloneImage(s.IllustrationSource)
	out.StyleReference = cloneImage(s.StyleReference)
	out.IllustrationResult = cloneImage(s.IllustrationResult)
	out.PortraitImage = cloneImage(s.PortraitImage)
	out.RetouchResult = cloneImage(s.RetouchResult)
	out.EnvironmentResult = cloneImage(s.EnvironmentResult)

	out.DesignKitIdeas = append([]string(nil), s.DesignKitIdeas...)
	out.IllustrationIdeas = append([]string(nil), s.IllustrationIdeas...)
	out.RetouchIdeas = append([]string(nil), s.RetouchIdeas...)
	out.History = append([]HistoryItem(nil), s.History...)

	if s.Suggestions != nil {
		out.Suggestions = make(SuggestionMap, len(s.Suggestions))
		for cat, ids := range s.Suggestions {
			out.Suggestions[cat] = append([]string(nil), ids...)
		}
	}

	return out
}

func cloneImage(img *Image) *Image {
	if img == nil {
		return nil
	}
	c := *img
	return &c
}

// ActiveResult returns the generated image of the active mode, if any. The
// upscale pipeline reads and writes through this resolution.
func (s *Session) ActiveResult() *Image {
	switch {
	case s.Mode.IsDesignKit():
		return s.CompositeResult
	case s.Mode.IsIllustrate():
		return s.IllustrationResult
	case s.Mode.IsSmartRetouch():
		return s.RetouchResult
	case s.Mode.IsEnvironment():
		return s.EnvironmentResult
	default:
		return nil
	}
}

// setResultFor writes a generated image into the given mode's result field,
// regardless of which mode is active now. The upscale pipeline resolves its
// target at invocation time, so a mode switch while the call is in flight
// must not redirect the write-back.
func (s *Session) setResultFor(mode ModeState, img *Image) {
	switch {
	case mode.IsDesignKit():
		s.CompositeResult = img
	case mode.IsIllustrate():
		s.IllustrationResult = img
	case mode.IsSmartRetouch():
		s.RetouchResult = img
	case mode.IsEnvironment():
		s.EnvironmentResult = img
	}
}

// ActiveSource returns the input image of the active mode, if any.
func (s *Session) ActiveSource() *Image {
	switch {
	case s.Mode.IsDesignKit():
		return s.ProductImage
	case s.Mode.IsIllustrate():
		return s.IllustrationSource
	default:
		return s.PortraitImage
	}
}

// CanGenerate reports whether the active mode's main pipeline has everything
// it needs and is not already running.
func (s *Session) CanGenerate() bool {
	if !s.Online {
		return false
	}
	switch {
	case s.Mode.IsDesignKit():
		return s.ProductImage != nil && !s.Composite.Busy
	case s.Mode.IsIllustrate():
		return s.IllustrationSource != nil && !s.Illustration.Busy
	case s.Mode.IsSmartRetouch():
		return s.PortraitImage != nil && !s.SmartRetouch.Busy
	case s.Mode.IsEnvironment():
		return s.PortraitImage != nil && !s.EnvironmentGen.Busy
	default:
		return false
	}
}

// CanUpscale reports whether the active mode has a result to upscale.
func (s *Session) CanUpscale() bool {
	return s.Online && s.ActiveResult() != nil && !s.Upscaling.Busy
}

// CanVectorize reports whether an illustration result is available.
func (s *Session) CanVectorize() bool {
	return s.Online && s.IllustrationResult != nil && !s.Vectorizing.Busy
}
