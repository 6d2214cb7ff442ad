package studio

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"photo-studio-ai-bot/internal/preset"
)

const (
	msgOffline        = "You appear to be offline. Check your connection and try again."
	msgNoProduct      = "Add a product photo first."
	msgNoSource       = "Add a photo to illustrate first."
	msgNoPortrait     = "Add a portrait photo first."
	msgNoUpscalable   = "Nothing to upscale yet. Generate an image first."
	msgNoIllustration = "Nothing to vectorize yet. Generate an illustration first."
)

type Options struct {
	Service Service
	Logger  *slog.Logger
}

// Controller owns the session store and dispatches user actions to the right
// selection or pipeline. Pipeline runs block their caller but mutate shared
// state only under the store lock, so concurrent runs from other chats or
// other pipelines stay isolated.
type Controller struct {
	store  *Store
	svc    Service
	logger *slog.Logger
}

func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Controller{
		store:  NewStore(),
		svc:    opts.Service,
		logger: logger,
	}
}

func (c *Controller) Session(key Key) Session {
	return c.store.Get(key)
}

func (c *Controller) Reset(key Key) Session {
	return c.store.Reset(key)
}

func (c *Controller) SetOnline(key Key, online bool) Session {
	return c.store.Update(key, func(s *Session) {
		s.Online = online
	})
}

// SetMode switches the active mode. Per-mode working state stays cached so the
// user can switch back; only a history selection overwrites it.
func (c *Controller) SetMode(ctx context.Context, key Key, mode ModeState) Session {
	out := c.store.Update(key, func(s *Session) {
		s.Mode = mode
	})
	c.maybeAnalyze(ctx, key)
	return out
}

// TogglePreset flips a preset in the given category. Multi-select categories
// follow sentinel toggle semantics; mockup, illustration style and environment
// are single-select.
func (c *Controller) TogglePreset(key Key, cat preset.Category, id string) Session {
	return c.store.Update(key, func(s *Session) {
		catalog := preset.Catalog(cat)
		switch cat {
		case preset.CategoryCamera:
			s.Camera = preset.Toggle(catalog, s.Camera, id)
		case preset.CategoryLighting:
			s.Lighting = preset.Toggle(catalog, s.Lighting, id)
		case preset.CategoryManipulation:
			s.Manipulation = preset.Toggle(catalog, s.Manipulation, id)
		case preset.CategoryPeopleRetouch:
			s.PeopleRetouch = preset.Toggle(catalog, s.PeopleRetouch, id)
		case preset.CategoryRetouch:
			s.Retouch = preset.Toggle(catalog, s.Retouch, id)
		case preset.CategoryMockup:
			s.Mockup = preset.ToggleSingle(catalog, s.Mockup, id)
		case preset.CategoryIllustration:
			s.IllustrationStyle = preset.ToggleSingle(catalog, s.IllustrationStyle, id)
		case preset.CategoryEnvironment:
			s.Environment = preset.ToggleSingle(catalog, s.Environment, id)
		}
	})
}

// SetMagicComposite flips the auto-analysis feature. Disabling it resets every
// analysis-driven category to its default and clears the suggestion map right
// away; enabling it re-evaluates the analysis condition.
func (c *Controller) SetMagicComposite(ctx context.Context, key Key, on bool) Session {
	out := c.store.Update(key, func(s *Session) {
		s.MagicComposite = on
		if on {
			return
		}
		s.Camera = preset.Defaults(preset.CameraPresets())
		s.Lighting = preset.Defaults(preset.LightingPresets())
		s.Manipulation = preset.Defaults(preset.ManipulationPresets())
		s.Retouch = preset.Defaults(preset.RetouchPresets())
		s.PeopleRetouch = preset.Defaults(preset.PeopleRetouchPresets())
		s.Suggestions = nil
	})
	if on {
		c.maybeAnalyze(ctx, key)
	}
	return out
}

func (c *Controller) SetProductImage(ctx context.Context, key Key, img Image) Session {
	out := c.store.Update(key, func(s *Session) {
		s.ProductImage = &img
	})
	c.maybeAnalyze(ctx, key)
	return out
}

func (c *Controller) SetReferenceImage(ctx context.Context, key Key, img Image) Session {
	out := c.store.Update(key, func(s *Session) {
		s.ReferenceImage = &img
	})
	c.maybeAnalyze(ctx, key)
	return out
}

func (c *Controller) ClearReferenceImage(key Key) Session {
	return c.store.Update(key, func(s *Session) {
		s.ReferenceImage = nil
	})
}

func (c *Controller) SetIllustrationSource(key Key, img Image) Session {
	return c.store.Update(key, func(s *Session) {
		s.IllustrationSource = &img
	})
}

func (c *Controller) SetStyleReference(key Key, img Image) Session {
	return c.store.Update(key, func(s *Session) {
		s.StyleReference = &img
	})
}

func (c *Controller) SetPortraitImage(key Key, img Image) Session {
	return c.store.Update(key, func(s *Session) {
		s.PortraitImage = &img
	})
}

func (c *Controller) SetCompositePrompt(key Key, text string) Session {
	return c.store.Update(key, func(s *Session) {
		s.CompositePrompt = strings.TrimSpace(text)
	})
}

func (c *Controller) SetIllustrationPrompt(key Key, text string) Session {
	return c.store.Update(key, func(s *Session) {
		s.IllustrationPrompt = strings.TrimSpace(text)
	})
}

func (c *Controller) SetRetouchPrompt(key Key, text string) Session {
	return c.store.Update(key, func(s *Session) {
		s.RetouchPrompt = strings.TrimSpace(text)
	})
}

func (c *Controller) SetDetailFidelity(key Key, fidelity int) Session {
	if fidelity < 0 {
		fidelity = 0
	}
	if fidelity > 100 {
		fidelity = 100
	}
	return c.store.Update(key, func(s *Session) {
		s.DetailFidelity = fidelity
	})
}

// GenerateComposite runs the design-kit composite pipeline.
func (c *Controller) GenerateComposite(ctx context.Context, key Key) Session {
	var (
		seq       uint64
		product   Image
		reference *Image
		magic     bool
		opts      preset.CompositeOptions
		prompt    string
		ready     bool
	)
	c.store.Update(key, func(s *Session) {
		switch {
		case !s.Online:
			s.Composite.reject(msgOffline)
			return
		case s.ProductImage == nil:
			s.Composite.reject(msgNoProduct)
			return
		}

		seq = s.Composite.begin("Composing your shot…")
		s.CompositeResult = nil

		product = *s.ProductImage
		reference = cloneImage(s.ReferenceImage)
		magic = s.MagicComposite
		prompt = s.CompositePrompt
		opts = preset.CompositeOptions{
			Camera:         s.Camera,
			Lighting:       s.Lighting,
			Manipulation:   s.Manipulation,
			Mockup:         s.Mockup,
			MagicComposite: s.MagicComposite,
			HasReference:   s.ReferenceImage != nil,
			Custom:         s.CompositePrompt,
		}
		ready = true
	})
	if !ready {
		return c.store.Get(key)
	}

	result, err := c.svc.GenerateComposite(ctx, product, reference, magic, opts)

	return c.store.Update(key, func(s *Session) {
		if !s.Composite.settle(seq) {
			return
		}
		switch {
		case err != nil:
			c.logger.Error("composite generation failed", "err", err)
			s.Composite.Err = errorMessage(err, "Could not generate the composite. Please try again.")
		case result == nil:
			s.Composite.Err = "The model returned no image. Try different presets or another photo."
		default:
			s.CompositeResult = result
			s.History = pushHistory(s.History, newHistoryItem(product, *result, prompt, DesignKit()))
		}
	})
}

// GenerateIllustration runs the illustration pipeline.
func (c *Controller) GenerateIllustration(ctx context.Context, key Key) Session {
	var (
		seq      uint64
		source   Image
		styleRef *Image
		opts     preset.IllustrationOptions
		prompt   string
		ready    bool
	)
	c.store.Update(key, func(s *Session) {
		switch {
		case !s.Online:
			s.Illustration.reject(msgOffline)
			return
		case s.IllustrationSource == nil:
			s.Illustration.reject(msgNoSource)
			return
		}

		seq = s.Illustration.begin("Drawing your illustration…")
		s.IllustrationResult = nil
		s.VectorResult = ""

		source = *s.IllustrationSource
		styleRef = cloneImage(s.StyleReference)
		prompt = s.IllustrationPrompt
		opts = preset.IllustrationOptions{
			Style:          s.IllustrationStyle,
			DetailFidelity: s.DetailFidelity,
			HasReference:   s.StyleReference != nil,
			Custom:         s.IllustrationPrompt,
		}
		ready = true
	})
	if !ready {
		return c.store.Get(key)
	}

	result, err := c.svc.GenerateIllustration(ctx, source, styleRef, opts)

	return c.store.Update(key, func(s *Session) {
		if !s.Illustration.settle(seq) {
			return
		}
		switch {
		case err != nil:
			c.logger.Error("illustration generation failed", "err", err)
			s.Illustration.Err = errorMessage(err, "Could not generate the illustration. Please try again.")
		case result == nil:
			s.Illustration.Err = "The model returned no illustration. Try a different style or photo."
		default:
			s.IllustrationResult = result
			s.History = pushHistory(s.History, newHistoryItem(source, *result, prompt, Illustrate()))
		}
	})
}

// RunSmartRetouch runs the portrait retouch pipeline.
func (c *Controller) RunSmartRetouch(ctx context.Context, key Key) Session {
	var (
		seq      uint64
		portrait Image
		opts     preset.RetouchOptions
		prompt   string
		ready    bool
	)
	c.store.Update(key, func(s *Session) {
		switch {
		case !s.Online:
			s.SmartRetouch.reject(msgOffline)
			return
		case s.PortraitImage == nil:
			s.SmartRetouch.reject(msgNoPortrait)
			return
		}

		seq = s.SmartRetouch.begin("Retouching the portrait…")
		s.RetouchResult = nil

		portrait = *s.PortraitImage
		prompt = s.RetouchPrompt
		opts = preset.RetouchOptions{
			PeopleRetouch: s.PeopleRetouch,
			Retouch:       s.Retouch,
			Custom:        s.RetouchPrompt,
		}
		ready = true
	})
	if !ready {
		return c.store.Get(key)
	}

	result, err := c.svc.PerformSmartRetouch(ctx, portrait, opts)

	return c.store.Update(key, func(s *Session) {
		if !s.SmartRetouch.settle(seq) {
			return
		}
		switch {
		case err != nil:
			c.logger.Error("smart retouch failed", "err", err)
			s.SmartRetouch.Err = errorMessage(err, "Could not retouch the portrait. Please try again.")
		case result == nil:
			s.SmartRetouch.Err = "The model returned no image. Try another portrait."
		default:
			s.RetouchResult = result
			s.History = pushHistory(s.History, newHistoryItem(portrait, *result, prompt, SmartRetouchMode()))
		}
	})
}

// RunEnvironment runs the portrait environment pipeline.
func (c *Controller) RunEnvironment(ctx context.Context, key Key) Session {
	var (
		seq      uint64
		portrait Image
		env      preset.Preset
		opts     preset.RetouchOptions
		prompt   string
		ready    bool
	)
	c.store.Update(key, func(s *Session) {
		switch {
		case !s.Online:
			s.EnvironmentGen.reject(msgOffline)
			return
		case s.PortraitImage == nil:
			s.EnvironmentGen.reject(msgNoPortrait)
			return
		}

		seq = s.EnvironmentGen.begin("Building the new scene…")
		s.EnvironmentResult = nil

		portrait = *s.PortraitImage
		env = s.Environment
		prompt = s.RetouchPrompt
		opts = preset.RetouchOptions{
			PeopleRetouch: s.PeopleRetouch,
			Retouch:       s.Retouch,
			Custom:        s.RetouchPrompt,
		}
		ready = true
	})
	if !ready {
		return c.store.Get(key)
	}

	result, err := c.svc.GenerateEnvironment(ctx, portrait, env, opts)

	return c.store.Update(key, func(s *Session) {
		if !s.EnvironmentGen.settle(seq) {
			return
		}
		switch {
		case err != nil:
			c.logger.Error("environment generation failed", "err", err)
			s.EnvironmentGen.Err = errorMessage(err, "Could not build the new scene. Please try again.")
		case result == nil:
			s.EnvironmentGen.Err = "The model returned no image. Try another environment."
		default:
			s.EnvironmentResult = result
			s.History = pushHistory(s.History, newHistoryItem(portrait, *result, prompt, EnvironmentMode()))
		}
	})
}

// Upscale runs the mode-polymorphic upscale pipeline: the source and the
// write-back target are the active mode's result field, resolved at
// invocation time.
func (c *Controller) Upscale(ctx context.Context, key Key, target UpscaleTarget) Session {
	var (
		seq    uint64
		source Image
		mode   ModeState
		ready  bool
	)
	c.store.Update(key, func(s *Session) {
		switch {
		case !s.Online:
			s.Upscaling.reject(msgOffline)
			return
		case s.ActiveResult() == nil:
			s.Upscaling.reject(msgNoUpscalable)
			return
		}

		seq = s.Upscaling.begin("Upscaling…")
		source = *s.ActiveResult()
		mode = s.Mode
		ready = true
	})
	if !ready {
		return c.store.Get(key)
	}

	result, err := c.svc.UpscaleImage(ctx, source, target)

	return c.store.Update(key, func(s *Session) {
		if !s.Upscaling.settle(seq) {
			return
		}
		switch {
		case err != nil:
			c.logger.Error("upscale failed", "err", err)
			s.Upscaling.Err = errorMessage(err, "Could not upscale the image. Please try again.")
		case result == nil:
			s.Upscaling.Err = "The model returned no upscaled image."
		default:
			s.setResultFor(mode, result)
			s.History = pushHistory(s.History, newHistoryItem(source, *result, target.Label(), mode))
		}
	})
}

// Vectorize turns the illustration result into vector-graphic text.
func (c *Controller) Vectorize(ctx context.Context, key Key) Session {
	var (
		seq    uint64
		source Image
		ready  bool
	)
	c.store.Update(key, func(s *Session) {
		switch {
		case !s.Online:
			s.Vectorizing.reject(msgOffline)
			return
		case s.IllustrationResult == nil:
			s.Vectorizing.reject(msgNoIllustration)
			return
		}

		seq = s.Vectorizing.begin("Tracing vectors…")
		s.VectorResult = ""
		source = *s.IllustrationResult
		ready = true
	})
	if !ready {
		return c.store.Get(key)
	}

	svg, err := c.svc.VectorizeImage(ctx, source)

	return c.store.Update(key, func(s *Session) {
		if !s.Vectorizing.settle(seq) {
			return
		}
		switch {
		case err != nil:
			c.logger.Error("vectorize failed", "err", err)
			s.Vectorizing.Err = errorMessage(err, "Could not vectorize the illustration. Please try again.")
		case strings.TrimSpace(svg) == "":
			s.Vectorizing.Err = "The model returned no vector output."
		default:
			s.VectorResult = svg
		}
	})
}

// SuggestIdeas runs the prompt-suggestion pipeline of the active mode and
// stores the returned ideas alongside that mode's state.
func (c *Controller) SuggestIdeas(ctx context.Context, key Key) Session {
	sess := c.store.Get(key)
	switch {
	case sess.Mode.IsDesignKit():
		return c.suggestDesignKit(ctx, key)
	case sess.Mode.IsIllustrate():
		return c.suggestIllustration(ctx, key)
	default:
		return c.suggestRetouch(ctx, key)
	}
}

func (c *Controller) suggestDesignKit(ctx context.Context, key Key) Session {
	var (
		seq       uint64
		product   Image
		reference *Image
		ready     bool
	)
	c.store.Update(key, func(s *Session) {
		switch {
		case !s.Online:
			s.DesignKitPrompts.reject(msgOffline)
			return
		case s.ProductImage == nil:
			s.DesignKitPrompts.reject(msgNoProduct)
			return
		}
		seq = s.DesignKitPrompts.begin("Collecting ideas…")
		product = *s.ProductImage
		reference = cloneImage(s.ReferenceImage)
		ready = true
	})
	if !ready {
		return c.store.Get(key)
	}

	ideas, err := c.svc.SuggestDesignKitPrompts(ctx, product, reference)

	return c.store.Update(key, func(s *Session) {
		if !s.DesignKitPrompts.settle(seq) {
			return
		}
		switch {
		case err != nil:
			c.logger.Error("design kit prompt suggestion failed", "err", err)
			s.DesignKitPrompts.Err = errorMessage(err, "Could not fetch prompt ideas.")
		case len(ideas) == 0:
			s.DesignKitPrompts.Err = "No prompt ideas came back. Try again."
		default:
			s.DesignKitIdeas = ideas
		}
	})
}

func (c *Controller) suggestIllustration(ctx context.Context, key Key) Session {
	var (
		seq    uint64
		source Image
		ready  bool
	)
	c.store.Update(key, func(s *Session) {
		switch {
		case !s.Online:
			s.IllustratePrompts.reject(msgOffline)
			return
		case s.IllustrationSource == nil:
			s.IllustratePrompts.reject(msgNoSource)
			return
		}
		seq = s.IllustratePrompts.begin("Collecting ideas…")
		source = *s.IllustrationSource
		ready = true
	})
	if !ready {
		return c.store.Get(key)
	}

	ideas, err := c.svc.SuggestIllustrationPrompts(ctx, source)

	return c.store.Update(key, func(s *Session) {
		if !s.IllustratePrompts.settle(seq) {
			return
		}
		switch {
		case err != nil:
			c.logger.Error("illustration prompt suggestion failed", "err", err)
			s.IllustratePrompts.Err = errorMessage(err, "Could not fetch prompt ideas.")
		case len(ideas) == 0:
			s.IllustratePrompts.Err = "No prompt ideas came back. Try again."
		default:
			s.IllustrationIdeas = ideas
		}
	})
}

func (c *Controller) suggestRetouch(ctx context.Context, key Key) Session {
	var (
		seq      uint64
		portrait Image
		ready    bool
	)
	c.store.Update(key, func(s *Session) {
		switch {
		case !s.Online:
			s.RetouchPromptsGen.reject(msgOffline)
			return
		case s.PortraitImage == nil:
			s.RetouchPromptsGen.reject(msgNoPortrait)
			return
		}
		seq = s.RetouchPromptsGen.begin("Collecting ideas…")
		portrait = *s.PortraitImage
		ready = true
	})
	if !ready {
		return c.store.Get(key)
	}

	ideas, err := c.svc.SuggestRetouchPrompts(ctx, portrait)

	return c.store.Update(key, func(s *Session) {
		if !s.RetouchPromptsGen.settle(seq) {
			return
		}
		switch {
		case err != nil:
			c.logger.Error("retouch prompt suggestion failed", "err", err)
			s.RetouchPromptsGen.Err = errorMessage(err, "Could not fetch prompt ideas.")
		case len(ideas) == 0:
			s.RetouchPromptsGen.Err = "No prompt ideas came back. Try again."
		default:
			s.RetouchIdeas = ideas
		}
	})
}

// SelectHistory restores the session's working state for the item's mode from
// the snapshot and clears every pipeline error. The cache itself is left
// untouched.
func (c *Controller) SelectHistory(key Key, id string) (Session, bool) {
	found := false
	out := c.store.Update(key, func(s *Session) {
		var item HistoryItem
		for _, h := range s.History {
			if h.ID == id {
				item = h
				found = true
				break
			}
		}
		if !found {
			return
		}

		s.Mode = item.Mode
		source := item.Source
		generated := item.Generated

		switch {
		case item.Mode.IsDesignKit():
			s.ProductImage = &source
			s.CompositeResult = &generated
			s.CompositePrompt = item.Prompt
		case item.Mode.IsIllustrate():
			s.IllustrationSource = &source
			s.IllustrationResult = &generated
			s.IllustrationPrompt = item.Prompt
		case item.Mode.IsSmartRetouch():
			s.PortraitImage = &source
			s.RetouchResult = &generated
			s.RetouchPrompt = item.Prompt
		case item.Mode.IsEnvironment():
			s.PortraitImage = &source
			s.EnvironmentResult = &generated
			s.RetouchPrompt = item.Prompt
		}

		s.clearErrors()
	})
	return out, found
}

// maybeAnalyze re-evaluates the auto-analysis condition after one of its
// inputs (mode, product image, reference image, magic flag) changed. When it
// holds, the analysis pipeline runs and, on success, rewrites the suggested
// categories wholesale.
func (c *Controller) maybeAnalyze(ctx context.Context, key Key) {
	var (
		seq       uint64
		product   Image
		reference Image
		ready     bool
	)
	c.store.Update(key, func(s *Session) {
		if !s.Mode.IsDesignKit() || !s.MagicComposite || !s.Online {
			return
		}
		if s.ProductImage == nil || s.ReferenceImage == nil {
			return
		}
		seq = s.Analysis.begin("Reading your images…")
		product = *s.ProductImage
		reference = *s.ReferenceImage
		ready = true
	})
	if !ready {
		return
	}

	suggestions, err := c.svc.AnalyzeForSuggestions(ctx, product, reference)

	c.store.Update(key, func(s *Session) {
		if !s.Analysis.settle(seq) {
			return
		}
		if err != nil {
			c.logger.Error("suggestion analysis failed", "err", err)
			s.Analysis.Err = "Could not analyze the images for suggestions."
			return
		}
		s.applySuggestions(suggestions)
	})
}

// applySuggestions replaces each suggested category's selection with exactly
// the suggested presets, keeping suggestion order. Categories without
// suggestions, and suggestions naming no known preset, leave the current
// selection alone.
func (s *Session) applySuggestions(suggestions map[preset.Category][]string) {
	apply := func(cat preset.Category, current preset.Selection) preset.Selection {
		ids := suggestions[cat]
		if len(ids) == 0 {
			return current
		}
		catalog := preset.Catalog(cat)
		next := make(preset.Selection, 0, len(ids))
		for _, id := range ids {
			if next.Contains(id) {
				continue
			}
			if p, ok := preset.Find(catalog, id); ok {
				next = append(next, p)
			}
		}
		if len(next) == 0 {
			return current
		}
		return next
	}

	s.Camera = apply(preset.CategoryCamera, s.Camera)
	s.Lighting = apply(preset.CategoryLighting, s.Lighting)
	s.Manipulation = apply(preset.CategoryManipulation, s.Manipulation)
	s.Retouch = apply(preset.CategoryRetouch, s.Retouch)
	s.PeopleRetouch = apply(preset.CategoryPeopleRetouch, s.PeopleRetouch)

	s.Suggestions = make(SuggestionMap, len(suggestions))
	for cat, ids := range suggestions {
		s.Suggestions[cat] = append([]string(nil), ids...)
	}
}

func errorMessage(err error, fallback string) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return fallback
	}
	return msg
}
