package studio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-studio-ai-bot/internal/preset"
)

// fakeService is a configurable Service stub. Each method returns the
// configured value and counts its calls; gate, when set, blocks the composite
// call until released so tests can overlap runs.
type fakeService struct {
	mu sync.Mutex

	compositeResult *Image
	compositeErr    error
	compositeCalls  atomic.Int64
	gate            chan *Image
	entered         chan struct{}

	analysis      map[preset.Category][]string
	analysisErr   error
	analysisCalls atomic.Int64

	illustrationResult *Image
	retouchResult      *Image
	environmentResult  *Image
	upscaleResult      *Image
	upscaleCalls       []Image
	upscaleGate        chan *Image
	upscaleEntered     chan struct{}
	vectorResult       string
	ideas              []string
}

func (f *fakeService) GenerateComposite(ctx context.Context, product Image, reference *Image, magic bool, opts preset.CompositeOptions) (*Image, error) {
	f.compositeCalls.Add(1)
	if f.gate != nil {
		if f.entered != nil {
			f.entered <- struct{}{}
		}
		select {
		case img := <-f.gate:
			return img, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.compositeResult, f.compositeErr
}

func (f *fakeService) AnalyzeForSuggestions(ctx context.Context, product, reference Image) (map[preset.Category][]string, error) {
	f.analysisCalls.Add(1)
	return f.analysis, f.analysisErr
}

func (f *fakeService) GenerateIllustration(ctx context.Context, source Image, styleReference *Image, opts preset.IllustrationOptions) (*Image, error) {
	return f.illustrationResult, nil
}

func (f *fakeService) PerformSmartRetouch(ctx context.Context, portrait Image, opts preset.RetouchOptions) (*Image, error) {
	return f.retouchResult, nil
}

func (f *fakeService) GenerateEnvironment(ctx context.Context, portrait Image, environment preset.Preset, opts preset.RetouchOptions) (*Image, error) {
	return f.environmentResult, nil
}

func (f *fakeService) UpscaleImage(ctx context.Context, image Image, target UpscaleTarget) (*Image, error) {
	f.mu.Lock()
	f.upscaleCalls = append(f.upscaleCalls, image)
	f.mu.Unlock()
	if f.upscaleGate != nil {
		if f.upscaleEntered != nil {
			f.upscaleEntered <- struct{}{}
		}
		select {
		case img := <-f.upscaleGate:
			return img, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.upscaleResult, nil
}

func (f *fakeService) VectorizeImage(ctx context.Context, image Image) (string, error) {
	return f.vectorResult, nil
}

func (f *fakeService) SuggestDesignKitPrompts(ctx context.Context, product Image, reference *Image) ([]string, error) {
	return f.ideas, nil
}

func (f *fakeService) SuggestIllustrationPrompts(ctx context.Context, source Image) ([]string, error) {
	return f.ideas, nil
}

func (f *fakeService) SuggestRetouchPrompts(ctx context.Context, portrait Image) ([]string, error) {
	return f.ideas, nil
}

func testKey() Key {
	return Key{ChatID: 1, UserID: 2}
}

func img(tag string) Image {
	return Image{Base64: tag, MimeType: "image/png"}
}

func TestNewSessionDefaults(t *testing.T) {
	c := New(Options{Service: &fakeService{}})
	sess := c.Session(testKey())

	assert.True(t, sess.Mode.IsDesignKit())
	assert.True(t, sess.Online)
	assert.True(t, sess.MagicComposite)
	assert.Equal(t, 50, sess.DetailFidelity)
	require.Len(t, sess.Camera, 1)
	assert.True(t, sess.Camera[0].IsNone())
	assert.Equal(t, preset.MockupPresets()[0].ID, sess.Mockup.ID)
}

func TestGenerateCompositeRequiresProduct(t *testing.T) {
	svc := &fakeService{}
	c := New(Options{Service: svc})

	sess := c.GenerateComposite(context.Background(), testKey())

	assert.Equal(t, msgNoProduct, sess.Composite.Err)
	assert.False(t, sess.Composite.Busy)
	assert.Equal(t, int64(0), svc.compositeCalls.Load())
}

func TestGenerateCompositeRequiresOnline(t *testing.T) {
	svc := &fakeService{}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetProductImage(context.Background(), key, img("product"))
	c.SetOnline(key, false)

	sess := c.GenerateComposite(context.Background(), key)

	assert.Equal(t, msgOffline, sess.Composite.Err)
	assert.Equal(t, int64(0), svc.compositeCalls.Load())
}

func TestGenerateCompositeStoresResultAndHistory(t *testing.T) {
	result := img("composite")
	svc := &fakeService{compositeResult: &result}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetProductImage(context.Background(), key, img("product"))
	c.SetCompositePrompt(key, "studio shot")

	sess := c.GenerateComposite(context.Background(), key)

	require.NotNil(t, sess.CompositeResult)
	assert.Equal(t, "composite", sess.CompositeResult.Base64)
	assert.False(t, sess.Composite.Busy)
	assert.Empty(t, sess.Composite.Err)

	require.Len(t, sess.History, 1)
	assert.Equal(t, "studio shot", sess.History[0].Prompt)
	assert.Equal(t, "product", sess.History[0].Source.Base64)
	assert.True(t, sess.History[0].Mode.IsDesignKit())
}

func TestGenerateCompositeServiceError(t *testing.T) {
	svc := &fakeService{compositeErr: errors.New("model overloaded")}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetProductImage(context.Background(), key, img("product"))
	sess := c.GenerateComposite(context.Background(), key)

	assert.Nil(t, sess.CompositeResult)
	assert.Equal(t, "model overloaded", sess.Composite.Err)
	assert.False(t, sess.Composite.Busy)
	assert.Empty(t, sess.History)
}

func TestGenerateCompositeEmptyResult(t *testing.T) {
	svc := &fakeService{}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetProductImage(context.Background(), key, img("product"))
	sess := c.GenerateComposite(context.Background(), key)

	assert.Nil(t, sess.CompositeResult)
	assert.NotEmpty(t, sess.Composite.Err)
	assert.Empty(t, sess.History)
}

func TestOverlappingCompositeRunsLatestWins(t *testing.T) {
	svc := &fakeService{gate: make(chan *Image), entered: make(chan struct{})}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetProductImage(context.Background(), key, img("product"))

	first := make(chan Session)
	go func() {
		first <- c.GenerateComposite(context.Background(), key)
	}()

	second := make(chan Session)
	go func() {
		second <- c.GenerateComposite(context.Background(), key)
	}()

	<-svc.entered
	<-svc.entered

	// Two runs are now blocked in the service. Release them with distinct
	// results; whichever settle carries the newer request id wins, the other
	// is dropped wholesale.
	stale := img("stale")
	fresh := img("fresh")
	svc.gate <- &stale
	svc.gate <- &fresh

	<-first
	<-second

	sess := c.Session(key)
	require.NotNil(t, sess.CompositeResult)
	assert.False(t, sess.Composite.Busy)
	require.Len(t, sess.History, 1)

	// The channel handoff does not pin which goroutine got which image, but
	// exactly one outcome must have landed and it must match the history.
	assert.Equal(t, sess.History[0].Generated.Base64, sess.CompositeResult.Base64)
	assert.Equal(t, int64(2), svc.compositeCalls.Load())
}

func TestAnalysisEffectReplacesSelections(t *testing.T) {
	svc := &fakeService{
		analysis: map[preset.Category][]string{
			preset.CategoryCamera:   {"low_angle_hero", "macro_detail"},
			preset.CategoryLighting: {"golden_hour"},
		},
	}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetProductImage(context.Background(), key, img("product"))
	assert.Equal(t, int64(0), svc.analysisCalls.Load(), "analysis needs both images")

	c.SetReferenceImage(context.Background(), key, img("reference"))
	assert.Equal(t, int64(1), svc.analysisCalls.Load())

	sess := c.Session(key)
	assert.Equal(t, []string{"low_angle_hero", "macro_detail"}, sess.Camera.IDs())
	assert.Equal(t, []string{"golden_hour"}, sess.Lighting.IDs())
	require.Len(t, sess.Manipulation, 1)
	assert.True(t, sess.Manipulation[0].IsNone(), "categories without suggestions stay put")
	assert.Equal(t, []string{"low_angle_hero", "macro_detail"}, sess.Suggestions[preset.CategoryCamera])
}

func TestAnalysisSkipsUnknownOnlySuggestions(t *testing.T) {
	svc := &fakeService{
		analysis: map[preset.Category][]string{
			preset.CategoryCamera: {"made_up_preset"},
		},
	}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetProductImage(context.Background(), key, img("product"))
	c.SetReferenceImage(context.Background(), key, img("reference"))

	sess := c.Session(key)
	require.Len(t, sess.Camera, 1)
	assert.True(t, sess.Camera[0].IsNone())
}

func TestAnalysisSkippedWhenMagicOff(t *testing.T) {
	svc := &fakeService{analysis: map[preset.Category][]string{}}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetMagicComposite(context.Background(), key, false)
	c.SetProductImage(context.Background(), key, img("product"))
	c.SetReferenceImage(context.Background(), key, img("reference"))

	assert.Equal(t, int64(0), svc.analysisCalls.Load())
}

func TestDisableMagicCompositeResetsSuggestedCategories(t *testing.T) {
	svc := &fakeService{
		analysis: map[preset.Category][]string{
			preset.CategoryCamera:  {"low_angle_hero"},
			preset.CategoryRetouch: {"dust_removal"},
		},
	}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetProductImage(context.Background(), key, img("product"))
	c.SetReferenceImage(context.Background(), key, img("reference"))
	require.Equal(t, []string{"low_angle_hero"}, c.Session(key).Camera.IDs())

	sess := c.SetMagicComposite(context.Background(), key, false)

	assert.True(t, sess.Camera[0].IsNone())
	assert.True(t, sess.Lighting[0].IsNone())
	assert.True(t, sess.Manipulation[0].IsNone())
	assert.True(t, sess.Retouch[0].IsNone())
	assert.True(t, sess.PeopleRetouch[0].IsNone())
	assert.Nil(t, sess.Suggestions)
	assert.False(t, sess.MagicComposite)
}

func TestUpscaleRequiresResult(t *testing.T) {
	svc := &fakeService{}
	c := New(Options{Service: svc})

	sess := c.Upscale(context.Background(), testKey(), UpscaleHD)

	assert.Equal(t, msgNoUpscalable, sess.Upscaling.Err)
	assert.Empty(t, svc.upscaleCalls)
}

func TestUpscaleReadsAndWritesActiveModeResult(t *testing.T) {
	composite := img("composite")
	upscaled := img("upscaled")
	svc := &fakeService{compositeResult: &composite, upscaleResult: &upscaled}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetProductImage(context.Background(), key, img("product"))
	c.GenerateComposite(context.Background(), key)

	sess := c.Upscale(context.Background(), key, Upscale4K)

	require.Len(t, svc.upscaleCalls, 1)
	assert.Equal(t, "composite", svc.upscaleCalls[0].Base64)
	require.NotNil(t, sess.CompositeResult)
	assert.Equal(t, "upscaled", sess.CompositeResult.Base64)
	assert.Equal(t, "Upscaled to 4K", sess.History[0].Prompt)
}

func TestUpscaleFollowsModeSwitch(t *testing.T) {
	illustration := img("illustration")
	upscaled := img("upscaled")
	svc := &fakeService{illustrationResult: &illustration, upscaleResult: &upscaled}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetMode(context.Background(), key, Illustrate())
	c.SetIllustrationSource(key, img("photo"))
	c.GenerateIllustration(context.Background(), key)

	sess := c.Upscale(context.Background(), key, UpscaleHD)

	require.Len(t, svc.upscaleCalls, 1)
	assert.Equal(t, "illustration", svc.upscaleCalls[0].Base64)
	require.NotNil(t, sess.IllustrationResult)
	assert.Equal(t, "upscaled", sess.IllustrationResult.Base64)
}

func TestUpscaleWritesBackToInvokingMode(t *testing.T) {
	composite := img("composite")
	svc := &fakeService{
		compositeResult: &composite,
		upscaleGate:     make(chan *Image),
		upscaleEntered:  make(chan struct{}),
	}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetProductImage(context.Background(), key, img("product"))
	c.GenerateComposite(context.Background(), key)

	done := make(chan Session)
	go func() {
		done <- c.Upscale(context.Background(), key, UpscaleHD)
	}()
	<-svc.upscaleEntered

	// Switch away while the upscale is in flight; the write-back target was
	// resolved when the run began and must not follow the mode.
	c.SetMode(context.Background(), key, Illustrate())

	upscaled := img("upscaled-composite")
	svc.upscaleGate <- &upscaled
	<-done

	sess := c.Session(key)
	assert.True(t, sess.Mode.IsIllustrate())
	require.NotNil(t, sess.CompositeResult)
	assert.Equal(t, "upscaled-composite", sess.CompositeResult.Base64)
	assert.Nil(t, sess.IllustrationResult)

	require.NotEmpty(t, sess.History)
	assert.True(t, sess.History[0].Mode.IsDesignKit())
	assert.Equal(t, "Upscaled to HD", sess.History[0].Prompt)
}

func TestVectorizeRequiresIllustration(t *testing.T) {
	c := New(Options{Service: &fakeService{}})
	key := testKey()
	c.SetMode(context.Background(), key, Illustrate())

	sess := c.Vectorize(context.Background(), key)
	assert.Equal(t, msgNoIllustration, sess.Vectorizing.Err)
}

func TestVectorizeStoresSVG(t *testing.T) {
	illustration := img("illustration")
	svc := &fakeService{illustrationResult: &illustration, vectorResult: "<svg/>"}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetMode(context.Background(), key, Illustrate())
	c.SetIllustrationSource(key, img("photo"))
	c.GenerateIllustration(context.Background(), key)

	sess := c.Vectorize(context.Background(), key)
	assert.Equal(t, "<svg/>", sess.VectorResult)
	assert.Empty(t, sess.Vectorizing.Err)
}

func TestSelectHistoryRestoresStateAndClearsErrors(t *testing.T) {
	composite := img("composite")
	svc := &fakeService{compositeResult: &composite}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetProductImage(context.Background(), key, img("product"))
	c.SetCompositePrompt(key, "hero shot")
	sess := c.GenerateComposite(context.Background(), key)
	require.Len(t, sess.History, 1)
	id := sess.History[0].ID

	// Move away and pile up an unrelated pipeline error.
	c.SetMode(context.Background(), key, Illustrate())
	c.GenerateIllustration(context.Background(), key)
	require.NotEmpty(t, c.Session(key).Illustration.Err)

	restored, ok := c.SelectHistory(key, id)
	require.True(t, ok)

	assert.True(t, restored.Mode.IsDesignKit())
	require.NotNil(t, restored.CompositeResult)
	assert.Equal(t, "composite", restored.CompositeResult.Base64)
	require.NotNil(t, restored.ProductImage)
	assert.Equal(t, "product", restored.ProductImage.Base64)
	assert.Equal(t, "hero shot", restored.CompositePrompt)
	assert.Empty(t, restored.Illustration.Err)
	assert.Len(t, restored.History, 1, "restore leaves the cache untouched")
}

func TestSelectHistoryUnknownID(t *testing.T) {
	c := New(Options{Service: &fakeService{}})

	_, ok := c.SelectHistory(testKey(), "missing")
	assert.False(t, ok)
}

func TestSuggestIdeasPerMode(t *testing.T) {
	svc := &fakeService{ideas: []string{"idea one", "idea two"}}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetProductImage(context.Background(), key, img("product"))
	sess := c.SuggestIdeas(context.Background(), key)
	assert.Equal(t, []string{"idea one", "idea two"}, sess.DesignKitIdeas)

	c.SetMode(context.Background(), key, SmartRetouchMode())
	c.SetPortraitImage(key, img("portrait"))
	sess = c.SuggestIdeas(context.Background(), key)
	assert.Equal(t, []string{"idea one", "idea two"}, sess.RetouchIdeas)
}

func TestSuggestIdeasRequiresSource(t *testing.T) {
	c := New(Options{Service: &fakeService{}})

	sess := c.SuggestIdeas(context.Background(), testKey())
	assert.Equal(t, msgNoProduct, sess.DesignKitPrompts.Err)
}

func TestResetDropsEverything(t *testing.T) {
	composite := img("composite")
	svc := &fakeService{compositeResult: &composite}
	c := New(Options{Service: svc})
	key := testKey()

	c.SetProductImage(context.Background(), key, img("product"))
	c.GenerateComposite(context.Background(), key)
	require.NotEmpty(t, c.Session(key).History)

	sess := c.Reset(key)
	assert.Nil(t, sess.ProductImage)
	assert.Nil(t, sess.CompositeResult)
	assert.Empty(t, sess.History)
	assert.True(t, sess.Mode.IsDesignKit())
}

func TestSetDetailFidelityClamps(t *testing.T) {
	c := New(Options{Service: &fakeService{}})
	key := testKey()

	assert.Equal(t, 100, c.SetDetailFidelity(key, 150).DetailFidelity)
	assert.Equal(t, 0, c.SetDetailFidelity(key, -10).DetailFidelity)
	assert.Equal(t, 73, c.SetDetailFidelity(key, 73).DetailFidelity)
}

func TestModeSwitchKeepsPerModeState(t *testing.T) {
	c := New(Options{Service: &fakeService{}})
	key := testKey()

	c.SetMagicComposite(context.Background(), key, false)
	c.SetProductImage(context.Background(), key, img("product"))
	c.TogglePreset(key, preset.CategoryCamera, "macro_detail")

	c.SetMode(context.Background(), key, Illustrate())
	sess := c.SetMode(context.Background(), key, DesignKit())

	require.NotNil(t, sess.ProductImage)
	assert.Equal(t, []string{"macro_detail"}, sess.Camera.IDs())
}
