package handlers

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"photo-studio-ai-bot/internal/mediagroup"
	"photo-studio-ai-bot/internal/studio"
	"photo-studio-ai-bot/internal/telegram"
)

// photoTarget names the session image a pending photo upload should land in.
type photoTarget string

const (
	targetAuto      photoTarget = ""
	targetProduct   photoTarget = "product"
	targetReference photoTarget = "reference"
	targetSource    photoTarget = "source"
	targetStyleRef  photoTarget = "style"
	targetPortrait  photoTarget = "portrait"
)

type pendingInput struct {
	photo        photoTarget
	awaitingText bool
	panelMessage int
	menu         string
}

type Options struct {
	Telegram   *telegram.Client
	Controller *studio.Controller
	Logger     *slog.Logger
}

type Handler struct {
	tg         *telegram.Client
	ctrl       *studio.Controller
	logger     *slog.Logger
	aggregator *mediagroup.Aggregator

	mu      sync.Mutex
	pending map[studio.Key]*pendingInput
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		tg:      opts.Telegram,
		ctrl:    opts.Controller,
		logger:  logger,
		pending: make(map[studio.Key]*pendingInput),
	}
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil {
		return nil
	}

	msg := update.Message
	key := studio.Key{ChatID: msg.Chat.ID, UserID: msg.From.ID}

	if msg.IsCommand() {
		return h.handleCommand(ctx, key, msg)
	}

	if len(msg.Photo) > 0 {
		return h.handlePhoto(ctx, key, msg)
	}

	if msg.Text != "" {
		return h.handleText(ctx, key, msg.Text)
	}

	return nil
}

// HandleMediaBatch receives a flushed Telegram album. In design-kit mode a
// two-photo album is treated as product plus style reference.
func (h *Handler) HandleMediaBatch(ctx context.Context, batch mediagroup.Batch) {
	key := studio.Key{ChatID: batch.ChatID, UserID: batch.UserID}

	images, err := h.downloadImages(ctx, batch.FileIDs)
	if err != nil {
		h.logger.Error("album download failed", "err", err)
		_ = h.tg.SendText(batch.ChatID, "❌ Could not download the album photos.")
		return
	}
	if len(images) == 0 {
		return
	}

	sess := h.ctrl.Session(key)
	switch {
	case sess.Mode.IsDesignKit():
		h.ctrl.SetProductImage(ctx, key, images[0])
		if len(images) > 1 {
			h.ctrl.SetReferenceImage(ctx, key, images[1])
		}
	case sess.Mode.IsIllustrate():
		h.ctrl.SetIllustrationSource(key, images[0])
		if len(images) > 1 {
			h.ctrl.SetStyleReference(key, images[1])
		}
	default:
		h.ctrl.SetPortraitImage(key, images[0])
	}

	if err := h.renderPanel(key, 0, false); err != nil {
		h.logger.Error("panel render failed", "err", err)
	}
}

func (h *Handler) handleCommand(ctx context.Context, key studio.Key, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return h.tg.SendText(key.ChatID,
			"📸 AI Photo Studio\n\n"+
				"Compose product shots, illustrations and portrait retouches.\n\n"+
				"Commands:\n"+
				"/studio - Open the studio panel\n"+
				"/prompt <text> - Set the prompt for the active mode\n"+
				"/history - Browse past generations\n"+
				"/reset - Start a fresh session\n"+
				"/help - Help",
		)
	case "help":
		return h.tg.SendText(key.ChatID,
			"📸 Help\n\n"+
				"Open /studio and pick a mode:\n"+
				"• Design Kit — send a product photo (plus an optional style reference, e.g. as a two-photo album), pick camera/lighting/scene presets, hit Generate.\n"+
				"• Illustrate — send a photo, pick a style and detail fidelity.\n"+
				"• Retouch — send a portrait for a smart retouch or a new environment.\n\n"+
				"Results can be upscaled to HD/4K; illustrations can be vectorized to SVG.\n"+
				"/history restores any of your last 12 results.",
		)
	case "studio":
		return h.renderPanel(key, 0, false)
	case "reset":
		h.ctrl.Reset(key)
		h.clearPending(key)
		if err := h.tg.SendText(key.ChatID, "✅ Session reset."); err != nil {
			return err
		}
		return h.renderPanel(key, 0, false)
	case "history":
		return h.sendHistory(key)
	case "prompt":
		text := strings.TrimSpace(msg.CommandArguments())
		if text == "" {
			h.awaitText(key)
			return h.tg.SendText(key.ChatID, "📝 Send the prompt text for the active mode.")
		}
		h.applyPrompt(key, text)
		return h.renderPanel(key, 0, false)
	default:
		return h.tg.SendText(key.ChatID, "❌ Unknown command. Try /help.")
	}
}

func (h *Handler) handleText(ctx context.Context, key studio.Key, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if h.takeAwaitingText(key) {
		h.applyPrompt(key, text)
		if err := h.tg.SendText(key.ChatID, "✅ Prompt saved."); err != nil {
			return err
		}
		return h.renderPanel(key, 0, false)
	}

	// Bare text outside a prompt request becomes the active mode's prompt too;
	// the panel is where everything else happens.
	h.applyPrompt(key, text)
	return h.renderPanel(key, 0, false)
}

func (h *Handler) handlePhoto(ctx context.Context, key studio.Key, msg *tgbotapi.Message) error {
	photo := msg.Photo[len(msg.Photo)-1]

	if msg.MediaGroupID != "" && h.aggregator != nil {
		h.aggregator.Add(mediagroup.Item{
			ChatID:       key.ChatID,
			UserID:       key.UserID,
			Username:     msg.From.UserName,
			MediaGroupID: msg.MediaGroupID,
			Caption:      msg.Caption,
			FileID:       photo.FileID,
		})
		return nil
	}

	images, err := h.downloadImages(ctx, []string{photo.FileID})
	if err != nil {
		h.logger.Error("photo download failed", "err", err)
		return h.tg.SendText(key.ChatID, "❌ Could not download the photo.")
	}
	img := images[0]

	target := h.takePhotoTarget(key)
	sess := h.ctrl.Session(key)

	switch target {
	case targetProduct:
		h.ctrl.SetProductImage(ctx, key, img)
	case targetReference:
		h.ctrl.SetReferenceImage(ctx, key, img)
	case targetSource:
		h.ctrl.SetIllustrationSource(key, img)
	case targetStyleRef:
		h.ctrl.SetStyleReference(key, img)
	case targetPortrait:
		h.ctrl.SetPortraitImage(key, img)
	default:
		// No explicit target: route by mode; in design kit the first photo is
		// the product, the next one the reference.
		switch {
		case sess.Mode.IsDesignKit():
			if sess.ProductImage == nil {
				h.ctrl.SetProductImage(ctx, key, img)
			} else {
				h.ctrl.SetReferenceImage(ctx, key, img)
			}
		case sess.Mode.IsIllustrate():
			h.ctrl.SetIllustrationSource(key, img)
		default:
			h.ctrl.SetPortraitImage(key, img)
		}
	}

	if caption := strings.TrimSpace(msg.Caption); caption != "" {
		h.applyPrompt(key, caption)
	}

	return h.renderPanel(key, 0, false)
}

func (h *Handler) downloadImages(ctx context.Context, fileIDs []string) ([]studio.Image, error) {
	images := make([]studio.Image, len(fileIDs))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, fileID := range fileIDs {
		i := i
		fileID := fileID
		eg.Go(func() error {
			data, mimeType, err := h.tg.DownloadFileBase64(egCtx, fileID)
			if err != nil {
				return err
			}
			images[i] = studio.Image{Base64: data, MimeType: mimeType}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (h *Handler) applyPrompt(key studio.Key, text string) {
	sess := h.ctrl.Session(key)
	switch {
	case sess.Mode.IsDesignKit():
		h.ctrl.SetCompositePrompt(key, text)
	case sess.Mode.IsIllustrate():
		h.ctrl.SetIllustrationPrompt(key, text)
	default:
		h.ctrl.SetRetouchPrompt(key, text)
	}
}

// pendingLocked returns the pending-input record for key; h.mu must be held.
func (h *Handler) pendingLocked(key studio.Key) *pendingInput {
	p, ok := h.pending[key]
	if !ok {
		p = &pendingInput{}
		h.pending[key] = p
	}
	return p
}

func (h *Handler) awaitPhoto(key studio.Key, target photoTarget) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pendingLocked(key).photo = target
}

func (h *Handler) takePhotoTarget(key studio.Key) photoTarget {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pendingLocked(key)
	target := p.photo
	p.photo = targetAuto
	return target
}

func (h *Handler) awaitText(key studio.Key) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pendingLocked(key).awaitingText = true
}

func (h *Handler) takeAwaitingText(key studio.Key) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pendingLocked(key)
	waiting := p.awaitingText
	p.awaitingText = false
	return waiting
}

func (h *Handler) panelMessageID(key studio.Key) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pendingLocked(key).panelMessage
}

func (h *Handler) setPanelMessageID(key studio.Key, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pendingLocked(key).panelMessage = id
}

func (h *Handler) menu(key studio.Key) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pendingLocked(key).menu
}

func (h *Handler) setMenu(key studio.Key, menu string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pendingLocked(key).menu = menu
}

func (h *Handler) clearPending(key studio.Key) {
	h.mu.Lock()
	delete(h.pending, key)
	h.mu.Unlock()
}
