package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"photo-studio-ai-bot/internal/preset"
	"photo-studio-ai-bot/internal/studio"
)

const studioCallbackPrefix = "st"

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil {
		return nil
	}
	data := strings.TrimSpace(q.Data)
	if !strings.HasPrefix(data, studioCallbackPrefix+":") {
		return nil
	}

	parts := strings.Split(data, ":")
	if len(parts) < 3 {
		return nil
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}
	if ownerID != q.From.ID {
		_ = h.tg.AnswerCallback(q.ID, "This panel belongs to someone else.", true)
		return nil
	}

	action := parts[2]
	args := parts[3:]
	key := studio.Key{ChatID: q.Message.Chat.ID, UserID: ownerID}
	msgID := q.Message.MessageID
	h.setPanelMessageID(key, msgID)

	switch action {
	case "menu":
		if len(args) >= 1 {
			h.setMenu(key, args[0])
		}
		_ = h.tg.AnswerCallback(q.ID, "OK", false)

	case "mode":
		if len(args) >= 1 {
			h.ctrl.SetMode(ctx, key, modeFromArg(args[0]))
			h.setMenu(key, "main")
		}
		_ = h.tg.AnswerCallback(q.ID, "Mode switched.", false)

	case "preset":
		if len(args) >= 2 {
			h.ctrl.TogglePreset(key, preset.Category(args[0]), args[1])
		}
		_ = h.tg.AnswerCallback(q.ID, "OK", false)

	case "magic":
		sess := h.ctrl.Session(key)
		h.ctrl.SetMagicComposite(ctx, key, !sess.MagicComposite)
		_ = h.tg.AnswerCallback(q.ID, "OK", false)

	case "fid":
		sess := h.ctrl.Session(key)
		delta := 10
		if len(args) >= 1 && args[0] == "down" {
			delta = -10
		}
		h.ctrl.SetDetailFidelity(key, sess.DetailFidelity+delta)
		_ = h.tg.AnswerCallback(q.ID, "OK", false)

	case "photo":
		if len(args) >= 1 {
			h.awaitPhoto(key, photoTarget(args[0]))
		}
		_ = h.tg.AnswerCallback(q.ID, "Send the photo now.", false)
		_ = h.tg.SendText(key.ChatID, "📷 Send the photo now.")

	case "prompt":
		h.awaitText(key)
		_ = h.tg.AnswerCallback(q.ID, "Send the prompt text.", false)
		_ = h.tg.SendText(key.ChatID, "📝 Send the prompt text for the active mode.")

	case "ideas":
		_ = h.tg.AnswerCallback(q.ID, "Collecting ideas…", false)
		h.tg.SendTyping(key.ChatID)
		sess := h.ctrl.SuggestIdeas(ctx, key)
		if err := h.sendIdeas(key, sess); err != nil {
			return err
		}

	case "generate":
		_ = h.tg.AnswerCallback(q.ID, "Generating…", false)
		if err := h.runGeneration(ctx, key); err != nil {
			return err
		}

	case "upscale":
		target := studio.UpscaleHD
		if len(args) >= 1 && args[0] == "4k" {
			target = studio.Upscale4K
		}
		_ = h.tg.AnswerCallback(q.ID, "Upscaling…", false)
		if err := h.runUpscale(ctx, key, target); err != nil {
			return err
		}

	case "vector":
		_ = h.tg.AnswerCallback(q.ID, "Tracing vectors…", false)
		if err := h.runVectorize(ctx, key); err != nil {
			return err
		}

	case "history":
		_ = h.tg.AnswerCallback(q.ID, "OK", false)
		return h.sendHistory(key)

	case "hist":
		if len(args) >= 1 {
			if err := h.restoreHistory(key, args[0]); err != nil {
				return err
			}
		}
		_ = h.tg.AnswerCallback(q.ID, "Restored.", false)
		h.setMenu(key, "main")

	case "reset":
		h.ctrl.Reset(key)
		h.clearPending(key)
		h.setPanelMessageID(key, msgID)
		_ = h.tg.AnswerCallback(q.ID, "Session reset.", false)

	case "close":
		h.setMenu(key, "main")
		_ = h.tg.AnswerCallback(q.ID, "Closed.", false)
		return nil

	default:
		_ = h.tg.AnswerCallback(q.ID, "OK", false)
	}

	return h.renderPanel(key, msgID, true)
}

func modeFromArg(arg string) studio.ModeState {
	switch arg {
	case "illustrate":
		return studio.Illustrate()
	case "smart":
		return studio.SmartRetouchMode()
	case "env":
		return studio.EnvironmentMode()
	default:
		return studio.DesignKit()
	}
}

func (h *Handler) runGeneration(ctx context.Context, key studio.Key) error {
	h.tg.SendTyping(key.ChatID)

	sess := h.ctrl.Session(key)
	switch {
	case sess.Mode.IsDesignKit():
		sess = h.ctrl.GenerateComposite(ctx, key)
		return h.deliverResult(key, sess.CompositeResult, sess.Composite.Err, "✅ Composite ready!")
	case sess.Mode.IsIllustrate():
		sess = h.ctrl.GenerateIllustration(ctx, key)
		return h.deliverResult(key, sess.IllustrationResult, sess.Illustration.Err, "✅ Illustration ready!")
	case sess.Mode.IsSmartRetouch():
		sess = h.ctrl.RunSmartRetouch(ctx, key)
		return h.deliverResult(key, sess.RetouchResult, sess.SmartRetouch.Err, "✅ Retouch ready!")
	default:
		sess = h.ctrl.RunEnvironment(ctx, key)
		return h.deliverResult(key, sess.EnvironmentResult, sess.EnvironmentGen.Err, "✅ New scene ready!")
	}
}

func (h *Handler) runUpscale(ctx context.Context, key studio.Key, target studio.UpscaleTarget) error {
	h.tg.SendTyping(key.ChatID)

	sess := h.ctrl.Upscale(ctx, key, target)
	return h.deliverResult(key, sess.ActiveResult(), sess.Upscaling.Err, "✅ "+target.Label()+"!")
}

func (h *Handler) runVectorize(ctx context.Context, key studio.Key) error {
	h.tg.SendTyping(key.ChatID)

	sess := h.ctrl.Vectorize(ctx, key)
	if sess.Vectorizing.Err != "" {
		return h.tg.SendText(key.ChatID, "❌ "+sess.Vectorizing.Err)
	}
	return h.tg.SendDocument(key.ChatID, "illustration.svg", []byte(sess.VectorResult), "✅ Vector trace ready!")
}

func (h *Handler) deliverResult(key studio.Key, result *studio.Image, errMsg, caption string) error {
	if errMsg != "" {
		return h.tg.SendText(key.ChatID, "❌ "+errMsg)
	}
	if result == nil {
		return nil
	}
	return h.tg.SendPhotoBase64(key.ChatID, result.Base64, result.MimeType, caption)
}

func (h *Handler) sendIdeas(key studio.Key, sess studio.Session) error {
	var ideas []string
	var errMsg string
	switch {
	case sess.Mode.IsDesignKit():
		ideas, errMsg = sess.DesignKitIdeas, sess.DesignKitPrompts.Err
	case sess.Mode.IsIllustrate():
		ideas, errMsg = sess.IllustrationIdeas, sess.IllustratePrompts.Err
	default:
		ideas, errMsg = sess.RetouchIdeas, sess.RetouchPromptsGen.Err
	}

	if errMsg != "" {
		return h.tg.SendText(key.ChatID, "❌ "+errMsg)
	}
	if len(ideas) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("💡 Prompt ideas:\n")
	for i, idea := range ideas {
		b.WriteString(fmt.Sprintf("%d) %s\n", i+1, idea))
	}
	b.WriteString("\nSet one with /prompt <text>.")
	return h.tg.SendText(key.ChatID, b.String())
}

func (h *Handler) restoreHistory(key studio.Key, id string) error {
	sess, ok := h.ctrl.SelectHistory(key, id)
	if !ok {
		return h.tg.SendText(key.ChatID, "❌ That history entry is gone.")
	}
	return h.deliverResult(key, sess.ActiveResult(), "", "✅ Restored from history.")
}

func (h *Handler) sendHistory(key studio.Key) error {
	sess := h.ctrl.Session(key)
	if len(sess.History) == 0 {
		return h.tg.SendText(key.ChatID, "🕰 No generations yet.")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, item := range sess.History {
		label := fmt.Sprintf("%d) %s", i+1, historyLabel(item))
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label, cb(key.UserID, "hist", item.ID)),
		})
	}

	_, err := h.tg.SendTextWithKeyboard(key.ChatID, "🕰 History (newest first):", tgbotapi.NewInlineKeyboardMarkup(rows...))
	return err
}

func historyLabel(item studio.HistoryItem) string {
	label := item.Mode.String()
	if prompt := strings.TrimSpace(item.Prompt); prompt != "" {
		label += " — " + truncateLine(prompt, 24)
	}
	return label
}

func (h *Handler) renderPanel(key studio.Key, messageID int, edit bool) error {
	sess := h.ctrl.Session(key)
	if messageID == 0 {
		messageID = h.panelMessageID(key)
	}

	text := panelText(sess)
	kb := h.panelKeyboard(key, sess)

	if edit && messageID != 0 {
		if err := h.tg.EditTextWithKeyboard(key.ChatID, messageID, text, kb); err == nil {
			return nil
		}
	}

	msgID, err := h.tg.SendTextWithKeyboard(key.ChatID, text, kb)
	if err != nil {
		return err
	}
	h.setPanelMessageID(key, msgID)
	return nil
}

func panelText(sess studio.Session) string {
	var b strings.Builder
	b.WriteString("🎛 AI Photo Studio\n\n")
	b.WriteString("Mode: " + sess.Mode.String() + "\n")

	switch {
	case sess.Mode.IsDesignKit():
		b.WriteString("Product: " + imageMark(sess.ProductImage) + "\n")
		b.WriteString("Reference: " + imageMark(sess.ReferenceImage) + "\n")
		b.WriteString("Magic composite: " + onOff(sess.MagicComposite) + "\n")
		b.WriteString("Camera: " + selectionNames(sess.Camera) + "\n")
		b.WriteString("Lighting: " + selectionNames(sess.Lighting) + "\n")
		b.WriteString("Scene: " + selectionNames(sess.Manipulation) + "\n")
		b.WriteString("Mockup: " + sess.Mockup.Name + "\n")
		writePrompt(&b, sess.CompositePrompt)
		writeSuggestions(&b, sess.Suggestions)
		writeSlotLine(&b, "Composite", sess.Composite)
		writeSlotLine(&b, "Analysis", sess.Analysis)
	case sess.Mode.IsIllustrate():
		b.WriteString("Photo: " + imageMark(sess.IllustrationSource) + "\n")
		b.WriteString("Style ref: " + imageMark(sess.StyleReference) + "\n")
		b.WriteString("Style: " + sess.IllustrationStyle.Name + "\n")
		b.WriteString(fmt.Sprintf("Detail fidelity: %d/100\n", sess.DetailFidelity))
		writePrompt(&b, sess.IllustrationPrompt)
		writeSlotLine(&b, "Illustration", sess.Illustration)
		writeSlotLine(&b, "Vectorize", sess.Vectorizing)
	case sess.Mode.IsSmartRetouch():
		b.WriteString("Portrait: " + imageMark(sess.PortraitImage) + "\n")
		b.WriteString("People retouch: " + selectionNames(sess.PeopleRetouch) + "\n")
		b.WriteString("Global retouch: " + selectionNames(sess.Retouch) + "\n")
		writePrompt(&b, sess.RetouchPrompt)
		writeSlotLine(&b, "Retouch", sess.SmartRetouch)
	default:
		b.WriteString("Portrait: " + imageMark(sess.PortraitImage) + "\n")
		b.WriteString("Environment: " + sess.Environment.Name + "\n")
		b.WriteString("People retouch: " + selectionNames(sess.PeopleRetouch) + "\n")
		b.WriteString("Global retouch: " + selectionNames(sess.Retouch) + "\n")
		writePrompt(&b, sess.RetouchPrompt)
		writeSlotLine(&b, "Scene", sess.EnvironmentGen)
	}

	writeSlotLine(&b, "Upscale", sess.Upscaling)

	if !sess.Online {
		b.WriteString("\n⚠ Offline: generation is paused.\n")
	}
	if sess.CanGenerate() {
		b.WriteString("\n🎨 Ready to generate.\n")
	} else if sess.ActiveSource() == nil {
		b.WriteString("\n📷 Send a photo to get started.\n")
	}

	return strings.TrimSpace(b.String())
}

func (h *Handler) panelKeyboard(key studio.Key, sess studio.Session) tgbotapi.InlineKeyboardMarkup {
	switch h.menu(key) {
	case "camera":
		return h.categoryKeyboard(key, preset.CategoryCamera, sess.Camera)
	case "lighting":
		return h.categoryKeyboard(key, preset.CategoryLighting, sess.Lighting)
	case "manip":
		return h.categoryKeyboard(key, preset.CategoryManipulation, sess.Manipulation)
	case "people":
		return h.categoryKeyboard(key, preset.CategoryPeopleRetouch, sess.PeopleRetouch)
	case "retouch":
		return h.categoryKeyboard(key, preset.CategoryRetouch, sess.Retouch)
	case "mockup":
		return h.singleKeyboard(key, preset.CategoryMockup, sess.Mockup)
	case "style":
		return h.singleKeyboard(key, preset.CategoryIllustration, sess.IllustrationStyle)
	case "env":
		return h.singleKeyboard(key, preset.CategoryEnvironment, sess.Environment)
	default:
		return h.mainKeyboard(key, sess)
	}
}

func (h *Handler) mainKeyboard(key studio.Key, sess studio.Session) tgbotapi.InlineKeyboardMarkup {
	ownerID := key.UserID

	modeRow := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(markIf("Design", sess.Mode.IsDesignKit()), cb(ownerID, "mode", "design")),
		tgbotapi.NewInlineKeyboardButtonData(markIf("Illustrate", sess.Mode.IsIllustrate()), cb(ownerID, "mode", "illustrate")),
		tgbotapi.NewInlineKeyboardButtonData(markIf("Retouch", sess.Mode.IsSmartRetouch()), cb(ownerID, "mode", "smart")),
		tgbotapi.NewInlineKeyboardButtonData(markIf("Scene", sess.Mode.IsEnvironment()), cb(ownerID, "mode", "env")),
	}

	rows := [][]tgbotapi.InlineKeyboardButton{modeRow}

	switch {
	case sess.Mode.IsDesignKit():
		rows = append(rows,
			[]tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("📷 Product", cb(ownerID, "photo", string(targetProduct))),
				tgbotapi.NewInlineKeyboardButtonData("🖼 Reference", cb(ownerID, "photo", string(targetReference))),
				tgbotapi.NewInlineKeyboardButtonData("Magic: "+onOff(sess.MagicComposite), cb(ownerID, "magic")),
			},
			[]tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("Camera", cb(ownerID, "menu", "camera")),
				tgbotapi.NewInlineKeyboardButtonData("Lighting", cb(ownerID, "menu", "lighting")),
				tgbotapi.NewInlineKeyboardButtonData("Scene", cb(ownerID, "menu", "manip")),
			},
			[]tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("Mockup", cb(ownerID, "menu", "mockup")),
				tgbotapi.NewInlineKeyboardButtonData("Retouch", cb(ownerID, "menu", "retouch")),
			},
		)
	case sess.Mode.IsIllustrate():
		rows = append(rows,
			[]tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("📷 Photo", cb(ownerID, "photo", string(targetSource))),
				tgbotapi.NewInlineKeyboardButtonData("🖼 Style ref", cb(ownerID, "photo", string(targetStyleRef))),
			},
			[]tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("Style", cb(ownerID, "menu", "style")),
				tgbotapi.NewInlineKeyboardButtonData("Detail −", cb(ownerID, "fid", "down")),
				tgbotapi.NewInlineKeyboardButtonData("Detail +", cb(ownerID, "fid", "up")),
			},
			[]tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("🧬 Vectorize", cb(ownerID, "vector")),
			},
		)
	default:
		retouchRow := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("📷 Portrait", cb(ownerID, "photo", string(targetPortrait))),
			tgbotapi.NewInlineKeyboardButtonData("People", cb(ownerID, "menu", "people")),
			tgbotapi.NewInlineKeyboardButtonData("Global", cb(ownerID, "menu", "retouch")),
		}
		if sess.Mode.IsEnvironment() {
			retouchRow = append(retouchRow,
				tgbotapi.NewInlineKeyboardButtonData("Scene", cb(ownerID, "menu", "env")))
		}
		rows = append(rows, retouchRow)
	}

	rows = append(rows,
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("📝 Prompt", cb(ownerID, "prompt")),
			tgbotapi.NewInlineKeyboardButtonData("💡 Ideas", cb(ownerID, "ideas")),
			tgbotapi.NewInlineKeyboardButtonData("🎨 Generate", cb(ownerID, "generate")),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("⬆ HD", cb(ownerID, "upscale", "hd")),
			tgbotapi.NewInlineKeyboardButtonData("⬆ 4K", cb(ownerID, "upscale", "4k")),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("🕰 History", cb(ownerID, "history")),
			tgbotapi.NewInlineKeyboardButtonData("Reset", cb(ownerID, "reset")),
			tgbotapi.NewInlineKeyboardButtonData("Close", cb(ownerID, "close")),
		},
	)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (h *Handler) categoryKeyboard(key studio.Key, cat preset.Category, sel preset.Selection) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, p := range preset.Catalog(cat) {
		label := markIf(p.Name, sel.Contains(p.ID))
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(key.UserID, "preset", string(cat), p.ID)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(key.UserID, "menu", "main")),
	})

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (h *Handler) singleKeyboard(key studio.Key, cat preset.Category, current preset.Preset) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, p := range preset.Catalog(cat) {
		label := markIf(p.Name, p.ID == current.ID)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(key.UserID, "preset", string(cat), p.ID)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(key.UserID, "menu", "main")),
	})

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func writePrompt(b *strings.Builder, prompt string) {
	if prompt = strings.TrimSpace(prompt); prompt != "" {
		b.WriteString("Prompt: " + truncateLine(prompt, 80) + "\n")
	}
}

func writeSuggestions(b *strings.Builder, suggestions studio.SuggestionMap) {
	if len(suggestions) == 0 {
		return
	}
	total := 0
	for _, ids := range suggestions {
		total += len(ids)
	}
	b.WriteString(fmt.Sprintf("✨ %d AI suggestions applied\n", total))
}

func writeSlotLine(b *strings.Builder, name string, slot studio.Slot) {
	switch {
	case slot.Busy:
		status := slot.Status
		if status == "" {
			status = "working…"
		}
		b.WriteString("⏳ " + name + ": " + status + "\n")
	case slot.Err != "":
		b.WriteString("❌ " + name + ": " + slot.Err + "\n")
	}
}

func imageMark(img *studio.Image) string {
	if img == nil {
		return "(none)"
	}
	return "saved ✅"
}

func selectionNames(sel preset.Selection) string {
	names := make([]string, 0, len(sel))
	for _, p := range sel {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func markIf(label string, on bool) string {
	if on {
		return "✅ " + label
	}
	return label
}

func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", studioCallbackPrefix, ownerID, strings.Join(parts, ":"))
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

func truncateLine(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
