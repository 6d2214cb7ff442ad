package main

import (
	"context"
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"photo-studio-ai-bot/internal/gemini"
	"photo-studio-ai-bot/internal/httpclient"
	"photo-studio-ai-bot/internal/preset"
	"photo-studio-ai-bot/internal/studio"
)

//go:embed static/*
var staticFS embed.FS

type server struct {
	gem    *gemini.Client
	logger *slog.Logger
}

type apiError struct {
	Error string `json:"error"`
}

type imageResponse struct {
	Image    string `json:"image"`
	MimeType string `json:"mime_type"`
}

type vectorResponse struct {
	SVG string `json:"svg"`
}

func main() {
	_ = godotenv.Load()

	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		panic("GEMINI_API_KEY is required")
	}

	addr := strings.TrimSpace(getEnv("WEB_ADDR", ":8080"))

	httpTimeout := time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 180 * time.Second
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: getEnvBool("PREFER_IPV4", true),
		Timeout:    httpTimeout,
	})

	gem := gemini.New(gemini.Options{
		APIKey:     apiKey,
		BaseURL:    strings.TrimSpace(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")),
		APIVersion: strings.TrimSpace(getEnv("GEMINI_API_VERSION", "v1beta")),
		HTTPClient: httpClient,
		Logger:     logger,
	})

	s := &server{gem: gem, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/compose", s.handleCompose)
	mux.HandleFunc("/api/illustrate", s.handleIllustrate)
	mux.HandleFunc("/api/retouch", s.handleRetouch)
	mux.HandleFunc("/api/environment", s.handleEnvironment)
	mux.HandleFunc("/api/upscale", s.handleUpscale)
	mux.HandleFunc("/api/vectorize", s.handleVectorize)

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticSub)))

	srv := &http.Server{
		Addr:              addr,
		Handler:           withLogging(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	logger.Info("web started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
	}
}

const maxUploadBytes = 25 << 20

func (s *server) handleCompose(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	product, ok := formImage(w, r, "product")
	if !ok {
		return
	}
	reference := optionalFormImage(r, "reference")

	opts := preset.CompositeOptions{
		Camera:         selectionFrom(preset.CategoryCamera, r.FormValue("camera")),
		Lighting:       selectionFrom(preset.CategoryLighting, r.FormValue("lighting")),
		Manipulation:   selectionFrom(preset.CategoryManipulation, r.FormValue("manipulation")),
		Mockup:         presetFrom(preset.CategoryMockup, r.FormValue("mockup")),
		MagicComposite: parseBool(getForm(r, "magic", "true")),
		HasReference:   reference != nil,
		Custom:         strings.TrimSpace(r.FormValue("prompt")),
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	img, err := s.gem.GenerateComposite(ctx, product, reference, opts.MagicComposite, opts)
	s.writeImage(w, img, err)
}

func (s *server) handleIllustrate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	source, ok := formImage(w, r, "image")
	if !ok {
		return
	}
	styleRef := optionalFormImage(r, "style_reference")

	opts := preset.IllustrationOptions{
		Style:          presetFrom(preset.CategoryIllustration, r.FormValue("style")),
		DetailFidelity: clamp(parseInt(getForm(r, "detail_fidelity", "50"), 50), 0, 100),
		HasReference:   styleRef != nil,
		Custom:         strings.TrimSpace(r.FormValue("prompt")),
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	img, err := s.gem.GenerateIllustration(ctx, source, styleRef, opts)
	s.writeImage(w, img, err)
}

func (s *server) handleRetouch(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	portrait, ok := formImage(w, r, "image")
	if !ok {
		return
	}

	opts := retouchOptions(r)

	ctx, cancel := requestContext(r)
	defer cancel()

	img, err := s.gem.PerformSmartRetouch(ctx, portrait, opts)
	s.writeImage(w, img, err)
}

func (s *server) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	portrait, ok := formImage(w, r, "image")
	if !ok {
		return
	}

	env := presetFrom(preset.CategoryEnvironment, r.FormValue("environment"))
	opts := retouchOptions(r)

	ctx, cancel := requestContext(r)
	defer cancel()

	img, err := s.gem.GenerateEnvironment(ctx, portrait, env, opts)
	s.writeImage(w, img, err)
}

func (s *server) handleUpscale(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	source, ok := formImage(w, r, "image")
	if !ok {
		return
	}

	target := studio.UpscaleHD
	if strings.EqualFold(strings.TrimSpace(r.FormValue("target")), "4k") {
		target = studio.Upscale4K
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	img, err := s.gem.UpscaleImage(ctx, source, target)
	s.writeImage(w, img, err)
}

func (s *server) handleVectorize(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	source, ok := formImage(w, r, "image")
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	svg, err := s.gem.VectorizeImage(ctx, source)
	if err != nil {
		s.logger.Error("vectorize failed", "err", err)
		writeJSON(w, http.StatusBadGateway, apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, vectorResponse{SVG: svg})
}

func (s *server) writeImage(w http.ResponseWriter, img *studio.Image, err error) {
	if err != nil {
		s.logger.Error("generation failed", "err", err)
		writeJSON(w, http.StatusBadGateway, apiError{Error: err.Error()})
		return
	}
	if img == nil {
		writeJSON(w, http.StatusBadGateway, apiError{Error: "model returned no image"})
		return
	}
	writeJSON(w, http.StatusOK, imageResponse{Image: img.Base64, MimeType: img.MimeType})
}

func retouchOptions(r *http.Request) preset.RetouchOptions {
	return preset.RetouchOptions{
		PeopleRetouch: selectionFrom(preset.CategoryPeopleRetouch, r.FormValue("people_retouch")),
		Retouch:       selectionFrom(preset.CategoryRetouch, r.FormValue("retouch")),
		Custom:        strings.TrimSpace(r.FormValue("prompt")),
	}
}

// selectionFrom maps a comma-separated id list onto the category's catalog,
// falling back to the catalog default when nothing valid is named.
func selectionFrom(cat preset.Category, csv string) preset.Selection {
	catalog := preset.Catalog(cat)
	sel := preset.Defaults(catalog)
	for _, id := range splitCSV(csv) {
		sel = preset.Toggle(catalog, sel, id)
	}
	return sel
}

func presetFrom(cat preset.Category, id string) preset.Preset {
	catalog := preset.Catalog(cat)
	if p, ok := preset.Find(catalog, strings.TrimSpace(id)); ok {
		return p
	}
	return catalog[0]
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
		return false
	}
	return true
}

func formImage(w http.ResponseWriter, r *http.Request, field string) (studio.Image, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "missing " + field})
		return studio.Image{}, false
	}
	defer file.Close()

	img, err := readImage(file, header)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "failed to read " + field})
		return studio.Image{}, false
	}
	return img, true
}

func optionalFormImage(r *http.Request, field string) *studio.Image {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil
	}
	defer file.Close()

	img, err := readImage(file, header)
	if err != nil {
		return nil
	}
	return &img
}

func readImage(file multipart.File, header *multipart.FileHeader) (studio.Image, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return studio.Image{}, err
	}

	mimeType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if strings.Contains(mimeType, ";") {
		mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
		if strings.Contains(mimeType, ";") {
			mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
		}
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "image/jpeg"
	}

	return studio.Image{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
	}, nil
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 240)) * time.Second
	if timeout <= 0 {
		timeout = 240 * time.Second
	}
	return context.WithTimeout(r.Context(), timeout)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func getForm(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return fallback
}

func parseBool(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func splitCSV(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func withLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("http", "method", r.Method, "path", r.URL.Path, "dur_ms", time.Since(start).Milliseconds())
	})
}
