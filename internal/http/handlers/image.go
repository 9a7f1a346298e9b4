package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"kalakarigar/internal/export"
	"kalakarigar/internal/providers/enhance"
	"kalakarigar/internal/providers/vision"
	"kalakarigar/internal/workflow"
	"kalakarigar/pkg/zip"
)

type imageUploadResponse struct {
	SuggestedTags   []vision.Tag `json:"suggested_tags"`
	Preselected     []string     `json:"preselected_tags"`
	ProductImageURL string       `json:"product_image_url,omitempty"`
	FileName        string       `json:"file_name"`
}

// UploadImage stores the product photo on the draft, uploads it to the blob
// store, and returns AI tag suggestions. Suggestion failures never block the
// upload.
func (a *App) UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, err := a.Sessions.Snapshot(sessionID(r)); err != nil {
		a.error(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	}

	data, mimeType, err := readUpload(r, "image", a.Cfg.MaxImageBytes)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image upload missing or unreadable")
		return
	}
	if int64(len(data)) > a.Cfg.MaxImageBytes {
		a.error(w, http.StatusRequestEntityTooLarge, "image_too_large",
			fmt.Sprintf("image exceeds the %d MB limit", a.Cfg.MaxImageBytes>>20))
		return
	}

	fileName := r.URL.Query().Get("filename")
	if fileName == "" {
		fileName = "product-photo"
	}

	var imageURL string
	if a.Uploader != nil {
		if _, url, upErr := a.Uploader.Upload(r.Context(), data, mimeType); upErr != nil {
			a.Log.Warn().Err(upErr).Msg("product image upload to blob store failed")
		} else {
			imageURL = url
		}
	}

	var tags []vision.Tag
	if a.Tags != nil {
		tags = a.Tags.Suggest(r.Context(), data)
	}
	preselect := a.Cfg.TagSuggestLimit
	if preselect <= 0 || preselect > len(tags) {
		preselect = len(tags)
	}
	var labels, preselected []string
	for i, tag := range tags {
		labels = append(labels, tag.Label)
		if i < preselect {
			preselected = append(preselected, tag.Label)
		}
	}

	if !a.withSession(w, r, func(st *workflow.SessionState) error {
		st.Draft.ProductImage = data
		st.Draft.ProductImageMIME = mimeType
		st.Draft.UploadedFileName = fileName
		st.Draft.ProductImageURL = imageURL
		st.Draft.SuggestedTags = labels
		// A new photo invalidates downstream artifacts.
		st.Draft.EnhancedImage = nil
		st.Draft.GeneratedContent = nil
		return nil
	}) {
		return
	}

	a.json(w, http.StatusOK, imageUploadResponse{
		SuggestedTags:   tags,
		Preselected:     preselected,
		ProductImageURL: imageURL,
		FileName:        fileName,
	})
}

type enhanceRequest struct {
	Style string `json:"style"`
}

type enhanceResponse struct {
	Source string `json:"source"`
	Style  string `json:"style"`
	Cached bool   `json:"cached"`
}

// EnhanceImage produces the styled rendition and stores it on the draft.
func (a *App) EnhanceImage(w http.ResponseWriter, r *http.Request) {
	if a.Enhancer == nil {
		a.error(w, http.StatusServiceUnavailable, "capability_disabled", "image enhancement is not configured")
		return
	}

	var req enhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	snap, err := a.Sessions.Snapshot(sessionID(r))
	if err != nil {
		a.error(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	}
	if !snap.Draft.HasProductImage() {
		a.error(w, http.StatusConflict, "no_product_image", "upload a product photo first")
		return
	}

	result, err := a.Enhancer.Enhance(r.Context(), snap.Draft.ProductImage, req.Style)
	switch {
	case errors.Is(err, enhance.ErrInvalidDimensions):
		a.error(w, http.StatusUnprocessableEntity, "invalid_dimensions", err.Error())
		return
	case errors.Is(err, enhance.ErrUndecodable):
		a.error(w, http.StatusUnprocessableEntity, "invalid_image", "the uploaded file is not a usable image")
		return
	case err != nil:
		a.Log.Error().Err(err).Msg("enhancement failed")
		a.error(w, http.StatusInternalServerError, "internal", "enhancement failed")
		return
	}

	if !a.withSession(w, r, func(st *workflow.SessionState) error {
		st.Draft.SetEnhancedImage(result.Image)
		return nil
	}) {
		return
	}

	if result.Source != enhance.SourceGemini {
		a.countUsage("images_enhanced", "provider_fallbacks")
	} else {
		a.countUsage("images_enhanced")
	}
	a.json(w, http.StatusOK, enhanceResponse{
		Source: result.Source,
		Style:  string(result.Style),
		Cached: result.Cached,
	})
}

// DownloadEnhanced serves the enhanced rendition as a PNG download.
func (a *App) DownloadEnhanced(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Sessions.Snapshot(sessionID(r))
	if err != nil {
		a.error(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	}
	if !snap.Draft.HasEnhancedImage() {
		a.error(w, http.StatusNotFound, "no_enhanced_image", "enhance your photo first")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="enhanced_product.png"`)
	_, _ = w.Write(snap.Draft.EnhancedImage)
}

// DownloadPack bundles the enhanced image, marketing copy, and metadata into
// one zip for artisans who skip the Drive export.
func (a *App) DownloadPack(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Sessions.Snapshot(sessionID(r))
	if err != nil {
		a.error(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	}
	if !snap.Draft.HasEnhancedImage() && !snap.Draft.HasGeneratedContent() {
		a.error(w, http.StatusConflict, "nothing_to_download", "generate content or enhance your photo first")
		return
	}

	archive := zip.ArchivePack([]zip.Asset{
		{Filename: "enhanced_product.png", MIME: "image/png", Data: snap.Draft.EnhancedImage},
		{Filename: "marketing_kit.txt", MIME: "text/plain", Data: []byte(export.MarketingKitText(&snap.Draft))},
	})
	if len(archive) == 0 {
		a.error(w, http.StatusInternalServerError, "internal", "could not assemble the pack")
		return
	}

	name := fmt.Sprintf("kalakarigar-pack-%s.zip", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(archive)
}
