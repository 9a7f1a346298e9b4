package domain

import "strings"

// ProductDraft accumulates everything an artisan enters and generates across
// one workflow session. It starts empty, is mutated step by step, and is
// discarded when a new project begins.
type ProductDraft struct {
	ArtisanName string   `json:"artisan_name"`
	CraftType   string   `json:"craft_type"`
	Description string   `json:"description"`
	Materials   string   `json:"materials"`
	Dimensions  string   `json:"dimensions"`
	Tags        []string `json:"tags"`

	ProductImage     []byte `json:"-"`
	ProductImageMIME string `json:"product_image_mime,omitempty"`
	UploadedFileName string `json:"uploaded_file_name,omitempty"`
	ProductImageURL  string `json:"product_image_url,omitempty"`

	SuggestedTags []string `json:"suggested_tags,omitempty"`

	GeneratedContent *GeneratedContent `json:"generated_content,omitempty"`
	EnhancedImage    []byte            `json:"-"`
}

// HasProductImage reports whether a product photo has been uploaded.
func (d *ProductDraft) HasProductImage() bool {
	return d != nil && len(d.ProductImage) > 0
}

// HasEnhancedImage reports whether an enhanced rendition exists. It can only
// be true when a product image exists.
func (d *ProductDraft) HasEnhancedImage() bool {
	return d != nil && len(d.EnhancedImage) > 0
}

// HasGeneratedContent reports whether a marketing kit has been produced.
func (d *ProductDraft) HasGeneratedContent() bool {
	return d != nil && d.GeneratedContent != nil
}

// SetEnhancedImage stores the enhanced rendition. The enhancement can only
// exist for a draft that has a product image; violating writes are dropped.
func (d *ProductDraft) SetEnhancedImage(img []byte) bool {
	if !d.HasProductImage() {
		return false
	}
	d.EnhancedImage = img
	return true
}

// SetGeneratedContent stores the marketing kit. Content can only exist for a
// draft with both a product image and a craft type.
func (d *ProductDraft) SetGeneratedContent(c *GeneratedContent) bool {
	if !d.HasProductImage() || strings.TrimSpace(d.CraftType) == "" {
		return false
	}
	d.GeneratedContent = c
	return true
}

// SetTags replaces the confirmed tag set, deduplicating case-insensitively
// while preserving first-seen order.
func (d *ProductDraft) SetTags(tags []string) {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	d.Tags = out
}

// MissingRequired returns the names of required fields that are still blank.
// A draft must carry an artisan name, a craft type, and a description before
// it can be persisted.
func (d *ProductDraft) MissingRequired() []string {
	var missing []string
	if strings.TrimSpace(d.ArtisanName) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(d.CraftType) == "" {
		missing = append(missing, "craft_type")
	}
	if strings.TrimSpace(d.Description) == "" {
		missing = append(missing, "description")
	}
	return missing
}
