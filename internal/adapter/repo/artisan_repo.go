// Package repo holds the persistence adapters: Firestore for published
// artisan records and PostgreSQL for usage counters.
package repo

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"

	"kalakarigar/internal/domain"
)

const artisanCollection = "artisans"

// documentAdder is the slice of a Firestore collection the repository writes
// through. *firestore.CollectionRef satisfies it.
type documentAdder interface {
	Add(ctx context.Context, data interface{}) (*firestore.DocumentRef, *firestore.WriteResult, error)
}

// ArtisanRepositoryFS persists completed drafts as artisan documents in
// Firestore.
type ArtisanRepositoryFS struct {
	col documentAdder
}

// NewArtisanRepository constructs the repository over a Firestore client.
func NewArtisanRepository(client *firestore.Client) *ArtisanRepositoryFS {
	return &ArtisanRepositoryFS{col: client.Collection(artisanCollection)}
}

// Save validates the draft and writes a new artisan document, returning its
// ID. Validation runs before any network call so an invalid draft never
// produces a partial write.
func (r *ArtisanRepositoryFS) Save(ctx context.Context, draft *domain.ProductDraft) (string, error) {
	if draft == nil {
		return "", fmt.Errorf("%w: name, craft_type, description", domain.ErrMissingFields)
	}
	if missing := draft.MissingRequired(); len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrMissingFields, strings.Join(missing, ", "))
	}

	status := "draft"
	if draft.HasGeneratedContent() && draft.HasEnhancedImage() {
		status = "completed"
	}

	doc := map[string]interface{}{
		"artisan_name":      strings.TrimSpace(draft.ArtisanName),
		"craft_type":        strings.TrimSpace(draft.CraftType),
		"description":       strings.TrimSpace(draft.Description),
		"materials":         strings.TrimSpace(draft.Materials),
		"dimensions":        strings.TrimSpace(draft.Dimensions),
		"tags":              draft.Tags,
		"product_image_url": draft.ProductImageURL,
		"status":            status,
		"version":           1,
		"created_at":        firestore.ServerTimestamp,
	}
	if draft.HasGeneratedContent() {
		doc["generated_content"] = map[string]interface{}{
			"product_description":   draft.GeneratedContent.ProductDescription,
			"social_media_captions": draft.GeneratedContent.SocialMediaCaptions,
			"hashtags":              draft.GeneratedContent.Hashtags,
		}
	}

	ref, _, err := r.col.Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("repo: save artisan: %w", err)
	}
	return ref.ID, nil
}
