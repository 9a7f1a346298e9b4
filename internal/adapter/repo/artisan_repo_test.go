package repo

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/firestore"

	"kalakarigar/internal/domain"
)

type fakeCollection struct {
	calls int
	last  map[string]interface{}
	err   error
}

func (f *fakeCollection) Add(_ context.Context, data interface{}) (*firestore.DocumentRef, *firestore.WriteResult, error) {
	f.calls++
	f.last, _ = data.(map[string]interface{})
	if f.err != nil {
		return nil, nil, f.err
	}
	return &firestore.DocumentRef{ID: "doc-123"}, nil, nil
}

func validDraft() *domain.ProductDraft {
	return &domain.ProductDraft{
		ArtisanName: "Meera Devi",
		CraftType:   "Pottery",
		Description: "Hand-thrown terracotta pots finished with natural glazes.",
		Materials:   "Terracotta clay",
		Tags:        []string{"pottery", "terracotta"},
	}
}

func TestSaveWritesDocument(t *testing.T) {
	col := &fakeCollection{}
	r := &ArtisanRepositoryFS{col: col}

	id, err := r.Save(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id != "doc-123" {
		t.Errorf("id = %q", id)
	}
	if col.last["artisan_name"] != "Meera Devi" || col.last["craft_type"] != "Pottery" {
		t.Errorf("document fields = %+v", col.last)
	}
	if col.last["status"] != "draft" {
		t.Errorf("status = %v, want draft", col.last["status"])
	}
	if col.last["created_at"] != firestore.ServerTimestamp {
		t.Error("created_at should use the server timestamp sentinel")
	}
}

func TestSaveValidatesBeforeWriting(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.ProductDraft)
	}{
		{"missing name", func(d *domain.ProductDraft) { d.ArtisanName = "  " }},
		{"missing craft type", func(d *domain.ProductDraft) { d.CraftType = "" }},
		{"missing description", func(d *domain.ProductDraft) { d.Description = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			col := &fakeCollection{}
			r := &ArtisanRepositoryFS{col: col}
			draft := validDraft()
			tc.mutate(draft)

			if _, err := r.Save(context.Background(), draft); !errors.Is(err, domain.ErrMissingFields) {
				t.Fatalf("got %v, want ErrMissingFields", err)
			}
			if col.calls != 0 {
				t.Fatalf("invalid draft reached the store (%d writes)", col.calls)
			}
		})
	}
}

func TestSaveMarksCompletedDrafts(t *testing.T) {
	col := &fakeCollection{}
	r := &ArtisanRepositoryFS{col: col}
	draft := validDraft()
	draft.ProductImage = []byte("img")
	draft.SetGeneratedContent(&domain.GeneratedContent{
		ProductDescription:  "A lovely pot.",
		SocialMediaCaptions: []string{"So handmade"},
		Hashtags:            []string{"#Pottery"},
	})
	draft.SetEnhancedImage([]byte("enhanced"))

	if _, err := r.Save(context.Background(), draft); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if col.last["status"] != "completed" {
		t.Errorf("status = %v, want completed", col.last["status"])
	}
	if _, ok := col.last["generated_content"]; !ok {
		t.Error("generated content should be embedded in the document")
	}
}

func TestSaveSurfacesStoreErrors(t *testing.T) {
	r := &ArtisanRepositoryFS{col: &fakeCollection{err: errors.New("unavailable")}}
	if _, err := r.Save(context.Background(), validDraft()); err == nil {
		t.Fatal("expected error")
	}
}
