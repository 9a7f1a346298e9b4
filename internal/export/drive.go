package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"kalakarigar/internal/domain"
	"kalakarigar/internal/retry"
)

// RootFolderName is the single folder all exports live under in the
// artisan's Drive.
const RootFolderName = "KalaKarigar.ai Exports"

const folderMIME = "application/vnd.google-apps.folder"

// ErrNothingToExport is returned when the draft has no enhanced image yet.
var ErrNothingToExport = errors.New("export: enhanced image is required before exporting")

// Folder is a created Drive folder.
type Folder struct {
	ID          string
	WebViewLink string
}

// DriveAPI is the slice of Drive the exporter depends on.
type DriveAPI interface {
	FindFolder(ctx context.Context, name, parentID string) (string, error)
	CreateFolder(ctx context.Context, name, parentID string) (Folder, error)
	UploadFile(ctx context.Context, name, mimeType, parentID string, r io.Reader) (string, error)
}

// GoogleDrive calls the real Drive v3 API.
type GoogleDrive struct {
	Service *drive.Service
}

func (g *GoogleDrive) FindFolder(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), folderMIME)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	}
	resp, err := g.Service.Files.List().
		Q(query).
		Spaces("drive").
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if len(resp.Files) == 0 {
		return "", nil
	}
	return resp.Files[0].Id, nil
}

func (g *GoogleDrive) CreateFolder(ctx context.Context, name, parentID string) (Folder, error) {
	meta := &drive.File{Name: name, MimeType: folderMIME}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	created, err := g.Service.Files.Create(meta).
		Fields("id, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return Folder{}, err
	}
	return Folder{ID: created.Id, WebViewLink: created.WebViewLink}, nil
}

func (g *GoogleDrive) UploadFile(ctx context.Context, name, mimeType, parentID string, r io.Reader) (string, error) {
	created, err := g.Service.Files.Create(&drive.File{Name: name, Parents: []string{parentID}}).
		Media(r, googleapi.ContentType(mimeType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

// Status values for an export run.
const (
	StatusComplete = "complete"
	StatusPartial  = "partial"
)

// Result reports where the export landed and which files made it.
type Result struct {
	FolderID    string   `json:"folder_id"`
	FolderLink  string   `json:"folder_link"`
	FolderName  string   `json:"folder_name"`
	Uploaded    []string `json:"uploaded"`
	Failed      []string `json:"failed,omitempty"`
	Status      string   `json:"status"`
	CompletedAt string   `json:"completed_at"`
}

// Exporter writes a marketing kit into the artisan's Drive.
type Exporter struct {
	api    DriveAPI
	policy retry.Policy
	now    func() time.Time
}

// NewExporter builds an exporter over the given Drive client.
func NewExporter(api DriveAPI) *Exporter {
	return &Exporter{
		api:    api,
		policy: retry.DefaultPolicy(),
		now:    time.Now,
	}
}

// Export creates a fresh subfolder under the shared export root and uploads
// the enhanced image, the marketing copy, and a metadata record. Each export
// gets its own subfolder so repeated runs never overwrite each other. A run
// where some files fail still returns the folder link, marked partial.
func (e *Exporter) Export(ctx context.Context, draft *domain.ProductDraft) (*Result, error) {
	if !draft.HasEnhancedImage() {
		return nil, ErrNothingToExport
	}

	rootID, err := e.ensureRoot(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: locate root folder: %w", err)
	}

	folderName := e.subfolderName(draft)
	var folder Folder
	err = retry.Do(ctx, e.policy, func() error {
		var createErr error
		folder, createErr = e.api.CreateFolder(ctx, folderName, rootID)
		return createErr
	})
	if err != nil {
		return nil, fmt.Errorf("export: create subfolder: %w", err)
	}

	result := &Result{
		FolderID:    folder.ID,
		FolderLink:  folder.WebViewLink,
		FolderName:  folderName,
		CompletedAt: e.now().UTC().Format(time.RFC3339),
	}

	files := []struct {
		name string
		mime string
		data []byte
	}{
		{"enhanced_product.png", "image/png", draft.EnhancedImage},
		{"marketing_kit.txt", "text/plain", []byte(MarketingKitText(draft))},
		{"metadata.json", "application/json", metadataJSON(draft, e.now())},
	}
	for _, f := range files {
		uploadErr := retry.Do(ctx, e.policy, func() error {
			_, err := e.api.UploadFile(ctx, f.name, f.mime, folder.ID, bytes.NewReader(f.data))
			return err
		})
		if uploadErr != nil {
			result.Failed = append(result.Failed, f.name)
			continue
		}
		result.Uploaded = append(result.Uploaded, f.name)
	}

	if len(result.Failed) > 0 {
		result.Status = StatusPartial
	} else {
		result.Status = StatusComplete
	}
	return result, nil
}

func (e *Exporter) ensureRoot(ctx context.Context) (string, error) {
	var rootID string
	err := retry.Do(ctx, e.policy, func() error {
		var findErr error
		rootID, findErr = e.api.FindFolder(ctx, RootFolderName, "")
		return findErr
	})
	if err != nil {
		return "", err
	}
	if rootID != "" {
		return rootID, nil
	}
	var folder Folder
	err = retry.Do(ctx, e.policy, func() error {
		var createErr error
		folder, createErr = e.api.CreateFolder(ctx, RootFolderName, "")
		return createErr
	})
	if err != nil {
		return "", err
	}
	return folder.ID, nil
}

func (e *Exporter) subfolderName(draft *domain.ProductDraft) string {
	base := strings.TrimSpace(draft.CraftType)
	if base == "" {
		base = "Export"
	}
	return fmt.Sprintf("%s - %s", base, e.now().Format("2006-01-02 15-04-05"))
}

// MarketingKitText renders the copy as a plain text file the artisan can
// paste from on any device.
func MarketingKitText(draft *domain.ProductDraft) string {
	var b strings.Builder
	b.WriteString("KalaKarigar.ai Marketing Kit\n")
	b.WriteString("============================\n\n")
	fmt.Fprintf(&b, "Artisan: %s\n", draft.ArtisanName)
	fmt.Fprintf(&b, "Craft:   %s\n\n", draft.CraftType)

	if c := draft.GeneratedContent; c != nil {
		b.WriteString("Product Description\n-------------------\n")
		b.WriteString(c.ProductDescription)
		b.WriteString("\n\nSocial Media Captions\n---------------------\n")
		for i, caption := range c.SocialMediaCaptions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, caption)
		}
		b.WriteString("\nHashtags\n--------\n")
		b.WriteString(strings.Join(c.Hashtags, " "))
		b.WriteString("\n")
	} else {
		b.WriteString("Product Description\n-------------------\n")
		b.WriteString(draft.Description)
		b.WriteString("\n")
	}
	return b.String()
}

func metadataJSON(draft *domain.ProductDraft, at time.Time) []byte {
	meta := map[string]interface{}{
		"artisan_name": draft.ArtisanName,
		"craft_type":   draft.CraftType,
		"materials":    draft.Materials,
		"dimensions":   draft.Dimensions,
		"tags":         draft.Tags,
		"exported_at":  at.UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return []byte("{}")
	}
	return data
}
