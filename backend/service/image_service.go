package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"derma-detect/backend/common"
	"derma-detect/backend/model"

	"github.com/google/uuid"
)

var ErrImageNotFound = errors.New("image not found")

// allowedExtensions mirrors common.AllowedImageTypes for the extension check.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// insertImageFunc and getImageFunc are swappable in tests to exercise the
// failure paths.
var insertImageFunc = func(image *model.Image) error {
	return image.Insert()
}

var getImageFunc = model.GetImageById

// ValidateImageUpload enforces the upload constraints: size ceiling, declared
// content type and extension on the allow-list, and the sniffed content type
// (first 512 bytes) matching as well, so a renamed file cannot slip through
// with a forged header.
func ValidateImageUpload(header *multipart.FileHeader) error {
	if header.Size > common.MaxUploadSize {
		return fmt.Errorf("file too large: maximum size is %d MB", common.MaxUploadSize>>20)
	}

	declared := header.Header.Get("Content-Type")
	if !common.AllowedImageTypes[declared] {
		return errors.New("Only JPG, JPEG, and PNG files are allowed")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("invalid file extension: %s", ext)
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}
	detected := http.DetectContentType(buffer[:n])
	if !common.AllowedImageTypes[detected] {
		return fmt.Errorf("invalid file type (detected: %s)", detected)
	}

	return nil
}

// StoredFilename generates a collision-resistant on-disk name keeping the
// original extension.
func StoredFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), ext)
}

// SaveUploadedImage writes the multipart file under common.UploadPath and
// creates the owning database record. When the record insert fails the stored
// file is removed again so no orphaned storage is left behind.
func SaveUploadedImage(header *multipart.FileHeader, owner int64, baseURL string) (*model.Image, error) {
	if err := os.MkdirAll(common.UploadPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	storedName := StoredFilename(header.Filename)
	diskPath := filepath.Join(common.UploadPath, storedName)

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(diskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(diskPath)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(diskPath)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	image := &model.Image{
		Filename:       header.Filename,
		StoredFilename: storedName,
		UserID:         owner,
		UploadDate:     time.Now(),
		Path:           diskPath,
		URL:            baseURL + "/uploads/" + storedName,
		Size:           header.Size,
		Mimetype:       header.Header.Get("Content-Type"),
	}
	if err := insertImageFunc(image); err != nil {
		// Required compensating action: never leave a stored file without
		// its record.
		_ = os.Remove(diskPath)
		return nil, fmt.Errorf("failed to save image record: %w", err)
	}
	return image, nil
}

// PlaceholderPrediction is recorded when the caller supplies no payload of
// its own.
func PlaceholderPrediction(imageID int64) map[string]any {
	return map[string]any{
		"imageId":    imageID,
		"prediction": "Sample prediction",
		"confidence": 0.85,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
}

// RecordPrediction stores payload as the analysis of the image and returns
// the stored raw JSON. A nil payload records the placeholder result. Only a
// lookup that matched no row reports ErrImageNotFound; a failing lookup
// surfaces as-is.
func RecordPrediction(id int64, payload any) (json.RawMessage, error) {
	image, err := getImageFunc(id)
	if err != nil {
		if errors.Is(err, model.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	if payload == nil {
		payload = PlaceholderPrediction(image.ID)
	}
	if err := image.SetAnalysis(payload); err != nil {
		return nil, fmt.Errorf("failed to record analysis: %w", err)
	}
	return image.AnalysisJSON(), nil
}

// ImageView is the listing projection: id, filename, upload date, url and
// the recorded analysis (null until a prediction is recorded).
type ImageView struct {
	ID         int64           `json:"id"`
	Filename   string          `json:"filename"`
	UploadDate time.Time       `json:"uploadDate"`
	URL        string          `json:"url"`
	Analysis   json.RawMessage `json:"analysis"`
}

// ListUserImages returns the owner's images newest first. limit <= 0 returns
// everything; values above common.MaxListingLimit are capped.
func ListUserImages(owner int64, limit int) ([]ImageView, error) {
	if limit > common.MaxListingLimit {
		limit = common.MaxListingLimit
	}
	images, err := model.GetImagesByUserId(owner, limit)
	if err != nil {
		return nil, err
	}
	views := make([]ImageView, 0, len(images))
	for _, image := range images {
		views = append(views, ImageView{
			ID:         image.ID,
			Filename:   image.Filename,
			UploadDate: image.UploadDate,
			URL:        image.URL,
			Analysis:   image.AnalysisJSON(),
		})
	}
	return views, nil
}
