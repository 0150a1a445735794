package libs

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"freshfetch/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var (
	ErrUnsupportedImage = errors.New("invalid file type, only jpg, jpeg, png, gif, webp allowed")
	ErrImageTooLarge    = errors.New("file too large")
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type CloudinaryService struct {
	cld     *cloudinary.Cloudinary
	maxSize int64
}

// NewCloudinaryService prefers the individual credentials and falls back to CLOUDINARY_URL.
func NewCloudinaryService(cfg *config.Config) (*CloudinaryService, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	switch {
	case cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	case cfg.CloudinaryURL != "":
		cld, err = cloudinary.NewFromURL(cfg.CloudinaryURL)
	default:
		return nil, errors.New("cloudinary credentials not configured")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryService{cld: cld, maxSize: cfg.MaxUploadSize}, nil
}

// ValidateImageFile checks extension and size before anything is sent upstream.
func ValidateImageFile(file *multipart.FileHeader, maxSize int64) error {
	if maxSize > 0 && file.Size > maxSize {
		return fmt.Errorf("%w (max %d bytes)", ErrImageTooLarge, maxSize)
	}
	if !allowedImageExts[strings.ToLower(filepath.Ext(file.Filename))] {
		return ErrUnsupportedImage
	}
	return nil
}

func (s *CloudinaryService) UploadImage(ctx context.Context, header *multipart.FileHeader, folder string) (string, string, error) {
	if err := ValidateImageFile(header, s.maxSize); err != nil {
		return "", "", err
	}

	file, err := header.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	name := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	publicID := fmt.Sprintf("%d_%s", time.Now().Unix(), strings.ReplaceAll(name, " ", "_"))

	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         folder,
		ResourceType:   "image",
		Transformation: "q_auto,f_auto",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if result.SecureURL == "" {
		if result.Error.Message != "" {
			return "", "", fmt.Errorf("cloudinary: %s", result.Error.Message)
		}
		return "", "", errors.New("cloudinary returned no url")
	}

	return result.SecureURL, result.PublicID, nil
}

func (s *CloudinaryService) DeleteImage(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	if result.Result != "ok" {
		return fmt.Errorf("cloudinary deletion failed: %s", result.Result)
	}
	return nil
}
