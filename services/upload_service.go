package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"freshfetch/libs"
	"freshfetch/models"
)

const uploadFolder = "freshfetch"

type ImageUploader interface {
	UploadImage(ctx context.Context, header *multipart.FileHeader, folder string) (url string, publicID string, err error)
	DeleteImage(ctx context.Context, publicID string) error
}

type UploadService struct {
	uploader ImageUploader
}

func NewUploadService(uploader ImageUploader) *UploadService {
	return &UploadService{uploader: uploader}
}

func (s *UploadService) UploadImage(ctx context.Context, header *multipart.FileHeader) (*models.UploadResult, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: image uploads", ErrUnavailable)
	}
	url, publicID, err := s.uploader.UploadImage(ctx, header, uploadFolder)
	if errors.Is(err, libs.ErrUnsupportedImage) || errors.Is(err, libs.ErrImageTooLarge) {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &models.UploadResult{URL: url, PublicID: publicID}, nil
}

// DeleteImage removes an image uploaded through this service.
func (s *UploadService) DeleteImage(ctx context.Context, publicID string) error {
	if s.uploader == nil {
		return fmt.Errorf("%w: image uploads", ErrUnavailable)
	}
	if !strings.HasPrefix(publicID, uploadFolder+"/") {
		return validationError("publicId must belong to the %s folder", uploadFolder)
	}
	if err := s.uploader.DeleteImage(ctx, publicID); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}
