package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/api"
	"github.com/inkridge/studio-client/internal/forms"
	"github.com/inkridge/studio-client/internal/models"
	colsync "github.com/inkridge/studio-client/internal/sync"
	apperrors "github.com/inkridge/studio-client/pkg/errors"
)

// GalleryService backs the tattoo gallery view.
type GalleryService struct {
	client    *api.Client
	col       *colsync.Collection[models.GalleryImage]
	validator *validator.Validate
	logger    *zap.Logger
	upload    forms.FileRule
}

// NewGalleryService constructs a GalleryService instance.
func NewGalleryService(client *api.Client, validate *validator.Validate, logger *zap.Logger, upload forms.FileRule) *GalleryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GalleryService{
		client:    client,
		col:       colsync.NewCollection[models.GalleryImage](),
		validator: validate,
		logger:    logger,
		upload:    upload,
	}
}

// Images returns the current in-memory collection in server order.
func (s *GalleryService) Images() []models.GalleryImage { return s.col.Items() }

// Load fetches the gallery once at view mount.
func (s *GalleryService) Load(ctx context.Context) error {
	var images []models.GalleryImage
	if err := s.client.Get(ctx, "gallery_list", "/tattoo-gallery", &images); err != nil {
		s.col.Reset(nil)
		return err
	}
	s.col.Reset(images)
	return nil
}

// Upload validates the file locally, then appends the server's record.
func (s *GalleryService) Upload(ctx context.Context, req models.UploadImageRequest, filePath string) (*models.GalleryImage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "a title is required")
	}
	if err := s.upload.Validate(req.FileName, req.FileMIME, req.FileSize); err != nil {
		return nil, err
	}

	var created models.GalleryImage
	fields := map[string]string{"title": req.Title}
	if err := s.client.PostMultipart(ctx, "gallery_upload", "/tattoo-gallery", fields, "image", filePath, &created); err != nil {
		return nil, err
	}
	s.col.Append(created)
	return &created, nil
}

// Remove deletes an image from the gallery.
func (s *GalleryService) Remove(ctx context.Context, id int64) error {
	if err := s.col.Begin(id); err != nil {
		return err
	}
	defer s.col.End(id)

	if err := s.client.Delete(ctx, "gallery_delete", fmt.Sprintf("/tattoo-gallery/%d", id), nil); err != nil {
		return err
	}
	s.col.Remove(id)
	return nil
}
