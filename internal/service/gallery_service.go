package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/vbonduro/photoshare/internal/domain"
	"github.com/vbonduro/photoshare/internal/imaging"
	"github.com/vbonduro/photoshare/internal/photostore"
	"github.com/vbonduro/photoshare/internal/store"
	"github.com/vbonduro/photoshare/internal/vision"
)

const (
	thumbnailTTL     = 30 * time.Minute
	thumbnailCleanup = 10 * time.Minute
)

// photoRepository is the subset of store.PhotoStore that GalleryService requires.
type photoRepository interface {
	Create(ctx context.Context, storageKey, mimeType string, tags []string) (*domain.Photo, error)
	GetByID(ctx context.Context, id string) (*domain.Photo, error)
	List(ctx context.Context) ([]*domain.Photo, error)
	Delete(ctx context.Context, id string) error
}

type GalleryService struct {
	photoStore photoRepository
	photoStg   photostore.PhotoStore
	tagger     vision.Tagger
	thumbs     *cache.Cache
	logger     *slog.Logger
}

// NewGalleryService builds the gallery. tagger may be nil, in which case
// photos only receive an orientation tag.
func NewGalleryService(
	photoStore photoRepository,
	photoStg photostore.PhotoStore,
	tagger vision.Tagger,
	logger *slog.Logger,
) *GalleryService {
	return &GalleryService{
		photoStore: photoStore,
		photoStg:   photoStg,
		tagger:     tagger,
		thumbs:     cache.New(thumbnailTTL, thumbnailCleanup),
		logger:     logger,
	}
}

// Upload tags the image, stores it and records it. Tagging failures are
// logged and the photo is kept with whatever tags were found.
func (s *GalleryService) Upload(ctx context.Context, imageData []byte, mimeType string) (*domain.Photo, error) {
	s.logger.Info("upload photo started", "mime_type", mimeType, "bytes", len(imageData))

	tags := s.tag(ctx, imageData, mimeType)

	storageKey, err := s.photoStg.Save(ctx, mimeType, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	s.logger.Debug("photo saved", "storage_key", storageKey)

	photo, err := s.photoStore.Create(ctx, storageKey, mimeType, tags)
	if err != nil {
		if stgErr := s.photoStg.Delete(ctx, storageKey); stgErr != nil {
			s.logger.Error("failed to roll back photo file", "storage_key", storageKey, "error", stgErr)
		}
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	s.logger.Info("upload photo complete", "photo_id", photo.ID, "tags", len(photo.Tags))
	p := withURL(*photo)
	return &p, nil
}

func (s *GalleryService) tag(ctx context.Context, imageData []byte, mimeType string) []string {
	tags := make([]string, 0, vision.MaxTags+1)

	if s.tagger != nil {
		s.logger.Info("vision tagging started")
		found, err := s.tagger.Tag(ctx, bytes.NewReader(imageData), mimeType)
		if err != nil {
			s.logger.Error("vision tagging failed", "error", err)
		} else {
			tags = append(tags, found...)
			s.logger.Info("vision tagging complete", "tags", len(found))
		}
	}

	orientation, err := imaging.OrientationTag(bytes.NewReader(imageData))
	if err != nil {
		s.logger.Warn("failed to read image orientation", "error", err)
		return tags
	}
	for _, t := range tags {
		if t == orientation {
			return tags
		}
	}
	return append(tags, orientation)
}

// List returns every photo in upload order.
func (s *GalleryService) List(ctx context.Context) ([]domain.Photo, error) {
	photos, err := s.photoStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Photo, 0, len(photos))
	for _, p := range photos {
		out = append(out, withURL(*p))
	}
	return out, nil
}

func (s *GalleryService) Get(ctx context.Context, id string) (*domain.Photo, error) {
	photo, err := s.photoStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	if photo == nil {
		return nil, fmt.Errorf("%w: %s", ErrPhotoNotFound, id)
	}
	p := withURL(*photo)
	return &p, nil
}

// Open streams the stored image. The caller closes the reader.
func (s *GalleryService) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	photo, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	r, mimeType, err := s.photoStg.Get(ctx, photo.StorageKey)
	if err != nil {
		if errors.Is(err, photostore.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: %s", ErrPhotoNotFound, id)
		}
		return nil, "", fmt.Errorf("failed to open photo: %w", err)
	}
	return r, mimeType, nil
}

// Thumbnail returns a JPEG thumbnail, cached per photo.
func (s *GalleryService) Thumbnail(ctx context.Context, id string) ([]byte, error) {
	if cached, ok := s.thumbs.Get(id); ok {
		return cached.([]byte), nil
	}

	r, _, err := s.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := r.Close(); err != nil {
			s.logger.Error("failed to close photo", "photo_id", id, "error", err)
		}
	}()

	var buf bytes.Buffer
	if err := imaging.Thumbnail(r, &buf); err != nil {
		return nil, fmt.Errorf("failed to build thumbnail: %w", err)
	}

	thumb := buf.Bytes()
	s.thumbs.SetDefault(id, thumb)
	return thumb, nil
}

func (s *GalleryService) Delete(ctx context.Context, id string) error {
	photo, err := s.photoStore.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get photo: %w", err)
	}
	if photo == nil {
		return fmt.Errorf("%w: %s", ErrPhotoNotFound, id)
	}

	if err := s.photoStore.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrPhotoNotFound, id)
		}
		return fmt.Errorf("failed to delete photo record: %w", err)
	}
	s.thumbs.Delete(id)

	if err := s.photoStg.Delete(ctx, photo.StorageKey); err != nil {
		s.logger.Error("failed to delete photo file", "storage_key", photo.StorageKey, "error", err)
	}

	s.logger.Info("photo deleted", "photo_id", id)
	return nil
}
