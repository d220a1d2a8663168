package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/contentgallery/internal/db"
	"github.com/contentgallery/internal/gallery"
	"github.com/contentgallery/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrContentTypeNotFound    = errors.New("content type not found")
	ErrContentTypeNotEligible = errors.New("content type cannot own a gallery")
	ErrContentTypeHidden      = errors.New("content type is hidden from gallery choices")
	ErrObjectNotFound         = errors.New("content object not found")
	ErrImageNotFound          = errors.New("gallery image not found")
	ErrImageInvalid           = errors.New("gallery image payload is invalid")
	ErrImageTooLarge          = errors.New("gallery image payload is too large")
	ErrPositionInvalid        = errors.New("gallery image position is invalid")
	ErrReorderMismatch        = errors.New("reorder ids do not match the owner's images")
)

// GalleryService resolves generic owners and manages their images.
type GalleryService struct {
	db       *gorm.DB
	registry *gallery.Registry
	storage  storage.Storage
	logger   *zap.Logger
	maxBytes int64
}

// ImageView is the public representation returned by the gallery data endpoint.
type ImageView struct {
	Src      string `json:"src"`
	Position int    `json:"position"`
}

// ImageDetail is the admin representation of an image.
type ImageDetail struct {
	ID            uint   `json:"id"`
	Src           string `json:"src"`
	Position      int    `json:"position"`
	ContentTypeID uint   `json:"content_type_id"`
	ObjectID      uint   `json:"object_id"`
}

// ContentTypeView describes a registered owner type for the admin widget.
type ContentTypeView struct {
	ID       uint   `json:"id"`
	AppLabel string `json:"app_label"`
	Model    string `json:"model"`
	gallery.Capability
}

// ImageInput represents an uploaded image for an owner.
// A nil Position appends the image after the owner's last one.
type ImageInput struct {
	ContentTypeID uint
	ObjectID      uint
	Position      *int
	Filename      string
	Data          []byte
}

// NewGalleryService creates a GalleryService instance.
// maxBytes <= 0 disables the payload size check.
func NewGalleryService(gdb *gorm.DB, registry *gallery.Registry, store storage.Storage, logger *zap.Logger, maxBytes int64) *GalleryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GalleryService{
		db:       gdb,
		registry: registry,
		storage:  store,
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// MaxBytes returns the upload size limit; 0 means unlimited.
func (s *GalleryService) MaxBytes() int64 {
	if s.maxBytes < 0 {
		return 0
	}
	return s.maxBytes
}

// Choices returns every record of the given content type that may own a gallery.
func (s *GalleryService) Choices(ctx context.Context, contentTypeID uint) ([]gallery.Choice, error) {
	entry, err := s.resolveByID(ctx, contentTypeID)
	if err != nil {
		return nil, err
	}
	if !entry.Visible {
		return nil, ErrContentTypeHidden
	}

	choices, err := entry.Owner.Choices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s choices: %w", entry.Key(), err)
	}
	return choices, nil
}

// GalleryData returns the images of one object ordered by position.
func (s *GalleryService) GalleryData(ctx context.Context, appLabel, model string, objectID uint) ([]ImageView, error) {
	entry, err := s.resolveByName(ctx, appLabel, model)
	if err != nil {
		return nil, err
	}
	if err := s.ensureObject(ctx, entry, objectID); err != nil {
		return nil, err
	}

	images, err := s.ownerImages(s.db.WithContext(ctx), entry.ContentTypeID, objectID)
	if err != nil {
		return nil, err
	}

	views := make([]ImageView, 0, len(images))
	for _, img := range images {
		views = append(views, ImageView{Src: s.storage.URL(img.Src), Position: img.Position})
	}
	return views, nil
}

// ContentTypes lists every registered type that can own a gallery.
func (s *GalleryService) ContentTypes(ctx context.Context) ([]ContentTypeView, error) {
	views := make([]ContentTypeView, 0)
	for _, entry := range s.registry.Entries() {
		if !entry.Listable {
			continue
		}
		id := entry.ContentTypeID
		if id == 0 {
			ct, err := db.EnsureContentType(s.db.WithContext(ctx), entry.AppLabel, entry.Model)
			if err != nil {
				return nil, err
			}
			id = ct.ID
		}
		views = append(views, ContentTypeView{
			ID:         id,
			AppLabel:   entry.AppLabel,
			Model:      entry.Model,
			Capability: entry.Capability,
		})
	}
	return views, nil
}

// ListImages returns an owner's images for the admin interface.
func (s *GalleryService) ListImages(ctx context.Context, contentTypeID, objectID uint) ([]ImageDetail, error) {
	entry, err := s.resolveByID(ctx, contentTypeID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureObject(ctx, entry, objectID); err != nil {
		return nil, err
	}

	images, err := s.ownerImages(s.db.WithContext(ctx), entry.ContentTypeID, objectID)
	if err != nil {
		return nil, err
	}
	return s.details(images), nil
}

// AddImage stores the payload and attaches it to its owner.
func (s *GalleryService) AddImage(ctx context.Context, input ImageInput) (*ImageDetail, error) {
	entry, err := s.resolveByID(ctx, input.ContentTypeID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureObject(ctx, entry, input.ObjectID); err != nil {
		return nil, err
	}
	if input.Position != nil && *input.Position < 0 {
		return nil, ErrPositionInvalid
	}
	if s.maxBytes > 0 && int64(len(input.Data)) > s.maxBytes {
		return nil, ErrImageTooLarge
	}
	_, format, err := decodeImageConfig(input.Data)
	if err != nil {
		return nil, err
	}

	position := 0
	if input.Position != nil {
		position = *input.Position
	} else {
		next, err := s.nextPosition(ctx, entry.ContentTypeID, input.ObjectID)
		if err != nil {
			return nil, err
		}
		position = next
	}

	key, err := s.storage.Save(ctx, storedFilename(input.Filename, format), input.Data)
	if err != nil {
		return nil, fmt.Errorf("store image payload: %w", err)
	}

	item := db.Image{
		Src:           key,
		Position:      position,
		ContentTypeID: entry.ContentTypeID,
		ObjectID:      input.ObjectID,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		s.RemovePayloads(ctx, []string{key})
		return nil, err
	}

	detail := s.detail(item)
	return &detail, nil
}

// UpdatePosition moves a single image.
func (s *GalleryService) UpdatePosition(ctx context.Context, id uint, position int) (*ImageDetail, error) {
	if position < 0 {
		return nil, ErrPositionInvalid
	}

	item, err := s.getImage(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Position = position
	if err := s.db.WithContext(ctx).Model(item).Update("position", position).Error; err != nil {
		return nil, err
	}

	detail := s.detail(*item)
	return &detail, nil
}

// Reorder assigns positions 0..n-1 following ids. ids must be exactly the owner's images.
func (s *GalleryService) Reorder(ctx context.Context, contentTypeID, objectID uint, ids []uint) ([]ImageDetail, error) {
	entry, err := s.resolveByID(ctx, contentTypeID)
	if err != nil {
		return nil, err
	}

	var reordered []db.Image
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		images, err := s.ownerImages(tx, entry.ContentTypeID, objectID)
		if err != nil {
			return err
		}
		if len(images) != len(ids) {
			return ErrReorderMismatch
		}

		byID := make(map[uint]db.Image, len(images))
		for _, img := range images {
			byID[img.ID] = img
		}

		reordered = make([]db.Image, 0, len(ids))
		for position, id := range ids {
			img, ok := byID[id]
			if !ok {
				return ErrReorderMismatch
			}
			delete(byID, id)

			if err := tx.Model(&db.Image{}).Where("id = ?", id).Update("position", position).Error; err != nil {
				return err
			}
			img.Position = position
			reordered = append(reordered, img)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.details(reordered), nil
}

// DeleteImage removes an image row and then its payload.
func (s *GalleryService) DeleteImage(ctx context.Context, id uint) error {
	item, err := s.getImage(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(item).Error; err != nil {
		return err
	}
	s.RemovePayloads(ctx, []string{item.Src})
	return nil
}

// DeleteOwnerImages deletes the image rows of one owner inside tx and returns their storage keys.
// Callers remove the payloads with RemovePayloads once tx has committed.
func (s *GalleryService) DeleteOwnerImages(tx *gorm.DB, appLabel, model string, objectID uint) ([]string, error) {
	var ct db.ContentType
	err := tx.Where("app_label = ? AND model = ?", db.NormalizeModelName(appLabel), db.NormalizeModelName(model)).
		First(&ct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	images, err := s.ownerImages(tx, ct.ID, objectID)
	if err != nil || len(images) == 0 {
		return nil, err
	}

	keys := make([]string, 0, len(images))
	for _, img := range images {
		keys = append(keys, img.Src)
	}
	if err := tx.Where("content_type_id = ? AND object_id = ?", ct.ID, objectID).Delete(&db.Image{}).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// RemovePayloads deletes stored payloads; failures are logged, not returned.
func (s *GalleryService) RemovePayloads(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to remove image payload", zap.String("key", key), zap.Error(err))
		}
	}
}

// PruneOrphans removes images whose owner no longer exists. Only registered types are inspected.
func (s *GalleryService) PruneOrphans(ctx context.Context) (int, error) {
	pruned := 0
	for _, entry := range s.registry.Entries() {
		if entry.Owner == nil {
			continue
		}
		ct, err := db.EnsureContentType(s.db.WithContext(ctx), entry.AppLabel, entry.Model)
		if err != nil {
			return pruned, err
		}

		ids, err := entry.Owner.IDs(ctx)
		if err != nil {
			return pruned, fmt.Errorf("list %s ids: %w", entry.Key(), err)
		}

		query := s.db.WithContext(ctx).Where("content_type_id = ?", ct.ID)
		if len(ids) > 0 {
			query = query.Where("object_id NOT IN ?", ids)
		}

		var orphans []db.Image
		if err := query.Find(&orphans).Error; err != nil {
			return pruned, err
		}
		if len(orphans) == 0 {
			continue
		}

		keys := make([]string, 0, len(orphans))
		orphanIDs := make([]uint, 0, len(orphans))
		for _, img := range orphans {
			keys = append(keys, img.Src)
			orphanIDs = append(orphanIDs, img.ID)
		}
		if err := s.db.WithContext(ctx).Delete(&db.Image{}, orphanIDs).Error; err != nil {
			return pruned, err
		}
		s.RemovePayloads(ctx, keys)

		s.logger.Info("pruned orphaned images", zap.String("content_type", entry.Key()), zap.Int("count", len(orphans)))
		pruned += len(orphans)
	}
	return pruned, nil
}

func (s *GalleryService) resolveByID(ctx context.Context, contentTypeID uint) (gallery.Entry, error) {
	if contentTypeID == 0 {
		return gallery.Entry{}, ErrContentTypeNotFound
	}

	var ct db.ContentType
	if err := s.db.WithContext(ctx).First(&ct, contentTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gallery.Entry{}, ErrContentTypeNotFound
		}
		return gallery.Entry{}, err
	}
	return s.eligibleEntry(ct)
}

func (s *GalleryService) resolveByName(ctx context.Context, appLabel, model string) (gallery.Entry, error) {
	var ct db.ContentType
	err := s.db.WithContext(ctx).
		Where("app_label = ? AND model = ?", db.NormalizeModelName(appLabel), db.NormalizeModelName(model)).
		First(&ct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gallery.Entry{}, ErrContentTypeNotFound
		}
		return gallery.Entry{}, err
	}
	return s.eligibleEntry(ct)
}

func (s *GalleryService) eligibleEntry(ct db.ContentType) (gallery.Entry, error) {
	entry, ok := s.registry.Lookup(ct.AppLabel, ct.Model)
	if !ok || !entry.Listable || entry.Owner == nil {
		return gallery.Entry{}, fmt.Errorf("%w: %s", ErrContentTypeNotEligible, ct.Key())
	}
	entry.ContentTypeID = ct.ID
	return entry, nil
}

func (s *GalleryService) ensureObject(ctx context.Context, entry gallery.Entry, objectID uint) error {
	exists, err := entry.Owner.Exists(ctx, objectID)
	if err != nil {
		return fmt.Errorf("lookup %s %d: %w", entry.Key(), objectID, err)
	}
	if !exists {
		return ErrObjectNotFound
	}
	return nil
}

func (s *GalleryService) ownerImages(tx *gorm.DB, contentTypeID, objectID uint) ([]db.Image, error) {
	var images []db.Image
	if err := tx.Where("content_type_id = ? AND object_id = ?", contentTypeID, objectID).
		Order("position asc").
		Order("id asc").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (s *GalleryService) getImage(ctx context.Context, id uint) (*db.Image, error) {
	var item db.Image
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *GalleryService) nextPosition(ctx context.Context, contentTypeID, objectID uint) (int, error) {
	var maxPosition int
	if err := s.db.WithContext(ctx).Model(&db.Image{}).
		Where("content_type_id = ? AND object_id = ?", contentTypeID, objectID).
		Select("COALESCE(MAX(position), -1)").
		Scan(&maxPosition).Error; err != nil {
		return 0, err
	}
	return maxPosition + 1, nil
}

func (s *GalleryService) detail(img db.Image) ImageDetail {
	return ImageDetail{
		ID:            img.ID,
		Src:           s.storage.URL(img.Src),
		Position:      img.Position,
		ContentTypeID: img.ContentTypeID,
		ObjectID:      img.ObjectID,
	}
}

func (s *GalleryService) details(images []db.Image) []ImageDetail {
	out := make([]ImageDetail, 0, len(images))
	for _, img := range images {
		out = append(out, s.detail(img))
	}
	return out
}
