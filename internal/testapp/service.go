package testapp

import (
	"context"
	"errors"
	"strings"

	"github.com/contentgallery/internal/gallery"
	"github.com/contentgallery/internal/service"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

var aboutSanitizer = bluemonday.UGCPolicy()

var (
	ErrCatNotFound    = errors.New("cat not found")
	ErrCatNameMissing = errors.New("cat name is required")
	ErrCatSexInvalid  = errors.New("cat sex must be F or M")
	ErrCatAgeInvalid  = errors.New("cat age must not be negative")
)

// Register adds Cat to the gallery registry as a visible owner.
func Register(reg *gallery.Registry, gdb *gorm.DB) {
	reg.Register(AppLabel, CatModel, gallery.Capability{Listable: true, Visible: true}, gallery.NewTableOwner(gdb, &Cat{}, "name"))
}

// CatInput represents fields accepted when creating a cat.
type CatInput struct {
	Name  string
	About string
	Age   *int
	Sex   string
}

// CatService handles cat CRUD. Deleting a cat also deletes its gallery.
type CatService struct {
	db        *gorm.DB
	galleries *service.GalleryService
}

// NewCatService creates a CatService instance.
func NewCatService(gdb *gorm.DB, galleries *service.GalleryService) *CatService {
	return &CatService{db: gdb, galleries: galleries}
}

// List returns all cats ordered by id.
func (s *CatService) List(ctx context.Context) ([]Cat, error) {
	var cats []Cat
	if err := s.db.WithContext(ctx).Order("id asc").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// Create inserts a new cat.
func (s *CatService) Create(ctx context.Context, input CatInput) (*Cat, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCatNameMissing
	}
	if input.Age != nil && *input.Age < 0 {
		return nil, ErrCatAgeInvalid
	}

	cat := Cat{Name: name, Age: input.Age}
	// about 允许简单的 HTML，保存前过滤脚本等危险内容
	if about := strings.TrimSpace(aboutSanitizer.Sanitize(input.About)); about != "" {
		cat.About = &about
	}
	if sex := strings.ToUpper(strings.TrimSpace(input.Sex)); sex != "" {
		if sex != SexFemale && sex != SexMale {
			return nil, ErrCatSexInvalid
		}
		cat.Sex = &sex
	}

	if err := s.db.WithContext(ctx).Create(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// Delete removes a cat together with its images.
func (s *CatService) Delete(ctx context.Context, id uint) error {
	var keys []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cat Cat
		if err := tx.First(&cat, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCatNotFound
			}
			return err
		}

		var err error
		keys, err = s.galleries.DeleteOwnerImages(tx, AppLabel, CatModel, cat.ID)
		if err != nil {
			return err
		}
		return tx.Delete(&cat).Error
	})
	if err != nil {
		return err
	}

	s.galleries.RemovePayloads(ctx, keys)
	return nil
}
