package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ContentType 标识一种可被图片引用的记录类型。
type ContentType struct {
	ID       uint   `gorm:"primaryKey"`
	AppLabel string `gorm:"not null;uniqueIndex:idx_content_type_app_model"`
	Model    string `gorm:"not null;uniqueIndex:idx_content_type_app_model"`
}

// Key returns the dotted "app_label.model" form.
func (ct ContentType) Key() string {
	return ct.AppLabel + "." + ct.Model
}

// NormalizeModelName lower-cases and trims a type component.
func NormalizeModelName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// EnsureContentType returns the content type row for appLabel/model, creating it when missing.
func EnsureContentType(gdb *gorm.DB, appLabel, model string) (*ContentType, error) {
	appLabel = NormalizeModelName(appLabel)
	model = NormalizeModelName(model)
	if appLabel == "" || model == "" {
		return nil, errors.New("content type requires app label and model")
	}

	ct := ContentType{AppLabel: appLabel, Model: model}
	if err := gdb.Where(&ContentType{AppLabel: appLabel, Model: model}).FirstOrCreate(&ct).Error; err != nil {
		return nil, err
	}
	return &ct, nil
}
