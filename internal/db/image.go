package db

import "time"

// Image 是归属于任意内容对象的一张图片，通过 (ContentTypeID, ObjectID) 定位所有者。
type Image struct {
	ID            uint        `gorm:"primaryKey"`
	Src           string      `gorm:"not null"`
	Position      int         `gorm:"not null;default:0;index:idx_gallery_image_owner,priority:3"`
	ContentTypeID uint        `gorm:"not null;index:idx_gallery_image_owner,priority:1"`
	ContentType   ContentType `gorm:"constraint:OnDelete:CASCADE"`
	ObjectID      uint        `gorm:"not null;index:idx_gallery_image_owner,priority:2"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName keeps the table name stable across renames of the Go type.
func (Image) TableName() string {
	return "gallery_images"
}
