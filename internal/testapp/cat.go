// Package testapp is the companion application whose records own galleries.
package testapp

import (
	"gorm.io/gorm"
)

const (
	AppLabel = "testapp"
	CatModel = "cat"

	SexFemale = "F"
	SexMale   = "M"
)

// Cat is a sample record type that can own a gallery.
type Cat struct {
	ID    uint    `gorm:"primaryKey" json:"id"`
	Name  string  `gorm:"not null" json:"name"`
	About *string `gorm:"type:text" json:"about"`
	Age   *int    `json:"age"`
	Sex   *string `gorm:"size:1" json:"sex"`
}

// TableName prefixes the table with the app label.
func (Cat) TableName() string {
	return "testapp_cats"
}

// Migrate creates the cat table and relaxes NOT NULL on the optional columns of older schemas.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&Cat{}); err != nil {
		return err
	}

	migrator := gdb.Migrator()
	columns, err := migrator.ColumnTypes(&Cat{})
	if err != nil {
		return err
	}

	optional := map[string]string{"about": "About", "age": "Age", "sex": "Sex"}
	for _, column := range columns {
		field, ok := optional[column.Name()]
		if !ok {
			continue
		}
		if nullable, known := column.Nullable(); !known || nullable {
			continue
		}
		if err := migrator.AlterColumn(&Cat{}, field); err != nil {
			return err
		}
	}
	return nil
}
