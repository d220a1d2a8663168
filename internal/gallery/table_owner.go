package gallery

import (
	"context"
	"strconv"

	"gorm.io/gorm"
)

// TableOwner is an Owner backed by a gorm model with an id and a display column.
type TableOwner struct {
	db         *gorm.DB
	model      any
	nameColumn string
}

// NewTableOwner creates an Owner for model, labelling choices with nameColumn.
// model should be a pointer to the zero value, e.g. &Cat{}.
func NewTableOwner(gdb *gorm.DB, model any, nameColumn string) *TableOwner {
	if nameColumn == "" {
		nameColumn = "name"
	}
	return &TableOwner{db: gdb, model: model, nameColumn: nameColumn}
}

type choiceRow struct {
	ID   uint
	Name string
}

// Choices lists every record of the type as {name, id}.
func (o *TableOwner) Choices(ctx context.Context) ([]Choice, error) {
	var rows []choiceRow
	if err := o.db.WithContext(ctx).
		Model(o.model).
		Select("id, " + o.nameColumn + " AS name").
		Order("id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	choices := make([]Choice, 0, len(rows))
	for _, row := range rows {
		choices = append(choices, Choice{
			Name: row.Name,
			ID:   strconv.FormatUint(uint64(row.ID), 10),
		})
	}
	return choices, nil
}

// Exists reports whether a record with id is present.
func (o *TableOwner) Exists(ctx context.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	var count int64
	if err := o.db.WithContext(ctx).Model(o.model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// IDs returns the ids of all present records.
func (o *TableOwner) IDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := o.db.WithContext(ctx).Model(o.model).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
