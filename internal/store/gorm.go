package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultDocumentName = "gallery"

// DocumentRow holds the whole document in a single row.
type DocumentRow struct {
	Name      string         `gorm:"primaryKey;size:64"`
	Body      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (DocumentRow) TableName() string { return "documents" }

// GormBackend stores the document as one row, for deployments that already
// run a database. It keeps the whole-document read/write contract.
type GormBackend struct {
	db   *gorm.DB
	name string
}

func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&DocumentRow{}); err != nil {
		return nil, err
	}
	return &GormBackend{db: db, name: defaultDocumentName}, nil
}

func (g *GormBackend) Load(ctx context.Context) ([]byte, bool, error) {
	var row DocumentRow
	err := g.db.WithContext(ctx).Where("name = ?", g.name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(row.Body), true, nil
}

func (g *GormBackend) Save(ctx context.Context, data []byte) error {
	row := DocumentRow{
		Name:      g.name,
		Body:      datatypes.JSON(data),
		UpdatedAt: time.Now().UTC(),
	}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&row).Error
}
