package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/internal/models"
)

// GormStore keeps blobs in the blobs table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Put(ctx context.Context, upload Upload) (string, error) {
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	record := models.Blob{
		Filename:    upload.Filename,
		ContentType: contentTypeOrDefault(upload.ContentType),
		Size:        int64(len(data)),
		Data:        data,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("storing blob: %w", err)
	}
	return record.ID.String(), nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*Object, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var record models.Blob
	err = s.db.WithContext(ctx).First(&record, "id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading blob %s: %w", id, err)
	}
	return &Object{
		ID:          record.ID.String(),
		ContentType: record.ContentType,
		Size:        record.Size,
		Body:        io.NopCloser(bytes.NewReader(record.Data)),
	}, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	res := s.db.WithContext(ctx).Delete(&models.Blob{}, "id = ?", uid)
	if res.Error != nil {
		return fmt.Errorf("deleting blob %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
