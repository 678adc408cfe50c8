package repository

import (
	"context"

	"gorm.io/gorm"

	"listora_publisher_v1/internal/model"
)

// ContentRepository 生成内容仓储接口（发布侧只读）
type ContentRepository interface {
	GetByID(ctx context.Context, id int64) (*model.ProductContent, error)
	GetLatestByUser(ctx context.Context, userID int64) (*model.ProductContent, error)
	Create(ctx context.Context, content *model.ProductContent) error
}

type contentRepo struct {
	db *gorm.DB
}

// NewContentRepository 创建内容仓储
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepo{db: db}
}

func (r *contentRepo) GetByID(ctx context.Context, id int64) (*model.ProductContent, error) {
	var content model.ProductContent
	err := r.db.WithContext(ctx).First(&content, id).Error
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepo) GetLatestByUser(ctx context.Context, userID int64) (*model.ProductContent, error) {
	var content model.ProductContent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&content).Error
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepo) Create(ctx context.Context, content *model.ProductContent) error {
	return r.db.WithContext(ctx).Create(content).Error
}
