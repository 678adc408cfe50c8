package repository

import (
	"context"

	"gorm.io/gorm"

	"listora_publisher_v1/internal/model"
)

// ==================== 接口定义 ====================

// ListingRepository eBay 发布记录仓储接口
type ListingRepository interface {
	Create(ctx context.Context, listing *model.EbayListing) error
	GetByID(ctx context.Context, id int64) (*model.EbayListing, error)
	GetByItemID(ctx context.Context, itemID string) (*model.EbayListing, error)
	ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]model.EbayListing, int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
}

// PublishedProductRepository 统一投影仓储接口
type PublishedProductRepository interface {
	Create(ctx context.Context, product *model.PublishedProduct) error
	ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]model.PublishedProduct, int64, error)
}

// TemplateFileRepository 模板文件记录仓储接口
type TemplateFileRepository interface {
	Create(ctx context.Context, file *model.AmazonTemplateFile) error
	ListByUser(ctx context.Context, userID int64) ([]model.AmazonTemplateFile, error)
}

// ==================== 仓储实现 ====================

type listingRepo struct {
	db *gorm.DB
}

// NewListingRepository 创建发布记录仓储
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepo{db: db}
}

func (r *listingRepo) Create(ctx context.Context, listing *model.EbayListing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepo) GetByID(ctx context.Context, id int64) (*model.EbayListing, error) {
	var listing model.EbayListing
	err := r.db.WithContext(ctx).First(&listing, id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepo) GetByItemID(ctx context.Context, itemID string) (*model.EbayListing, error) {
	var listing model.EbayListing
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepo) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]model.EbayListing, int64, error) {
	var listings []model.EbayListing
	var total int64

	query := r.db.WithContext(ctx).Model(&model.EbayListing{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	err := query.
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&listings).Error

	return listings, total, err
}

func (r *listingRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.EbayListing{}).
		Where("id = ?", id).
		Updates(fields).Error
}

type publishedProductRepo struct {
	db *gorm.DB
}

// NewPublishedProductRepository 创建投影仓储
func NewPublishedProductRepository(db *gorm.DB) PublishedProductRepository {
	return &publishedProductRepo{db: db}
}

func (r *publishedProductRepo) Create(ctx context.Context, product *model.PublishedProduct) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *publishedProductRepo) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]model.PublishedProduct, int64, error) {
	var products []model.PublishedProduct
	var total int64

	query := r.db.WithContext(ctx).Model(&model.PublishedProduct{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	err := query.
		Order("published_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&products).Error

	return products, total, err
}

type templateFileRepo struct {
	db *gorm.DB
}

// NewTemplateFileRepository 创建模板文件仓储
func NewTemplateFileRepository(db *gorm.DB) TemplateFileRepository {
	return &templateFileRepo{db: db}
}

func (r *templateFileRepo) Create(ctx context.Context, file *model.AmazonTemplateFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *templateFileRepo) ListByUser(ctx context.Context, userID int64) ([]model.AmazonTemplateFile, error) {
	var files []model.AmazonTemplateFile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}
