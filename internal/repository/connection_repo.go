package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"listora_publisher_v1/internal/model"
)

// ConnectionRepository 卖家连接仓储接口
type ConnectionRepository interface {
	Create(ctx context.Context, conn *model.MarketplaceConnection) error
	GetByID(ctx context.Context, id int64) (*model.MarketplaceConnection, error)
	GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*model.MarketplaceConnection, error)
	ListByUser(ctx context.Context, userID int64) ([]model.MarketplaceConnection, error)

	// SaveTokens 刷新成功后持久化新 Token 对
	SaveTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error
	UpdateTokenStatus(ctx context.Context, id int64, status string) error

	// FindExpiring 查出给定时间内过期、且仍标记有效的连接（保活任务用）
	FindExpiring(ctx context.Context, within time.Duration) ([]model.MarketplaceConnection, error)
}

type connectionRepo struct {
	db *gorm.DB
}

// NewConnectionRepository 创建连接仓储
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepo{db: db}
}

func (r *connectionRepo) Create(ctx context.Context, conn *model.MarketplaceConnection) error {
	return r.db.WithContext(ctx).Create(conn).Error
}

func (r *connectionRepo) GetByID(ctx context.Context, id int64) (*model.MarketplaceConnection, error) {
	var conn model.MarketplaceConnection
	err := r.db.WithContext(ctx).First(&conn, id).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepo) GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*model.MarketplaceConnection, error) {
	var conn model.MarketplaceConnection
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform = ?", userID, platform).
		Order("created_at DESC").
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepo) ListByUser(ctx context.Context, userID int64) ([]model.MarketplaceConnection, error) {
	var conns []model.MarketplaceConnection
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&conns).Error
	return conns, err
}

func (r *connectionRepo) SaveTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.MarketplaceConnection{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_token":     accessToken,
			"refresh_token":    refreshToken,
			"token_expires_at": expiresAt,
			"token_status":     model.TokenStatusActive,
		}).Error
}

func (r *connectionRepo) UpdateTokenStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.MarketplaceConnection{}).
		Where("id = ?", id).
		Update("token_status", status).Error
}

func (r *connectionRepo) FindExpiring(ctx context.Context, within time.Duration) ([]model.MarketplaceConnection, error) {
	var conns []model.MarketplaceConnection
	deadline := time.Now().Add(within)
	err := r.db.WithContext(ctx).
		Where("token_expires_at < ? AND token_status = ? AND refresh_token <> ''", deadline, model.TokenStatusActive).
		Find(&conns).Error
	return conns, err
}
