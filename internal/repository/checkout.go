package repository

import (
	"context"
	"errors"
	"time"

	"minecraft-store/internal/model"

	"gorm.io/gorm"
)

type CheckoutRepository interface {
	Create(ctx context.Context, record *model.CheckoutRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]*model.CheckoutRecord, error)
	MarkPaid(ctx context.Context, tx *gorm.DB, sessionID, transactionID string) (int64, error)
}

type checkoutRepoImpl struct {
	db *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) CheckoutRepository {
	return &checkoutRepoImpl{
		db: db,
	}
}

func (r *checkoutRepoImpl) Create(ctx context.Context, record *model.CheckoutRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *checkoutRepoImpl) ListBySession(ctx context.Context, sessionID string) ([]*model.CheckoutRecord, error) {
	var records []*model.CheckoutRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

// MarkPaid flags the session's most recent ready checkout as paid and returns the rows touched.
func (r *checkoutRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, sessionID, transactionID string) (int64, error) {
	var latest model.CheckoutRecord
	err := tx.WithContext(ctx).
		Where("session_id = ? AND status = ?", sessionID, model.CheckoutStatusReady).
		Order("created_at DESC, id DESC").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	result := tx.WithContext(ctx).Model(&model.CheckoutRecord{}).
		Where("id = ?", latest.ID).
		Updates(map[string]interface{}{
			"status":         model.CheckoutStatusPaid,
			"transaction_id": transactionID,
			"updated_at":     time.Now(),
		})

	return result.RowsAffected, result.Error
}
