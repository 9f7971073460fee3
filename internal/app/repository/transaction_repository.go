package repository

import (
	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/pkg/logger"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(txn *model.PaymentTransaction) error
	ListByUser(userID string) ([]model.PaymentTransaction, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(txn *model.PaymentTransaction) error {
	if err := r.db.Create(txn).Error; err != nil {
		logger.Error("Failed to record payment transaction", err, map[string]interface{}{
			"user_id":  txn.UserID,
			"order_id": txn.OrderID,
		})
		return err
	}

	logger.Debug("Payment transaction recorded", map[string]interface{}{
		"transaction_id": txn.ID,
		"user_id":        txn.UserID,
		"status":         txn.Status,
	})
	return nil
}

func (r *transactionRepository) ListByUser(userID string) ([]model.PaymentTransaction, error) {
	var txns []model.PaymentTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txns).Error
	if err != nil {
		logger.Error("Failed to list payment transactions", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return txns, nil
}
