package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/internal/app/repository"
)

// TransactionService records and reports payment attempts.
type TransactionService interface {
	Record(userID string, draft *model.PendingProfileDraft, paymentID string, status model.TransactionStatus, description string) error
	List(userID string) ([]model.PaymentTransaction, error)
	ExportXLSX(userID string) ([]byte, error)
}

type transactionService struct {
	txns repository.TransactionRepository
}

func NewTransactionService(txns repository.TransactionRepository) TransactionService {
	return &transactionService{txns: txns}
}

func (s *transactionService) Record(userID string, draft *model.PendingProfileDraft, paymentID string, status model.TransactionStatus, description string) error {
	txn := &model.PaymentTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		OrderID:     draft.OrderID,
		PaymentID:   paymentID,
		Amount:      draft.Amount,
		Currency:    draft.Currency,
		Status:      status,
		Description: description,
		DraftToken:  draft.Token,
		CreatedAt:   time.Now(),
	}
	return s.txns.Create(txn)
}

func (s *transactionService) List(userID string) ([]model.PaymentTransaction, error) {
	return s.txns.ListByUser(userID)
}

// ExportXLSX renders the user's payment history as a spreadsheet, newest
// first, amounts in major currency units.
func (s *transactionService) ExportXLSX(userID string) ([]byte, error) {
	txns, err := s.txns.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"Date", "Order ID", "Payment ID", "Amount", "Currency", "Status", "Description"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, txn := range txns {
		values := []interface{}{
			txn.CreatedAt.Format("2006-01-02 15:04:05"),
			txn.OrderID,
			txn.PaymentID,
			fmt.Sprintf("%.2f", float64(txn.Amount)/100),
			txn.Currency,
			string(txn.Status),
			txn.Description,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
