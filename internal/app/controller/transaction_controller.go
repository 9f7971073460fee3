package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hpatel/profilesync-backend/internal/app/service"
	apperrors "github.com/hpatel/profilesync-backend/internal/errors"
	"github.com/hpatel/profilesync-backend/internal/middleware"
)

type TransactionController struct {
	transactionService service.TransactionService
}

func NewTransactionController(transactionService service.TransactionService) *TransactionController {
	return &TransactionController{
		transactionService: transactionService,
	}
}

// ListTransactions returns the user's payment history, newest first.
// GET /api/v1/transactions
func (ctrl *TransactionController) ListTransactions(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := c.GetString(middleware.UserIDKey)

	txns, err := ctrl.transactionService.List(userID)
	if err != nil {
		log.Error("Failed to list transactions", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch transactions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": txns,
		"count":        len(txns),
	})
}

// ExportTransactions downloads the payment history as a spreadsheet.
// GET /api/v1/transactions/export
func (ctrl *TransactionController) ExportTransactions(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := c.GetString(middleware.UserIDKey)

	data, err := ctrl.transactionService.ExportXLSX(userID)
	if err != nil {
		log.Error("Failed to export transactions", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to export transactions")
		return
	}

	filename := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
