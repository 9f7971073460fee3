package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hpatel/profilesync-backend/internal/app/service"
	apperrors "github.com/hpatel/profilesync-backend/internal/errors"
	"github.com/hpatel/profilesync-backend/internal/middleware"
	"github.com/hpatel/profilesync-backend/internal/scheduler"
	"github.com/hpatel/profilesync-backend/pkg/payment/razorpay"
)

type PaymentController struct {
	pendingService service.PendingCreationService
	scheduler      *scheduler.SyncScheduler
}

func NewPaymentController(pendingService service.PendingCreationService, syncScheduler *scheduler.SyncScheduler) *PaymentController {
	return &PaymentController{
		pendingService: pendingService,
		scheduler:      syncScheduler,
	}
}

// CheckoutSuccess is called by the app after the Razorpay checkout reports
// success. Verification happens server side; the profile is created from the
// persisted draft only after the upstream confirms the payment.
// POST /api/v1/payments/checkout-success
func (ctrl *PaymentController) CheckoutSuccess(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var resp razorpay.CheckoutResponse
	if err := c.ShouldBindJSON(&resp); err != nil {
		apperrors.BadRequest(c, apperrors.PaymentCallbackInvalid, "Invalid checkout payload")
		return
	}

	profile, err := ctrl.pendingService.HandleCheckoutSuccess(c.Request.Context(), sess, resp)
	if err != nil {
		log.Error("Checkout verification failed", err, map[string]interface{}{
			"user_id":  sess.UserID,
			"order_id": resp.OrderID,
		})
		switch {
		case errors.Is(err, razorpay.ErrInvalidResponse):
			apperrors.BadRequest(c, apperrors.PaymentCallbackInvalid, "Incomplete checkout payload")
		case errors.Is(err, service.ErrVerificationInFlight):
			apperrors.Conflict(c, apperrors.PaymentAlreadyVerifying, "A verification is already running")
		case errors.Is(err, service.ErrNoPendingDraft):
			apperrors.NotFound(c, apperrors.DraftNotFound, "No pending profile draft")
		case errors.Is(err, service.ErrStaleDraft):
			apperrors.Conflict(c, apperrors.DraftStale, "The payment belongs to a replaced draft")
		case errors.Is(err, service.ErrPaymentVerificationFailed):
			apperrors.RespondWithError(c, http.StatusPaymentRequired, apperrors.PaymentVerificationFailed, "Payment could not be verified, your draft was kept")
		default:
			info := apperrors.ParseError(err, "draft")
			apperrors.RespondWithError(c, http.StatusBadGateway, info.Code, info.Message)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"profile": profile})
}

// Resume runs the focus-time resume check, debounced per user. It reports the
// workflow state and, when a payment completed while the app was away, the
// profile created from the persisted draft.
// POST /api/v1/payments/resume
func (ctrl *PaymentController) Resume(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	result, err := ctrl.scheduler.OnViewFocus(c.Request.Context(), sess)
	if err != nil {
		log.Error("Resume check failed", err, map[string]interface{}{
			"user_id": sess.UserID,
		})
		info := apperrors.ParseError(err, "draft")
		apperrors.RespondWithError(c, http.StatusBadGateway, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, result)
}

// WorkflowState reports the current pending-creation state for the UI.
// GET /api/v1/payments/state
func (ctrl *PaymentController) WorkflowState(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	state, err := ctrl.pendingService.State(c.Request.Context(), sess)
	if err != nil {
		info := apperrors.ParseError(err, "draft")
		apperrors.RespondWithError(c, http.StatusBadGateway, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": state})
}

// AbandonDraft deletes the pending draft and returns the workflow to idle.
// DELETE /api/v1/payments/draft
func (ctrl *PaymentController) AbandonDraft(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	if err := ctrl.pendingService.Abandon(c.Request.Context(), sess); err != nil {
		log.Error("Draft abandon failed", err, map[string]interface{}{
			"user_id": sess.UserID,
		})
		info := apperrors.ParseError(err, "draft")
		apperrors.RespondWithError(c, http.StatusBadGateway, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Draft abandoned"})
}
