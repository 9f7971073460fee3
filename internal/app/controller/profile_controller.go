package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/internal/app/repository"
	"github.com/hpatel/profilesync-backend/internal/app/service"
	apperrors "github.com/hpatel/profilesync-backend/internal/errors"
	"github.com/hpatel/profilesync-backend/internal/middleware"
	"github.com/hpatel/profilesync-backend/internal/scheduler"
)

type ProfileController struct {
	profileService service.ProfileService
	pendingService service.PendingCreationService
	scheduler      *scheduler.SyncScheduler
}

func NewProfileController(
	profileService service.ProfileService,
	pendingService service.PendingCreationService,
	syncScheduler *scheduler.SyncScheduler,
) *ProfileController {
	return &ProfileController{
		profileService: profileService,
		pendingService: pendingService,
		scheduler:      syncScheduler,
	}
}

type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	Category       *string `json:"category"`
	Address        *string `json:"address"`
	Phone          *string `json:"phone"`
	AlternatePhone *string `json:"alternatePhone"`
	Email          *string `json:"email"`
	Website        *string `json:"website"`
	Description    *string `json:"description"`
	LogoURL        *string `json:"logoUrl"`
	ClearLogo      bool    `json:"clearLogo"`
}

// ListProfiles returns the user's business profiles, reconciled against the
// identity record, oldest first.
// GET /api/v1/profiles
func (ctrl *ProfileController) ListProfiles(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	profiles, err := ctrl.scheduler.OnProfileListLoad(c.Request.Context(), sess)
	if err != nil {
		log.Error("Failed to load business profiles", err, map[string]interface{}{
			"user_id": sess.UserID,
		})
		info := apperrors.ParseError(err, "profile")
		apperrors.RespondWithError(c, http.StatusBadGateway, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

// SubmitProfile submits a new profile form. The first profile is created
// directly; later ones enter the payment-gated workflow and the response
// carries the checkout options to open.
// POST /api/v1/profiles
func (ctrl *ProfileController) SubmitProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var form model.ProfileForm
	if err := c.ShouldBindJSON(&form); err != nil {
		log.Warn("Invalid profile form", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid profile form")
		return
	}

	result, err := ctrl.pendingService.Submit(c.Request.Context(), sess, form)
	if err != nil {
		log.Error("Profile submission failed", err, map[string]interface{}{
			"user_id": sess.UserID,
		})
		switch {
		case errors.Is(err, model.ErrInvalidForm):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Required profile fields are missing")
		case errors.Is(err, service.ErrPaymentOrderFailed):
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.PaymentOrderFailed, "Could not start the payment, your draft was kept")
		default:
			info := apperrors.ParseError(err, "profile")
			apperrors.RespondWithError(c, http.StatusBadGateway, info.Code, info.Message)
		}
		return
	}

	status := http.StatusCreated
	if result.State == model.DraftStateAwaitingPayment {
		status = http.StatusAccepted
	}
	c.JSON(status, result)
}

// UpdateProfile applies a partial update and returns the refreshed profile.
// PATCH /api/v1/profiles/:id
func (ctrl *ProfileController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	profileID := c.Param("id")
	if profileID == "" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Profile id is required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid update payload")
		return
	}

	patch := model.ProfilePatch{
		Name:           req.Name,
		Category:       req.Category,
		Address:        req.Address,
		Phone:          req.Phone,
		AlternatePhone: req.AlternatePhone,
		Email:          req.Email,
		Website:        req.Website,
		Description:    req.Description,
		LogoURL:        req.LogoURL,
		ClearLogo:      req.ClearLogo,
	}

	profile, err := ctrl.profileService.Update(c.Request.Context(), sess, profileID, patch)
	if err != nil {
		log.Error("Profile update failed", err, map[string]interface{}{
			"user_id":    sess.UserID,
			"profile_id": profileID,
		})
		switch {
		case errors.Is(err, model.ErrInvalidForm):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The update would change nothing")
		case errors.Is(err, repository.ErrProfileNotFound):
			apperrors.NotFound(c, apperrors.ProfileNotFound, "Business profile not found")
		default:
			info := apperrors.ParseError(err, "profile")
			apperrors.RespondWithError(c, http.StatusBadGateway, info.Code, info.Message)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// DeleteProfile removes a profile.
// DELETE /api/v1/profiles/:id
func (ctrl *ProfileController) DeleteProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	profileID := c.Param("id")
	if profileID == "" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Profile id is required")
		return
	}

	if err := ctrl.profileService.Delete(c.Request.Context(), sess, profileID); err != nil {
		log.Error("Profile deletion failed", err, map[string]interface{}{
			"user_id":    sess.UserID,
			"profile_id": profileID,
		})
		info := apperrors.ParseError(err, "profile")
		apperrors.RespondWithError(c, http.StatusBadGateway, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted"})
}
