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
)

type IdentityController struct {
	identityService service.IdentityService
}

func NewIdentityController(identityService service.IdentityService) *IdentityController {
	return &IdentityController{
		identityService: identityService,
	}
}

type PutIdentityRequest struct {
	DisplayName    string `json:"displayName" binding:"required"`
	Phone          string `json:"phone" binding:"required"`
	AlternatePhone string `json:"alternatePhone"`
	Email          string `json:"email" binding:"required,email"`
	Address        string `json:"address"`
	Website        string `json:"website"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	LogoURL        string `json:"logoUrl"`
}

type PatchIdentityRequest struct {
	DisplayName    *string `json:"displayName"`
	Phone          *string `json:"phone"`
	AlternatePhone *string `json:"alternatePhone"`
	Email          *string `json:"email"`
	Address        *string `json:"address"`
	Website        *string `json:"website"`
	Category       *string `json:"category"`
	Description    *string `json:"description"`
	LogoURL        *string `json:"logoUrl"`
}

// GetIdentity returns the user's identity record.
// GET /api/v1/identity
func (ctrl *IdentityController) GetIdentity(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	identity, err := ctrl.identityService.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			apperrors.NotFound(c, apperrors.IdentityNotFound, "No identity record for this user")
			return
		}
		info := apperrors.ParseError(err, "identity")
		apperrors.RespondWithError(c, http.StatusBadGateway, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"identity": identity})
}

// PutIdentity replaces the identity record, as sign-in does.
// PUT /api/v1/identity
func (ctrl *IdentityController) PutIdentity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := c.GetString(middleware.UserIDKey)

	var req PutIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid identity payload")
		return
	}

	identity, err := ctrl.identityService.Put(c.Request.Context(), userID, model.UserIdentity{
		DisplayName:    req.DisplayName,
		Phone:          req.Phone,
		AlternatePhone: req.AlternatePhone,
		Email:          req.Email,
		Address:        req.Address,
		Website:        req.Website,
		Category:       req.Category,
		Description:    req.Description,
		LogoURL:        req.LogoURL,
	})
	if err != nil {
		log.Error("Failed to store identity record", err, map[string]interface{}{
			"user_id": userID,
		})
		info := apperrors.ParseError(err, "identity")
		apperrors.RespondWithError(c, http.StatusBadGateway, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"identity": identity})
}

// PatchIdentity applies a partial identity update. The canonical profile
// picks the change up on the next list load.
// PATCH /api/v1/identity
func (ctrl *IdentityController) PatchIdentity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := c.GetString(middleware.UserIDKey)

	var req PatchIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid identity payload")
		return
	}

	identity, err := ctrl.identityService.Update(c.Request.Context(), userID, model.IdentityPatch{
		DisplayName:    req.DisplayName,
		Phone:          req.Phone,
		AlternatePhone: req.AlternatePhone,
		Email:          req.Email,
		Address:        req.Address,
		Website:        req.Website,
		Category:       req.Category,
		Description:    req.Description,
		LogoURL:        req.LogoURL,
	})
	if err != nil {
		log.Error("Failed to update identity record", err, map[string]interface{}{
			"user_id": userID,
		})
		if errors.Is(err, repository.ErrIdentityNotFound) {
			apperrors.NotFound(c, apperrors.IdentityNotFound, "No identity record for this user")
			return
		}
		info := apperrors.ParseError(err, "identity")
		apperrors.RespondWithError(c, http.StatusBadGateway, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"identity": identity})
}
