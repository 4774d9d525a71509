package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-catalog/internal/dto"
	"github.com/noah-isme/college-catalog/internal/service"
	appErrors "github.com/noah-isme/college-catalog/pkg/errors"
	"github.com/noah-isme/college-catalog/pkg/response"
)

// FavoriteHandler serves the current user's favorites.
type FavoriteHandler struct {
	service *service.FavoriteService
}

// NewFavoriteHandler constructs a favorite handler.
func NewFavoriteHandler(svc *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: svc}
}

// List handles GET /favorites.
func (h *FavoriteHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	favorites, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, favorites, "Favorites fetched")
}

// Add handles POST /favorites.
func (h *FavoriteHandler) Add(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	favorite, err := h.service.Add(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, favorite, "Favorite added")
}

// Remove handles DELETE /favorites/:collegeId.
func (h *FavoriteHandler) Remove(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	collegeID, err := int64Param(c, "collegeId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Remove(c.Request.Context(), claims.UserID, collegeID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nil, "Favorite removed")
}
