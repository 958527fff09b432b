package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"huddl/internal/middleware"
	"huddl/internal/port"
)

// UserHandler serves the authenticated user's own account.
type UserHandler struct {
	userRepo port.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo port.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// Me handles GET /auth/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "invalid_token", "")
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewUserObject(user))
}
