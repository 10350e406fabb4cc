package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studytracker/internal/middleware"
	"studytracker/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Me(c *gin.Context) {
	h.writeUser(c, middleware.UserID(c))
}

func (h *UserHandler) Get(c *gin.Context) {
	h.writeUser(c, c.Param("id"))
}

func (h *UserHandler) Leaderboard(c *gin.Context) {
	limit := 0
	rawLimit := c.Query("limit")
	if rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil {
			limit = parsed
		}
	}

	entries, apiErr := h.userService.Leaderboard(c.Request.Context(), limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

func (h *UserHandler) writeUser(c *gin.Context, userID string) {
	user, apiErr := h.userService.Get(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
