package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickai/quickai-golang/internal/ledger"
)

// GetUserCreations handles GET /api/user/get-user-creation.
// Returns the caller's creations, newest first.
func (h *Handlers) GetUserCreations(c *gin.Context) {
	userID := c.GetInt64("userID")

	creations, err := h.Ledger.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load creations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    creations,
	})
}

// GetPublishedCreations handles GET /api/user/get-published-creation.
// The feed is global: every published creation, any owner, newest first.
func (h *Handlers) GetPublishedCreations(c *gin.Context) {
	creations, err := h.Ledger.ListPublished(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load creations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    creations,
	})
}

// TogglePublishInput identifies the creation to toggle.
type TogglePublishInput struct {
	ID int64 `json:"id" binding:"required"`
}

// TogglePublishCreation handles POST /api/user/toggle-publish-creation.
// Only the owner can flip the flag; everything else about a creation is
// write-once.
func (h *Handlers) TogglePublishCreation(c *gin.Context) {
	userID := c.GetInt64("userID")

	var input TogglePublishInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	publish, err := h.Ledger.TogglePublish(c.Request.Context(), input.ID, userID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Creation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update creation"})
		return
	}

	message := "Creation unpublished"
	if publish {
		message = "Creation published"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}
