package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quickai/quickai-golang/internal/ai"
	"github.com/quickai/quickai-golang/internal/models"
)

// Size caps for uploaded files.
const (
	maxImageUploadBytes  = 10 << 20 // 10 MB
	maxResumeUploadBytes = 5 << 20  // 5 MB
)

// GenerateArticleInput defines the JSON body for article generation.
type GenerateArticleInput struct {
	Prompt string `json:"prompt" binding:"required"`
	Length int    `json:"length"`
}

// GenerateArticle handles POST /api/ai/generate-article.
func (h *Handlers) GenerateArticle(c *gin.Context) {
	userID := c.GetInt64("userID")

	// 1. --- Gate Check ---
	ent, ok := h.requireQuota(c)
	if !ok {
		return
	}

	// 2. --- Parse Input ---
	var input GenerateArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	// 3. --- External Generation Call ---
	content, err := h.AIService.GenerateArticle(c.Request.Context(), input.Prompt, input.Length)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error generating article"})
		return
	}

	// 4. --- Record the Creation ---
	if _, err := h.Ledger.Append(c.Request.Context(), userID, input.Prompt, content, models.CreationTypeArticle); err != nil {
		// The article exists but we failed to record it; the request
		// must still report the failure.
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error saving creation"})
		return
	}

	// 5. --- Usage Accounting (free tier only, best-effort) ---
	h.recordUsage(c, ent, userID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Article generated successfully",
		"content": content,
	})
}

// GenerateBlogTitleInput defines the JSON body for blog-title generation.
type GenerateBlogTitleInput struct {
	Prompt string `json:"prompt" binding:"required"`
}

// GenerateBlogTitle handles POST /api/ai/generate-blog-title.
func (h *Handlers) GenerateBlogTitle(c *gin.Context) {
	userID := c.GetInt64("userID")

	ent, ok := h.requireQuota(c)
	if !ok {
		return
	}

	var input GenerateBlogTitleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	content, err := h.AIService.GenerateBlogTitle(c.Request.Context(), input.Prompt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error generating blog title"})
		return
	}

	if _, err := h.Ledger.Append(c.Request.Context(), userID, input.Prompt, content, models.CreationTypeBlogTitle); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error saving creation"})
		return
	}

	h.recordUsage(c, ent, userID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"content": content,
	})
}

// GenerateImageInput defines the JSON body for image generation.
type GenerateImageInput struct {
	Prompt string `json:"prompt" binding:"required"`
}

// GenerateImage handles POST /api/ai/generate-image.
func (h *Handlers) GenerateImage(c *gin.Context) {
	userID := c.GetInt64("userID")

	ent, ok := h.requireQuota(c)
	if !ok {
		return
	}

	var input GenerateImageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	imageURL, err := h.Media.GenerateImage(c.Request.Context(), input.Prompt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error generating image"})
		return
	}

	if _, err := h.Ledger.Append(c.Request.Context(), userID, input.Prompt, imageURL, models.CreationTypeImage); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error saving creation"})
		return
	}

	h.recordUsage(c, ent, userID)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"imageUrl": imageURL,
	})
}

// RemoveBackground handles POST /api/ai/remove-background (multipart).
func (h *Handlers) RemoveBackground(c *gin.Context) {
	userID := c.GetInt64("userID")

	ent, ok := h.requireQuota(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No image uploaded"})
		return
	}
	if file.Size > maxImageUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Image exceeds 10 MB limit"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to read uploaded image"})
		return
	}
	defer src.Close()

	imageURL, err := h.Media.RemoveBackground(c.Request.Context(), src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error removing background"})
		return
	}

	// Non-text actions get a synthesized prompt describing the action.
	if _, err := h.Ledger.Append(c.Request.Context(), userID, "Remove Background", imageURL, models.CreationTypeImage); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error saving creation"})
		return
	}

	h.recordUsage(c, ent, userID)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"imageUrl": imageURL,
	})
}

// RemoveObject handles POST /api/ai/remove-object (multipart + object name).
func (h *Handlers) RemoveObject(c *gin.Context) {
	userID := c.GetInt64("userID")

	ent, ok := h.requireQuota(c)
	if !ok {
		return
	}

	object := strings.TrimSpace(c.PostForm("object"))
	if object == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Object name is required"})
		return
	}
	if len(strings.Fields(object)) != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Object name must be a single word"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No image uploaded"})
		return
	}
	if file.Size > maxImageUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Image exceeds 10 MB limit"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to read uploaded image"})
		return
	}
	defer src.Close()

	imageURL, err := h.Media.RemoveObject(c.Request.Context(), src, object)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error removing object"})
		return
	}

	if _, err := h.Ledger.Append(c.Request.Context(), userID, "Removed "+object+" from image", imageURL, models.CreationTypeImage); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error saving creation"})
		return
	}

	h.recordUsage(c, ent, userID)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"imageUrl": imageURL,
	})
}

// extractResumeText pulls plain text from the uploaded PDF.
// multipart.File satisfies io.ReaderAt for both memory- and disk-backed
// uploads.
func extractResumeText(f multipart.File, size int64) (string, error) {
	return ai.ExtractPDFText(f, size)
}

// ResumeReview handles POST /api/ai/resume-review (multipart PDF).
func (h *Handlers) ResumeReview(c *gin.Context) {
	userID := c.GetInt64("userID")

	ent, ok := h.requireQuota(c)
	if !ok {
		return
	}

	file, err := c.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No resume uploaded"})
		return
	}
	if file.Size > maxResumeUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Resume exceeds 5 MB limit"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to read uploaded resume"})
		return
	}
	defer src.Close()

	resumeText, err := extractResumeText(src, file.Size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Could not read text from the uploaded PDF"})
		return
	}

	review, err := h.AIService.ReviewResume(c.Request.Context(), resumeText)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error reviewing resume"})
		return
	}

	// The ledger stores content as text; serialize the structured review.
	reviewJSON, err := json.Marshal(review)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error saving creation"})
		return
	}
	if _, err := h.Ledger.Append(c.Request.Context(), userID, "Review the uploaded resume", string(reviewJSON), models.CreationTypeResume); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error saving creation"})
		return
	}

	h.recordUsage(c, ent, userID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    review,
	})
}
