package handlers

import (
	"context"
	"database/sql"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickai/quickai-golang/internal/ai"
	"github.com/quickai/quickai-golang/internal/entitlement"
	"github.com/quickai/quickai-golang/internal/middleware"
	"github.com/quickai/quickai-golang/internal/models"
)

// TextGenerator is the language-model capability the AI handlers call.
type TextGenerator interface {
	GenerateArticle(ctx context.Context, prompt string, length int) (string, error)
	GenerateBlogTitle(ctx context.Context, prompt string) (string, error)
	ReviewResume(ctx context.Context, resumeText string) (ai.ResumeReview, error)
}

// ImageService is the image-generation/transform capability.
type ImageService interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
	RemoveBackground(ctx context.Context, image io.Reader) (string, error)
	RemoveObject(ctx context.Context, image io.Reader, object string) (string, error)
}

// CreationStore is the ledger of creation records.
type CreationStore interface {
	Append(ctx context.Context, userID int64, prompt, content, creationType string) (models.Creation, error)
	ListByOwner(ctx context.Context, userID int64) ([]models.Creation, error)
	ListPublished(ctx context.Context) ([]models.Creation, error)
	TogglePublish(ctx context.Context, creationID, userID int64) (bool, error)
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB        *sql.DB
	AIService TextGenerator
	Media     ImageService
	Ledger    CreationStore
	Resolver  *entitlement.Resolver
}

// requireQuota runs the gate check for a paid action. On an exhausted
// free tier it writes the 403 and returns ok=false — the handler must
// not reach any external generation API or the ledger after that.
func (h *Handlers) requireQuota(c *gin.Context) (entitlement.Entitlement, bool) {
	v, exists := c.Get(middleware.EntitlementKey)
	ent, ok := v.(entitlement.Entitlement)
	if !exists || !ok {
		// Entitlement middleware did not run; treat as a server fault,
		// never as an open gate.
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return entitlement.Entitlement{}, false
	}

	if !ent.Allowed() {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Free usage limit reached"})
		return ent, false
	}
	return ent, true
}

// recordUsage increments the free-tier counter after a successful
// action. Best-effort: the generation and the creation write already
// succeeded, so a failed increment is logged, never surfaced.
func (h *Handlers) recordUsage(c *gin.Context, ent entitlement.Entitlement, userID int64) {
	if ent.Plan == entitlement.PlanPremium {
		return
	}
	if err := h.Resolver.RecordUsage(c.Request.Context(), userID); err != nil {
		log.Printf("Warning: failed to record usage for user %d: %v", userID, err)
	}
}
