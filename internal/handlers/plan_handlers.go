package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickai/quickai-golang/internal/entitlement"
	"github.com/quickai/quickai-golang/internal/models"
)

// GetPlans handles GET /api/plans (public pricing data).
func (h *Handlers) GetPlans(c *gin.Context) {
	rows, err := h.DB.QueryContext(c.Request.Context(), `
		SELECT id, name, description, price, duration_days, is_public, created_at, updated_at
		FROM plans WHERE is_public = TRUE ORDER BY price ASC
	`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load plans"})
		return
	}
	defer rows.Close()

	plans := []models.Plan{}
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationDays, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load plans"})
			return
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load plans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    plans,
	})
}

// GetMyPlan handles GET /api/user/plan: the caller's resolved tier,
// working usage count, and active subscription (if any) for the
// dashboard.
func (h *Handlers) GetMyPlan(c *gin.Context) {
	userID := c.GetInt64("userID")

	ent, err := h.Resolver.Resolve(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	data := gin.H{
		"plan":      ent.Plan,
		"freeUsage": ent.FreeUsage,
		"freeLimit": entitlement.FreeLimit,
	}

	var sub models.UserSubscription
	err = h.DB.QueryRowContext(c.Request.Context(), `
		SELECT us.id, us.user_id, us.plan_id, us.status, us.expires_at, us.created_at, us.updated_at, p.name
		FROM user_subscriptions us
		JOIN plans p ON p.id = us.plan_id
		WHERE us.user_id = ? AND us.status = 'active' AND us.expires_at > NOW()
		ORDER BY us.expires_at DESC
		LIMIT 1
	`, userID).Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.ExpiresAt, &sub.CreatedAt, &sub.UpdatedAt, &sub.PlanName)
	switch {
	case err == nil:
		data["subscription"] = sub
	case errors.Is(err, sql.ErrNoRows):
		// Free tier: no subscription row to report.
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
