package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickai/quickai-golang/internal/entitlement"
)

// EntitlementKey is the gin context key the resolved entitlement is
// stored under.
const EntitlementKey = "entitlement"

// EntitlementMiddleware resolves the caller's plan and working usage
// count before any paid action handler runs. Runs behind AuthMiddleware.
func EntitlementMiddleware(resolver *entitlement.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64("userID")

		ent, err := resolver.Resolve(c.Request.Context(), userID)
		if err != nil {
			// Identity store unreachable: fatal to the request, no retry.
			log.Printf("Error resolving entitlement: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			c.Abort()
			return
		}

		c.Set(EntitlementKey, ent)
		c.Next()
	}
}
