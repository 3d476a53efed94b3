package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ownerIDKey = "owner_id"

// Owner resolves the acting owner from the X-Owner-ID header and stores it
// in the request context. Requests without a valid owner are rejected;
// every data access below this point is scoped to that owner.
func Owner() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Owner-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "MISSING_OWNER", "message": "X-Owner-ID header is required"},
			})
			return
		}
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_OWNER", "message": "X-Owner-ID must be a UUID"},
			})
			return
		}
		c.Set(ownerIDKey, ownerID)
		c.Next()
	}
}

// GetOwnerID returns the owner ID stored by the Owner middleware.
func GetOwnerID(c *gin.Context) (uuid.UUID, error) {
	v, ok := c.Get(ownerIDKey)
	if !ok {
		return uuid.Nil, errors.New("owner context missing")
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("owner context has wrong type")
	}
	return id, nil
}
