package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OperatorHeader carries the operator identity, set by the auth gateway in
// front of this service. Authentication itself happens outside; the engine
// only needs to know who to attribute handovers and returns to.
const OperatorHeader = "X-Operator-ID"

// ContextOperatorKey is where the operator identity lands in the Gin context.
const ContextOperatorKey = "operatorID"

// OperatorIdentity rejects requests without an operator identity and makes
// it available to handlers.
func OperatorIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		operator := strings.TrimSpace(c.GetHeader(OperatorHeader))
		if operator == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing operator identity"})
			return
		}
		c.Set(ContextOperatorKey, operator)
		c.Next()
	}
}
