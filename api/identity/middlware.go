package identity

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-evolve/service/i"
	"github.com/gin-gonic/gin"
)

const (
	// ContextClaims is the key used to store token claims in the Gin context.
	ContextClaims = "tokenClaims"

	// ClaimSimulationID names the claim holding the controlled simulation.
	ClaimSimulationID = "sim_id"
)

// Authoriz rejects requests without a valid bearer token and stores the
// token claims in the context.
func Authoriz(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		// Split the "Bearer" prefix from the token.
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := ts.Decode(parts[1])
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// SimulationID returns the sim_id claim stored by Authoriz.
func SimulationID(c *gin.Context) (string, bool) {
	raw, ok := c.Get(ContextClaims)
	if !ok {
		return "", false
	}
	claims, ok := raw.(map[string]interface{})
	if !ok {
		return "", false
	}
	id, ok := claims[ClaimSimulationID].(string)
	return id, ok && id != ""
}
