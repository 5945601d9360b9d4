package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billgen/internal/auth"
)

const identityKey = "identity"

// Authorizer resolves the caller of a request, or nil when anonymous.
type Authorizer interface {
	Authorize(r *http.Request) *auth.Identity
}

// Identify decodes the bearer token, if any, and stores the identity on the
// context. It never rejects a request; handlers decide whether an identity
// is required.
func Identify(authorizer Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity := authorizer.Authorize(c.Request); identity != nil {
			c.Set(identityKey, identity)
		}
		c.Next()
	}
}

// Identity returns the caller stored by Identify.
func Identity(c *gin.Context) *auth.Identity {
	value, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := value.(*auth.Identity)
	return identity
}
