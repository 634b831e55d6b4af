// api/util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	health_errors "github.com/chittoorhealth/api/errors"
	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/model"
)

const IdentityContextKey = "identity"

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// IdentityFromContext returns the identity set by the auth middleware.
func IdentityFromContext(c *gin.Context) (model.Identity, error) {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		return model.Identity{}, health_errors.ErrUnauthorized
	}
	identity, ok := value.(model.Identity)
	if !ok {
		return model.Identity{}, health_errors.ErrUnauthorized
	}
	return identity, nil
}
