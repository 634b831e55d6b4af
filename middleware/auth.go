// api/middleware/auth.go

package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/model"
	"github.com/chittoorhealth/api/util"
)

// HealthClaims are the JWT claims issued by the session service: the caller's
// role, home mandal, and serialized secretariat assignments. The assignment
// string is carried opaquely here and parsed (with validation) by the access
// package.
type HealthClaims struct {
	jwt.RegisteredClaims
	Role                 string `json:"role"`
	Mandal               string `json:"mandal,omitempty"`
	AssignedSecretariats string `json:"assigned_secretariats,omitempty"`
}

// AuthMiddleware verifies the bearer token and builds the request identity.
// Unauthenticated callers get a 401 JSON body; requests never proceed with a
// partial identity.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		claims := &HealthClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			logger.Warn("Rejected invalid token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		role := model.Role(claims.Role)
		if !role.Valid() {
			logger.Warn("Rejected token with unknown role", zap.String("role", claims.Role))
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			c.Abort()
			return
		}

		c.Set(util.IdentityContextKey, model.Identity{
			UserID:               claims.Subject,
			Role:                 role,
			Mandal:               claims.Mandal,
			AssignedSecretariats: claims.AssignedSecretariats,
		})
		c.Next()
	}
}
