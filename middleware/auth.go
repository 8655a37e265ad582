package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v4"

	"writium/config"
	"writium/models"
)

const actorKey = "actor"

// ResolveActor derives the acting identity from the request, checking in
// order: X-User-Id (trusted upstream identity), a signed bearer token, then
// X-Guest-Id for anonymous sessions. It never rejects; Actor() does.
func ResolveActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, ok := actorFromHeaders(c); ok {
			c.Set(actorKey, actor)
		} else if actor, ok := actorFromToken(c); ok {
			c.Set(actorKey, actor)
		} else if actor, ok := actorFromGuestID(c); ok {
			c.Set(actorKey, actor)
		}
		c.Next()
	}
}

// Actor aborts with 401 unless ResolveActor found an identity.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(actorKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
			return
		}
		c.Next()
	}
}

// GetActor returns the resolved actor. Handlers behind Actor() can rely on
// ok being true.
func GetActor(c *gin.Context) (models.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

func actorFromHeaders(c *gin.Context) (models.Actor, bool) {
	id := strings.TrimSpace(c.GetHeader("X-User-Id"))
	if id == "" {
		return models.Actor{}, false
	}
	return models.Actor{
		ID:    id,
		Email: strings.TrimSpace(c.GetHeader("X-User-Email")),
		Name:  strings.TrimSpace(c.GetHeader("X-User-Name")),
	}, true
}

func actorFromToken(c *gin.Context) (models.Actor, bool) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		return models.Actor{}, false
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return config.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return models.Actor{}, false
	}

	id, _ := claims["user_id"].(string)
	if id == "" {
		return models.Actor{}, false
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return models.Actor{ID: id, Email: email, Name: name}, true
}

func actorFromGuestID(c *gin.Context) (models.Actor, bool) {
	id := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
	if !models.IsUUID(id) {
		return models.Actor{}, false
	}
	return models.Actor{ID: id, Email: models.GuestEmail, Name: "Guest"}, true
}
