package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writium/config"
	"writium/models"
)

func actorEchoRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", ResolveActor(), Actor(), func(c *gin.Context) {
		actor, _ := GetActor(c)
		c.JSON(http.StatusOK, actor)
	})
	return router
}

func TestActorFromHeaders(t *testing.T) {
	router := actorEchoRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("X-User-Email", "a@b.c")
	req.Header.Set("X-User-Name", "Alice")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": "user-1", "email": "a@b.c", "name": "Alice"}`, w.Body.String())
}

func TestActorFromBearerToken(t *testing.T) {
	router := actorEchoRouter()

	claims := jwt.MapClaims{
		"user_id": "user-2",
		"email":   "t@example.com",
		"name":    "Token User",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.JWTSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-2")
}

func TestActorFromGuestID(t *testing.T) {
	router := actorEchoRouter()
	guestID := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Guest-Id", guestID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), guestID)
	assert.Contains(t, w.Body.String(), models.GuestEmail)
}

func TestGuestIDMustBeUUID(t *testing.T) {
	router := actorEchoRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Guest-Id", "../../etc/passwd")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRejectsForgedToken(t *testing.T) {
	router := actorEchoRouter()

	claims := jwt.MapClaims{"user_id": "intruder"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "Not logged in"}`, w.Body.String())
}
