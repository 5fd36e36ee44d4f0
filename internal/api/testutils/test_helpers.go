package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/gymkeyapp/gymkey-server/internal/api"
	"github.com/gymkeyapp/gymkey-server/internal/docstore"
	"github.com/gymkeyapp/gymkey-server/internal/service"
	"github.com/gymkeyapp/gymkey-server/internal/utils"
)

// TestContext holds all dependencies for tests. The router runs over the
// in-memory document store, so the suite needs no external services.
type TestContext struct {
	Router      *gin.Engine
	Store       *docstore.MemoryStore
	Service     service.Service
	JWTSecret   []byte
	TestUserID  string
	TestUserJWT string
}

// SetupTestContext creates a new test context with initialized dependencies
func SetupTestContext(t *testing.T) *TestContext {
	jwtSecret := "test-secret-key"

	store := docstore.NewMemoryStore()
	svc := service.NewDefaultService(store, jwtSecret, utils.NewLogger())

	handler := api.NewHandler(svc)

	gin.SetMode(gin.TestMode)
	router := gin.Default()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(jwtSecret))
		c.Next()
	})

	handler.SetupRoutes(router)

	testUserID, token := createTestUser(t, store, jwtSecret)

	return &TestContext{
		Router:      router,
		Store:       store,
		Service:     svc,
		JWTSecret:   []byte(jwtSecret),
		TestUserID:  testUserID,
		TestUserJWT: token,
	}
}

// CleanupTestContext cleans up test resources
func CleanupTestContext(tc *TestContext) {
	if tc.Service != nil {
		tc.Service.Close()
	}
}

// Helper functions
func createTestUser(t *testing.T, store docstore.Store, jwtSecret string) (string, string) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("testpassword"), bcrypt.DefaultCost)

	userID := uuid.New().String()
	err := store.Set(context.Background(), "users", userID, docstore.Document{
		"email":     "testuser@example.com",
		"name":      "Test User",
		"password":  string(hashedPassword),
		"keys":      int64(0),
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	})
	assert.NoError(t, err, "Failed to create test user")

	// Generate JWT token with the provided secret key
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})

	tokenString, err := token.SignedString([]byte(jwtSecret))
	assert.NoError(t, err, "Failed to generate JWT token")

	return userID, tokenString
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
