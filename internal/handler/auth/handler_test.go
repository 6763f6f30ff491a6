package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository/memory"
	authService "github.com/healthbook/booking-api/internal/service/auth"
	"github.com/healthbook/booking-api/pkg/auth"
	"github.com/healthbook/booking-api/pkg/logger"
)

type noopEmail struct{}

func (noopEmail) SendPasswordReset(ctx context.Context, to, token string) error { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *memory.AccountRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	accounts := memory.NewAccountRepository()
	svc := authService.NewService(
		accounts,
		memory.NewTokenRepository(),
		auth.NewJWTService("test-secret", auth.TokenExpiry),
		noopEmail{},
		logger.NewLogger(nil),
	)

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return engine, accounts
}

func seedAccount(t *testing.T, accounts *memory.AccountRepository, email, password, role string, verified bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, accounts.Create(context.Background(), &model.Account{
		Email:        email,
		Name:         "Test",
		PasswordHash: string(hash),
		Role:         role,
		IsVerified:   verified,
	}))
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestLoginEndpoint(t *testing.T) {
	engine, accounts := newTestRouter(t)
	seedAccount(t, accounts, "user@example.com", "secret123", model.RoleUser, true)

	w := postJSON(t, engine, "/api/v1/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "secret123",
		"role":     "user",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Token   string         `json:"token"`
			Account *model.Account `json:"account"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.Data.Token)
	assert.Equal(t, "user@example.com", resp.Data.Account.Email)
}

func TestLoginEndpointStatusCodes(t *testing.T) {
	engine, accounts := newTestRouter(t)
	seedAccount(t, accounts, "user@example.com", "secret123", model.RoleUser, true)
	seedAccount(t, accounts, "pending@example.com", "secret123", model.RoleDoctor, false)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"wrong password", map[string]string{"email": "user@example.com", "password": "nope"}, http.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "ghost@example.com", "password": "secret123"}, http.StatusUnauthorized},
		{"wrong portal", map[string]string{"email": "user@example.com", "password": "secret123", "role": "doctor"}, http.StatusForbidden},
		{"pending doctor", map[string]string{"email": "pending@example.com", "password": "secret123", "role": "doctor"}, http.StatusForbidden},
		{"missing email", map[string]string{"password": "secret123"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, engine, "/api/v1/auth/login", tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRegisterEndpoint(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := postJSON(t, engine, "/api/v1/auth/register", map[string]interface{}{
		"name":     "Pat",
		"email":    "pat@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Second registration with the same email conflicts.
	w = postJSON(t, engine, "/api/v1/auth/register", map[string]interface{}{
		"name":     "Pat Again",
		"email":    "pat@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterEndpointRejectsAdmin(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := postJSON(t, engine, "/api/v1/auth/register", map[string]interface{}{
		"name":     "Mallory",
		"email":    "mallory@example.com",
		"password": "secret123",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterEndpointNeverLeaksPasswordHash(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := postJSON(t, engine, "/api/v1/auth/register", map[string]interface{}{
		"name":     "Pat",
		"email":    "pat@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}
