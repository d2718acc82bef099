package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/tastemap/backend/internal/auth"
)

// These requests are all rejected before the handler touches the database.
func TestRegisterRejectsBeforeStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(nil, auth.NewTokens("test-secret", time.Hour), auth.NopSessions{})
	r := gin.New()
	r.POST("/auth/register", h.Register)

	tests := []struct {
		name string
		body gin.H
	}{
		{"password over 72 bytes", gin.H{"username": "mina", "email": "mina@example.com", "password": strings.Repeat("한", 30)}},
		{"reserved username", gin.H{"username": "deleted_user_7", "email": "mina@example.com", "password": "secret123"}},
		{"reserved username any case", gin.H{"username": " Deleted_User_7", "email": "mina@example.com", "password": "secret123"}},
		{"reserved email domain", gin.H{"username": "mina", "email": "deleted_7@Deleted.Invalid", "password": "secret123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.body)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(b))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestCheckReservedNames(t *testing.T) {
	assert.NoError(t, checkReservedNames("deleted", "mina@example.com"))
	assert.NoError(t, checkReservedNames("user_deleted_user_1", "mina@deleted.invalid.example.com"))
	assert.Error(t, checkReservedNames("DELETED_USER_", "mina@example.com"))
	assert.Error(t, checkReservedNames("mina", "x@deleted.invalid"))
}
