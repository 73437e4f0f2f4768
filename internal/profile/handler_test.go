package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flagpost/internal/logger"
	"flagpost/pkg/errors"
)

type memRepo struct {
	profiles map[string]*Profile
}

func (m *memRepo) Upsert(_ context.Context, req UpsertProfileRequest, seenAt time.Time) (*Profile, error) {
	p, ok := m.profiles[req.UserID]
	if !ok {
		p = &Profile{UserID: req.UserID, CreatedAt: seenAt}
		m.profiles[req.UserID] = p
	}
	p.UserType = req.UserType
	p.Location = req.Location
	p.AccountAge = req.AccountAge
	p.ActivityLevel = req.ActivityLevel
	p.PlanTier = req.PlanTier
	p.LastSeen = seenAt
	return p, nil
}

func (m *memRepo) Get(_ context.Context, userID string) (*Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return p, nil
}

var seen = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func setupRouter() (*gin.Engine, *memRepo) {
	gin.SetMode(gin.TestMode)
	repo := &memRepo{profiles: map[string]*Profile{}}
	h := NewHandler(repo, logger.NopLogger())
	h.now = func() time.Time { return seen }

	r := gin.New()
	h.RegisterRoutes(r)
	return r, repo
}

func TestUpsertProfile(t *testing.T) {
	r, repo := setupRouter()

	body := `{"userId":"u1","planTier":"premium","location":"US"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "premium", got.PlanTier)
	assert.True(t, got.LastSeen.Equal(seen))
	assert.Contains(t, repo.profiles, "u1")
}

func TestUpsertProfile_MissingUserID(t *testing.T) {
	r, repo := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/profile", strings.NewReader(`{"planTier":"free"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.profiles)

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "userId is required", resp.Error)
}

func TestUpsertProfile_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"truncated json", `{"userId":"u1"`},
		{"wrong type", `{"userId":42}`},
		{"not an object", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo := setupRouter()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/profile", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, repo.profiles)

			var resp errors.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "malformed request body", resp.Error)
		})
	}
}

func TestGetProfile(t *testing.T) {
	r, repo := setupRouter()
	repo.profiles["u1"] = &Profile{UserID: "u1", UserType: "business"}

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"found", "/api/v1/users/profile?userId=u1", http.StatusOK},
		{"unknown user", "/api/v1/users/profile?userId=u2", http.StatusNotFound},
		{"missing user id", "/api/v1/users/profile", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
