package management

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flagpost/internal/logger"
	"flagpost/pkg/middleware"
)

func setupRouter() (*gin.Engine, fixture) {
	gin.SetMode(gin.TestMode)
	f := newFixture()
	r := gin.New()
	r.Use(middleware.ActorMiddleware())
	NewHandler(f.svc, logger.NopLogger()).RegisterRoutes(r)
	return r, f
}

func do(r http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const alertBody = `{
	"title": "Maintenance",
	"body": "Back soon",
	"theme": "info",
	"isActiveFrom": "2025-01-01T00:00:00Z",
	"isActiveTo": "2025-12-31T00:00:00Z",
	"targetingEnabled": true,
	"targetSegments": [{"planTier": "premium"}]
}`

func TestAlertCRUD(t *testing.T) {
	r, f := setupRouter()

	w := do(r, http.MethodPost, "/api/v1/alerts", alertBody, "X-Actor", "alice")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "info", created.Theme)
	assert.Len(t, created.TargetSegments, 1)
	assert.Equal(t, "alice", f.events.events[0].actor)

	w = do(r, http.MethodGet, "/api/v1/alerts/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPut, "/api/v1/alerts/"+created.ID, `{"isEnabled": false}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.False(t, updated.IsEnabled)
	assert.Equal(t, "Maintenance", updated.Title)

	w = do(r, http.MethodGet, "/api/v1/alerts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = do(r, http.MethodDelete, "/api/v1/alerts/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/api/v1/alerts/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestCreateAlert_BadRequests(t *testing.T) {
	r, _ := setupRouter()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"title":`},
		{"missing window", `{"title":"t","body":"b"}`},
		{"bad theme", `{"title":"t","body":"b","theme":"neon","isActiveFrom":"2025-01-01T00:00:00Z","isActiveTo":"2025-02-01T00:00:00Z"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/v1/alerts", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
		})
	}
}

func TestFeatureEndpoints(t *testing.T) {
	r, _ := setupRouter()
	body := `{"name":"new-checkout","displayName":"New checkout","rolloutPercentage":50,
		"isActiveFrom":"2025-01-01T00:00:00Z","isActiveTo":"2025-12-31T00:00:00Z"}`

	w := do(r, http.MethodPost, "/api/v1/features", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created Feature
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 50, created.RolloutPercentage)
	assert.Equal(t, "all", created.Environment)

	w = do(r, http.MethodPost, "/api/v1/features", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPut, "/api/v1/features/"+created.ID, `{"rolloutPercentage":101}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/api/v1/features/"+created.ID, `{"environment":"production"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/features", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, "/api/v1/features/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAuditLogsEndpoint(t *testing.T) {
	r, _ := setupRouter()
	w := do(r, http.MethodPost, "/api/v1/alerts", alertBody)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodGet, "/api/v1/audit/logs?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	var logs []AuditLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	assert.Len(t, logs, 1)

	w = do(r, http.MethodGet, "/api/v1/audit/logs?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
