package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/linkfolio/linkfolio-backend/models"
	"github.com/linkfolio/linkfolio-backend/routes"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "handler-test-secret")
	viper.Set("client.origin", "http://localhost:3000")
	viper.Set("cache.profile_ttl_seconds", 60)
	viper.Set("og.refresh_hours", 24)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Link{}, &models.Click{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	router := gin.New()
	routes.RegisterRoutes(router, db, nil, zap.NewNop())
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/auth/register", "", models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-password",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func createLink(t *testing.T, router *gin.Engine, token, title, url string) models.Link {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/links", token, models.CreateLinkRequest{
		Title: title,
		URL:   url,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var link models.Link
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &link))
	return link
}

func TestAuthRequiredErrors(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/links", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Not authenticated"}`, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/links", "not-a-jwt", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid token"}`, w.Body.String())
}

func TestRegisterConflicts(t *testing.T) {
	router := newTestServer(t)
	registerUser(t, router, "alice")

	w := doJSON(t, router, http.MethodPost, "/auth/register", "", models.RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "secret-password",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginFlow(t *testing.T) {
	router := newTestServer(t)
	registerUser(t, router, "alice")

	w := doJSON(t, router, http.MethodPost, "/auth/login", "", models.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret-password",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/auth/login", "", models.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLinkCRUDOverHTTP(t *testing.T) {
	router := newTestServer(t)
	token := registerUser(t, router, "alice")

	link := createLink(t, router, token, "Portfolio", "https://example.com")
	assert.Equal(t, 0, link.Order)

	// Field patch
	w := doJSON(t, router, http.MethodPatch, "/api/links/"+link.ID.String(), token,
		map[string]interface{}{"title": "My Portfolio"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Link
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "My Portfolio", updated.Title)

	// Empty patch is a validation failure, not a silent no-op.
	w = doJSON(t, router, http.MethodPatch, "/api/links/"+link.ID.String(), token,
		map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Delete
	w = doJSON(t, router, http.MethodDelete, "/api/links/"+link.ID.String(), token, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/links", token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

// The PATCH endpoint dispatches on the linkIds key: present means reorder.
func TestReorderOverHTTP(t *testing.T) {
	router := newTestServer(t)
	token := registerUser(t, router, "alice")
	a := createLink(t, router, token, "a", "https://example.com/a")
	b := createLink(t, router, token, "b", "https://example.com/b")

	w := doJSON(t, router, http.MethodPatch, "/api/links/"+a.ID.String(), token,
		map[string]interface{}{"linkIds": []string{b.ID.String(), a.ID.String()}}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/links", token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var links []models.Link
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &links))
	require.Len(t, links, 2)
	assert.Equal(t, "b", links[0].Title)
	assert.Equal(t, "a", links[1].Title)
}

func TestCrossUserMutationIsNotFound(t *testing.T) {
	router := newTestServer(t)
	aliceToken := registerUser(t, router, "alice")
	bobToken := registerUser(t, router, "bob")
	bobs := createLink(t, router, bobToken, "bobs", "https://example.com/bobs")

	w := doJSON(t, router, http.MethodPatch, "/api/links/"+bobs.ID.String(), aliceToken,
		map[string]interface{}{"title": "hijacked"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/links/"+bobs.ID.String(), aliceToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicProfileAndClickPipeline(t *testing.T) {
	router := newTestServer(t)
	token := registerUser(t, router, "alice")
	link := createLink(t, router, token, "Portfolio", "https://example.com")

	// Public read
	w := doJSON(t, router, http.MethodGet, "/api/profiles/alice", "", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile models.PublicProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "alice", profile.User.Username)
	require.Len(t, profile.Links, 1)

	// Unknown profile: 404, no partial data
	w = doJSON(t, router, http.MethodGet, "/api/profiles/ghost", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Click ingestion with request metadata
	mobileUA := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	for i := 0; i < 2; i++ {
		w = doJSON(t, router, http.MethodPost, "/api/profiles/alice/clicks", "",
			models.RecordClickRequest{LinkID: link.ID.String()},
			map[string]string{"User-Agent": mobileUA, "X-Forwarded-For": "203.0.113.9, 10.0.0.1"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodPost, "/api/profiles/alice/clicks", "",
		models.RecordClickRequest{LinkID: link.ID.String()}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Cross-profile click id: not found
	w = doJSON(t, router, http.MethodPost, "/api/profiles/ghost/clicks", "",
		models.RecordClickRequest{LinkID: link.ID.String()}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Aggregated analytics for the owner
	w = doJSON(t, router, http.MethodGet, "/api/analytics?days=30", token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var analytics models.UserAnalyticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analytics))
	assert.Equal(t, int64(3), analytics.TotalClicks)
	assert.Contains(t, analytics.DeviceStats, models.DeviceCount{Device: "mobile", Count: 2})
	assert.Contains(t, analytics.DeviceStats, models.DeviceCount{Device: "desktop", Count: 1})

	// Per-link analytics adds referrers, hours and CTR
	w = doJSON(t, router, http.MethodGet, "/api/links/"+link.ID.String()+"/analytics", token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var linkAnalytics models.LinkAnalyticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &linkAnalytics))
	assert.Equal(t, int64(3), linkAnalytics.TotalClicks)
	assert.Contains(t, linkAnalytics.ReferrerStats, models.ReferrerCount{Referrer: "Direct", Count: 3})
}

func TestUpdateDesignOverHTTP(t *testing.T) {
	router := newTestServer(t)
	token := registerUser(t, router, "alice")

	w := doJSON(t, router, http.MethodPatch, "/api/me/design", token,
		map[string]interface{}{"theme": "midnight", "buttonStyle": "pill"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "midnight", user.Theme)
	assert.Equal(t, "pill", user.ButtonStyle)
}
