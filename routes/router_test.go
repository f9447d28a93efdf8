package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cppla/vitalog/config"
	"github.com/cppla/vitalog/middleware"
	"github.com/cppla/vitalog/models"
	"github.com/cppla/vitalog/services"
	"github.com/cppla/vitalog/store/storetest"
	"github.com/cppla/vitalog/utils"
)

type testServer struct {
	router   *gin.Engine
	checkins *services.CheckinService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.AppConfig{
		GinMode:            "test",
		AppVersion:         "test",
		AllowedOrigins:     []string{"http://localhost:3000"},
		RateLimitPerMinute: 1000,
	}

	jwtm := utils.NewJWTManager("test-secret", "vitalog-api", "vitalog-client", time.Hour, nil)
	blacklist := utils.NewTokenBlacklist(nil)
	cache := utils.NewJSONCache(nil, nil)

	checkins := services.NewCheckinService(storetest.NewCheckinStore(), time.UTC, nil, cache)
	deps := Dependencies{
		Config:    cfg,
		Auth:      services.NewAuthService(storetest.NewUserStore(), utils.NewBcryptHasher(bcrypt.MinCost), jwtm, blacklist),
		Checkins:  checkins,
		Analytics: services.NewAnalyticsService(checkins, cache),
		Tokens:    jwtm,
		Revoked:   blacklist,
		Metrics:   middleware.NewMetrics(),
	}
	return &testServer{router: SetupRouter(deps), checkins: checkins}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"email": email, "password": "Passw0rd"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res services.AuthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func TestCheckinLifecycle(t *testing.T) {
	s := newTestServer(t)
	today := s.checkins.Today().Format(models.DateLayout)

	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "alice@example.com", "password": "Passw0rd", "firstName": "Alice",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var auth services.AuthResult
	decode(t, w, &auth)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "alice@example.com", auth.Email)
	assert.Equal(t, "Alice", auth.FirstName)
	assert.False(t, auth.ExpiresAt.IsZero())

	w = s.do(t, http.MethodPost, "/api/checkin", auth.Token, gin.H{
		"date": today, "sleepHours": 7.5, "productivityRating": 8,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.CheckinResponse
	decode(t, w, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, today, created.Date)
	assert.Equal(t, 7.5, *created.SleepHours)
	assert.Equal(t, 8, *created.ProductivityRating)

	w = s.do(t, http.MethodGet, "/api/checkin/recent?days=7", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var recent []models.CheckinResponse
	decode(t, w, &recent)
	require.Len(t, recent, 1)
	assert.Equal(t, created.ID, recent[0].ID)

	idPath := fmt.Sprintf("/api/checkin/id/%d", created.ID)
	w = s.do(t, http.MethodGet, idPath, auth.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/checkin/%d", created.ID), auth.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, idPath, auth.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var envelope utils.ErrorResponse
	decode(t, w, &envelope)
	assert.Equal(t, http.StatusNotFound, envelope.StatusCode)
	assert.Equal(t, "check-in not found", envelope.Message)
	assert.NotEmpty(t, envelope.TraceID)
	assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), envelope.TraceID)
}

func TestUpsertAndStrictCreate(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice@example.com")
	today := s.checkins.Today().Format(models.DateLayout)

	w := s.do(t, http.MethodPost, "/api/checkin", token, gin.H{"date": today, "mood": "good"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, http.MethodPost, "/api/checkin", token, gin.H{"date": today, "mood": "great"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/checkin/create", token, gin.H{"date": today})
	assert.Equal(t, http.StatusConflict, w.Code)

	for _, path := range []string{"/api/checkin/" + today, "/api/checkin/date/" + today, "/api/checkin/date/" + today + "/latest"} {
		w = s.do(t, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		var rec models.CheckinResponse
		decode(t, w, &rec)
		assert.Equal(t, "great", *rec.Mood, path)
	}

	w = s.do(t, http.MethodGet, "/api/checkin/date/"+today+"/all", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.CheckinResponse
	decode(t, w, &all)
	assert.Len(t, all, 1)

	w = s.do(t, http.MethodGet, "/api/checkin/date/2000-01-01/all", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCheckinValidationErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice@example.com")
	tomorrow := s.checkins.Today().AddDate(0, 0, 1).Format(models.DateLayout)

	w := s.do(t, http.MethodPost, "/api/checkin", token, gin.H{"date": tomorrow, "sleepQuality": 11})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope utils.ErrorResponse
	decode(t, w, &envelope)
	assert.Equal(t, "validation failed", envelope.Message)
	assert.ElementsMatch(t, []string{"date cannot be in the future", "sleepQuality must be at most 10"}, envelope.Details)

	for _, days := range []string{"0", "91", "abc"} {
		w = s.do(t, http.MethodGet, "/api/checkin/recent?days="+days, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, days)
	}

	w = s.do(t, http.MethodGet, "/api/checkin/not-a-date", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/checkin/id/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/checkin", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckinOwnershipAcrossUsers(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")
	today := s.checkins.Today().Format(models.DateLayout)

	w := s.do(t, http.MethodPost, "/api/checkin", alice, gin.H{"date": today, "sleepHours": 8})
	require.Equal(t, http.StatusCreated, w.Code)
	var rec models.CheckinResponse
	decode(t, w, &rec)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/checkin/id/%d", rec.ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/checkin/%d", rec.ID), bob, gin.H{"sleepHours": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/checkin/%d", rec.ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Bob's own check-in for the same date is a separate record.
	w = s.do(t, http.MethodPost, "/api/checkin", bob, gin.H{"date": today})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/checkin/%d", rec.ID), alice, gin.H{"sleepHours": 6.5})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &rec)
	assert.Equal(t, 6.5, *rec.SleepHours)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice@example.com")

	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"email": "ALICE@example.com", "password": "Passw0rd"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "Alice@Example.com", "password": "Passw0rd"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/auth/exists?email=alice@example.com", "", nil)
	assert.JSONEq(t, `{"exists":true}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/auth/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	decode(t, w, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "test", health["version"])

	w = s.do(t, http.MethodPut, "/api/auth/profile", token, gin.H{"lastName": "Liddell", "onboardingCompleted": true})
	require.Equal(t, http.StatusOK, w.Code)
	var profile models.UserProfile
	decode(t, w, &profile)
	assert.Equal(t, "Liddell", profile.LastName)
	assert.True(t, profile.OnboardingCompleted)

	w = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/checkin/recent", "/api/analytics/summary", "/api/auth/me"} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice@example.com")
	today := s.checkins.Today()

	for i := 0; i < 3; i++ {
		w := s.do(t, http.MethodPost, "/api/checkin", token, gin.H{
			"date":       today.AddDate(0, 0, -i).Format(models.DateLayout),
			"sleepHours": 8, "energyMorning": 7, "energyAfternoon": 7, "energyEvening": 7,
			"productivityRating": 7, "mood": "good",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := s.do(t, http.MethodGet, "/api/analytics/summary?days=7", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Days    int `json:"days"`
		Summary struct {
			Count           int     `json:"count"`
			AvgEnergy       float64 `json:"avgEnergy"`
			ImprovementArea string  `json:"improvementArea"`
		} `json:"summary"`
	}
	decode(t, w, &summary)
	assert.Equal(t, 7, summary.Days)
	assert.Equal(t, 3, summary.Summary.Count)
	assert.Equal(t, 7.0, summary.Summary.AvgEnergy)
	assert.Equal(t, "all_good", summary.Summary.ImprovementArea)

	w = s.do(t, http.MethodGet, "/api/analytics/weekly", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/api/analytics/weekly?days=91", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/analytics/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dashboard services.Dashboard
	decode(t, w, &dashboard)
	assert.Equal(t, 3, dashboard.Summaries["last7Days"].Count)
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var envelope utils.ErrorResponse
	decode(t, rec, &envelope)
	assert.Equal(t, "req-42", envelope.TraceID)
	assert.Equal(t, "req-42", rec.Header().Get(middleware.RequestIDHeader))

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vitalog_http_requests_total")
}
