package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"startup_academy_backend/internal/config"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/testutil"
	"startup_academy_backend/internal/util"
	"startup_academy_backend/pkg/llm"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
	token  string
	user   *model.User
}

// newTestApp 与 NewApp 相同的装配，数据库换成 sqlite 内存库，Redis 关闭，AI 离线
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:     config.ServerConfig{Mode: gin.TestMode},
		JWT:        config.JWTConfig{Secret: testutil.JWTSecret},
		Storage:    config.StorageConfig{Type: util.StorageLocal, PublicURL: "http://localhost:8080"},
		Evaluation: config.EvaluationConfig{Workers: 2, QueueSize: 10},
		RateLimit:  config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
	}
	db := testutil.NewDB(t)

	a := &App{Config: cfg, DB: db, AI: llm.NewHolder(nil)}
	a.current.Store(cfg)

	repos := a.initRepositories(db)
	services := a.initServices(repos, cfg, db, nil)
	a.services = services
	controllers := a.initControllers(services, db)

	router := gin.New()
	a.setupMiddlewares(router, cfg)
	a.registerRoutes(router, controllers, repos)

	require.NoError(t, services.evaluator.Start())
	t.Cleanup(services.evaluator.Stop)

	user := testutil.CreateUser(t, db, "founder@example.com")
	return &testApp{router: router, db: db, user: user, token: testutil.Token(t, user)}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) request(t *testing.T, method, path string, body any, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(util.LocalDateHeader, "2026-03-10")
	if auth {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)

	w := a.request(t, http.MethodGet, "/health", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	decode(t, w, &data)
	assert.Equal(t, "ok", data.Status)
	assert.Equal(t, map[string]string{"database": "up", "redis": "disabled", "ai": "offline"}, data.Components)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)

	for _, path := range []string{"/api/me/stats", "/api/me/dashboard", "/api/exercises/x"} {
		w := a.request(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestCourseFlow(t *testing.T) {
	a := newTestApp(t)
	testutil.CreateCourse(t, a.db, "validate-your-idea", 2, "SC1")

	w := a.request(t, http.MethodGet, "/api/courses", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var courses []model.Course
	decode(t, w, &courses)
	require.Len(t, courses, 1)

	w = a.request(t, http.MethodGet, "/api/courses?stage=bogus", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.request(t, http.MethodGet, "/api/courses/nope", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.request(t, http.MethodGet, "/api/courses/validate-your-idea/progress", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.request(t, http.MethodPost, "/api/courses/validate-your-idea/enroll", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var detail model.CourseDetail
	w = a.request(t, http.MethodGet, "/api/courses/validate-your-idea", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &detail)
	assert.Len(t, detail.Lessons, 2)
	require.NotNil(t, detail.Progress)

	w = a.request(t, http.MethodGet, "/api/courses/validate-your-idea/lessons/1", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.request(t, http.MethodGet, "/api/courses/validate-your-idea/lessons/zero", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result model.CompletionResult
	w = a.request(t, http.MethodPost, "/api/courses/validate-your-idea/lessons/1/complete", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &result)
	assert.Equal(t, 50, result.CompletionPercentage)
	assert.Equal(t, 5, result.PointsAwarded)

	var stats model.UserStats
	w = a.request(t, http.MethodGet, "/api/me/stats", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &stats)
	assert.Equal(t, 5, stats.TotalPoints)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, "2026-03-10", stats.LastActivityDate)

	var achievements []model.UserAchievement
	w = a.request(t, http.MethodGet, "/api/me/achievements", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &achievements)
	require.Len(t, achievements, 1)
	assert.Equal(t, "first-lesson", achievements[0].AchievementID)

	var dashboard model.Dashboard
	w = a.request(t, http.MethodGet, "/api/me/dashboard", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &dashboard)
	assert.Len(t, dashboard.Courses, 1)
}

func TestExerciseFlow(t *testing.T) {
	a := newTestApp(t)
	_, lessons := testutil.CreateCourse(t, a.db, "discovery", 1, "SC3")
	instance := testutil.CreateExercise(t, a.db, lessons[0].ID)
	base := "/api/exercises/" + instance.ID

	w := a.request(t, http.MethodPut, base+"/draft", gin.H{
		"ops": []gin.H{{"type": "set", "field": "customer", "value": "bootstrapped founders"}},
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// pains 为空，校验失败
	w = a.request(t, http.MethodPost, base+"/submit", nil, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var fields []struct {
		FieldID string `json:"fieldId"`
	}
	env := decode(t, w, &fields)
	assert.Equal(t, "Please complete all required fields", env.Message)
	require.Len(t, fields, 1)
	assert.Equal(t, "pains", fields[0].FieldID)

	w = a.request(t, http.MethodPost, base+"/submit", gin.H{
		"responseData": gin.H{"customer": "bootstrapped founders", "pains": []string{"no time"}},
	}, true)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var submission model.Submission
	decode(t, w, &submission)

	w = a.request(t, http.MethodPost, base+"/submit", gin.H{
		"responseData": gin.H{"customer": "x", "pains": []string{"y"}},
	}, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	// 后台评估完成后练习页带评估结果
	require.Eventually(t, func() bool {
		w := a.request(t, http.MethodGet, base, nil, true)
		if w.Code != http.StatusOK {
			return false
		}
		var page struct {
			Evaluation *model.Evaluation `json:"evaluation"`
			Form       struct {
				ReadOnly bool `json:"readOnly"`
			} `json:"form"`
		}
		var env envelope
		if json.Unmarshal(w.Body.Bytes(), &env) != nil || json.Unmarshal(env.Data, &page) != nil {
			return false
		}
		return page.Form.ReadOnly && page.Evaluation != nil && page.Evaluation.OverallScore >= 70
	}, 5*time.Second, 20*time.Millisecond)

	var stats model.UserStats
	decode(t, a.request(t, http.MethodGet, "/api/me/stats", nil, true), &stats)
	assert.Equal(t, 1, stats.ExercisesCompleted)
	assert.Contains(t, stats.CompetencyScores, "SC3")
}

func TestFunctionRoutes(t *testing.T) {
	a := newTestApp(t)
	_, lessons := testutil.CreateCourse(t, a.db, "functions", 1)
	instance := testutil.CreateExercise(t, a.db, lessons[0].ID)

	var coach map[string]any
	w := a.request(t, http.MethodPost, "/api/functions/ai-coach-chat", gin.H{
		"exerciseInstanceId": instance.ID,
		"userMessage":        "Where do I start?",
	}, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &coach))
	assert.Equal(t, true, coach["success"])
	assert.NotEmpty(t, coach["message"])
	assert.NotEmpty(t, coach["probeQuestions"])

	w = a.request(t, http.MethodPost, "/api/functions/ai-coach-chat", gin.H{"exerciseInstanceId": "missing"}, true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"exercise instance not found"}`, w.Body.String())

	w = a.request(t, http.MethodPost, "/api/functions/social-listening", gin.H{"topic": "", "platforms": []string{}}, true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Topic and platforms are required"}`, w.Body.String())

	var social struct {
		Success  bool                 `json:"success"`
		Analysis model.MarketAnalysis `json:"analysis"`
	}
	w = a.request(t, http.MethodPost, "/api/functions/social-listening", gin.H{"topic": "meal kits", "platforms": []string{"reddit"}}, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &social))
	assert.True(t, social.Success)
	assert.NotEmpty(t, social.Analysis.TopPainPoints)

	w = a.request(t, http.MethodPost, "/api/functions/evaluate-exercise", gin.H{"submissionId": "missing"}, true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"submission not found"}`, w.Body.String())
}

func TestAchievementCatalogIsPublic(t *testing.T) {
	a := newTestApp(t)

	var catalog []model.AchievementDefinition
	w := a.request(t, http.MethodGet, "/api/achievements/catalog", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &catalog)
	assert.Len(t, catalog, 11)
	assert.Equal(t, "first-lesson", catalog[0].ID)
}
