package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-insights/internal/config"
	"github.com/stemsi/exstem-insights/internal/handler"
	"github.com/stemsi/exstem-insights/internal/model"
	"github.com/stemsi/exstem-insights/internal/response"
	"github.com/stemsi/exstem-insights/internal/service"
	"github.com/stemsi/exstem-insights/internal/validator"
)

type staticSource struct {
	students []model.Student
	err      error
}

func (s *staticSource) FindAll(context.Context) ([]model.Student, error) {
	return s.students, s.err
}

func fixture() []model.Student {
	return []model.Student{
		model.NewStudent("1", 10, model.NewExam(model.ExamTypeEnglish, 181)),
		model.NewStudent("2", 11, model.NewExam(model.ExamTypeEnglish, 182), model.NewExam(model.ExamTypeMath, 191)),
		model.NewStudent("3", 11, model.NewExam(model.ExamTypeEnglish, 183), model.NewExam(model.ExamTypeMath, 190)),
		model.NewStudent("4", 11),
		model.NewStudent("5", 12, model.NewExam(model.ExamTypeEnglish, 183), model.NewExam(model.ExamTypeMath, 195)),
	}
}

type apiEnvelope struct {
	Data     json.RawMessage     `json:"data"`
	Error    *response.ErrorBody `json:"error"`
	Metadata response.Metadata   `json:"metadata"`
}

type testAPI struct {
	engine *gin.Engine
	token  string
}

func newTestAPI(t *testing.T, src service.StudentSource) *testAPI {
	t.Helper()
	validator.Setup()

	cfg := &config.Config{
		GinMode:            gin.TestMode,
		JWTSecret:          "test-secret",
		RateLimitPerMinute: 1000,
		SnapshotTTL:        30 * time.Second,
	}
	auth := service.NewAuthService(cfg.JWTSecret, time.Hour)
	svc := service.NewStudentService(src, zerolog.Nop())
	engine := SetupRouter(auth, &Handlers{
		Analytics: handler.NewAnalyticsHandler(svc),
		System:    handler.NewSystemHandler(nil),
	}, cfg, zerolog.Nop())

	token, err := auth.GenerateToken("test")
	require.NoError(t, err)
	return &testAPI{engine: engine, token: token}
}

func (a *testAPI) get(t *testing.T, path string) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+a.token)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env apiEnvelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func studentNames(t *testing.T, raw json.RawMessage) []string {
	t.Helper()
	var data struct {
		Students []model.Student `json:"students"`
	}
	require.NoError(t, json.Unmarshal(raw, &data))
	require.NotNil(t, data.Students)
	names := make([]string, 0, len(data.Students))
	for _, st := range data.Students {
		names = append(names, st.Name)
	}
	return names
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, &staticSource{})
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyticsRequiresToken(t *testing.T) {
	api := newTestAPI(t, &staticSource{students: fixture()})
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/reports", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStudentListEndpoints(t *testing.T) {
	api := newTestAPI(t, &staticSource{students: fixture()})

	cases := []struct {
		path string
		want []string
	}{
		{"/api/v1/analytics/students/passing?exam_type=MATH&pass_rate=190", []string{"2", "3", "5"}},
		{"/api/v1/analytics/students/passing?exam_type=ENGLISH&pass_rate=190", []string{}},
		{"/api/v1/analytics/students/exam-count?count=2", []string{"2", "3", "5"}},
		{"/api/v1/analytics/students/exam-count?count=0", []string{"4"}},
		{"/api/v1/analytics/students/exam-rating?exam_type=ENGLISH&min_rating=11", []string{"2", "3", "5"}},
		{"/api/v1/analytics/students/top?exam_type=ENGLISH&limit=2", []string{"3", "5"}},
		{"/api/v1/analytics/students/top?exam_type=MATH&limit=0", []string{}},
		{"/api/v1/analytics/students/above-average?exam_type=MATH&required_exam=ENGLISH", []string{"5"}},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w, env := api.get(t, tc.path)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Nil(t, env.Error)
			assert.Equal(t, tc.want, studentNames(t, env.Data))
			assert.Equal(t, "private, max-age=30", w.Header().Get("Cache-Control"))
		})
	}
}

func TestMaxExamEndpoint(t *testing.T) {
	api := newTestAPI(t, &staticSource{students: fixture()})

	w, env := api.get(t, "/api/v1/analytics/students/max-exam?exam_type=ENGLISH")
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Student *model.Student `json:"student"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotNil(t, data.Student)
	assert.True(t, fixture()[2].Equal(*data.Student))

	none := newTestAPI(t, &staticSource{students: fixture()[:1]})
	w, env = none.get(t, "/api/v1/analytics/students/max-exam?exam_type=MATH")
	require.Equal(t, http.StatusOK, w.Code)
	data.Student = nil
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Nil(t, data.Student)
}

func TestAverageEndpoint(t *testing.T) {
	api := newTestAPI(t, &staticSource{students: fixture()})

	w, env := api.get(t, "/api/v1/analytics/exams/average?exam_type=MATH")
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		ExamType     model.ExamType `json:"exam_type"`
		AverageScore float64        `json:"average_score"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, model.ExamTypeMath, data.ExamType)
	assert.InDelta(t, 192.0, data.AverageScore, 1e-9)
}

func TestReportsEndpoint(t *testing.T) {
	api := newTestAPI(t, &staticSource{students: fixture()})

	w, env := api.get(t, "/api/v1/analytics/reports")
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Reports []model.StudentReport `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Reports, 5)
	assert.Equal(t, model.StudentReport{Name: "5", ExamScoreSum: 378, Rating: 12}, data.Reports[4])

	w, _ = api.get(t, "/api/v1/analytics/reports?format=text")
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "1 exam sum: 181.00, rating: 10.00", lines[0])
	assert.Equal(t, "4 exam sum: 0.00, rating: 11.00", lines[3])
}

func TestValidationErrors(t *testing.T) {
	api := newTestAPI(t, &staticSource{students: fixture()})

	for _, path := range []string{
		"/api/v1/analytics/students/max-exam",
		"/api/v1/analytics/students/max-exam?exam_type=PHYSICS",
		"/api/v1/analytics/students/passing?exam_type=MATH",
		"/api/v1/analytics/students/top?exam_type=MATH&limit=x",
		"/api/v1/analytics/students/exam-count",
	} {
		t.Run(path, func(t *testing.T) {
			w, env := api.get(t, path)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, response.ErrValidation, env.Error.Code)
			assert.NotEmpty(t, env.Error.Fields)
		})
	}
}

func TestSourceFailure(t *testing.T) {
	api := newTestAPI(t, &staticSource{err: errors.New("connection refused")})

	w, env := api.get(t, "/api/v1/analytics/exams/average?exam_type=MATH")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.ErrSourceUnavailable, env.Error.Code)
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t, &staticSource{})
	w, env := api.get(t, "/api/v1/analytics/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.ErrNotFound, env.Error.Code)
}

func TestSystemEndpoint(t *testing.T) {
	api := newTestAPI(t, &staticSource{})
	w, env := api.get(t, "/api/v1/analytics/system")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		GoVersion string `json:"go_version"`
		Snapshot  struct {
			Enabled bool `json:"enabled"`
		} `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.GoVersion)
	assert.False(t, data.Snapshot.Enabled)
}

func TestExamTypeIsCaseInsensitive(t *testing.T) {
	api := newTestAPI(t, &staticSource{students: fixture()})

	w, env := api.get(t, "/api/v1/analytics/students/passing?exam_type=math&pass_rate=190")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"2", "3", "5"}, studentNames(t, env.Data))

	w, env = api.get(t, "/api/v1/analytics/exams/average?exam_type=%20Math%20")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		ExamType model.ExamType `json:"exam_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, model.ExamTypeMath, data.ExamType)
}

func TestPanicsBecomeInternalErrors(t *testing.T) {
	api := newTestAPI(t, &staticSource{})
	api.engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	w, env := api.get(t, "/boom")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.ErrInternal, env.Error.Code)
}
