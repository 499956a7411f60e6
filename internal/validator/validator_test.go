package validator

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/stemsi/exstem-insights/internal/model"
)

func bindQuery(t *testing.T, rawQuery string, dst interface{}) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return BindQuery(c, dst)
}

func TestBindQueryValid(t *testing.T) {
	var q model.PassingQuery
	fields := bindQuery(t, "exam_type=MATH&pass_rate=190.5", &q)
	assert.Nil(t, fields)
	assert.Equal(t, model.ExamTypeMath, q.ExamType)
	if assert.NotNil(t, q.PassRate) {
		assert.Equal(t, 190.5, *q.PassRate)
	}
}

func TestBindQueryUsesFormFieldNames(t *testing.T) {
	var q model.PassingQuery
	fields := bindQuery(t, "exam_type=PHYSICS", &q)
	assert.Contains(t, fields, "exam_type")
	assert.Contains(t, fields, "pass_rate")
}

func TestBindQueryZeroIsPresent(t *testing.T) {
	var q model.ExamCountQuery
	fields := bindQuery(t, "count=0", &q)
	assert.Nil(t, fields)
	if assert.NotNil(t, q.Count) {
		assert.Equal(t, 0, *q.Count)
	}
}

func TestBindQueryMalformedNumber(t *testing.T) {
	var q model.TopScoredQuery
	fields := bindQuery(t, "exam_type=ENGLISH&limit=two", &q)
	assert.Contains(t, fields, "detail")
}
