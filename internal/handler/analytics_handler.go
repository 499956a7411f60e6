package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-insights/internal/middleware"
	"github.com/stemsi/exstem-insights/internal/model"
	"github.com/stemsi/exstem-insights/internal/response"
	"github.com/stemsi/exstem-insights/internal/service"
	"github.com/stemsi/exstem-insights/internal/validator"
)

// AnalyticsHandler exposes the student query operations over HTTP.
type AnalyticsHandler struct {
	studentService *service.StudentService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(studentService *service.StudentService) *AnalyticsHandler {
	return &AnalyticsHandler{studentService: studentService}
}

// bind parses the query string into dst, answering 400 on failure.
func bind(c *gin.Context, dst interface{}) bool {
	if fields := validator.BindQuery(c, dst); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return false
	}
	return true
}

// sourceFailed reports a failure to read the student collection.
func sourceFailed(c *gin.Context, err error) {
	log := response.Logger(c)
	ev := log.Error().Err(err).Str("path", c.FullPath())
	if claims := middleware.GetClaims(c); claims != nil {
		ev = ev.Str("subject", claims.Subject)
	}
	ev.Msg("student query failed")
	response.Fail(c, http.StatusServiceUnavailable, response.ErrSourceUnavailable)
}

// GetMaxExamStudent godoc
// GET /api/v1/analytics/students/max-exam?exam_type=ENGLISH
// Returns the first student holding the best score of the type; student is null when nobody sat it.
func (h *AnalyticsHandler) GetMaxExamStudent(c *gin.Context) {
	var q model.ExamTypeQuery
	if !bind(c, &q) {
		return
	}

	student, err := h.studentService.FindWithMaxExam(c.Request.Context(), q.ExamType)
	if err != nil {
		sourceFailed(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// ListPassingStudents godoc
// GET /api/v1/analytics/students/passing?exam_type=MATH&pass_rate=190
func (h *AnalyticsHandler) ListPassingStudents(c *gin.Context) {
	var q model.PassingQuery
	if !bind(c, &q) {
		return
	}

	students, err := h.studentService.FindWithEnoughExam(c.Request.Context(), q.ExamType, *q.PassRate)
	if err != nil {
		sourceFailed(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// ListByExamCount godoc
// GET /api/v1/analytics/students/exam-count?count=2
func (h *AnalyticsHandler) ListByExamCount(c *gin.Context) {
	var q model.ExamCountQuery
	if !bind(c, &q) {
		return
	}

	students, err := h.studentService.FindWithExamCount(c.Request.Context(), *q.Count)
	if err != nil {
		sourceFailed(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// ListByExamAndRating godoc
// GET /api/v1/analytics/students/exam-rating?exam_type=ENGLISH&min_rating=11
func (h *AnalyticsHandler) ListByExamAndRating(c *gin.Context) {
	var q model.ExamRatingQuery
	if !bind(c, &q) {
		return
	}

	students, err := h.studentService.FindWithExamAndRating(c.Request.Context(), q.ExamType, *q.MinRating)
	if err != nil {
		sourceFailed(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// ListTopScored godoc
// GET /api/v1/analytics/students/top?exam_type=ENGLISH&limit=2
// Ranks by the first exam of the type each student holds; ties keep stored order.
func (h *AnalyticsHandler) ListTopScored(c *gin.Context) {
	var q model.TopScoredQuery
	if !bind(c, &q) {
		return
	}

	students, err := h.studentService.FindTopScored(c.Request.Context(), *q.Limit, q.ExamType)
	if err != nil {
		sourceFailed(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// ListAboveAverage godoc
// GET /api/v1/analytics/students/above-average?exam_type=MATH&required_exam=ENGLISH
func (h *AnalyticsHandler) ListAboveAverage(c *gin.Context) {
	var q model.AboveAverageQuery
	if !bind(c, &q) {
		return
	}

	students, err := h.studentService.FindAboveAverage(c.Request.Context(), q.ExamType, q.RequiredExam)
	if err != nil {
		sourceFailed(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// GetAverageScore godoc
// GET /api/v1/analytics/exams/average?exam_type=MATH
// Returns 0 when nobody sat the exam.
func (h *AnalyticsHandler) GetAverageScore(c *gin.Context) {
	var q model.ExamTypeQuery
	if !bind(c, &q) {
		return
	}

	avg, err := h.studentService.FindAverageScore(c.Request.Context(), q.ExamType)
	if err != nil {
		sourceFailed(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam_type": q.ExamType, "average_score": avg})
}

// ListReports godoc
// GET /api/v1/analytics/reports[?format=text]
// Returns per-student exam score sums and ratings. format=text answers with one
// plain-text line per student instead of the JSON envelope.
func (h *AnalyticsHandler) ListReports(c *gin.Context) {
	reports, err := h.studentService.GetAllReports(c.Request.Context())
	if err != nil {
		sourceFailed(c, err)
		return
	}

	if strings.EqualFold(c.Query("format"), "text") {
		var sb strings.Builder
		for _, r := range reports {
			sb.WriteString(r.String())
			sb.WriteByte('\n')
		}
		c.String(http.StatusOK, sb.String())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reports": reports})
}
