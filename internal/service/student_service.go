package service

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-insights/internal/model"
)

// StudentSource supplies the full, ordered student collection on demand.
// Implementations must return a materialized slice that the caller may read freely.
type StudentSource interface {
	FindAll(ctx context.Context) ([]model.Student, error)
}

// StudentService answers analytic queries over the student collection.
// It keeps no state between calls: every query reads a fresh snapshot from the source.
type StudentService struct {
	source StudentSource
	log    zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(source StudentSource, log zerolog.Logger) *StudentService {
	return &StudentService{
		source: source,
		log:    log.With().Str("component", "student_service").Logger(),
	}
}

// students fetches the snapshot. Source errors are returned as-is.
func (s *StudentService) students(ctx context.Context, query string) ([]model.Student, error) {
	students, err := s.source.FindAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("query", query).Msg("failed to load students")
		return nil, err
	}
	return students, nil
}

// filter keeps the students matching keep, in source order.
func filter(students []model.Student, keep func(model.Student) bool) []model.Student {
	out := []model.Student{}
	for _, st := range students {
		if keep(st) {
			out = append(out, st)
		}
	}
	return out
}

// FindWithMaxExam returns the first student holding the highest score of the given type,
// or nil when nobody sat that exam.
func (s *StudentService) FindWithMaxExam(ctx context.Context, examType model.ExamType) (*model.Student, error) {
	students, err := s.students(ctx, "max_exam")
	if err != nil {
		return nil, err
	}

	winner := -1
	var maxScore float64
	for i, st := range students {
		for _, e := range st.Exams {
			if e.Type != examType {
				continue
			}
			if winner < 0 || model.CompareScores(e.Score, maxScore) > 0 {
				winner = i
				maxScore = e.Score
			}
		}
	}
	if winner < 0 {
		return nil, nil
	}

	best := students[winner]
	return &best, nil
}

// FindWithEnoughExam returns students with at least one exam of the given type
// scoring passRate or more.
func (s *StudentService) FindWithEnoughExam(ctx context.Context, examType model.ExamType, passRate float64) ([]model.Student, error) {
	students, err := s.students(ctx, "enough_exam")
	if err != nil {
		return nil, err
	}

	return filter(students, func(st model.Student) bool {
		for _, e := range st.Exams {
			if e.Type == examType && e.Score >= passRate {
				return true
			}
		}
		return false
	}), nil
}

// FindWithExamCount returns students who sat exactly n exams.
func (s *StudentService) FindWithExamCount(ctx context.Context, n int) ([]model.Student, error) {
	students, err := s.students(ctx, "exam_count")
	if err != nil {
		return nil, err
	}

	return filter(students, func(st model.Student) bool {
		return len(st.Exams) == n
	}), nil
}

// FindWithExamAndRating returns students who sat the given exam type and whose
// rating is at least minRating.
func (s *StudentService) FindWithExamAndRating(ctx context.Context, examType model.ExamType, minRating float64) ([]model.Student, error) {
	students, err := s.students(ctx, "exam_and_rating")
	if err != nil {
		return nil, err
	}

	return filter(students, func(st model.Student) bool {
		return st.HasExamType(examType) && st.Rating >= minRating
	}), nil
}

// FindTopScored returns at most k students who sat the given exam type, best first.
// A student is ranked by the first exam of that type they hold; NaN ranks highest.
// Equal scores keep source order.
func (s *StudentService) FindTopScored(ctx context.Context, k int, examType model.ExamType) ([]model.Student, error) {
	students, err := s.students(ctx, "top_scored")
	if err != nil {
		return nil, err
	}

	ranked := filter(students, func(st model.Student) bool {
		return st.HasExamType(examType)
	})
	slices.SortStableFunc(ranked, func(a, b model.Student) int {
		return model.CompareScores(firstScore(b, examType), firstScore(a, examType))
	})

	if k <= 0 {
		return []model.Student{}, nil
	}
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked, nil
}

// firstScore is the ranking score of a student for one exam type; 0 when absent.
func firstScore(st model.Student, examType model.ExamType) float64 {
	score, _ := st.FirstScore(examType)
	return score
}

// FindAverageScore returns the mean of every score of the given type, or 0 when
// there are none.
func (s *StudentService) FindAverageScore(ctx context.Context, examType model.ExamType) (float64, error) {
	students, err := s.students(ctx, "average_score")
	if err != nil {
		return 0, err
	}
	return averageScore(students, examType), nil
}

func averageScore(students []model.Student, examType model.ExamType) float64 {
	var (
		sum   float64
		count int
	)
	for _, st := range students {
		for _, e := range st.Exams {
			if e.Type == examType {
				sum += e.Score
				count++
			}
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// FindAboveAverage returns students scoring at least the average of examType who
// also sat requiredType.
func (s *StudentService) FindAboveAverage(ctx context.Context, examType, requiredType model.ExamType) ([]model.Student, error) {
	avg, err := s.FindAverageScore(ctx, examType)
	if err != nil {
		return nil, err
	}

	passing, err := s.FindWithEnoughExam(ctx, examType, avg)
	if err != nil {
		return nil, err
	}

	return filter(passing, func(st model.Student) bool {
		return st.HasExamType(requiredType)
	}), nil
}

// GetAllReports returns one report per student, in source order.
func (s *StudentService) GetAllReports(ctx context.Context) ([]model.StudentReport, error) {
	students, err := s.students(ctx, "reports")
	if err != nil {
		return nil, err
	}

	reports := make([]model.StudentReport, 0, len(students))
	for _, st := range students {
		reports = append(reports, model.StudentReport{
			Name:         st.Name,
			ExamScoreSum: st.ExamScoreSum(),
			Rating:       st.Rating,
		})
	}
	return reports, nil
}
