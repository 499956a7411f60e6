package model

import "fmt"

// Student is a read-only student record with its exam results.
type Student struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
	Exams  []Exam  `json:"exams"`
}

// NewStudent builds a student that owns its own copy of exams.
func NewStudent(name string, rating float64, exams ...Exam) Student {
	owned := make([]Exam, len(exams))
	copy(owned, exams)
	return Student{Name: name, Rating: rating, Exams: owned}
}

// Equal reports whether two students have the same name, rating and exams in the same order.
func (s Student) Equal(other Student) bool {
	if s.Name != other.Name || s.Rating != other.Rating || len(s.Exams) != len(other.Exams) {
		return false
	}
	for i := range s.Exams {
		if !s.Exams[i].Equal(other.Exams[i]) {
			return false
		}
	}
	return true
}

// HasExam reports whether the student holds an exam equal to e.
func (s Student) HasExam(e Exam) bool {
	for _, own := range s.Exams {
		if own.Equal(e) {
			return true
		}
	}
	return false
}

// HasExamType reports whether the student sat at least one exam of type t.
func (s Student) HasExamType(t ExamType) bool {
	_, ok := s.FirstScore(t)
	return ok
}

// FirstScore returns the score of the first exam of type t.
func (s Student) FirstScore(t ExamType) (float64, bool) {
	for _, e := range s.Exams {
		if e.Type == t {
			return e.Score, true
		}
	}
	return 0, false
}

// ExamScoreSum adds up every exam score regardless of type.
func (s Student) ExamScoreSum() float64 {
	var sum float64
	for _, e := range s.Exams {
		sum += e.Score
	}
	return sum
}

// StudentReport is the per-student summary line: summed exam scores and rating.
type StudentReport struct {
	Name         string  `json:"name"`
	ExamScoreSum float64 `json:"exam_score_sum"`
	Rating       float64 `json:"rating"`
}

// String renders the report as "<name> exam sum: 0.00, rating: 0.00".
func (r StudentReport) String() string {
	return fmt.Sprintf("%s exam sum: %.2f, rating: %.2f", r.Name, r.ExamScoreSum, r.Rating)
}

// ─── Query requests ───────────────────────────────────────────────────────

// ExamTypeQuery selects a single exam type.
type ExamTypeQuery struct {
	ExamType ExamType `form:"exam_type" json:"exam_type" binding:"required,oneof=ENGLISH MATH"`
}

// PassingQuery filters students by a minimum score in one exam type.
type PassingQuery struct {
	ExamType ExamType `form:"exam_type" json:"exam_type" binding:"required,oneof=ENGLISH MATH"`
	PassRate *float64 `form:"pass_rate" json:"pass_rate" binding:"required"`
}

// ExamCountQuery filters students by how many exams they sat.
type ExamCountQuery struct {
	Count *int `form:"count" json:"count" binding:"required"`
}

// ExamRatingQuery filters students by exam type and minimum rating.
type ExamRatingQuery struct {
	ExamType  ExamType `form:"exam_type" json:"exam_type" binding:"required,oneof=ENGLISH MATH"`
	MinRating *float64 `form:"min_rating" json:"min_rating" binding:"required"`
}

// TopScoredQuery asks for the best k students in one exam type.
type TopScoredQuery struct {
	ExamType ExamType `form:"exam_type" json:"exam_type" binding:"required,oneof=ENGLISH MATH"`
	Limit    *int     `form:"limit" json:"limit" binding:"required"`
}

// AboveAverageQuery asks for students at or above the average of one exam type
// who also sat another.
type AboveAverageQuery struct {
	ExamType     ExamType `form:"exam_type" json:"exam_type" binding:"required,oneof=ENGLISH MATH"`
	RequiredExam ExamType `form:"required_exam" json:"required_exam" binding:"required,oneof=ENGLISH MATH"`
}
