package model

import (
	"cmp"
	"errors"
	"math"
	"strings"
)

// ErrInvalidExamType is returned when an exam type name is not recognised.
var ErrInvalidExamType = errors.New("invalid exam type")

// ExamType enumerates the subjects an exam result can belong to.
type ExamType string

const (
	ExamTypeEnglish ExamType = "ENGLISH"
	ExamTypeMath    ExamType = "MATH"
)

// ExamTypes lists every known exam type in declaration order.
var ExamTypes = []ExamType{ExamTypeEnglish, ExamTypeMath}

// IsValid reports whether t is one of the known exam types.
func (t ExamType) IsValid() bool {
	switch t {
	case ExamTypeEnglish, ExamTypeMath:
		return true
	default:
		return false
	}
}

// ParseExamType converts a case-insensitive name into an ExamType.
func ParseExamType(raw string) (ExamType, error) {
	t := ExamType(strings.ToUpper(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", ErrInvalidExamType
	}
	return t, nil
}

// CompareScores orders two scores like cmp.Compare, except that NaN sorts
// above every other value and equals itself.
func CompareScores(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}
	return cmp.Compare(a, b)
}

// Exam is a single scored exam result owned by a student.
// Two exams are equal when both type and score are equal.
type Exam struct {
	Type  ExamType `json:"type"`
	Score float64  `json:"score"`
}

// NewExam builds an exam result.
func NewExam(t ExamType, score float64) Exam {
	return Exam{Type: t, Score: score}
}

// Equal reports whether both exams have the same type and score. NaN scores
// are equal to each other.
func (e Exam) Equal(other Exam) bool {
	return e.Type == other.Type && CompareScores(e.Score, other.Score) == 0
}

// UnmarshalParam lets gin bind exam types from query strings case-insensitively.
// Unknown names are kept upper-cased so validation can reject them.
func (t *ExamType) UnmarshalParam(param string) error {
	*t = ExamType(strings.ToUpper(strings.TrimSpace(param)))
	return nil
}
