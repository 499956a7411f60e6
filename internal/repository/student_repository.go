package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-insights/internal/model"
)

// StudentRepository handles student and exam result data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// FindAll loads every student with its exams, students in insertion order and
// exams in their recorded position.
func (r *StudentRepository) FindAll(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.name, s.rating, e.exam_type, e.score
		 FROM students s
		 LEFT JOIN exam_results e ON e.student_id = s.id
		 ORDER BY s.id ASC, e.position ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	students := []model.Student{}
	lastID := -1
	for rows.Next() {
		var (
			id       int
			name     string
			rating   float64
			examType *string
			score    *float64
		)
		if err := rows.Scan(&id, &name, &rating, &examType, &score); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}

		if id != lastID {
			students = append(students, model.Student{Name: name, Rating: rating, Exams: []model.Exam{}})
			lastID = id
		}
		if examType != nil && score != nil {
			cur := &students[len(students)-1]
			cur.Exams = append(cur.Exams, model.NewExam(model.ExamType(*examType), *score))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

// Create inserts a student and its exams in one transaction and returns the new ID.
func (r *StudentRepository) Create(ctx context.Context, s model.Student) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int
	if err := tx.QueryRow(ctx,
		`INSERT INTO students (name, rating) VALUES ($1, $2) RETURNING id`,
		s.Name, s.Rating,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert student: %w", err)
	}

	if len(s.Exams) > 0 {
		batch := &pgx.Batch{}
		for i, e := range s.Exams {
			batch.Queue(
				`INSERT INTO exam_results (student_id, position, exam_type, score) VALUES ($1, $2, $3, $4)`,
				id, i, string(e.Type), e.Score,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("insert exam results: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Count returns the number of stored students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// DeleteAll removes every student; exam results cascade.
func (r *StudentRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `TRUNCATE students RESTART IDENTITY CASCADE`)
	return err
}
