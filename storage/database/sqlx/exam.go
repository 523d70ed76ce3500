package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/hocdan/guitarschool/core/exam"
)

const (
	examColumns    = "id, title, starts_at, duration_minutes, created_at"
	attemptColumns = "id, exam_id, student_name, score, started_at, submitted_at, auto_submitted"
)

type examRow struct {
	ID              string    `db:"id"`
	Title           string    `db:"title"`
	StartsAt        time.Time `db:"starts_at"`
	DurationMinutes int       `db:"duration_minutes"`
	CreatedAt       time.Time `db:"created_at"`
}

type attemptRow struct {
	ID            string    `db:"id"`
	ExamID        string    `db:"exam_id"`
	StudentName   string    `db:"student_name"`
	Score         int       `db:"score"`
	StartedAt     time.Time `db:"started_at"`
	SubmittedAt   null.Time `db:"submitted_at"`
	AutoSubmitted bool      `db:"auto_submitted"`
}

func (row examRow) exam() exam.Exam {
	return exam.Exam{
		ID:              row.ID,
		Title:           row.Title,
		StartsAt:        row.StartsAt.UTC(),
		DurationMinutes: row.DurationMinutes,
		CreatedAt:       row.CreatedAt.UTC(),
	}
}

func newAttemptRow(a exam.Attempt) attemptRow {
	return attemptRow{
		ID:            a.ID,
		ExamID:        a.ExamID,
		StudentName:   a.StudentName,
		Score:         a.Score,
		StartedAt:     a.StartedAt.UTC(),
		SubmittedAt:   null.NewTime(a.SubmittedAt.UTC(), !a.SubmittedAt.IsZero()),
		AutoSubmitted: a.AutoSubmitted,
	}
}

func (row attemptRow) attempt() exam.Attempt {
	a := exam.Attempt{
		ID:            row.ID,
		ExamID:        row.ExamID,
		StudentName:   row.StudentName,
		Score:         row.Score,
		StartedAt:     row.StartedAt.UTC(),
		AutoSubmitted: row.AutoSubmitted,
	}
	if row.SubmittedAt.Valid {
		a.SubmittedAt = row.SubmittedAt.Time.UTC()
	}
	return a
}

func attempts(rows []attemptRow) []exam.Attempt {
	out := make([]exam.Attempt, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.attempt())
	}
	return out
}

type examRepository struct {
	exec sqlx.ExtContext
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(exec sqlx.ExtContext) exam.Repository {
	return &examRepository{exec: exec}
}

// trapNoRowsErr maps psql "no rows" err to notFound
func (repo examRepository) trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return wrapErr(err, msg)
}

func (repo examRepository) CreateExam(ctx context.Context, e exam.Exam) (exam.Exam, error) {
	row := examRow{
		ID:              uuid.NewString(),
		Title:           e.Title,
		StartsAt:        e.StartsAt.UTC(),
		DurationMinutes: e.DurationMinutes,
		CreatedAt:       e.CreatedAt.UTC(),
	}
	q := `INSERT INTO exams (` + examColumns + `)
		VALUES (:id, :title, :starts_at, :duration_minutes, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.exec, q, row); err != nil {
		return exam.Exam{}, wrapErr(err, "inserting exam")
	}
	return row.exam(), nil
}

func (repo examRepository) GetExam(ctx context.Context, id string) (exam.Exam, error) {
	if _, err := uuid.Parse(id); err != nil {
		return exam.Exam{}, exam.ErrNotFound
	}
	var row examRow
	q := "SELECT " + examColumns + " FROM exams WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id); err != nil {
		return exam.Exam{}, repo.trapNoRowsErr(err, exam.ErrNotFound, "selecting exam")
	}
	return row.exam(), nil
}

func (repo examRepository) CreateAttempt(ctx context.Context, a exam.Attempt) (exam.Attempt, error) {
	a.ID = uuid.NewString()
	row := newAttemptRow(a)
	q := `INSERT INTO exam_attempts (` + attemptColumns + `)
		VALUES (:id, :exam_id, :student_name, :score, :started_at, :submitted_at, :auto_submitted)`
	if _, err := sqlx.NamedExecContext(ctx, repo.exec, q, row); err != nil {
		return exam.Attempt{}, wrapErr(err, "inserting attempt")
	}
	return row.attempt(), nil
}

func (repo examRepository) GetAttempt(ctx context.Context, examID, id string) (exam.Attempt, error) {
	if _, err := uuid.Parse(id); err != nil {
		return exam.Attempt{}, exam.ErrAttemptNotFound
	}
	var row attemptRow
	q := "SELECT " + attemptColumns + " FROM exam_attempts WHERE id = $1 AND exam_id = $2"
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id, examID); err != nil {
		return exam.Attempt{}, repo.trapNoRowsErr(err, exam.ErrAttemptNotFound, "selecting attempt")
	}
	return row.attempt(), nil
}

func (repo examRepository) UpdateOpenAttempt(ctx context.Context, a exam.Attempt) (exam.Attempt, error) {
	row := newAttemptRow(a)
	q := `UPDATE exam_attempts SET score = $2, submitted_at = $3, auto_submitted = $4
		WHERE id = $1 AND submitted_at IS NULL RETURNING ` + attemptColumns
	var updated attemptRow
	err := sqlx.GetContext(ctx, repo.exec, &updated, q, row.ID, row.Score, row.SubmittedAt, row.AutoSubmitted)
	if err == nil {
		return updated.attempt(), nil
	}
	if errors.Cause(err) != sql.ErrNoRows {
		return exam.Attempt{}, wrapErr(err, "updating attempt")
	}

	// nothing updated: closed in the meantime, or gone
	var exists bool
	q = "SELECT EXISTS (SELECT 1 FROM exam_attempts WHERE id = $1)"
	if err = sqlx.GetContext(ctx, repo.exec, &exists, q, row.ID); err != nil {
		return exam.Attempt{}, wrapErr(err, "selecting attempt")
	}
	if exists {
		return exam.Attempt{}, exam.ErrAlreadySubmitted
	}
	return exam.Attempt{}, exam.ErrAttemptNotFound
}

func (repo examRepository) QueryAttempts(ctx context.Context, examID string) ([]exam.Attempt, error) {
	var rows []attemptRow
	q := "SELECT " + attemptColumns + " FROM exam_attempts WHERE exam_id = $1 ORDER BY started_at, id"
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, examID); err != nil {
		return nil, wrapErr(err, "selecting attempts")
	}
	return attempts(rows), nil
}

func (repo examRepository) QueryExpiredAttempts(ctx context.Context, now time.Time) ([]exam.Attempt, error) {
	var rows []attemptRow
	q := `SELECT a.id, a.exam_id, a.student_name, a.score, a.started_at, a.submitted_at, a.auto_submitted
		FROM exam_attempts a JOIN exams e ON e.id = a.exam_id
		WHERE a.submitted_at IS NULL AND e.starts_at + make_interval(mins => e.duration_minutes) <= $1
		ORDER BY a.started_at, a.id`
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, now.UTC()); err != nil {
		return nil, wrapErr(err, "selecting expired attempts")
	}
	return attempts(rows), nil
}
