package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hocdan/guitarschool/core/exam"
)

type examRepository struct {
	db *examTable
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) exam.Repository {
	return &examRepository{db: db.exam}
}

func (repo *examRepository) CreateExam(_ context.Context, e exam.Exam) (exam.Exam, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e.ID = uuid.NewString()
	repo.db.exams[e.ID] = &e
	return e, nil
}

func (repo *examRepository) GetExam(_ context.Context, id string) (exam.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.exams[id]; ok {
		return *e, nil
	}
	return exam.Exam{}, exam.ErrNotFound
}

func (repo *examRepository) CreateAttempt(_ context.Context, a exam.Attempt) (exam.Attempt, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.exams[a.ExamID]; !ok {
		return exam.Attempt{}, exam.ErrNotFound
	}
	a.ID = uuid.NewString()
	repo.db.attempts[a.ID] = &a
	return a, nil
}

func (repo *examRepository) GetAttempt(_ context.Context, examID, id string) (exam.Attempt, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.attempts[id]; ok && a.ExamID == examID {
		return *a, nil
	}
	return exam.Attempt{}, exam.ErrAttemptNotFound
}

func (repo *examRepository) UpdateOpenAttempt(_ context.Context, a exam.Attempt) (exam.Attempt, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.attempts[a.ID]
	if !ok {
		return exam.Attempt{}, exam.ErrAttemptNotFound
	}
	if stored.IsSubmitted() {
		return exam.Attempt{}, exam.ErrAlreadySubmitted
	}
	repo.db.attempts[a.ID] = &a
	return a, nil
}

func (repo *examRepository) query(keep func(a *exam.Attempt) bool) []exam.Attempt {
	attempts := make([]exam.Attempt, 0)
	for _, a := range repo.db.attempts {
		if keep(a) {
			attempts = append(attempts, *a)
		}
	}
	sort.Slice(attempts, func(i, j int) bool {
		if !attempts[i].StartedAt.Equal(attempts[j].StartedAt) {
			return attempts[i].StartedAt.Before(attempts[j].StartedAt)
		}
		return attempts[i].ID < attempts[j].ID
	})
	return attempts
}

func (repo *examRepository) QueryAttempts(_ context.Context, examID string) ([]exam.Attempt, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.query(func(a *exam.Attempt) bool { return a.ExamID == examID }), nil
}

func (repo *examRepository) QueryExpiredAttempts(_ context.Context, now time.Time) ([]exam.Attempt, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.query(func(a *exam.Attempt) bool {
		e, ok := repo.db.exams[a.ExamID]
		return ok && !a.IsSubmitted() && !e.EndsAt().After(now)
	}), nil
}
