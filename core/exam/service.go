package exam

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/hocdan/guitarschool/core"
)

var (
	// errors
	ErrNotFound         = errors.New("exam not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrNotRunning       = errors.New("exam is not running")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
)

type (
	Repository interface {
		CreateExam(ctx context.Context, exam Exam) (Exam, error)
		GetExam(ctx context.Context, id string) (Exam, error)
		CreateAttempt(ctx context.Context, attempt Attempt) (Attempt, error)
		GetAttempt(ctx context.Context, examID, id string) (Attempt, error)
		// UpdateOpenAttempt writes the attempt only if it is still open in the store,
		// returning ErrAlreadySubmitted when it was closed in the meantime.
		UpdateOpenAttempt(ctx context.Context, attempt Attempt) (Attempt, error)
		QueryAttempts(ctx context.Context, examID string) ([]Attempt, error)
		// QueryExpiredAttempts returns the unsubmitted attempts of every exam ended at or before now.
		QueryExpiredAttempts(ctx context.Context, now time.Time) ([]Attempt, error)
	}

	Service interface {
		Create(ctx context.Context, ne NewExam) (Exam, error)
		GetByID(ctx context.Context, id string) (Exam, error)
		Timer(ctx context.Context, id string) (Timer, error)
		StartAttempt(ctx context.Context, examID string, na NewAttempt) (Attempt, error)
		SaveProgress(ctx context.Context, examID, attemptID string, su ScoreUpdate) (Attempt, error)
		Submit(ctx context.Context, examID, attemptID string, su ScoreUpdate) (Attempt, error)
		Leaderboard(ctx context.Context, examID string) ([]LeaderboardEntry, error)
		AutoSubmitExpired(ctx context.Context, now time.Time) (int, error)
	}

	service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

var nowFunc = time.Now // mockable

func NewService(repo Repository, validate *validator.Validate, logger core.Logger) Service {
	return &service{
		repo:     repo,
		validate: validate,
		logger:   logger,
	}
}

func (svc *service) Create(ctx context.Context, ne NewExam) (Exam, error) {
	if err := ne.Validate(svc.validate); err != nil {
		return Exam{}, err
	}
	exam := Exam{
		Title:           ne.Title,
		StartsAt:        ne.StartsAt.UTC(),
		DurationMinutes: ne.DurationMinutes,
		CreatedAt:       nowFunc().UTC(),
	}
	exam, err := svc.repo.CreateExam(ctx, exam)
	if err != nil {
		return Exam{}, errors.Wrap(err, "creating exam")
	}
	return exam, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Exam, error) {
	return svc.repo.GetExam(ctx, id)
}

func (svc *service) Timer(ctx context.Context, id string) (Timer, error) {
	exam, err := svc.repo.GetExam(ctx, id)
	if err != nil {
		return Timer{}, err
	}
	return exam.Timer(nowFunc()), nil
}

func (svc *service) StartAttempt(ctx context.Context, examID string, na NewAttempt) (Attempt, error) {
	if err := na.Validate(svc.validate); err != nil {
		return Attempt{}, err
	}
	exam, err := svc.repo.GetExam(ctx, examID)
	if err != nil {
		return Attempt{}, err
	}
	now := nowFunc().UTC()
	if exam.Status(now) != StatusRunning {
		return Attempt{}, ErrNotRunning
	}

	attempt, err := svc.repo.CreateAttempt(ctx, Attempt{
		ExamID:      exam.ID,
		StudentName: na.StudentName,
		StartedAt:   now,
	})
	if err != nil {
		return Attempt{}, errors.Wrap(err, "creating attempt")
	}
	return attempt, nil
}

// openAttempt loads an attempt that can still be written to by its student.
func (svc *service) openAttempt(ctx context.Context, examID, attemptID string, now time.Time) (Attempt, error) {
	exam, err := svc.repo.GetExam(ctx, examID)
	if err != nil {
		return Attempt{}, err
	}
	attempt, err := svc.repo.GetAttempt(ctx, examID, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if attempt.IsSubmitted() {
		return Attempt{}, ErrAlreadySubmitted
	}
	if exam.Status(now) != StatusRunning {
		return Attempt{}, ErrNotRunning
	}
	return attempt, nil
}

func (svc *service) SaveProgress(ctx context.Context, examID, attemptID string, su ScoreUpdate) (Attempt, error) {
	if err := su.Validate(svc.validate); err != nil {
		return Attempt{}, err
	}
	attempt, err := svc.openAttempt(ctx, examID, attemptID, nowFunc().UTC())
	if err != nil {
		return Attempt{}, err
	}
	attempt.Score = su.Score
	return svc.repo.UpdateOpenAttempt(ctx, attempt)
}

func (svc *service) Submit(ctx context.Context, examID, attemptID string, su ScoreUpdate) (Attempt, error) {
	if err := su.Validate(svc.validate); err != nil {
		return Attempt{}, err
	}
	now := nowFunc().UTC()
	attempt, err := svc.openAttempt(ctx, examID, attemptID, now)
	if err != nil {
		return Attempt{}, err
	}
	attempt.Score = su.Score
	attempt.SubmittedAt = now
	return svc.repo.UpdateOpenAttempt(ctx, attempt)
}

// Leaderboard ranks the submitted attempts of an exam: higher score first, then faster completion.
func (svc *service) Leaderboard(ctx context.Context, examID string) ([]LeaderboardEntry, error) {
	if _, err := svc.repo.GetExam(ctx, examID); err != nil {
		return nil, err
	}
	attempts, err := svc.repo.QueryAttempts(ctx, examID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attempts")
	}

	submitted := attempts[:0]
	for _, a := range attempts {
		if a.IsSubmitted() {
			submitted = append(submitted, a)
		}
	}
	sort.SliceStable(submitted, func(i, j int) bool {
		a, b := submitted[i], submitted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Elapsed() != b.Elapsed() {
			return a.Elapsed() < b.Elapsed()
		}
		return a.SubmittedAt.Before(b.SubmittedAt)
	})

	board := make([]LeaderboardEntry, 0, len(submitted))
	for i, a := range submitted {
		board = append(board, LeaderboardEntry{
			Rank:           i + 1,
			AttemptID:      a.ID,
			StudentName:    a.StudentName,
			Score:          a.Score,
			ElapsedSeconds: a.Elapsed().Seconds(),
			AutoSubmitted:  a.AutoSubmitted,
		})
	}
	return board, nil
}

// AutoSubmitExpired closes every open attempt whose exam has ended, keeping the last saved score.
// Attempts are stamped with their exam's end time so late sweeps do not penalize students.
func (svc *service) AutoSubmitExpired(ctx context.Context, now time.Time) (int, error) {
	attempts, err := svc.repo.QueryExpiredAttempts(ctx, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "querying expired attempts")
	}

	exams := make(map[string]Exam)
	count := 0
	for _, attempt := range attempts {
		exam, ok := exams[attempt.ExamID]
		if !ok {
			if exam, err = svc.repo.GetExam(ctx, attempt.ExamID); err != nil {
				return count, errors.Wrapf(err, "loading exam %s", attempt.ExamID)
			}
			exams[exam.ID] = exam
		}

		attempt.SubmittedAt = exam.EndsAt().UTC()
		attempt.AutoSubmitted = true
		if _, err = svc.repo.UpdateOpenAttempt(ctx, attempt); err != nil {
			if errors.Cause(err) == ErrAlreadySubmitted {
				continue // submitted by its student since the query
			}
			return count, errors.Wrapf(err, "auto-submitting attempt %s", attempt.ID)
		}
		count++
	}
	if count > 0 {
		svc.logger.Info("auto-submitted expired attempts", map[string]interface{}{"count": count})
	}
	return count, nil
}
