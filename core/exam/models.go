package exam

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hocdan/guitarschool/core"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusEnded   Status = "ended"
)

// Exam is a timed quiz every student starts at the same moment.
type Exam struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	StartsAt        time.Time `json:"starts_at"` // UTC
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"` // UTC
}

func (e Exam) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

func (e Exam) EndsAt() time.Time {
	return e.StartsAt.Add(e.Duration())
}

func (e Exam) Status(now time.Time) Status {
	switch {
	case now.Before(e.StartsAt):
		return StatusPending
	case now.Before(e.EndsAt()):
		return StatusRunning
	default:
		return StatusEnded
	}
}

// Timer is always recomputed from the shared start time and the wall clock,
// so clients polling it after a reload or a suspended tab get the right value.
type Timer struct {
	ExamID           string    `json:"exam_id"`
	Status           Status    `json:"status"`
	StartsAt         time.Time `json:"starts_at"`
	EndsAt           time.Time `json:"ends_at"`
	ServerTime       time.Time `json:"server_time"`
	StartsInSeconds  int64     `json:"starts_in_seconds"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

func (e Exam) Timer(now time.Time) Timer {
	now = now.UTC()
	t := Timer{
		ExamID:     e.ID,
		Status:     e.Status(now),
		StartsAt:   e.StartsAt.UTC(),
		EndsAt:     e.EndsAt().UTC(),
		ServerTime: now,
	}
	switch t.Status {
	case StatusPending:
		t.StartsInSeconds = ceilSeconds(e.StartsAt.Sub(now))
		t.RemainingSeconds = int64(e.Duration() / time.Second)
	case StatusRunning:
		t.RemainingSeconds = ceilSeconds(e.EndsAt().Sub(now))
	}
	return t
}

func ceilSeconds(d time.Duration) int64 {
	secs := int64(d / time.Second)
	if d%time.Second > 0 {
		secs++
	}
	return secs
}

// Attempt is one student's run through an exam.
type Attempt struct {
	ID            string    `json:"id"`
	ExamID        string    `json:"exam_id"`
	StudentName   string    `json:"student_name"`
	Score         int       `json:"score"`
	StartedAt     time.Time `json:"started_at"`   // UTC
	SubmittedAt   time.Time `json:"submitted_at"` // UTC; zero while in progress
	AutoSubmitted bool      `json:"auto_submitted"`
}

func (a Attempt) IsSubmitted() bool {
	return !a.SubmittedAt.IsZero()
}

func (a Attempt) Elapsed() time.Duration {
	if !a.IsSubmitted() {
		return 0
	}
	return a.SubmittedAt.Sub(a.StartedAt)
}

type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	AttemptID      string  `json:"attempt_id"`
	StudentName    string  `json:"student_name"`
	Score          int     `json:"score"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	AutoSubmitted  bool    `json:"auto_submitted"`
}

// NewExam contains information needed to create a new Exam.
type NewExam struct {
	Title           string    `json:"title" validate:"required,max=200"`
	StartsAt        time.Time `json:"starts_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=1,max=600"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	return validate.Struct(ne)
}

type NewAttempt struct {
	StudentName string `json:"student_name" validate:"required,max=100"`
}

func (na *NewAttempt) Validate(validate *validator.Validate) error {
	na.StudentName = core.CleanString(na.StudentName)
	return validate.Struct(na)
}

// ScoreUpdate carries the current score of an attempt, either as progress or as the final submission.
type ScoreUpdate struct {
	Score int `json:"score" validate:"min=0"`
}

func (su ScoreUpdate) Validate(validate *validator.Validate) error {
	return validate.Struct(su)
}
