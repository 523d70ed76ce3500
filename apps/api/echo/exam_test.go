package echoapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hocdan/guitarschool/core/exam"
)

func createExam(t *testing.T, app testApp, startsAt time.Time, minutes int) exam.Exam {
	t.Helper()
	e, err := app.examSvc.Create(context.Background(), exam.NewExam{Title: "Chords", StartsAt: startsAt, DurationMinutes: minutes})
	require.NoError(t, err)
	return e
}

func Test_examApi_create(t *testing.T) {
	app := setup(t)

	rec := app.do(http.MethodPost, "/v1/exams", []byte(
		`{"title": "Scales", "starts_at": "2030-01-02T09:00:00+07:00", "duration_minutes": 15}`,
	))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var e exam.Exam
	decode(t, rec, &e)
	assert.Equal(t, time.Date(2030, 1, 2, 2, 0, 0, 0, time.UTC), e.StartsAt)

	app.run(t, []httpTest{
		{name: "retrieve", path: "/v1/exams/" + e.ID, wantData: marshalObj(t, e)},
		{name: "unknown", path: "/v1/exams/nope", wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "exam not found"})},
		{
			name:     "invalid",
			method:   http.MethodPost,
			path:     "/v1/exams",
			body:     []byte(`{"title": "", "starts_at": "2030-01-02T09:00:00Z", "duration_minutes": 0}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"title": "this field is required", "duration_minutes": "this field is required"}`),
		},
	})
}

func Test_examApi_timer(t *testing.T) {
	app := setup(t)
	running := createExam(t, app, time.Now().Add(-time.Minute), 30)
	pending := createExam(t, app, time.Now().Add(time.Hour), 30)

	rec := app.do(http.MethodGet, "/v1/exams/"+running.ID+"/timer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	var timer exam.Timer
	decode(t, rec, &timer)
	assert.Equal(t, exam.StatusRunning, timer.Status)
	assert.InDelta(t, 29*60, timer.RemainingSeconds, 5)

	rec = app.do(http.MethodGet, "/v1/exams/"+pending.ID+"/timer", nil)
	decode(t, rec, &timer)
	assert.Equal(t, exam.StatusPending, timer.Status)
	assert.InDelta(t, 3600, timer.StartsInSeconds, 5)
	assert.Equal(t, int64(30*60), timer.RemainingSeconds)
}

func Test_examApi_attempts(t *testing.T) {
	app := setup(t)
	running := createExam(t, app, time.Now().Add(-time.Minute), 30)
	pending := createExam(t, app, time.Now().Add(time.Hour), 30)

	app.run(t, []httpTest{
		{
			name:     "not started",
			method:   http.MethodPost,
			path:     "/v1/exams/" + pending.ID + "/attempts",
			body:     []byte(`{"student_name": "An"}`),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "exam is not running"}),
		},
		{
			name:     "missing name",
			method:   http.MethodPost,
			path:     "/v1/exams/" + running.ID + "/attempts",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"student_name": "this field is required"}`),
		},
	})

	rec := app.do(http.MethodPost, "/v1/exams/"+running.ID+"/attempts", []byte(`{"student_name": "An"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var attempt exam.Attempt
	decode(t, rec, &attempt)

	base := "/v1/exams/" + running.ID + "/attempts/" + attempt.ID
	rec = app.do(http.MethodPut, base, []byte(`{"score": 4}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &attempt)
	assert.Equal(t, 4, attempt.Score)
	assert.False(t, attempt.IsSubmitted())

	rec = app.do(http.MethodPost, base+"/submit", []byte(`{"score": 7}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &attempt)
	assert.Equal(t, 7, attempt.Score)
	assert.True(t, attempt.IsSubmitted())

	app.run(t, []httpTest{
		{
			name:     "submit twice",
			method:   http.MethodPost,
			path:     base + "/submit",
			body:     []byte(`{"score": 10}`),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "attempt already submitted"}),
		},
		{
			name:     "unknown attempt",
			method:   http.MethodPost,
			path:     "/v1/exams/" + running.ID + "/attempts/nope/submit",
			body:     []byte(`{"score": 1}`),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "attempt not found"}),
		},
	})

	rec = app.do(http.MethodGet, "/v1/exams/"+running.ID+"/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var board []exam.LeaderboardEntry
	decode(t, rec, &board)
	require.Len(t, board, 1)
	assert.Equal(t, "An", board[0].StudentName)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, 7, board[0].Score)
}
