package schedule_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hocdan/guitarschool/core"
	"github.com/hocdan/guitarschool/core/schedule"
	logsvc "github.com/hocdan/guitarschool/services/logger"
	dummydb "github.com/hocdan/guitarschool/storage/database/dummy"
)

type recordingLogger struct {
	logsvc.NopLogger
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Warn(msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func newService(t *testing.T) (schedule.Service, *recordingLogger) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)

	logger := &recordingLogger{}
	return schedule.NewService(dummydb.NewClassRepository(db), validate, logger), logger
}

func sess(day int, start, end string) schedule.Session {
	return schedule.Session{DayOfWeek: day, StartTime: start, EndTime: end}
}

func fieldErrors(t *testing.T, err error) []core.FieldError {
	t.Helper()
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "unexpected error %T: %v", err, err)
	return vErr.Fields
}

func TestService_Create(t *testing.T) {
	now := time.Date(2024, 9, 5, 10, 0, 0, 0, time.UTC)
	defer schedule.SetNow(now)()

	svc, _ := newService(t)
	ctx := context.Background()

	class, err := svc.Create(ctx, schedule.NewClass{
		Name:     " 6A ",
		Grade:    6,
		Sessions: []schedule.Session{sess(4, "18:00", "19:30"), sess(1, "08:00", "09:30")},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, class.ID)
	assert.Equal(t, "6A", class.Name)
	assert.Equal(t, now, class.CreatedAt)
	assert.Equal(t, []schedule.Session{sess(1, "08:00", "09:30"), sess(4, "18:00", "19:30")}, class.Sessions)

	t.Run("conflict", func(t *testing.T) {
		_, err := svc.Create(ctx, schedule.NewClass{
			Name:     "7A",
			Grade:    7,
			Sessions: []schedule.Session{sess(2, "08:00", "09:30"), sess(1, "09:00", "10:30")},
		})
		assert.Equal(t, []core.FieldError{{
			Field: "sessions[1]",
			Error: "conflicts with class 6A on Monday 08:00-09:30",
		}}, fieldErrors(t, err))
	})

	t.Run("touching sessions", func(t *testing.T) {
		_, err := svc.Create(ctx, schedule.NewClass{
			Name:     "7B",
			Grade:    7,
			Sessions: []schedule.Session{sess(1, "09:30", "11:00")},
		})
		assert.NoError(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := svc.Create(ctx, schedule.NewClass{Name: "8A", Grade: 8})
		_, ok := err.(validator.ValidationErrors)
		assert.True(t, ok, "error = %v", err)
	})

	classes, err := svc.Query(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, classes, 2)
}

func TestService_Create_Concurrent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// every candidate overlaps Monday 08:30-09:00
			_, errs[i] = svc.Create(ctx, schedule.NewClass{
				Name:     fmt.Sprintf("Guitar %d", i),
				Grade:    6 + i%7,
				Sessions: []schedule.Session{sess(1, schedule.MinutesToTime(480+i), "09:30")},
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.Equal(t, "sessions[0]", fieldErrors(t, err)[0].Field)
	}
	assert.Equal(t, 1, created)

	classes, err := svc.Query(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, classes, 1)
}

func TestService_Update(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, schedule.NewClass{Name: "6A", Grade: 6, Sessions: []schedule.Session{sess(1, "08:00", "09:30")}})
	require.NoError(t, err)
	b, err := svc.Create(ctx, schedule.NewClass{Name: "6B", Grade: 6, Sessions: []schedule.Session{sess(2, "08:00", "09:30")}})
	require.NoError(t, err)

	t.Run("keeps its own slot", func(t *testing.T) {
		got, err := svc.Update(ctx, a.ID, schedule.UpdateClass{
			Name:     "6A Guitar",
			Sessions: []schedule.Session{sess(1, "08:30", "10:00")},
		})
		require.NoError(t, err)
		assert.Equal(t, "6A Guitar", got.Name)
		assert.Equal(t, 6, got.Grade)
		assert.Equal(t, a.CreatedAt, got.CreatedAt)
	})

	t.Run("conflicts with another class", func(t *testing.T) {
		_, err := svc.Update(ctx, a.ID, schedule.UpdateClass{Sessions: []schedule.Session{sess(2, "09:00", "10:00")}})
		assert.Equal(t, "conflicts with class 6B on Tuesday 08:00-09:30", fieldErrors(t, err)[0].Error)

		got, err := svc.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []schedule.Session{sess(1, "08:30", "10:00")}, got.Sessions, "failed update is not saved")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Update(ctx, "missing", schedule.UpdateClass{Name: "x"})
		assert.Equal(t, schedule.ErrNotFound, errors.Cause(err))
	})

	require.NoError(t, svc.Delete(ctx, b.ID))
	_, err = svc.Update(ctx, a.ID, schedule.UpdateClass{Sessions: []schedule.Session{sess(2, "09:00", "10:00")}})
	assert.NoError(t, err, "slot is free once 6B is deleted")
}

func TestService_CheckConflict(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, schedule.NewClass{Name: "6A", Grade: 6, Sessions: []schedule.Session{sess(1, "08:00", "09:30")}})
	require.NoError(t, err)

	conflict, err := svc.CheckConflict(ctx, sess(1, "09:00", "10:30"), "")
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, a.ID, conflict.ClassID)

	conflict, err = svc.CheckConflict(ctx, sess(1, "09:00", "10:30"), a.ID)
	require.NoError(t, err)
	assert.Nil(t, conflict)

	conflict, err = svc.CheckConflict(ctx, sess(3, "08:00", "09:30"), "")
	require.NoError(t, err)
	assert.Nil(t, conflict)

	_, err = svc.CheckConflict(ctx, sess(1, "10:00", "09:00"), "")
	assert.Error(t, err)
}

func TestService_Query(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, nc := range []schedule.NewClass{
		{Name: "7A", Grade: 7, Sessions: []schedule.Session{sess(1, "08:00", "09:30")}},
		{Name: "6A", Grade: 6, Sessions: []schedule.Session{sess(2, "08:00", "09:30")}},
		{Name: "6B", Grade: 6, Sessions: []schedule.Session{sess(1, "14:00", "15:30")}},
	} {
		_, err := svc.Create(ctx, nc)
		require.NoError(t, err)
	}

	names := func(classes []schedule.ClassSchedule) []string {
		out := make([]string, 0, len(classes))
		for _, c := range classes {
			out = append(out, c.Name)
		}
		return out
	}
	monday := 1

	tests := []struct {
		name     string
		filter   *schedule.QueryFilter
		ordering []core.DBOrdering
		want     []string
	}{
		{name: "all", want: []string{"6A", "6B", "7A"}},
		{name: "grade", filter: &schedule.QueryFilter{Grade: 6}, want: []string{"6A", "6B"}},
		{name: "search", filter: &schedule.QueryFilter{Search: "a"}, want: []string{"6A", "7A"}},
		{name: "day", filter: &schedule.QueryFilter{DayOfWeek: &monday}, want: []string{"6B", "7A"}},
		{name: "grade desc", ordering: core.ParseOrdering("-grade", schedule.OrderingFields...), want: []string{"7A", "6A", "6B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classes, err := svc.Query(ctx, tt.filter, tt.ordering)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(classes))
		})
	}
}

func TestService_Seed(t *testing.T) {
	svc, logger := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, schedule.NewClass{Name: "Guitar", Grade: 9, Sessions: []schedule.Session{sess(1, "08:00", "09:30")}})
	require.NoError(t, err)

	results, err := svc.Seed(ctx, schedule.GenerateOptions{
		Grades:          []int{6, 7, 8},
		ClassesPerGrade: 2,
		Rand:            rand.New(rand.NewSource(3)),
	})
	require.NoError(t, err)
	require.Len(t, results, 6)

	classes, err := svc.Query(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, classes, 7)

	reg := schedule.NewRegistry(classes...)
	partial := 0
	for _, res := range results {
		assert.NotEmpty(t, res.Class.ID)
		if res.Partial {
			partial++
		}
		for _, s := range res.Class.Sessions {
			assert.False(t, reg.Without(res.Class.ID).HasConflict(s), "%s %s", res.Class.Name, s)
		}
	}
	assert.Len(t, logger.warns, partial)

	sunday := []int{0}
	early := []schedule.Slot{{Start: "07:00", End: "08:00"}}

	t.Run("partial class is saved and warns", func(t *testing.T) {
		results, err := svc.Seed(ctx, schedule.GenerateOptions{
			Grades:          []int{10},
			ClassesPerGrade: 1,
			MinSessions:     2,
			MaxSessions:     2,
			Days:            sunday,
			Slots:           early,
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.True(t, results[0].Partial)
		assert.Equal(t, []schedule.Session{sess(0, "07:00", "08:00")}, results[0].Class.Sessions)
		assert.NotEmpty(t, results[0].Class.ID)
		assert.Equal(t, "class 10A partially scheduled: 1/2 sessions", logger.warns[len(logger.warns)-1])
	})

	t.Run("classes without sessions are not saved", func(t *testing.T) {
		before, err := svc.Query(ctx, nil, nil)
		require.NoError(t, err)

		results, err := svc.Seed(ctx, schedule.GenerateOptions{
			Grades:          []int{10},
			ClassesPerGrade: 1,
			Days:            sunday,
			Slots:           early,
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "10B", results[0].Class.Name, "10A is taken")
		assert.Empty(t, results[0].Class.ID)
		assert.Empty(t, results[0].Class.Sessions)
		assert.Equal(t, "class 10B not created: no free slot found", logger.warns[len(logger.warns)-1])

		after, err := svc.Query(ctx, nil, nil)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := svc.Seed(ctx, schedule.GenerateOptions{Grades: []int{13}})
		_, ok := errors.Cause(err).(*core.ArgumentError)
		assert.True(t, ok)
	})
}
