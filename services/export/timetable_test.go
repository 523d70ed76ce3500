package exportsvc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hocdan/guitarschool/core/schedule"
)

func TestWriteTimetable(t *testing.T) {
	classes := []schedule.ClassSchedule{
		{Name: "6A", Grade: 6, Sessions: []schedule.Session{
			{DayOfWeek: 3, StartTime: "14:00", EndTime: "15:30"},
			{DayOfWeek: 1, StartTime: "08:00", EndTime: "09:30"},
		}},
		{Name: "7B", Grade: 7, Sessions: []schedule.Session{
			{DayOfWeek: 1, StartTime: "07:00", EndTime: "08:00"},
			{DayOfWeek: 0, StartTime: "18:00", EndTime: "19:30"},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTimetable(&buf, classes))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{ClassesSheet, WeekSheet}, f.GetSheetList())

	rows, err := f.GetRows(ClassesSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Class", "Grade", "Day", "Start", "End"},
		{"6A", "6", "Monday", "08:00", "09:30"},
		{"6A", "6", "Wednesday", "14:00", "15:30"},
		{"7B", "7", "Sunday", "18:00", "19:30"},
		{"7B", "7", "Monday", "07:00", "08:00"},
	}, rows)

	cols, err := f.GetCols(WeekSheet)
	require.NoError(t, err)
	require.Len(t, cols, 7)
	assert.Equal(t, []string{"Monday", "07:00-08:00 7B", "08:00-09:30 6A"}, cols[0])
	assert.Equal(t, []string{"Wednesday", "14:00-15:30 6A"}, cols[2])
	assert.Equal(t, []string{"Sunday", "18:00-19:30 7B"}, cols[6])
}

func TestWriteTimetable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTimetable(&buf, nil))
	assert.NotZero(t, buf.Len())
}
