package exportsvc

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/hocdan/guitarschool/core/schedule"
)

const (
	ClassesSheet = "Classes"
	WeekSheet    = "Week"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// weekOrder lists days Monday first, the way the school prints its timetable.
var weekOrder = []int{1, 2, 3, 4, 5, 6, 0}

// WriteTimetable writes an xlsx workbook with one row per session on the Classes sheet
// and a day by day grid on the Week sheet.
func WriteTimetable(w io.Writer, classes []schedule.ClassSchedule) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ClassesSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if err := writeClasses(f, classes); err != nil {
		return err
	}
	if _, err := f.NewSheet(WeekSheet); err != nil {
		return errors.Wrap(err, "creating sheet")
	}
	if err := writeWeek(f, classes); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeClasses(f *excelize.File, classes []schedule.ClassSchedule) error {
	if err := setRow(f, ClassesSheet, 1, "Class", "Grade", "Day", "Start", "End"); err != nil {
		return errors.Wrap(err, "writing header")
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating style")
	}
	if err = f.SetRowStyle(ClassesSheet, 1, 1, style); err != nil {
		return errors.Wrap(err, "styling header")
	}

	row := 2
	for _, class := range classes {
		for _, s := range class.SortedSessions() {
			if err = setRow(f, ClassesSheet, row, class.Name, class.Grade, time.Weekday(s.DayOfWeek).String(), s.StartTime, s.EndTime); err != nil {
				return errors.Wrapf(err, "writing class %s", class.Name)
			}
			row++
		}
	}
	return f.SetColWidth(ClassesSheet, "A", "E", 14)
}

type entry struct {
	start string
	label string
}

func writeWeek(f *excelize.File, classes []schedule.ClassSchedule) error {
	byDay := make(map[int][]entry)
	for _, class := range classes {
		for _, s := range class.Sessions {
			byDay[s.DayOfWeek] = append(byDay[s.DayOfWeek], entry{
				start: s.StartTime,
				label: fmt.Sprintf("%s-%s %s", s.StartTime, s.EndTime, class.Name),
			})
		}
	}

	for col, day := range weekOrder {
		entries := byDay[day]
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].start != entries[j].start {
				return entries[i].start < entries[j].start
			}
			return entries[i].label < entries[j].label
		})

		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err = f.SetCellValue(WeekSheet, cell, time.Weekday(day).String()); err != nil {
			return errors.Wrap(err, "writing week header")
		}
		for i, e := range entries {
			if cell, err = excelize.CoordinatesToCellName(col+1, i+2); err != nil {
				return err
			}
			if err = f.SetCellValue(WeekSheet, cell, e.label); err != nil {
				return errors.Wrap(err, "writing week grid")
			}
		}
	}
	return f.SetColWidth(WeekSheet, "A", "G", 20)
}
