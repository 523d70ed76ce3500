package dummydb

import (
	"sync"

	"github.com/hocdan/guitarschool/core/exam"
	"github.com/hocdan/guitarschool/core/schedule"
)

type (
	DB struct {
		class *classTable
		exam  *examTable
	}

	classTable struct {
		sync.RWMutex
		table map[string]*schedule.ClassSchedule
	}

	examTable struct {
		sync.RWMutex
		exams    map[string]*exam.Exam
		attempts map[string]*exam.Attempt
	}
)

func Open() (*DB, error) {
	db := &DB{
		class: &classTable{table: make(map[string]*schedule.ClassSchedule)},
		exam: &examTable{
			exams:    make(map[string]*exam.Exam),
			attempts: make(map[string]*exam.Attempt),
		},
	}
	return db, nil
}
