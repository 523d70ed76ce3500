package schedule

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/hocdan/guitarschool/core"
)

const (
	DefaultRetryBudget     = 100
	DefaultClassesPerGrade = 3
	DefaultMinSessions     = 2
	DefaultMaxSessions     = 3
)

var (
	DefaultDays  = []int{1, 2, 3, 4, 5, 6} // Monday - Saturday
	DefaultSlots = []Slot{
		{Start: "08:00", End: "09:30"},
		{Start: "09:30", End: "11:00"},
		{Start: "14:00", End: "15:30"},
		{Start: "15:30", End: "17:00"},
		{Start: "18:00", End: "19:30"},
		{Start: "19:30", End: "21:00"},
	}
)

// Slot is a time window sessions can be placed in, on any day.
type Slot struct {
	Start string
	End   string
}

type GenerateOptions struct {
	Grades          []int
	ClassesPerGrade int
	MinSessions     int
	MaxSessions     int
	RetryBudget     int // random picks per class
	Days            []int
	Slots           []Slot
	Rand            *rand.Rand
}

func (o *GenerateOptions) setDefaults() {
	if len(o.Grades) == 0 {
		for g := MinGrade; g <= MaxGrade; g++ {
			o.Grades = append(o.Grades, g)
		}
	}
	if o.ClassesPerGrade == 0 {
		o.ClassesPerGrade = DefaultClassesPerGrade
	}
	if o.MinSessions == 0 {
		o.MinSessions = DefaultMinSessions
	}
	if o.MaxSessions == 0 {
		o.MaxSessions = DefaultMaxSessions
	}
	if o.RetryBudget == 0 {
		o.RetryBudget = DefaultRetryBudget
	}
	if len(o.Days) == 0 {
		o.Days = DefaultDays
	}
	if len(o.Slots) == 0 {
		o.Slots = DefaultSlots
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
}

func (o *GenerateOptions) validate() error {
	for _, g := range o.Grades {
		if g < MinGrade || g > MaxGrade {
			return core.NewArgumentError(fmt.Sprintf("grade %d is out of range [%d, %d]", g, MinGrade, MaxGrade))
		}
	}
	switch {
	case o.ClassesPerGrade < 0 || o.ClassesPerGrade > 26:
		return core.NewArgumentError("classes per grade must be in [1, 26]")
	case o.MinSessions < 0 || o.MaxSessions < o.MinSessions:
		return core.NewArgumentError("invalid sessions range")
	case o.RetryBudget < 0:
		return core.NewArgumentError("retry budget must be positive")
	}
	for _, d := range o.Days {
		if d < 0 || d > 6 {
			return core.NewArgumentError(fmt.Sprintf("day %d is out of range [0, 6]", d))
		}
	}
	for _, s := range o.Slots {
		start, end, err := Session{StartTime: s.Start, EndTime: s.End}.Window()
		if err != nil {
			return core.NewArgumentError(err.Error())
		}
		if end <= start {
			return core.NewArgumentError(fmt.Sprintf("slot %s-%s ends before it starts", s.Start, s.End))
		}
	}
	return nil
}

// GenerateResult is a generated class and the number of sessions it was meant to get.
type GenerateResult struct {
	Class   ClassSchedule
	Target  int
	Partial bool // the retry budget ran out before Target sessions were placed
}

// Generate creates ClassesPerGrade classes for every grade, named "<grade><letters>" with the
// first letters not already taken in the registry ("6A", "6B", ... "6Z", "6AA").
// Each class gets [MinSessions, MaxSessions] sessions that conflict with nothing in the registry.
// Placement is random and best-effort: a class whose retry budget runs out keeps the sessions
// found so far. The returned registry holds the input classes plus the generated ones
// that got at least one session.
func Generate(reg Registry, opts GenerateOptions) (Registry, []GenerateResult, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return reg, nil, err
	}

	results := make([]GenerateResult, 0, len(opts.Grades)*opts.ClassesPerGrade)
	for _, grade := range opts.Grades {
		next := 0
		for i := 0; i < opts.ClassesPerGrade; i++ {
			name := className(grade, next)
			for reg.HasName(name) {
				next++
				name = className(grade, next)
			}
			next++

			target := opts.MinSessions + opts.Rand.Intn(opts.MaxSessions-opts.MinSessions+1)
			class := generateClass(reg, name, grade, target, &opts)
			if len(class.Sessions) > 0 {
				reg = reg.With(class)
			}
			results = append(results, GenerateResult{
				Class:   class,
				Target:  target,
				Partial: len(class.Sessions) < target,
			})
		}
	}
	return reg, results, nil
}

// className returns "<grade>" followed by the n-th letter sequence: A..Z, AA..AZ, BA...
func className(grade, n int) string {
	var letters []byte
	for n++; n > 0; n = (n - 1) / 26 {
		letters = append([]byte{byte('A' + (n-1)%26)}, letters...)
	}
	return fmt.Sprintf("%d%s", grade, letters)
}

func generateClass(reg Registry, name string, grade, target int, opts *GenerateOptions) ClassSchedule {
	class := ClassSchedule{Name: name, Grade: grade}
	for attempt := 0; attempt < opts.RetryBudget && len(class.Sessions) < target; attempt++ {
		day := opts.Days[opts.Rand.Intn(len(opts.Days))]
		slot := opts.Slots[opts.Rand.Intn(len(opts.Slots))]

		// one session per day per class
		if class.HasDay(day) {
			continue
		}
		candidate := Session{DayOfWeek: day, StartTime: slot.Start, EndTime: slot.End}
		if reg.HasConflict(candidate) {
			continue
		}
		class.Sessions = append(class.Sessions, candidate)
	}
	SortSessions(class.Sessions)
	return class
}
