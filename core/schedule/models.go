package schedule

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hocdan/guitarschool/core"
)

const (
	MinGrade = 6
	MaxGrade = 12
)

// OrderingFields are the fields classes can be ordered by.
var OrderingFields = []string{"name", "grade", "created_at", "updated_at"}

// Session is one weekly recurring meeting slot of a class.
type Session struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"` // 0 = Sunday ... 6 = Saturday
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`

	dayMissing bool // decoded without a day_of_week; 0 would silently mean Sunday
}

// UnmarshalJSON keeps track of a missing or null day_of_week so validation can reject it.
func (s *Session) UnmarshalJSON(data []byte) error {
	var wire struct {
		DayOfWeek *int   `json:"day_of_week"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*s = Session{StartTime: wire.StartTime, EndTime: wire.EndTime}
	if wire.DayOfWeek == nil {
		s.dayMissing = true
	} else {
		s.DayOfWeek = *wire.DayOfWeek
	}
	return nil
}

// Window returns the session as a half-open [start, end) range of minutes since midnight.
func (s Session) Window() (start, end int, err error) {
	if start, err = TimeToMinutes(s.StartTime); err != nil {
		return 0, 0, err
	}
	if end, err = TimeToMinutes(s.EndTime); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func (s Session) String() string {
	return fmt.Sprintf("%s %s-%s", time.Weekday(s.DayOfWeek), s.StartTime, s.EndTime)
}

// Validate checks the session on its own: day, time formats and end after start.
// It does not look for conflicts with other classes.
func (s Session) Validate(validate *validator.Validate) error {
	return ValidateSession(validate, s)
}

// ClassSchedule is a class and its weekly meeting pattern.
type ClassSchedule struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Grade     int       `json:"grade"`
	Sessions  []Session `json:"sessions"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (c ClassSchedule) HasDay(day int) bool {
	for _, s := range c.Sessions {
		if s.DayOfWeek == day {
			return true
		}
	}
	return false
}

// SortedSessions returns a copy of the sessions ordered by day, then start time.
func (c ClassSchedule) SortedSessions() []Session {
	sessions := make([]Session, len(c.Sessions))
	copy(sessions, c.Sessions)
	SortSessions(sessions)
	return sessions
}

func SortSessions(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].DayOfWeek != sessions[j].DayOfWeek {
			return sessions[i].DayOfWeek < sessions[j].DayOfWeek
		}
		return sessions[i].StartTime < sessions[j].StartTime
	})
}

// NewClass contains information needed to create a new ClassSchedule.
type NewClass struct {
	Name     string    `json:"name" validate:"required,max=100"`
	Grade    int       `json:"grade" validate:"required,min=6,max=12"`
	Sessions []Session `json:"sessions" validate:"required,min=1,dive"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing ClassSchedule.
// Zero values keep the original ones.
type UpdateClass struct {
	Name     string    `json:"name" validate:"required,max=100"`
	Grade    int       `json:"grade" validate:"required,min=6,max=12"`
	Sessions []Session `json:"sessions" validate:"required,min=1,dive"`
}

func (uc *UpdateClass) Validate(orig ClassSchedule, validate *validator.Validate) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if uc.Grade == 0 {
		uc.Grade = orig.Grade
	}
	if uc.Sessions == nil {
		uc.Sessions = orig.Sessions
	}
	return validate.Struct(uc)
}

type QueryFilter struct {
	Search    string `query:"search"`
	Grade     int    `query:"grade"`
	DayOfWeek *int   `query:"day"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Grade == 0 && qf.DayOfWeek == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Match reports whether the class satisfies every set field of the filter.
// Search is a case-insensitive match on the class name.
func (qf *QueryFilter) Match(c ClassSchedule) bool {
	if qf == nil {
		return true
	}
	if qf.Search != "" && !containsFold(c.Name, qf.Search) {
		return false
	}
	if qf.Grade != 0 && c.Grade != qf.Grade {
		return false
	}
	if qf.DayOfWeek != nil && !c.HasDay(*qf.DayOfWeek) {
		return false
	}
	return true
}

// Conflict describes the existing session a candidate overlaps with.
type Conflict struct {
	ClassID   string  `json:"class_id"`
	ClassName string  `json:"class_name"`
	Session   Session `json:"session"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("conflicts with class %s on %s", c.ClassName, c.Session)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
